package logger

import "log"

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

var levelTags = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
}

type stdLogger struct {
	level int
}

// NewLogger returns a logger printing to the standard log output. Messages
// below level are dropped.
func NewLogger(level int) *stdLogger {
	return &stdLogger{level: level}
}

func (l *stdLogger) logf(level int, msg string, a ...any) {
	if level < l.level || level >= SILENCE {
		return
	}

	log.Printf("["+levelTags[level]+"] "+msg+"\n", a...)
}

func (l *stdLogger) Debugf(msg string, a ...any) {
	l.logf(DEBUG, msg, a...)
}

func (l *stdLogger) Infof(msg string, a ...any) {
	l.logf(INFO, msg, a...)
}

func (l *stdLogger) Warnf(msg string, a ...any) {
	l.logf(WARNING, msg, a...)
}

func (l *stdLogger) Errorf(msg string, a ...any) {
	l.logf(ERROR, msg, a...)
}
