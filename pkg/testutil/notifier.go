package testutil

import (
	"context"
	"sync"
)

type NotifiedEvent struct {
	Event   string
	Payload map[string]any
}

// MockNotifier records every delivered event in order.
type MockNotifier struct {
	mutex  sync.Mutex
	Events []NotifiedEvent
}

func (m *MockNotifier) Notify(ctx context.Context, event string, payload map[string]any) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.Events = append(m.Events, NotifiedEvent{Event: event, Payload: payload})
}
