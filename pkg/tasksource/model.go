package tasksource

type rawSprint struct {
	ID        string `mapstructure:"id"`
	Name      string `mapstructure:"name"`
	StartDate string `mapstructure:"start_date"`
	EndDate   string `mapstructure:"end_date"`
}

// rawTask carries every shape the source is known to answer with. Older
// boards report booleans, newer ones report a status string.
type rawTask struct {
	AssigneeID string `mapstructure:"assignee_id"`
	Status     string `mapstructure:"status"`
	Completed  bool   `mapstructure:"completed"`
	InProgress bool   `mapstructure:"in_progress"`
	Blocked    bool   `mapstructure:"blocked"`
}
