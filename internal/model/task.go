package model

// TaskStatus is the completion state of a project task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Task is a read-only view of one work item from the task data source.
type Task struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    TaskStatus `json:"status"`
	TotalCost float64    `json:"total_cost,omitempty"`
	UnitPrice float64    `json:"unit_price,omitempty"`
	Quantity  float64    `json:"quantity,omitempty"`
}

// Cost returns the task's cost value, preferring TotalCost and falling
// back to UnitPrice × Quantity.
func (t Task) Cost() float64 {
	if t.TotalCost > 0 {
		return t.TotalCost
	}
	return t.UnitPrice * t.Quantity
}

// Completed reports whether the task counts toward realized progress.
func (t Task) Completed() bool {
	return t.Status == TaskCompleted
}
