package models

type TaskStatus string

const (
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusFinished  TaskStatus = "finished"
	TaskStatusConsumed  TaskStatus = "consumed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// TaskProgress is a snapshot of a running task's counters
type TaskProgress struct {
	Finished int64 `json:"finished"`
	Total    int64 `json:"total"`
	Bytes    int64 `json:"bytes"`
}

// TaskView is what the boundary reports when a task is polled
type TaskView struct {
	Handle uint64 `json:"handle"`
	Kind   string `json:"kind"`
	Done   bool   `json:"done"`
	TaskProgress
}
