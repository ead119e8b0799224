package models

// Task is a row of the tasks table that still waits for coordinates.
type Task struct {
	ID       int    // task_id
	Address  string // Free-text address as entered by the operator.
	Attempts int    // Failed geocoding attempts so far.
}
