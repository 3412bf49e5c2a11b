package kernel

// TaskStateLoader builds and loads the task-switch hardware descriptor
// (the TSS on x86-64) for the platform.
//
// It is an external initialization step: the scheduler needs it done before
// the first switch but never performs it itself. Platforms without such a
// descriptor return nil.
type TaskStateLoader interface {
	LoadTaskState() error
}
