package janitor

import (
	"github.com/pkg/errors"
)

// Task is a named long-running function supervised by Supervise.
type Task struct {
	Name string
	Run  func() error
}

// Supervise runs every task in its own goroutine and blocks until the first
// of them returns. All tasks are expected to run until the process is
// terminated, so any return is a contract violation: Supervise always
// returns a non-nil error describing which task exited, even when the task
// itself returned nil.
func Supervise(tasks []Task) error {
	exited := make(chan error)

	for _, task := range tasks {
		go func(task Task) {
			err := task.Run()
			if err == nil {
				err = errors.Errorf("task %s exited unexpectedly, but with a success", task.Name)
			} else {
				err = errors.Wrapf(err, "task %s exited prematurely", task.Name)
			}
			exited <- err
		}(task)
	}

	return <-exited
}
