package models

import (
	"fmt"
)

// Task is an emulated thread as seen by the scheduler.
type Task interface {
	ID() int
	String() string
}

// Scheduler reports the task that owns the cpu. RunningTask returns nil outside of any task.
type Scheduler interface {
	RunningTask() Task
}

// NamedTask is a minimal Task for loaders without a real scheduler.
type NamedTask struct {
	Tid  int
	Name string
}

func (t *NamedTask) ID() int { return t.Tid }

func (t *NamedTask) String() string {
	return fmt.Sprintf("%s[%d]", t.Name, t.Tid)
}

// SingleTask schedules exactly one task forever.
type SingleTask struct {
	Task Task
}

func (s *SingleTask) RunningTask() Task {
	return s.Task
}
