package game

import "time"

// Every deferred action in a room (countdown tick, trap disarm, delayed
// start, deferred deletion) goes through the Scheduler so tests can drive
// time by hand and so fired callbacks always re-enter through the room's
// guard (see Room.after) instead of mutating stale state.

// Clock abstracts time.Now for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Task is a cancellable deferred callback. Stop reports whether the task
// was cancelled before firing.
type Task interface {
	Stop() bool
}

// Scheduler produces deferred callbacks.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Task
}

type systemScheduler struct{}

// SystemScheduler schedules on the runtime timer heap.
func SystemScheduler() Scheduler { return systemScheduler{} }

type systemTask struct {
	timer *time.Timer
}

func (t systemTask) Stop() bool { return t.timer.Stop() }

func (systemScheduler) AfterFunc(d time.Duration, fn func()) Task {
	return systemTask{timer: time.AfterFunc(d, fn)}
}
