// Package scheduler runs delayed one-shot tasks, such as removing the
// "Downloading" status message once a request has been handled.
package scheduler

import (
	"sync"
	"time"
)

// Scheduler runs f once after d has elapsed, on its own goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

// Task is a pending delayed call.
type Task interface {
	// Stop cancels the call. It reports false if the call already ran or was stopped.
	Stop() bool
}

// Timer schedules tasks on the wall clock.
type Timer struct {
	wg sync.WaitGroup
}

func NewTimer() *Timer {
	return &Timer{}
}

func (t *Timer) AfterFunc(d time.Duration, f func()) Task {
	t.wg.Add(1)
	tm := time.AfterFunc(d, func() {
		defer t.wg.Done()
		f()
	})
	return &timerTask{timer: tm, done: t.wg.Done}
}

// Wait blocks until every scheduled task has run or been stopped.
func (t *Timer) Wait() {
	t.wg.Wait()
}

type timerTask struct {
	timer *time.Timer
	done  func()
}

func (tt *timerTask) Stop() bool {
	if tt.timer.Stop() {
		tt.done()
		return true
	}
	return false
}
