package scheduler

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimer_RunsAfterDelay(t *testing.T) {
	s := NewTimer()
	var ran atomic.Bool
	start := time.Now()

	s.AfterFunc(20*time.Millisecond, func() { ran.Store(true) })
	s.Wait()

	if !ran.Load() {
		t.Fatal("task did not run")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("task ran too early: %v", elapsed)
	}
}

func TestTimer_Stop(t *testing.T) {
	s := NewTimer()
	var ran atomic.Bool

	task := s.AfterFunc(time.Hour, func() { ran.Store(true) })
	if !task.Stop() {
		t.Fatal("expected Stop to cancel pending task")
	}
	if task.Stop() {
		t.Fatal("second Stop should report false")
	}
	s.Wait() // must not block on a stopped task
	if ran.Load() {
		t.Fatal("stopped task ran")
	}
}

func TestManual_Advance(t *testing.T) {
	m := NewManual()
	var order []string

	m.AfterFunc(3*time.Second, func() { order = append(order, "a") })
	m.AfterFunc(5*time.Second, func() { order = append(order, "b") })

	if n := m.Advance(2999 * time.Millisecond); n != 0 {
		t.Fatalf("expected nothing due, ran %d", n)
	}
	if n := m.Advance(time.Millisecond); n != 1 {
		t.Fatalf("expected 1 task due, ran %d", n)
	}
	if m.Pending() != 1 {
		t.Fatalf("expected 1 pending, got %d", m.Pending())
	}
	m.Advance(time.Hour)
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Fatalf("unexpected order: %v", order)
	}
	if d := m.Delays(); len(d) != 2 || d[0] != 3*time.Second {
		t.Fatalf("unexpected delays: %v", d)
	}
}

func TestManual_Stop(t *testing.T) {
	m := NewManual()
	ran := false
	task := m.AfterFunc(time.Second, func() { ran = true })

	if !task.Stop() {
		t.Fatal("expected Stop to succeed")
	}
	m.Advance(time.Minute)
	if ran {
		t.Fatal("stopped task ran")
	}
}
