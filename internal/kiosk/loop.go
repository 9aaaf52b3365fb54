package kiosk

import "sync"

// Loop serializes all kiosk state mutations onto a single goroutine.
// Worker goroutines and timers never touch navigation state directly;
// they post closures here and the loop applies them in order.
type Loop struct {
	mu     sync.Mutex
	tasks  chan func()
	closed bool
	done   chan struct{}
}

// NewLoop creates a dispatch loop; call Run on its own goroutine.
func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Run drains posted tasks until Stop is called.
func (l *Loop) Run() {
	defer close(l.done)
	for task := range l.tasks {
		task()
	}
}

// Post schedules a task. Tasks posted after Stop are dropped.
func (l *Loop) Post(task func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.tasks <- task
}

// Do posts a task and waits for the loop to finish it; used by bound
// UI methods that need an answer. Never call it from inside a task.
func (l *Loop) Do(task func()) {
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		task()
	})
	select {
	case <-finished:
	case <-l.done:
	}
}

// Stop ends the loop after all queued tasks have run.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	close(l.tasks)
}
