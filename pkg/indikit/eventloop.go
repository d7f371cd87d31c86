package indikit

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventLoop serializes all driver entry points onto a single goroutine.
// Handshakes, client requests and timer callbacks run one at a time and
// never reenter, which is why drivers need no locking around their property
// sets.
type EventLoop struct {
	jobs   chan func()
	logger log.FieldLogger
}

func NewEventLoop(logger log.FieldLogger) *EventLoop {
	return &EventLoop{
		jobs:   make(chan func(), 64),
		logger: logger.WithField("component", "eventloop"),
	}
}

// Run consumes jobs until the context is cancelled.
func (l *EventLoop) Run(ctx context.Context) error {
	l.logger.Debug("Event loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("Event loop stopped")
			return nil
		case job := <-l.jobs:
			job()
		}
	}
}

// Post enqueues a job for execution on the loop goroutine.
func (l *EventLoop) Post(job func()) {
	l.jobs <- job
}

// After schedules a one-shot job on the loop after the given delay. The
// returned timer can be stopped to cancel it.
func (l *EventLoop) After(d time.Duration, job func()) *time.Timer {
	return time.AfterFunc(d, func() {
		l.Post(job)
	})
}

// RunSync posts a job and waits for it to finish. Tests and the host process
// use it to interact with devices from outside the loop.
func (l *EventLoop) RunSync(job func()) {
	done := make(chan struct{})
	l.Post(func() {
		job()
		close(done)
	})
	<-done
}
