// Package dispatch runs chat messages through a handler with one worker
// goroutine and queue per channel, so messages of a channel are handled
// strictly in arrival order while channels proceed independently.
//
// Typical usage:
//
//	d := dispatch.NewManager(dispatch.Options{QueueSize: 64}, func(ctx context.Context, msg chat.Message) {
//	    bot.Handle(ctx, msg)
//	})
//	defer d.Close()
//
//	_ = d.Submit(ctx, msg)
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"pyramid-bot/internal/chat"
)

// DefaultQueueSize is used when Options.QueueSize is not positive.
const DefaultQueueSize = 64

var ErrClosed = errors.New("dispatcher closed")

// Handler processes one message. It must not call Stop or Close on the
// Manager that invoked it.
type Handler func(ctx context.Context, msg chat.Message)

// StatusReporter receives worker lifecycle events, e.g. "running:#chan",
// "done:#chan" or "panic:#chan:<value>".
type StatusReporter func(string)

// Options configures a Manager.
type Options struct {
	QueueSize int
	Reporter  StatusReporter
	// OnStop is called from the worker goroutine after a channel's worker exits.
	OnStop func(channel string)
}

type worker struct {
	channel string
	queue   chan chat.Message
}

// Manager owns the per-channel workers. It is safe for concurrent use.
type Manager struct {
	opts    Options
	handler Handler

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	workers map[string]*worker
	closed  bool
	wg      sync.WaitGroup
}

// NewManager creates a Manager delivering messages to handler.
func NewManager(opts Options, handler Handler) *Manager {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		opts:    opts,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
		workers: make(map[string]*worker),
	}
}

// Submit queues msg on its channel's worker, starting the worker if needed.
// It blocks while the queue is full until ctx is done.
func (m *Manager) Submit(ctx context.Context, msg chat.Message) error {
	for {
		m.mu.RLock()
		if m.closed {
			m.mu.RUnlock()
			return ErrClosed
		}
		w, ok := m.workers[msg.Channel]
		if !ok {
			m.mu.RUnlock()
			m.start(msg.Channel)
			continue
		}

		// the read lock stays held so the queue cannot be closed under the send
		select {
		case w.queue <- msg:
			m.mu.RUnlock()
			return nil
		case <-ctx.Done():
			m.mu.RUnlock()
			return ctx.Err()
		}
	}
}

func (m *Manager) start(channel string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	if _, exists := m.workers[channel]; exists {
		return
	}

	w := &worker{channel: channel, queue: make(chan chat.Message, m.opts.QueueSize)}
	m.workers[channel] = w
	m.wg.Add(1)
	go m.run(w)
}

func (m *Manager) run(w *worker) {
	defer m.wg.Done()
	m.report("running:" + w.channel)

	for msg := range w.queue {
		m.handle(msg)
	}

	m.report("done:" + w.channel)
	if m.opts.OnStop != nil {
		m.opts.OnStop(w.channel)
	}
}

func (m *Manager) handle(msg chat.Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERR] handler panic in %s: %v", msg.Channel, r)
			m.report(fmt.Sprintf("panic:%s:%v", msg.Channel, r))
		}
	}()
	m.handler(m.ctx, msg)
}

// Stop lets a channel's worker finish its queued messages and exit.
// If the channel has no worker, an error is returned.
func (m *Manager) Stop(channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.workers[channel]
	if !ok {
		return fmt.Errorf("channel '%s' not running", channel)
	}
	delete(m.workers, channel)
	close(w.queue)
	return nil
}

// Close stops accepting messages, drains every queue and waits for the workers.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	for ch, w := range m.workers {
		close(w.queue)
		delete(m.workers, ch)
	}
	m.mu.Unlock()

	m.wg.Wait()
	m.cancel()
}

// Abort cancels the context passed to handlers, then closes the manager.
func (m *Manager) Abort() {
	m.cancel()
	m.Close()
}

// List returns the channels with a running worker, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.workers))
	for k := range m.workers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status returns a human-readable summary of active workers.
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No channels are active."
	}
	return fmt.Sprintf("Active channels: %s", strings.Join(active, ", "))
}

func (m *Manager) report(s string) {
	if m.opts.Reporter != nil {
		m.opts.Reporter(s)
	}
}
