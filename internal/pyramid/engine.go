package pyramid

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"pyramid-bot/internal/chat"
	"pyramid-bot/internal/score"
)

// Options configures an Engine.
type Options struct {
	Modes   map[Mode]bool // per channel defaults; DefaultModes when nil
	Timeout time.Duration
	BotName string
	Debug   bool
}

type channelState struct {
	mu    sync.Mutex
	state State
	modes *Modes
}

// Engine owns the pyramid state of every channel it has seen. Messages of one
// channel are evaluated one at a time; different channels run in parallel.
type Engine struct {
	eval     *Evaluator
	defaults map[Mode]bool
	debug    bool

	mu       sync.RWMutex
	channels map[string]*channelState
}

// NewEngine builds an engine recording outcomes in store.
func NewEngine(store score.Store, opts Options) *Engine {
	defaults := opts.Modes
	if defaults == nil {
		defaults = DefaultModes()
	}
	return &Engine{
		eval:     NewEvaluator(store, Settings{Timeout: opts.Timeout, BotName: opts.BotName}),
		defaults: defaults,
		debug:    opts.Debug,
		channels: make(map[string]*channelState),
	}
}

// Process evaluates msg against its channel's attempt.
func (e *Engine) Process(ctx context.Context, msg chat.Message) (Result, error) {
	cs := e.channel(msg.Channel)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	res, err := e.eval.Evaluate(ctx, &cs.state, cs.modes, msg)
	if err != nil {
		log.Printf("[WARN] pyramid scores not saved for %s in %s: %v", msg.User(), msg.Channel, err)
	}
	if e.debug && !res.Has(Reset) {
		log.Printf("[DEBUG] pyramid %s: %v emote=%q progress=%d max=%d", msg.Channel,
			res.Classifications, res.State.Emote, res.State.Progress, res.State.MaxHeight)
	}
	return res, err
}

// Modes returns the mode registry of channel, creating the channel if needed.
func (e *Engine) Modes(channel string) *Modes {
	return e.channel(channel).modes
}

// State returns a copy of channel's attempt and whether the channel is known.
func (e *Engine) State(channel string) (State, bool) {
	e.mu.RLock()
	cs, ok := e.channels[channel]
	e.mu.RUnlock()
	if !ok {
		return State{}, false
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.state, true
}

// View returns a copy of channel's attempt and modes. Unlike Modes it never
// creates the channel.
func (e *Engine) View(channel string) (State, map[string]bool, bool) {
	e.mu.RLock()
	cs, ok := e.channels[channel]
	e.mu.RUnlock()
	if !ok {
		return State{}, nil, false
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.state, cs.modes.Snapshot(), true
}

// Drop forgets a channel's attempt and modes.
func (e *Engine) Drop(channel string) {
	e.mu.Lock()
	delete(e.channels, channel)
	e.mu.Unlock()
}

// Channels lists known channels in sorted order.
func (e *Engine) Channels() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.channels))
	for k := range e.channels {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) channel(id string) *channelState {
	e.mu.RLock()
	cs, ok := e.channels[id]
	e.mu.RUnlock()
	if ok {
		return cs
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if cs, ok := e.channels[id]; ok {
		return cs
	}
	cs = &channelState{modes: NewModes(e.defaults)}
	e.channels[id] = cs
	return cs
}
