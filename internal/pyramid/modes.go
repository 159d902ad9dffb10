package pyramid

import (
	"sort"
	"strings"
	"sync"
)

// Mode is a detection feature flag.
type Mode string

const (
	ModeThief   Mode = "thief"   // reveal the closing emote to steal a pyramid
	ModeDestroy Mode = "destroy" // discourage pyramids at a 3-wide peak
	ModeTimeout Mode = "timeout" // time out failed builders
)

// AllModes lists the known modes.
var AllModes = []Mode{ModeDestroy, ModeThief, ModeTimeout}

// older names still accepted from chat
var modeAliases = map[string]Mode{
	"theif":                  ModeThief,
	"pyramidtheif":           ModeThief,
	"pyramidthief":           ModeThief,
	"destroyer":              ModeDestroy,
	"pyramiddestroyer":       ModeDestroy,
	"timeout-failed-pyramid": ModeTimeout,
}

// ParseMode resolves a mode name or alias.
func ParseMode(name string) (Mode, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, m := range AllModes {
		if string(m) == n {
			return m, true
		}
	}
	m, ok := modeAliases[n]
	return m, ok
}

// DefaultModes returns the construction-time defaults.
func DefaultModes() map[Mode]bool {
	return map[Mode]bool{
		ModeThief:   false,
		ModeDestroy: false,
		ModeTimeout: true,
	}
}

// ModeSetter is the capability set a detection module exposes for its flags.
type ModeSetter interface {
	ListModes() []string
	GetMode(name string) bool
	// SetMode sets the flag to *value, or toggles it when value is nil.
	// It returns the new state and false when the name is unknown.
	SetMode(name string, value *bool) (bool, bool)
}

// Modes is a Mode registry. Unknown names read as disabled and are ignored on write.
type Modes struct {
	mu    sync.RWMutex
	flags map[Mode]bool
}

var _ ModeSetter = (*Modes)(nil)

// NewModes creates a registry seeded from defaults; unknown keys are dropped.
func NewModes(defaults map[Mode]bool) *Modes {
	m := &Modes{flags: DefaultModes()}
	for k, v := range defaults {
		if _, ok := m.flags[k]; ok {
			m.flags[k] = v
		}
	}
	return m
}

// Enabled reports whether mode is on.
func (m *Modes) Enabled(mode Mode) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flags[mode]
}

func (m *Modes) ListModes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.flags))
	for k := range m.flags {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

func (m *Modes) GetMode(name string) bool {
	mode, ok := ParseMode(name)
	if !ok {
		return false
	}
	return m.Enabled(mode)
}

func (m *Modes) SetMode(name string, value *bool) (bool, bool) {
	mode, ok := ParseMode(name)
	if !ok {
		return false, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if value != nil {
		m.flags[mode] = *value
	} else {
		m.flags[mode] = !m.flags[mode]
	}
	return m.flags[mode], true
}

// Snapshot copies the current flags.
func (m *Modes) Snapshot() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]bool, len(m.flags))
	for k, v := range m.flags {
		out[string(k)] = v
	}
	return out
}
