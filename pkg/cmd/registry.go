package cmd

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry stores commands by name and alias, case-insensitively. It does not
// dispatch; adapters look commands up and invoke them with their own Data.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command // primary names
	lookup   map[string]Command // names and aliases
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		lookup:   make(map[string]Command),
	}
}

// Register adds a command under its name and aliases. A name or alias that is
// already taken is an error and nothing is registered.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{c.Name()}, c.Aliases()...)
	for _, k := range keys {
		if _, taken := r.lookup[strings.ToLower(k)]; taken {
			return fmt.Errorf("command name %q already registered", k)
		}
	}
	r.commands[strings.ToLower(c.Name())] = c
	for _, k := range keys {
		r.lookup[strings.ToLower(k)] = c
	}
	return nil
}

// MustRegister is Register for setup code that cannot continue on a clash.
func (r *Registry) MustRegister(cs ...Command) {
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

// Get returns the command with the given name or alias, or nil.
func (r *Registry) Get(name string) Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lookup[strings.ToLower(name)]
}

// GetAll returns all registered commands, sorted by name.
func (r *Registry) GetAll() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Command, 0, len(r.commands))
	for _, c := range r.commands {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
