// Package commands implements the viewer's slash commands: a registry of
// named commands with prefix matching and argument completion, used by the
// TUI command line.
package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Action represents the side-effect a slash command requests from the host.
type Action int

const (
	// ActionNone indicates no special action is needed.
	ActionNone Action = iota
	// ActionQuit requests the host to terminate.
	ActionQuit
	// ActionOpenSettings requests the parser settings form.
	ActionOpenSettings
	// ActionReload requests the host to rebuild its tree and re-render,
	// after a file was opened or closed or the parser changed.
	ActionReload
)

// Candidate represents a completion suggestion.
type Candidate struct {
	Value       string
	Description string
}

// Result is the outcome of executing a slash command.
type Result struct {
	Output string
	Action Action
}

// SlashCommand defines the interface for a user-invokable slash command.
type SlashCommand interface {
	Name() string
	Description() string
	// Usage shows the argument syntax, e.g. "<path>". Empty for commands
	// without arguments.
	Usage() string
	Complete(ctx context.Context, args []string) []Candidate
	Execute(ctx context.Context, args []string) (Result, error)
}

// Registry manages a collection of slash commands. All methods are safe for
// concurrent use.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]SlashCommand
}

// NewRegistry creates a new empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]SlashCommand)}
}

// Register adds a command to the registry. Returns an error if a command
// with the same name is already registered or if cmd is nil.
func (r *Registry) Register(cmd SlashCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cmd == nil {
		return fmt.Errorf("cannot register nil command")
	}
	if _, exists := r.cmds[cmd.Name()]; exists {
		return fmt.Errorf("command already registered: %s", cmd.Name())
	}
	r.cmds[cmd.Name()] = cmd
	return nil
}

// Get retrieves a command by name.
func (r *Registry) Get(name string) (SlashCommand, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []SlashCommand {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]SlashCommand, 0, len(r.cmds))
	for _, cmd := range r.cmds {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].Name() < cmds[j].Name()
	})
	return cmds
}

// Match returns completion candidates for commands whose names match the
// given prefix (case-insensitive). Results are sorted by name.
func (r *Registry) Match(prefix string) []Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lower := strings.ToLower(prefix)
	var candidates []Candidate
	for _, cmd := range r.cmds {
		if strings.HasPrefix(strings.ToLower(cmd.Name()), lower) {
			candidates = append(candidates, Candidate{
				Value:       cmd.Name(),
				Description: cmd.Description(),
			})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Value < candidates[j].Value
	})
	return candidates
}

// Parse splits a command line such as "/open data.h5" into the command name
// and its arguments. The text after the name is one argument, so paths may
// contain spaces.
func Parse(line string) (name string, args []string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return "", nil, false
	}
	line = line[1:]
	name, rest, _ := strings.Cut(line, " ")
	if name == "" {
		return "", nil, false
	}
	if rest = strings.TrimSpace(rest); rest != "" {
		args = []string{rest}
	}
	return name, args, true
}

// Run parses and executes line.
func (r *Registry) Run(ctx context.Context, line string) (Result, error) {
	name, args, ok := Parse(line)
	if !ok {
		return Result{}, fmt.Errorf("not a command: %q", line)
	}
	cmd, found := r.Get(name)
	if !found {
		return Result{}, fmt.Errorf("unknown command: /%s", name)
	}
	return cmd.Execute(ctx, args)
}
