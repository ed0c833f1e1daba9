// Package filter applies an optional CEL drop-filter to inbound events
// before they reach the dispatcher. Deployments use it to mute event
// classes they do not care about, e.g. `key != 'badges'`.
package filter

import (
	"fmt"
	"log/slog"

	"github.com/google/cel-go/cel"

	"arrsync/internal/events"
)

// Filter evaluates a compiled CEL expression against each event. A nil
// program matches everything.
type Filter struct {
	prg    cel.Program
	logger *slog.Logger
}

// New compiles expr into a Filter. The expression sees two string
// variables, key and kind, and must evaluate to a boolean. An empty
// expression yields a pass-through filter. Compile errors are
// configuration errors and abort startup.
func New(expr string, logger *slog.Logger) (*Filter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if expr == "" {
		return &Filter{logger: logger}, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("key", cel.StringType),
		cel.Variable("kind", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("creating CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compile error: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("CEL program creation error: %w", err)
	}

	return &Filter{prg: prg, logger: logger}, nil
}

// Allow reports whether the event should be dispatched. Evaluation errors
// are logged and the event passes through; a broken filter must not drop
// the stream.
func (f *Filter) Allow(e events.Event) bool {
	if f.prg == nil {
		return true
	}

	out, _, err := f.prg.Eval(map[string]any{
		"key":  string(e.Key),
		"kind": string(e.Kind),
	})
	if err != nil {
		f.logger.Warn("event filter evaluation failed", "key", e.Key, "error", err)
		return true
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		f.logger.Warn("event filter result is not boolean", "key", e.Key)
		return true
	}
	return allowed
}
