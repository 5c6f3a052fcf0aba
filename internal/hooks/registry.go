// Package hooks lets the presentation layer observe the client core.
//
// The core fires named hooks after it changes what a view would show: a
// completed load, a coin change, a login or logout. Observers register plain
// callbacks; firing a hook with no observers does nothing.
package hooks

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// Hook names one refresh point
type Hook string

const (
	SpiderList   Hook = "spider-list"
	BattleList   Hook = "battle-list"
	AdminPanel   Hook = "admin-panel"
	CoinDisplay  Hook = "coin-display"
	SessionPanel Hook = "session-panel"
)

// Func is a refresh callback. It re-reads whatever state it needs.
type Func func()

// Registry holds the registered callbacks per hook
type Registry struct {
	mu     sync.RWMutex
	hooks  map[Hook][]Func
	logger *slog.Logger
}

// New creates an empty Registry
func New(logger *slog.Logger) *Registry {
	return &Registry{
		hooks:  make(map[Hook][]Func),
		logger: logger.With(slog.String("component", "hooks")),
	}
}

// Register adds fn to the callbacks run when h fires
func (r *Registry) Register(h Hook, fn Func) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.hooks[h] = append(r.hooks[h], fn)
	r.mu.Unlock()
}

// Count returns how many callbacks are registered for h
func (r *Registry) Count(h Hook) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks[h])
}

// Fire runs the callbacks of each hook in order. A panicking callback is
// logged and skipped; the remaining callbacks still run.
func (r *Registry) Fire(hs ...Hook) {
	for _, h := range hs {
		r.mu.RLock()
		fns := append([]Func(nil), r.hooks[h]...)
		r.mu.RUnlock()

		for _, fn := range fns {
			r.call(h, fn)
		}
	}
}

func (r *Registry) call(h Hook, fn Func) {
	defer func() {
		if err := recover(); err != nil {
			r.logger.Error("panic recovered",
				slog.Any("error", err),
				slog.String("hook", string(h)),
				slog.String("stack", string(debug.Stack())),
			)
		}
	}()
	fn()
}
