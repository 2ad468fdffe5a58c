package process

import (
	"context"
	"errors"
)

// ErrNotRunning is returned when a process exited between connection enumeration and lookup
var ErrNotRunning = errors.New("process not running")

// NameResolver maps a process ID to its name
type NameResolver interface {
	// ProcessName returns the name of the process, or ErrNotRunning if it has exited
	ProcessName(ctx context.Context, pid ProcessID) (string, error)
}

// NameResolverFunc adapts a plain function to NameResolver
type NameResolverFunc func(ctx context.Context, pid ProcessID) (string, error)

func (f NameResolverFunc) ProcessName(ctx context.Context, pid ProcessID) (string, error) {
	return f(ctx, pid)
}

// Chain tries each resolver in order and returns the first name found.
// ErrNotRunning from any resolver ends the search.
func Chain(resolvers ...NameResolver) NameResolver {
	return NameResolverFunc(func(ctx context.Context, pid ProcessID) (string, error) {
		var lastErr error = ErrNotRunning
		for _, r := range resolvers {
			name, err := r.ProcessName(ctx, pid)
			if err == nil {
				return name, nil
			}
			if errors.Is(err, ErrNotRunning) {
				return "", err
			}
			lastErr = err
		}
		return "", lastErr
	})
}
