package envelope

import (
	"context"
	"net/http"
)

// Stage is a single link in a request pipeline: it accepts a request and
// eventually produces a Response or fails. The Decorator implements Stage
// itself, so a decorated stage composes with any other Stage without
// special-casing.
type Stage interface {
	// Invoke processes a request. Exactly one of the return values is set;
	// returning neither a response nor an error is a contract violation.
	Invoke(ctx context.Context, req *http.Request) (*Response, error)
	// Ready reports whether the stage can accept work right now.
	// A nil error means ready.
	Ready(ctx context.Context) error
}

// StageFunc adapts a plain function to a Stage that is always ready.
type StageFunc func(ctx context.Context, req *http.Request) (*Response, error)

func (fn StageFunc) Invoke(ctx context.Context, req *http.Request) (*Response, error) {
	return fn(ctx, req)
}

func (fn StageFunc) Ready(ctx context.Context) error {
	return nil
}

// Wrapper decorates a Stage with additional behavior.
type Wrapper func(Stage) Stage

// Chain composes multiple wrappers into one. The first wrapper in the list
// is the outermost (runs first on a request, last on a response).
func Chain(wrappers ...Wrapper) Wrapper {
	return func(next Stage) Stage {
		for i := len(wrappers) - 1; i >= 0; i-- {
			next = wrappers[i](next)
		}
		return next
	}
}
