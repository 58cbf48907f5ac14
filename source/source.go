// Package source defines the remote rate source capability and an HTTP
// client implementation for JSON rate APIs.
package source

import (
	"context"

	"github.com/fxpulse/fxpulse/quote"
)

// Source is the remote price source the service refreshes from. Fetch may
// fail with any error; failures are classified by the errclass taxonomy.
type Source interface {
	Fetch(ctx context.Context) (quote.Value, error)
}

// Func adapts a plain function to the Source interface.
type Func func(ctx context.Context) (quote.Value, error)

// Fetch implements Source.
func (f Func) Fetch(ctx context.Context) (quote.Value, error) { return f(ctx) }
