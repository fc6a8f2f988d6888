// Package worker defines the contract for the logic side of a session.
// A worker consumes the main side's start, key, and resize messages from
// its endpoint and answers with draw instructions and lifecycle signals.
package worker

import (
	"context"

	"github.com/mthille/easel/internal/transport"
)

// Worker runs the session logic against an endpoint. Run blocks until
// the worker exits, the endpoint closes, or the context is cancelled.
// The returned error is nil for a graceful exit, including endpoint
// closure from the main side.
type Worker interface {
	Run(ctx context.Context, ep *transport.Endpoint) error
}
