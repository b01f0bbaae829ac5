package sdk

import (
	"context"

	"github.com/govroute/govroute/types"
)

// CallDispatcher invokes a single call against its target. Delay queues use
// it to run a batch's calls at execution time; the binding uses it for the
// governance relay escape hatch.
//
// Dispatch returns an error if the target call fails; the caller treats any
// failure as fatal to the surrounding batch.
type CallDispatcher interface {
	Dispatch(ctx context.Context, call types.Call) error
}

// CallDispatcherFunc adapts a function to the CallDispatcher interface.
type CallDispatcherFunc func(ctx context.Context, call types.Call) error

func (f CallDispatcherFunc) Dispatch(ctx context.Context, call types.Call) error {
	return f(ctx, call)
}
