package govroute

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// EventTypeExecutorChanged is emitted when the active bucket registry is
// replaced through UpdateExecutor.
const EventTypeExecutorChanged = "govroute.executor.changed"

// Event is a typed notification produced by the binding.
type Event interface {
	EventType() string
}

// Emitter receives binding events. A nil emitter on the binding drops them.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// ExecutorChanged carries the old and new registry addresses of an executor
// swap.
type ExecutorChanged struct {
	Previous common.Address
	Current  common.Address
}

func (ExecutorChanged) EventType() string { return EventTypeExecutorChanged }
