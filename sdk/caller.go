package sdk

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

type contextCallerValueT string

const ContextCallerValue = contextCallerValueT("govroute-caller")

// WithCaller returns a context carrying addr as the immediate caller
// identity. Delay queues stamp their own address into the context before
// dispatching a batch's calls, which is what lets self-administrative
// operations prove they were routed through a registered bucket.
func WithCaller(ctx context.Context, addr common.Address) context.Context {
	return context.WithValue(ctx, ContextCallerValue, addr)
}

// CallerFrom extracts the immediate caller identity from the context.
func CallerFrom(ctx context.Context) (common.Address, bool) {
	addr, ok := ctx.Value(ContextCallerValue).(common.Address)

	return addr, ok
}
