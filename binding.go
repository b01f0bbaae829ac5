package govroute

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/govroute/govroute/sdk"
	sdkerrors "github.com/govroute/govroute/sdk/errors"
	"github.com/govroute/govroute/types"
)

// TimelockBinding glues a voting engine to the bucket registry. The engine
// invokes it at three lifecycle points (queue, execute, cancel); the binding
// derives per-proposal salts, forwards to the registry, and overrides the
// engine's state query with bucket reconciliation.
//
// Once a proposal has been queued, the engine's notion of "queued" is
// advisory; the bucket holding the scheduled operation is the source of
// truth.
type TimelockBinding struct {
	selfAddr   common.Address
	engine     sdk.VotingEngine
	emitter    Emitter
	dispatcher sdk.CallDispatcher
	nowFn      func() time.Time

	mu       sync.RWMutex
	registry *BucketRegistry
}

type BindingOption func(*TimelockBinding)

// WithClock overrides the binding's time source, used to compute the
// execution-ready timestamp returned by OnQueue.
func WithClock(nowFn func() time.Time) BindingOption {
	return func(b *TimelockBinding) {
		b.nowFn = nowFn
	}
}

// WithEmitter installs the sink for binding events.
func WithEmitter(emitter Emitter) BindingOption {
	return func(b *TimelockBinding) {
		b.emitter = emitter
	}
}

// WithDispatcher installs the dispatcher backing the Relay escape hatch.
func WithDispatcher(d sdk.CallDispatcher) BindingOption {
	return func(b *TimelockBinding) {
		b.dispatcher = d
	}
}

// NewTimelockBinding creates a binding for the governance deployment
// identified by selfAddr. The address participates in salt derivation, so
// two deployments sharing buckets must use distinct addresses.
func NewTimelockBinding(
	selfAddr common.Address,
	registry *BucketRegistry,
	engine sdk.VotingEngine,
	opts ...BindingOption,
) (*TimelockBinding, error) {
	if registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if engine == nil {
		return nil, fmt.Errorf("voting engine is required")
	}

	b := &TimelockBinding{
		selfAddr: selfAddr,
		engine:   engine,
		nowFn:    time.Now,
		registry: registry,
	}
	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Registry returns the active bucket registry.
func (b *TimelockBinding) Registry() *BucketRegistry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.registry
}

// CurrentExecutorAddress returns the active registry's address: the address
// all routed operations appear to originate through.
func (b *TimelockBinding) CurrentExecutorAddress() common.Address {
	return b.Registry().Address()
}

// Timelock is an accessor alias for CurrentExecutorAddress.
func (b *TimelockBinding) Timelock() common.Address {
	return b.CurrentExecutorAddress()
}

// ProposalNeedsQueuing reports whether the proposal must pass through a
// bucket before execution. Under this binding, every proposal does.
func (b *TimelockBinding) ProposalNeedsQueuing(common.Hash) bool {
	return true
}

// State computes the proposal's observable state: the engine's own closed
// state computation followed by bucket reconciliation.
func (b *TimelockBinding) State(ctx context.Context, proposalID common.Hash) (types.ProposalState, error) {
	base, err := b.engine.State(ctx, proposalID)
	if err != nil {
		return base, err
	}

	proposalType, err := b.engine.ProposalType(ctx, proposalID)
	if err != nil {
		return base, err
	}

	return b.ReconciledState(ctx, proposalID, proposalType, base)
}

// ReconciledState applies bucket reconciliation to the engine's base state.
// Before queuing the registry adds no information, so any state other than
// Queued passes through unchanged. For a queued proposal the bucket is
// authoritative: pending stays Queued, done becomes Executed (covering
// execution directly on the bucket), and an operation that is neither became
// Canceled out-of-band.
func (b *TimelockBinding) ReconciledState(
	ctx context.Context,
	proposalID common.Hash,
	proposalType types.ProposalType,
	base types.ProposalState,
) (types.ProposalState, error) {
	if base != types.ProposalStateQueued {
		return base, nil
	}

	registry := b.Registry()

	pending, err := registry.IsPending(ctx, proposalID, proposalType)
	if err != nil {
		return base, err
	}
	if pending {
		return types.ProposalStateQueued, nil
	}

	done, err := registry.IsDone(ctx, proposalID, proposalType)
	if err != nil {
		return base, err
	}
	if done {
		return types.ProposalStateExecuted, nil
	}

	return types.ProposalStateCanceled, nil
}

// OnQueue schedules the proposal's batch into the bucket selected by its
// type and returns the earliest time execution may legally be attempted.
func (b *TimelockBinding) OnQueue(
	ctx context.Context,
	proposalID common.Hash,
	proposalType types.ProposalType,
	bop types.BatchOperation,
	descriptionHash common.Hash,
) (time.Time, error) {
	salt := DeriveSalt(b.selfAddr, descriptionHash)

	delay, err := b.Registry().ScheduleBatch(ctx, bop, ZeroHash, salt, proposalID, proposalType)
	if err != nil {
		return time.Time{}, err
	}

	return b.nowFn().Add(delay.Duration), nil
}

// OnExecute forwards the proposal's batch to its bucket for execution with
// the attached value.
func (b *TimelockBinding) OnExecute(
	ctx context.Context,
	proposalID common.Hash,
	proposalType types.ProposalType,
	bop types.BatchOperation,
	descriptionHash common.Hash,
	value *big.Int,
) error {
	salt := DeriveSalt(b.selfAddr, descriptionHash)

	return b.Registry().ExecuteBatch(ctx, bop, ZeroHash, salt, proposalID, proposalType, value)
}

// OnCancel records the engine-side cancellation first, then forwards the
// cancellation to the bucket. Returns the proposal id unchanged.
func (b *TimelockBinding) OnCancel(
	ctx context.Context,
	proposalID common.Hash,
	proposalType types.ProposalType,
	_ types.BatchOperation,
	_ common.Hash,
) (common.Hash, error) {
	if err := b.engine.MarkCanceled(ctx, proposalID); err != nil {
		return proposalID, err
	}

	if err := b.Registry().Cancel(ctx, proposalID, proposalType); err != nil {
		return proposalID, err
	}

	return proposalID, nil
}

// UpdateExecutor replaces the active bucket registry wholesale. It is a
// self-administrative operation: the caller carried by the context must be a
// registered executor of the current registry, which is only the case for a
// call routed through one of its buckets. Registry replacement is therefore
// itself subject to the full queue-then-execute delay path.
func (b *TimelockBinding) UpdateExecutor(ctx context.Context, newRegistry *BucketRegistry) error {
	if newRegistry == nil {
		return fmt.Errorf("new registry is required")
	}
	if err := b.requireAuthorizedExecutor(ctx); err != nil {
		return err
	}

	b.mu.Lock()
	previous := b.registry.Address()
	b.registry = newRegistry
	b.mu.Unlock()

	sdk.LoggerFrom(ctx).Infof("executor changed from %s to %s", previous, newRegistry.Address())
	if b.emitter != nil {
		b.emitter.Emit(ctx, ExecutorChanged{Previous: previous, Current: newRegistry.Address()})
	}

	return nil
}

// Relay lets governance act as an arbitrary external caller, dispatching a
// single call outside the batch path. Gated by the same executor predicate
// as UpdateExecutor.
func (b *TimelockBinding) Relay(ctx context.Context, call types.Call) error {
	if err := b.requireAuthorizedExecutor(ctx); err != nil {
		return err
	}
	if b.dispatcher == nil {
		return fmt.Errorf("no dispatcher configured for relay")
	}

	return b.dispatcher.Dispatch(ctx, call)
}

// CallerIsAuthorizedExecutor reports whether the caller carried by the
// context is a registered executor of the active registry.
func (b *TimelockBinding) CallerIsAuthorizedExecutor(ctx context.Context) bool {
	caller, ok := sdk.CallerFrom(ctx)

	return ok && b.Registry().IsRegisteredExecutor(caller)
}

func (b *TimelockBinding) requireAuthorizedExecutor(ctx context.Context) error {
	if !b.CallerIsAuthorizedExecutor(ctx) {
		caller, _ := sdk.CallerFrom(ctx)

		return sdkerrors.NewUnauthorizedCallerError(caller)
	}

	return nil
}
