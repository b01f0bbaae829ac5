// Package memqueue provides an in-process reference implementation of the
// sdk.DelayQueue contract: a single delay bucket with a clock-injected
// minimum delay, role-gated operations, and batch execution through an
// injected call dispatcher.
package memqueue

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

var _ sdk.DelayQueue = (*Queue)(nil)

type operation struct {
	readyAt   time.Time
	done      bool
	executing bool
}

// Queue is a single delay bucket. Operations move Unset -> Scheduled ->
// Ready -> Done; Cancel removes a Scheduled or Ready operation entirely, so
// a canceled id reads as neither pending nor done.
type Queue struct {
	addr       common.Address
	minDelay   types.Duration
	nowFn      func() time.Time
	roles      *Roles
	dispatcher sdk.CallDispatcher

	mu  sync.Mutex
	ops map[common.Hash]*operation
}

type Option func(*Queue)

// WithClock overrides the queue's time source.
func WithClock(nowFn func() time.Time) Option {
	return func(q *Queue) {
		q.nowFn = nowFn
	}
}

// WithRoles installs the queue's access-control capability. Without it the
// queue is unrestricted.
func WithRoles(roles *Roles) Option {
	return func(q *Queue) {
		q.roles = roles
	}
}

// WithDispatcher installs the dispatcher that runs a batch's calls at
// execution time. Without it, executed calls are accepted and discarded,
// which is sufficient for pure state-machine tests.
func WithDispatcher(d sdk.CallDispatcher) Option {
	return func(q *Queue) {
		q.dispatcher = d
	}
}

// New creates a queue identified by addr with the given minimum delay.
func New(addr common.Address, minDelay types.Duration, opts ...Option) *Queue {
	q := &Queue{
		addr:     addr,
		minDelay: minDelay,
		nowFn:    time.Now,
		ops:      make(map[common.Hash]*operation),
	}
	for _, opt := range opts {
		opt(q)
	}

	return q
}

func (q *Queue) Address() common.Address {
	return q.addr
}

func (q *Queue) HashOperationBatch(bop types.BatchOperation, predecessor, salt common.Hash) (common.Hash, error) {
	return hashOperationBatch(bop, predecessor, salt)
}

func (q *Queue) Schedule(
	ctx context.Context, bop types.BatchOperation, predecessor, salt common.Hash, delay types.Duration,
) error {
	if err := q.authorize(ctx, RoleProposer); err != nil {
		return err
	}

	opID, err := hashOperationBatch(bop, predecessor, salt)
	if err != nil {
		return err
	}

	if delay.Duration < q.minDelay.Duration {
		return sdkerrors.NewInsufficientDelayError(delay, q.minDelay)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.ops[opID]; ok {
		return sdkerrors.NewOperationAlreadyScheduledError(opID)
	}
	q.ops[opID] = &operation{readyAt: q.nowFn().Add(delay.Duration)}

	return nil
}

func (q *Queue) Execute(
	ctx context.Context, bop types.BatchOperation, predecessor, salt common.Hash, value *big.Int,
) error {
	if err := q.authorize(ctx, RoleExecutor); err != nil {
		return err
	}

	opID, err := hashOperationBatch(bop, predecessor, salt)
	if err != nil {
		return err
	}

	if err := q.beginExecute(opID, predecessor); err != nil {
		return err
	}

	if err := q.runCalls(ctx, bop, value); err != nil {
		q.mu.Lock()
		q.ops[opID].executing = false
		q.mu.Unlock()

		return err
	}

	q.mu.Lock()
	op := q.ops[opID]
	op.executing = false
	op.done = true
	q.mu.Unlock()

	return nil
}

// beginExecute validates readiness and claims the operation so a reentrant
// execute of the same id fails instead of running twice.
func (q *Queue) beginExecute(opID, predecessor common.Hash) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	op, ok := q.ops[opID]
	if !ok || op.done || op.executing || q.nowFn().Before(op.readyAt) {
		return sdkerrors.NewOperationNotReadyError(opID)
	}

	if predecessor != (common.Hash{}) {
		pred, ok := q.ops[predecessor]
		if !ok || !pred.done {
			return fmt.Errorf("predecessor operation %s is not done", predecessor)
		}
	}

	op.executing = true

	return nil
}

func (q *Queue) runCalls(ctx context.Context, bop types.BatchOperation, value *big.Int) error {
	if value == nil {
		value = big.NewInt(0)
	}
	if total := bop.TotalValue(); value.Cmp(total) < 0 {
		return fmt.Errorf("attached value %s does not cover batch total %s", value, total)
	}

	if q.dispatcher == nil {
		return nil
	}

	// Calls observe the queue itself as the immediate caller. This is the
	// identity self-administrative operations check against the registry.
	callCtx := sdk.WithCaller(ctx, q.addr)
	for i, call := range bop.Calls {
		if err := q.dispatcher.Dispatch(callCtx, call); err != nil {
			return fmt.Errorf("call %d to %s failed: %w", i, call.Target, err)
		}
	}

	return nil
}

func (q *Queue) Cancel(ctx context.Context, opID common.Hash) error {
	if err := q.authorize(ctx, RoleCanceller); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	op, ok := q.ops[opID]
	if !ok || op.done || op.executing {
		return sdkerrors.NewOperationNotCancelableError(opID)
	}
	delete(q.ops, opID)

	return nil
}

func (q *Queue) IsOperationPending(_ context.Context, opID common.Hash) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	op, ok := q.ops[opID]

	return ok && !op.done, nil
}

func (q *Queue) IsOperationDone(_ context.Context, opID common.Hash) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	op, ok := q.ops[opID]

	return ok && op.done, nil
}

func (q *Queue) MinDelay(_ context.Context) (types.Duration, error) {
	return q.minDelay, nil
}

// IsOperationReady reports whether the operation's delay has elapsed and it
// has not been executed or canceled. Not part of the four-operation contract
// the router consumes; exposed for inspection.
func (q *Queue) IsOperationReady(_ context.Context, opID common.Hash) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	op, ok := q.ops[opID]

	return ok && !op.done && !q.nowFn().Before(op.readyAt), nil
}

// Proposers returns the members of the proposer role, sorted by address.
func (q *Queue) Proposers() []common.Address {
	if q.roles == nil {
		return nil
	}

	return q.roles.Members(RoleProposer)
}

// Executors returns the members of the executor role, sorted by address.
func (q *Queue) Executors() []common.Address {
	if q.roles == nil {
		return nil
	}

	return q.roles.Members(RoleExecutor)
}

// Cancellers returns the members of the canceller role, sorted by address.
func (q *Queue) Cancellers() []common.Address {
	if q.roles == nil {
		return nil
	}

	return q.roles.Members(RoleCanceller)
}

func (q *Queue) authorize(ctx context.Context, role Role) error {
	if q.roles == nil {
		return nil
	}

	caller, ok := sdk.CallerFrom(ctx)
	if !ok || !q.roles.Has(role, caller) {
		return sdkerrors.NewUnauthorizedCallerError(caller)
	}

	return nil
}
