// Package sdk defines the collaborator contracts the routing core consumes:
// the delay-queue bucket, the voting engine, and the call dispatcher, plus
// context helpers for the ambient logger and caller identity.
package sdk

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/govroute/govroute/types"
)

// DelayQueue is a single delay bucket: it holds scheduled batch operations
// keyed by a content hash and enforces a minimum delay between scheduling and
// execution. Operation lifecycle is Unset -> Scheduled -> Ready -> Done, with
// Scheduled/Ready -> Unset via Cancel.
//
// HashOperationBatch is pure and deterministic; all other methods may touch
// external state and take a context.
type DelayQueue interface {
	// Address is the bucket's stable identity, recognized by the registry
	// as an executor origin for self-administrative calls.
	Address() common.Address

	// HashOperationBatch derives the operation id for a batch. The same
	// (calls, predecessor, salt) tuple always hashes to the same id.
	HashOperationBatch(bop types.BatchOperation, predecessor, salt common.Hash) (common.Hash, error)

	// Schedule registers a batch for execution no earlier than delay from
	// now. Fails if an operation with the same id is already scheduled.
	Schedule(ctx context.Context, bop types.BatchOperation, predecessor, salt common.Hash, delay types.Duration) error

	// Execute re-derives the operation id from its inputs and runs the
	// batch. Fails unless the operation is Ready: delay elapsed, not
	// canceled, not already done. Any failing call aborts the whole batch.
	// The attached value funds the batch's payable calls.
	Execute(ctx context.Context, bop types.BatchOperation, predecessor, salt common.Hash, value *big.Int) error

	// Cancel removes a Scheduled or Ready operation. Fails for any other
	// state, including Done.
	Cancel(ctx context.Context, opID common.Hash) error

	IsOperationPending(ctx context.Context, opID common.Hash) (bool, error)
	IsOperationDone(ctx context.Context, opID common.Hash) (bool, error)
	MinDelay(ctx context.Context) (types.Duration, error)
}
