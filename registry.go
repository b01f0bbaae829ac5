// Package govroute routes governance proposals into independent timelock
// buckets keyed by the proposal's declared type, and reconciles a proposal's
// observable state against the authoritative state held by its bucket.
package govroute

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/govroute/govroute/internal/utils/safecast"
	"github.com/govroute/govroute/sdk"
	"github.com/govroute/govroute/types"
)

var ZeroHash = common.Hash{}

// BucketRegistry owns an ordered, immutable list of delay buckets indexed by
// proposal type, and the mapping from proposal id to the operation id it
// produced in its selected bucket.
//
// A mapping entry exists if and only if the proposal has been queued and not
// yet executed or canceled through this registry. Absence after a known queue
// event means the operation completed or was acted on directly on the bucket.
type BucketRegistry struct {
	addr      common.Address
	buckets   []sdk.DelayQueue
	executors map[common.Address]bool

	mu         sync.Mutex
	operations map[common.Hash]common.Hash // proposal id -> operation id
}

// NewBucketRegistry creates a registry identified by addr over the given
// ordered bucket list. The index of a bucket in the list is the proposal
// type it serves. The list is immutable afterwards; replacing the routing
// table means constructing a new registry and swapping it in through the
// binding's UpdateExecutor.
func NewBucketRegistry(addr common.Address, buckets []sdk.DelayQueue) (*BucketRegistry, error) {
	if len(buckets) == 0 {
		return nil, fmt.Errorf("at least one bucket is required")
	}
	if _, err := safecast.IntToUint8(len(buckets) - 1); err != nil {
		return nil, fmt.Errorf("too many buckets for the proposal type range: %w", err)
	}

	executors := make(map[common.Address]bool, len(buckets))
	for _, bucket := range buckets {
		if executors[bucket.Address()] {
			return nil, NewDuplicateBucketError(bucket.Address())
		}
		executors[bucket.Address()] = true
	}

	return &BucketRegistry{
		addr:       addr,
		buckets:    buckets,
		executors:  executors,
		operations: make(map[common.Hash]common.Hash),
	}, nil
}

// Address is the registry's own identity, reported by the binding as the
// address routed operations originate through.
func (r *BucketRegistry) Address() common.Address {
	return r.addr
}

// SelectedBucket returns the bucket serving the given proposal type.
func (r *BucketRegistry) SelectedBucket(proposalType types.ProposalType) (sdk.DelayQueue, error) {
	if int(proposalType) >= len(r.buckets) {
		return nil, NewInvalidProposalTypeError(proposalType, len(r.buckets))
	}

	return r.buckets[int(proposalType)], nil
}

// IsRegisteredExecutor reports whether addr is one of the registry's bucket
// addresses. Membership is fixed at construction.
func (r *BucketRegistry) IsRegisteredExecutor(addr common.Address) bool {
	return r.executors[addr]
}

// IsPending reports whether the operation tracked for the proposal is
// pending in the selected bucket. An untracked proposal queries the zero
// operation id, which no bucket reports as pending.
func (r *BucketRegistry) IsPending(
	ctx context.Context, proposalID common.Hash, proposalType types.ProposalType,
) (bool, error) {
	bucket, err := r.SelectedBucket(proposalType)
	if err != nil {
		return false, err
	}

	return bucket.IsOperationPending(ctx, r.operationID(proposalID))
}

// IsDone reports whether the operation tracked for the proposal is done in
// the selected bucket.
func (r *BucketRegistry) IsDone(
	ctx context.Context, proposalID common.Hash, proposalType types.ProposalType,
) (bool, error) {
	bucket, err := r.SelectedBucket(proposalType)
	if err != nil {
		return false, err
	}

	return bucket.IsOperationDone(ctx, r.operationID(proposalID))
}

// MinDelay returns the minimum delay of the bucket serving the given
// proposal type.
func (r *BucketRegistry) MinDelay(ctx context.Context, proposalType types.ProposalType) (types.Duration, error) {
	bucket, err := r.SelectedBucket(proposalType)
	if err != nil {
		return types.Duration{}, err
	}

	return bucket.MinDelay(ctx)
}

// ScheduleBatch schedules the batch into the bucket selected by the proposal
// type, using that bucket's own minimum delay, and records the proposal's
// operation id. The mapping is written before the forward so a reentrant
// read during the same call observes it; a failed forward rolls the write
// back. Returns the delay the bucket applied so the caller can compute the
// execution-ready timestamp.
func (r *BucketRegistry) ScheduleBatch(
	ctx context.Context,
	bop types.BatchOperation,
	predecessor, salt common.Hash,
	proposalID common.Hash,
	proposalType types.ProposalType,
) (types.Duration, error) {
	bucket, err := r.SelectedBucket(proposalType)
	if err != nil {
		return types.Duration{}, err
	}

	opID, err := bucket.HashOperationBatch(bop, predecessor, salt)
	if err != nil {
		return types.Duration{}, err
	}

	delay, err := bucket.MinDelay(ctx)
	if err != nil {
		return types.Duration{}, err
	}

	r.mu.Lock()
	r.operations[proposalID] = opID
	r.mu.Unlock()

	if err := bucket.Schedule(ctx, bop, predecessor, salt, delay); err != nil {
		r.mu.Lock()
		delete(r.operations, proposalID)
		r.mu.Unlock()

		return types.Duration{}, err
	}

	sdk.LoggerFrom(ctx).Infof(
		"scheduled proposal %s as operation %s in bucket %d with delay %s",
		proposalID, opID, proposalType, delay,
	)

	return delay, nil
}

// ExecuteBatch forwards execution to the selected bucket, which re-derives
// the operation id from the same inputs and validates it is Ready. On a
// successful forward the proposal's mapping entry is cleared unconditionally:
// the registry trusts the bucket's validation and only garbage-collects its
// bookkeeping, without cross-checking the recorded id against what execution
// re-derived.
func (r *BucketRegistry) ExecuteBatch(
	ctx context.Context,
	bop types.BatchOperation,
	predecessor, salt common.Hash,
	proposalID common.Hash,
	proposalType types.ProposalType,
	value *big.Int,
) error {
	bucket, err := r.SelectedBucket(proposalType)
	if err != nil {
		return err
	}

	if err := bucket.Execute(ctx, bop, predecessor, salt, value); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.operations, proposalID)
	r.mu.Unlock()

	sdk.LoggerFrom(ctx).Infof("executed proposal %s in bucket %d", proposalID, proposalType)

	return nil
}

// Cancel forwards cancellation of the proposal's tracked operation to the
// selected bucket and clears the mapping entry. A proposal with no tracked
// operation is a no-op. Cancellation is all-or-nothing: if the bucket
// rejects it the mapping entry is left intact.
func (r *BucketRegistry) Cancel(
	ctx context.Context, proposalID common.Hash, proposalType types.ProposalType,
) error {
	bucket, err := r.SelectedBucket(proposalType)
	if err != nil {
		return err
	}

	r.mu.Lock()
	opID, ok := r.operations[proposalID]
	r.mu.Unlock()
	if !ok {
		return nil
	}

	if err := bucket.Cancel(ctx, opID); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.operations, proposalID)
	r.mu.Unlock()

	sdk.LoggerFrom(ctx).Infof("canceled proposal %s operation %s in bucket %d", proposalID, opID, proposalType)

	return nil
}

func (r *BucketRegistry) operationID(proposalID common.Hash) common.Hash {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.operations[proposalID]
}
