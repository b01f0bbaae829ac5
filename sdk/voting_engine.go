package sdk

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/govroute/govroute/types"
)

// VotingEngine is the tally-and-threshold state machine that drives proposal
// lifecycles. The routing core consumes only the proposal's declared type,
// the engine's own base state computation, and its cancellation bookkeeping;
// vote counting and quorum are entirely the engine's concern.
type VotingEngine interface {
	// ProposalType returns the delay bucket index declared for the proposal
	// at creation time.
	ProposalType(ctx context.Context, proposalID common.Hash) (types.ProposalType, error)

	// State computes the engine's own view of the proposal lifecycle,
	// before bucket reconciliation is applied.
	State(ctx context.Context, proposalID common.Hash) (types.ProposalState, error)

	// MarkCanceled records the engine-side cancellation of a proposal. The
	// binding invokes it before forwarding the cancellation to the bucket.
	MarkCanceled(ctx context.Context, proposalID common.Hash) error
}
