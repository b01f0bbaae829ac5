package types

import "fmt"

// ProposalState is the externally observable lifecycle state of a governance
// proposal. Values up to and including Succeeded are computed entirely by the
// voting engine; Queued, Executed and Canceled are reconciled against the
// delay bucket that holds the proposal's scheduled operation.
type ProposalState uint8

const (
	ProposalStatePending ProposalState = iota
	ProposalStateActive
	ProposalStateDefeated
	ProposalStateSucceeded
	ProposalStateQueued
	ProposalStateExecuted
	ProposalStateCanceled
)

// StringToProposalState converts a string to a ProposalState.
var StringToProposalState = map[string]ProposalState{
	"Pending":   ProposalStatePending,
	"Active":    ProposalStateActive,
	"Defeated":  ProposalStateDefeated,
	"Succeeded": ProposalStateSucceeded,
	"Queued":    ProposalStateQueued,
	"Executed":  ProposalStateExecuted,
	"Canceled":  ProposalStateCanceled,
}

func (s ProposalState) String() string {
	switch s {
	case ProposalStatePending:
		return "Pending"
	case ProposalStateActive:
		return "Active"
	case ProposalStateDefeated:
		return "Defeated"
	case ProposalStateSucceeded:
		return "Succeeded"
	case ProposalStateQueued:
		return "Queued"
	case ProposalStateExecuted:
		return "Executed"
	case ProposalStateCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("ProposalState(%d)", uint8(s))
	}
}
