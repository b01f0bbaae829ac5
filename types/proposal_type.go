package types

// ProposalType selects which delay bucket handles a proposal. The value is
// the index of the bucket in the registry's ordered bucket list; there is no
// separate bucket name.
//
// The type is declared by the voting engine when the proposal is created and
// must be supplied unchanged on every lifecycle call that references the same
// proposal.
type ProposalType uint8
