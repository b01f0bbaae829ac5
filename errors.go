package govroute

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/govroute/govroute/types"
)

// InvalidProposalTypeError is returned when a proposal type does not index a
// bucket in the registry's bucket list.
type InvalidProposalTypeError struct {
	ProposalType types.ProposalType
	BucketCount  int
}

func (e *InvalidProposalTypeError) Error() string {
	return fmt.Sprintf("invalid proposal type %d: registry holds %d buckets", e.ProposalType, e.BucketCount)
}

func NewInvalidProposalTypeError(proposalType types.ProposalType, bucketCount int) *InvalidProposalTypeError {
	return &InvalidProposalTypeError{ProposalType: proposalType, BucketCount: bucketCount}
}

// DuplicateBucketError is returned at construction when two proposal types
// reference the same bucket address.
type DuplicateBucketError struct {
	Bucket common.Address
}

func (e *DuplicateBucketError) Error() string {
	return fmt.Sprintf("bucket %s is assigned to more than one proposal type", e.Bucket)
}

func NewDuplicateBucketError(bucket common.Address) *DuplicateBucketError {
	return &DuplicateBucketError{Bucket: bucket}
}
