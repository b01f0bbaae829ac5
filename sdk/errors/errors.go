package sdkerrors

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/govroute/govroute/types"
)

// OperationNotReadyError is returned when executing an operation whose delay
// has not elapsed, or that was canceled or already done.
type OperationNotReadyError struct {
	OpID common.Hash
}

func (e *OperationNotReadyError) Error() string {
	return fmt.Sprintf("operation %s is not ready", e.OpID)
}

func NewOperationNotReadyError(opID common.Hash) *OperationNotReadyError {
	return &OperationNotReadyError{OpID: opID}
}

// OperationAlreadyScheduledError is returned when scheduling an operation
// whose id is already present in the bucket.
type OperationAlreadyScheduledError struct {
	OpID common.Hash
}

func (e *OperationAlreadyScheduledError) Error() string {
	return fmt.Sprintf("operation %s is already scheduled", e.OpID)
}

func NewOperationAlreadyScheduledError(opID common.Hash) *OperationAlreadyScheduledError {
	return &OperationAlreadyScheduledError{OpID: opID}
}

// OperationNotCancelableError is returned when canceling an operation that is
// not in the Scheduled or Ready state.
type OperationNotCancelableError struct {
	OpID common.Hash
}

func (e *OperationNotCancelableError) Error() string {
	return fmt.Sprintf("operation %s cannot be canceled", e.OpID)
}

func NewOperationNotCancelableError(opID common.Hash) *OperationNotCancelableError {
	return &OperationNotCancelableError{OpID: opID}
}

// InsufficientDelayError is returned when scheduling an operation with a
// delay below the bucket's minimum.
type InsufficientDelayError struct {
	Delay    types.Duration
	MinDelay types.Duration
}

func (e *InsufficientDelayError) Error() string {
	return fmt.Sprintf("insufficient delay %s, minimum is %s", e.Delay, e.MinDelay)
}

func NewInsufficientDelayError(delay, minDelay types.Duration) *InsufficientDelayError {
	return &InsufficientDelayError{Delay: delay, MinDelay: minDelay}
}

// UnauthorizedCallerError is returned when a gated operation is invoked by a
// caller that is not recognized for it.
type UnauthorizedCallerError struct {
	Caller common.Address
}

func (e *UnauthorizedCallerError) Error() string {
	return fmt.Sprintf("caller %s is not authorized", e.Caller)
}

func NewUnauthorizedCallerError(caller common.Address) *UnauthorizedCallerError {
	return &UnauthorizedCallerError{Caller: caller}
}
