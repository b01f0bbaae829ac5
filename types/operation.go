package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Call is a single target invocation inside a batch operation.
type Call struct {
	Target common.Address `json:"target" validate:"required"`
	Value  *big.Int       `json:"value"`
	Data   []byte         `json:"data"`
}

// NewCall constructs a Call. A nil value is normalized to zero so batches
// hash identically regardless of how callers spell "no value attached".
func NewCall(target common.Address, data []byte, value *big.Int) Call {
	if value == nil {
		value = big.NewInt(0)
	}

	return Call{Target: target, Value: value, Data: data}
}

// BatchOperation is the unit a delay bucket schedules, executes and cancels
// atomically. All calls succeed or the whole batch fails.
type BatchOperation struct {
	Calls []Call `json:"calls" validate:"required,min=1,dive"`
}

// TotalValue returns the sum of the value attached to every call in the
// batch. Used to check the value forwarded at execution time covers the
// batch's payable calls.
func (b BatchOperation) TotalValue() *big.Int {
	total := big.NewInt(0)
	for _, call := range b.Calls {
		if call.Value != nil {
			total.Add(total, call.Value)
		}
	}

	return total
}
