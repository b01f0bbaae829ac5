package memqueue

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/govroute/govroute/internal/utils/abi"
	"github.com/govroute/govroute/types"
)

// batchTupleABI is the canonical encoding layout for an operation id:
// keccak256(abi.encode(calls, predecessor, salt)).
const batchTupleABI = `[{"components":[{"name":"target","type":"address"},{"name":"value","type":"uint256"},{"name":"data","type":"bytes"}],"name":"calls","type":"tuple[]"},{"name":"predecessor","type":"bytes32"},{"name":"salt","type":"bytes32"}]`

// batchCall mirrors the ABI tuple layout; field names must match the
// component names in batchTupleABI for the packer to bind them.
type batchCall struct {
	Target common.Address
	Value  *big.Int
	Data   []byte
}

func hashOperationBatch(bop types.BatchOperation, predecessor, salt common.Hash) (common.Hash, error) {
	calls := make([]batchCall, len(bop.Calls))
	for i, call := range bop.Calls {
		value := call.Value
		if value == nil {
			value = big.NewInt(0)
		}

		calls[i] = batchCall{Target: call.Target, Value: value, Data: call.Data}
	}

	encoded, err := abi.Encode(batchTupleABI, calls, [32]byte(predecessor), [32]byte(salt))
	if err != nil {
		return common.Hash{}, err
	}

	return crypto.Keccak256Hash(encoded), nil
}
