// Package abi wraps go-ethereum's ABI packing for standalone value encoding,
// the equivalent of Solidity's abi.encode.
package abi

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Encode ABI-encodes values against the given JSON argument definition. The
// definition is wrapped in a dummy method so the go-ethereum packer can be
// reused; the 4-byte selector is stripped from the result.
//
// See https://github.com/ethereum/go-ethereum/blob/master/accounts/abi/packing_test.go
// for the accepted Go representations of each ABI type.
func Encode(abiStr string, values ...any) ([]byte, error) {
	def := fmt.Sprintf(`[{ "name" : "method", "type": "function", "inputs": %s}]`, abiStr)
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		return nil, err
	}

	packed, err := parsed.Pack("method", values...)
	if err != nil {
		return nil, err
	}

	return packed[4:], nil
}
