package govroute

import "github.com/ethereum/go-ethereum/common"

// DeriveSalt derives the timelock salt for a proposal by XOR-ing the
// governance deployment's own address into the first 20 bytes of the
// proposal's description hash.
//
// Two governance deployments sharing a bucket can queue the same batch with
// the same description hash; folding the deployment address into the salt
// keeps the resulting operation ids distinct, so neither deployment can
// pre-schedule, execute or cancel the other's operation.
func DeriveSalt(self common.Address, descriptionHash common.Hash) common.Hash {
	salt := descriptionHash
	for i := range common.AddressLength {
		salt[i] ^= self[i]
	}

	return salt
}
