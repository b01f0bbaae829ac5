package memqueue

import (
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Role identifies a capability on a queue.
type Role string

const (
	RoleProposer  Role = "proposer"
	RoleExecutor  Role = "executor"
	RoleCanceller Role = "canceller"
)

// Roles is the access-control capability a queue holds internally. The
// routing layer never mutates it; the queue consults it with the caller
// identity carried by the context. A queue constructed without roles is
// unrestricted.
type Roles struct {
	members map[Role]map[common.Address]bool
}

func NewRoles() *Roles {
	return &Roles{members: make(map[Role]map[common.Address]bool)}
}

// Grant adds addr to the role's membership and returns the receiver for
// chaining during construction.
func (r *Roles) Grant(role Role, addr common.Address) *Roles {
	if r.members[role] == nil {
		r.members[role] = make(map[common.Address]bool)
	}
	r.members[role][addr] = true

	return r
}

func (r *Roles) Has(role Role, addr common.Address) bool {
	return r.members[role][addr]
}

// Members returns the role's membership sorted by address.
func (r *Roles) Members(role Role) []common.Address {
	addrs := make([]common.Address, 0, len(r.members[role]))
	for addr := range r.members[role] {
		addrs = append(addrs, addr)
	}
	slices.SortFunc(addrs, func(a, b common.Address) int {
		return strings.Compare(a.Hex(), b.Hex())
	})

	return addrs
}
