// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eligibility gates participation on externally attested
// credential tags.
package eligibility

import (
	"github.com/epochfarm/farm"
)

// Oracle is the external credential store. Given an account and a set of
// required tags it reports whether the account holds at least one of them.
type Oracle interface {
	HoldsAny(participant farm.Account, tags []string) (bool, error)
}

// Gate wraps the oracle as a pure pass-through query. It keeps no state.
type Gate struct {
	oracle Oracle
}

func New(oracle Oracle) *Gate {
	return &Gate{oracle: oracle}
}

// Check reports whether the participant holds at least one of the required
// tags. An empty tag set admits everyone.
func (g *Gate) Check(participant farm.Account, tags []string) (bool, error) {
	if len(tags) == 0 {
		return true, nil
	}
	return g.oracle.HoldsAny(participant, tags)
}

// MemoryOracle is an in-process Oracle keyed by account. Used by the solo
// daemon and tests; production deployments wire a real credential service.
type MemoryOracle struct {
	tags map[farm.Account]map[string]bool
}

func NewMemoryOracle() *MemoryOracle {
	return &MemoryOracle{
		tags: make(map[farm.Account]map[string]bool),
	}
}

// Attest records a credential tag for an account.
func (o *MemoryOracle) Attest(participant farm.Account, tag string) {
	set, ok := o.tags[participant]
	if !ok {
		set = make(map[string]bool)
		o.tags[participant] = set
	}
	set[tag] = true
}

func (o *MemoryOracle) HoldsAny(participant farm.Account, tags []string) (bool, error) {
	set := o.tags[participant]
	for _, tag := range tags {
		if set[tag] {
			return true, nil
		}
	}
	return false, nil
}
