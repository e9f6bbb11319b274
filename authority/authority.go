// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package authority administers the capability grants consulted by gated
// operations: one fixed administrator and a revocable set of managers.
package authority

import (
	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/staking/reject"
)

// Registry holds capability grants. The administrator is fixed at
// construction; manager capability is granted and revoked by the
// administrator.
type Registry struct {
	admin    farm.Account
	managers map[farm.Account]bool
	order    []farm.Account
}

func New(admin farm.Account) *Registry {
	return &Registry{
		admin:    admin,
		managers: make(map[farm.Account]bool),
	}
}

// Admin returns the fixed administrator account.
func (r *Registry) Admin() farm.Account {
	return r.admin
}

// Has reports whether the account holds the capability. The administrator
// holds every capability.
func (r *Registry) Has(caller farm.Account, capability string) bool {
	if caller == r.admin {
		return true
	}
	if capability == farm.CapabilityManager {
		return r.managers[caller]
	}
	return false
}

// Require is the precondition guard called at the top of every gated
// operation.
func (r *Registry) Require(caller farm.Account, capability string) error {
	if !r.Has(caller, capability) {
		return reject.Newf(reject.CodeInsufficientAuthorization,
			"%s requires the %s capability", caller, capability)
	}
	return nil
}

// Grant gives the account the manager capability. Only the administrator
// may grant. Returns false if the account already held it.
func (r *Registry) Grant(caller, account farm.Account) (bool, error) {
	if err := r.Require(caller, farm.CapabilityAdmin); err != nil {
		return false, err
	}
	if account.IsZero() || r.managers[account] {
		return false, nil
	}
	r.managers[account] = true
	r.order = append(r.order, account)
	return true, nil
}

// Revoke removes the manager capability. Only the administrator may revoke.
// Returns false if the account did not hold it.
func (r *Registry) Revoke(caller, account farm.Account) (bool, error) {
	if err := r.Require(caller, farm.CapabilityAdmin); err != nil {
		return false, err
	}
	if !r.managers[account] {
		return false, nil
	}
	delete(r.managers, account)
	for i, a := range r.order {
		if a == account {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// Managers lists current managers in grant order.
func (r *Registry) Managers() []farm.Account {
	out := make([]farm.Account, len(r.order))
	copy(out, r.order)
	return out
}
