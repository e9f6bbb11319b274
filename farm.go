// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package farm holds scalars and tunables shared across the staking engine.
package farm

// Account identifies a holder on the external value-transfer ledger.
// The engine treats it as an opaque identifier.
type Account string

// IsZero returns true for the empty account.
func (a Account) IsZero() bool {
	return a == ""
}

func (a Account) String() string {
	return string(a)
}

// Capability names consulted through the authority registry.
const (
	CapabilityManager = "manager"
	CapabilityAdmin   = "admin"
)

// EpochSource supplies the current epoch. The engine never derives time on
// its own; the environment decides how fast epochs tick.
type EpochSource interface {
	Now() uint32
}

// EpochSourceFunc adapts a function to the EpochSource interface.
type EpochSourceFunc func() uint32

func (f EpochSourceFunc) Now() uint32 {
	return f()
}
