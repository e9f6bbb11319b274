// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auditdb

import (
	"github.com/epochfarm/farm"
)

// Kind discriminates audit records.
type Kind string

const (
	KindCreation  Kind = "creation"
	KindDeposit   Kind = "deposit"
	KindClaim     Kind = "claim"
	KindTagUpdate Kind = "tag-update"
	KindSweep     Kind = "sweep"
)

// Record is one observable engine output. External systems rely on these
// for indexing and auditing.
type Record struct {
	Seq         uint64 // assigned on save, monotonic
	Kind        Kind
	EventID     uint64 // zero for records not tied to an event
	Participant farm.Account
	Amount      uint64 // principal for deposits/claims, funding for creations, total for sweeps
	Units       uint64 // time-weight for deposits
	Reward      uint64 // reward share for claims
	Epoch       uint32
	Detail      string // key=value pairs: event bounds/cap/gating for creations, tag sets, sweep destinations
}

// Order of a filtered result set by sequence number.
type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Options limits a filtered result set.
type Options struct {
	Offset uint64
	Limit  uint64
}

// EpochRange bounds a filter by the epoch column, inclusive.
type EpochRange struct {
	From uint32
	To   uint32
}

// Filter selects audit records. Zero-valued criteria are ignored.
type Filter struct {
	Kinds       []Kind
	EventID     *uint64
	Participant *farm.Account
	Range       *EpochRange
	Order       Order
	Options     *Options
}
