// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package position owns the per-(event, participant) stake records and the
// per-event participant lists.
package position

import (
	"math"

	gmath "github.com/ethereum/go-ethereum/common/math"

	"github.com/epochfarm/farm"
)

// Stake is one participant's position in one event. It is created lazily on
// first deposit and terminally zeroed by the one successful claim.
type Stake struct {
	Amount           uint64
	Units            uint64
	LastDepositEpoch uint32 // diagnostic only, not used in reward math
}

// IsEmpty reports whether the position holds no principal.
func (s Stake) IsEmpty() bool {
	return s.Amount == 0
}

type key struct {
	event       uint64
	participant farm.Account
}

// Ledger indexes stakes by (event, participant) and maintains an
// append-only, deduplicated ordered participant list per event.
//
// The ledger is not safe for concurrent use on its own; the orchestrator
// serializes all access.
type Ledger struct {
	stakes       map[key]*Stake
	participants map[uint64][]farm.Account
}

func NewLedger() *Ledger {
	return &Ledger{
		stakes:       make(map[key]*Stake),
		participants: make(map[uint64][]farm.Account),
	}
}

// Get returns the current stake, zero-valued if none exists yet.
func (l *Ledger) Get(eventID uint64, participant farm.Account) Stake {
	if s, ok := l.stakes[key{eventID, participant}]; ok {
		return *s
	}
	return Stake{}
}

// RecordDeposit credits a deposit to the participant's position. On the
// first-ever deposit for this (event, participant) pair the participant is
// appended to the event's list, exactly once.
func (l *Ledger) RecordDeposit(eventID uint64, participant farm.Account, amount, units uint64, now uint32) {
	k := key{eventID, participant}
	s, ok := l.stakes[k]
	if !ok {
		// zero to non-zero transition, list the participant exactly once
		s = &Stake{}
		l.stakes[k] = s
		l.participants[eventID] = append(l.participants[eventID], participant)
	}
	s.Amount = satAdd(s.Amount, amount)
	s.Units = satAdd(s.Units, units)
	s.LastDepositEpoch = now
}

// Clear zeroes the position and returns its prior value. Used by claim,
// exactly once per participant per event.
func (l *Ledger) Clear(eventID uint64, participant farm.Account) Stake {
	k := key{eventID, participant}
	s, ok := l.stakes[k]
	if !ok {
		return Stake{}
	}
	prior := *s
	s.Amount = 0
	s.Units = 0
	return prior
}

// Participants returns the event's participant list in first-deposit order.
func (l *Ledger) Participants(eventID uint64) []farm.Account {
	list := l.participants[eventID]
	out := make([]farm.Account, len(list))
	copy(out, list)
	return out
}

// Count returns the number of distinct participants ever admitted.
func (l *Ledger) Count(eventID uint64) int {
	return len(l.participants[eventID])
}

// TotalAmount sums the currently-staked principal over all participants of
// an event. O(participants), used for invariant cross-checks.
func (l *Ledger) TotalAmount(eventID uint64) uint64 {
	var total uint64
	for _, p := range l.participants[eventID] {
		total = satAdd(total, l.Get(eventID, p).Amount)
	}
	return total
}

func satAdd(a, b uint64) uint64 {
	sum, overflow := gmath.SafeAdd(a, b)
	if overflow {
		return math.MaxUint64
	}
	return sum
}
