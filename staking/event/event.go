// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package event owns the staking event records: bounded-duration reward
// campaigns with their own pool, cap and eligibility policy.
package event

// FundingPolicy selects the funding validation applied at event creation.
// Deployments disagree on whether the funded amount must cover the declared
// reward pool or merely be nonzero, so the rule is configurable.
type FundingPolicy uint8

const (
	// FundingCoversPool requires funding >= reward pool.
	FundingCoversPool FundingPolicy = iota
	// FundingNonZero requires funding > 0 only.
	FundingNonZero
)

// Config is the immutable configuration of a staking event.
type Config struct {
	StartEpoch          uint32
	EndEpoch            uint32
	RewardPool          uint64
	Funding             uint64
	RequiresEligibility bool
	MaxPerWallet        uint64
}

// Event is one reward campaign. Configuration fields are immutable after
// creation; TotalStaked and TotalUnits move with deposits and claims, and
// Active false-flips permanently once the end epoch is passed.
type Event struct {
	ID                  uint64
	StartEpoch          uint32
	EndEpoch            uint32
	RewardPool          uint64
	TotalStaked         uint64
	TotalUnits          uint64
	Active              bool
	RequiresEligibility bool
	MaxPerWallet        uint64
}

// Ended reports whether the event's window is over at the given epoch.
func (e *Event) Ended(now uint32) bool {
	return now > e.EndEpoch
}

// Open reports whether deposits are admissible at the given epoch.
func (e *Event) Open(now uint32) bool {
	return now >= e.StartEpoch && now <= e.EndEpoch
}

// RemainingEpochs returns max(0, endEpoch - now).
func (e *Event) RemainingEpochs(now uint32) uint32 {
	if now >= e.EndEpoch {
		return 0
	}
	return e.EndEpoch - now
}
