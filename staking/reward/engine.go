// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reward holds the pure reward-accounting arithmetic: time-weighted
// units, proportional reward shares and the informational yield-rate
// estimators. Nothing in here mutates state.
package reward

import (
	"math"
	"math/big"

	gmath "github.com/ethereum/go-ethereum/common/math"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/staking/event"
	"github.com/epochfarm/farm/staking/position"
)

const (
	daysPerYear = 365
	percent     = 100
)

// RateUndefined is returned by the yield-rate estimators when the rate has
// no meaningful value (nothing staked). Out of range by construction.
var RateUndefined = new(big.Int).SetUint64(math.MaxUint64)

// UnitsForDeposit computes the time-weight earned by a deposit:
// amount x (endEpoch - now). Earlier deposits weigh more than later ones
// for the same principal. The product saturates rather than wraps; callers
// must have already checked now <= endEpoch.
func UnitsForDeposit(amount uint64, now, endEpoch uint32) uint64 {
	if now >= endEpoch {
		return 0
	}
	units, overflow := gmath.SafeMul(amount, uint64(endEpoch-now))
	if overflow {
		return math.MaxUint64
	}
	return units
}

// Share computes units x pool / totalUnits with truncating division.
// A zero totalUnits yields a zero reward.
func Share(units, pool, totalUnits uint64) uint64 {
	if totalUnits == 0 || units == 0 {
		return 0
	}
	share := new(big.Int).SetUint64(units)
	share.Mul(share, new(big.Int).SetUint64(pool))
	share.Div(share, new(big.Int).SetUint64(totalUnits))
	return share.Uint64()
}

// Engine answers reward and yield queries over the event registry and the
// position ledger. All methods are read-only and side-effect free; they
// fail only on a nonexistent event id.
type Engine struct {
	events    *event.Registry
	positions *position.Ledger
}

func NewEngine(events *event.Registry, positions *position.Ledger) *Engine {
	return &Engine{
		events:    events,
		positions: positions,
	}
}

// ShareOf returns the participant's current reward share in the event.
func (e *Engine) ShareOf(eventID uint64, participant farm.Account) (uint64, error) {
	ev, err := e.events.Get(eventID)
	if err != nil {
		return 0, err
	}
	stake := e.positions.Get(eventID, participant)
	return Share(stake.Units, ev.RewardPool, ev.TotalUnits), nil
}

// GlobalRate estimates the event-wide annualized yield in percent:
// pool x 365 x 100 / (totalStaked x dayCount). With nothing staked the
// rate is undefined and the sentinel is returned.
func (e *Engine) GlobalRate(eventID uint64) (*big.Int, error) {
	ev, err := e.events.Get(eventID)
	if err != nil {
		return nil, err
	}
	if ev.TotalStaked == 0 {
		return new(big.Int).Set(RateUndefined), nil
	}
	return annualize(ev.RewardPool, ev.TotalStaked, dayCount(ev)), nil
}

// PersonalRate estimates the caller's own annualized yield, substituting
// their reward share and principal for the global totals. A caller with no
// stake gets the sentinel.
func (e *Engine) PersonalRate(eventID uint64, participant farm.Account) (*big.Int, error) {
	ev, err := e.events.Get(eventID)
	if err != nil {
		return nil, err
	}
	stake := e.positions.Get(eventID, participant)
	if stake.Amount == 0 {
		return new(big.Int).Set(RateUndefined), nil
	}
	reward := Share(stake.Units, ev.RewardPool, ev.TotalUnits)
	return annualize(reward, stake.Amount, dayCount(ev)), nil
}

// RecomputeUnits sums units over every listed participant of the event.
// This is the recompute strategy for the unit denominator: O(participants)
// per call, growing with everyone ever admitted regardless of how many
// positions remain unclaimed. The engine keeps the denominator
// incrementally instead; this sum exists as a cross-check.
func (e *Engine) RecomputeUnits(eventID uint64) (uint64, error) {
	if _, err := e.events.Get(eventID); err != nil {
		return 0, err
	}
	var total uint64
	for _, p := range e.positions.Participants(eventID) {
		sum, overflow := gmath.SafeAdd(total, e.positions.Get(eventID, p).Units)
		if overflow {
			return math.MaxUint64, nil
		}
		total = sum
	}
	return total, nil
}

// dayCount derives the event duration in days, never less than one.
func dayCount(ev *event.Event) uint64 {
	days := uint64(ev.EndEpoch-ev.StartEpoch) / uint64(farm.EpochsPerDay.Get())
	if days == 0 {
		return 1
	}
	return days
}

func annualize(reward, principal, days uint64) *big.Int {
	rate := new(big.Int).SetUint64(reward)
	rate.Mul(rate, big.NewInt(daysPerYear*percent))
	den := new(big.Int).SetUint64(principal)
	den.Mul(den, new(big.Int).SetUint64(days))
	return rate.Div(rate, den)
}
