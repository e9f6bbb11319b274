// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"math/big"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/staking/event"
	"github.com/epochfarm/farm/staking/reward"
)

// CreateEventRequest is the POST body for event creation.
type CreateEventRequest struct {
	Caller              farm.Account `json:"caller"`
	StartEpoch          uint32       `json:"startEpoch"`
	EndEpoch            uint32       `json:"endEpoch"`
	RewardPool          uint64       `json:"rewardPool"`
	Funding             uint64       `json:"funding"`
	RequiresEligibility bool         `json:"requiresEligibility"`
	MaxPerWallet        uint64       `json:"maxPerWallet"`
}

// JSONEvent is the wire form of an event record.
type JSONEvent struct {
	ID                  uint64 `json:"id"`
	StartEpoch          uint32 `json:"startEpoch"`
	EndEpoch            uint32 `json:"endEpoch"`
	RewardPool          uint64 `json:"rewardPool"`
	TotalStaked         uint64 `json:"totalStaked"`
	TotalUnits          uint64 `json:"totalUnits"`
	Active              bool   `json:"active"`
	RequiresEligibility bool   `json:"requiresEligibility"`
	MaxPerWallet        uint64 `json:"maxPerWallet"`
}

func convertEvent(ev *event.Event) *JSONEvent {
	return &JSONEvent{
		ID:                  ev.ID,
		StartEpoch:          ev.StartEpoch,
		EndEpoch:            ev.EndEpoch,
		RewardPool:          ev.RewardPool,
		TotalStaked:         ev.TotalStaked,
		TotalUnits:          ev.TotalUnits,
		Active:              ev.Active,
		RequiresEligibility: ev.RequiresEligibility,
		MaxPerWallet:        ev.MaxPerWallet,
	}
}

// JSONRate carries a yield-rate estimate. Rate is null while undefined.
type JSONRate struct {
	Rate *string `json:"rate"`
}

func convertRate(rate *big.Int) *JSONRate {
	if rate.Cmp(reward.RateUndefined) == 0 {
		return &JSONRate{}
	}
	s := rate.String()
	return &JSONRate{Rate: &s}
}

// JSONRemaining reports the remaining window of an open event.
type JSONRemaining struct {
	Epochs   uint32 `json:"epochs"`
	Duration uint64 `json:"duration"`
}
