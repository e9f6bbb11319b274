// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"math/big"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/staking/position"
	"github.com/epochfarm/farm/staking/reward"
)

// DepositRequest is the POST body of a deposit.
type DepositRequest struct {
	Participant farm.Account `json:"participant"`
	EventID     uint64       `json:"eventId"`
	Amount      uint64       `json:"amount"`
}

// ClaimRequest is the POST body of a claim.
type ClaimRequest struct {
	Participant farm.Account `json:"participant"`
	EventID     uint64       `json:"eventId"`
}

// JSONStake is the wire form of a participant's stake. ProjectedReward and
// Rate are filled on single-stake reads only.
type JSONStake struct {
	Amount           uint64  `json:"amount"`
	Units            uint64  `json:"units"`
	LastDepositEpoch uint32  `json:"lastDepositEpoch"`
	ProjectedReward  uint64  `json:"projectedReward,omitempty"`
	Rate             *string `json:"rate,omitempty"`
}

func convertStake(stake *position.Stake) *JSONStake {
	return &JSONStake{
		Amount:           stake.Amount,
		Units:            stake.Units,
		LastDepositEpoch: stake.LastDepositEpoch,
	}
}

func convertRate(rate *big.Int) *string {
	if rate.Cmp(reward.RateUndefined) == 0 {
		return nil
	}
	s := rate.String()
	return &s
}

// JSONClaim reports what a claim paid out.
type JSONClaim struct {
	Amount uint64 `json:"amount"`
	Reward uint64 `json:"reward"`
	Payout uint64 `json:"payout"`
}

// JSONParticipants lists an event's participants in first-deposit order.
type JSONParticipants struct {
	Count        int            `json:"count"`
	Participants []farm.Account `json:"participants"`
}
