// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package event

import (
	"math"

	gmath "github.com/ethereum/go-ethereum/common/math"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/staking/reject"
)

// Registry owns the set of staking events. Identifiers are 1-based,
// monotonically assigned and never reused.
//
// The registry is not safe for concurrent use on its own; the orchestrator
// serializes all access.
type Registry struct {
	policy FundingPolicy
	nextID uint64
	events map[uint64]*Event
	order  []uint64
}

func NewRegistry(policy FundingPolicy) *Registry {
	return &Registry{
		policy: policy,
		nextID: 1,
		events: make(map[uint64]*Event),
	}
}

// Validate checks an event configuration against the creation rules without
// touching any state.
func (r *Registry) Validate(cfg Config) error {
	if cfg.EndEpoch <= cfg.StartEpoch {
		return reject.Newf(reject.CodeInvalidConfiguration,
			"end epoch %d must be after start epoch %d", cfg.EndEpoch, cfg.StartEpoch)
	}
	if cfg.RewardPool == 0 {
		return reject.New(reject.CodeInvalidConfiguration, "reward pool must be nonzero")
	}
	if cfg.MaxPerWallet == 0 {
		return reject.New(reject.CodeInvalidConfiguration, "per-wallet cap must be nonzero")
	}
	switch r.policy {
	case FundingNonZero:
		if cfg.Funding == 0 {
			return reject.New(reject.CodeInvalidConfiguration, "funding must be nonzero")
		}
	default:
		if cfg.Funding < cfg.RewardPool {
			return reject.Newf(reject.CodeInvalidConfiguration,
				"funding %d does not cover reward pool %d", cfg.Funding, cfg.RewardPool)
		}
	}
	return nil
}

// Create validates the configuration, allocates the next identifier and
// stores the record.
func (r *Registry) Create(cfg Config) (*Event, error) {
	if err := r.Validate(cfg); err != nil {
		return nil, err
	}
	ev := &Event{
		ID:                  r.nextID,
		StartEpoch:          cfg.StartEpoch,
		EndEpoch:            cfg.EndEpoch,
		RewardPool:          cfg.RewardPool,
		Active:              true,
		RequiresEligibility: cfg.RequiresEligibility,
		MaxPerWallet:        cfg.MaxPerWallet,
	}
	r.nextID++
	r.events[ev.ID] = ev
	r.order = append(r.order, ev.ID)
	return snapshot(ev), nil
}

func (r *Registry) get(id uint64) (*Event, error) {
	ev, ok := r.events[id]
	if !ok {
		return nil, reject.Newf(reject.CodeNotFound, "event %d does not exist", id)
	}
	return ev, nil
}

// Get returns a snapshot of the event record.
func (r *Registry) Get(id uint64) (*Event, error) {
	ev, err := r.get(id)
	if err != nil {
		return nil, err
	}
	return snapshot(ev), nil
}

// IsActive returns the cached lifecycle flag.
func (r *Registry) IsActive(id uint64) (bool, error) {
	ev, err := r.get(id)
	if err != nil {
		return false, err
	}
	return ev.Active, nil
}

// RefreshStatus flips Active to false once the current epoch has passed the
// end epoch. Idempotent, a no-op otherwise. The flag never flips back.
func (r *Registry) RefreshStatus(id uint64, now uint32) (bool, error) {
	ev, err := r.get(id)
	if err != nil {
		return false, err
	}
	if ev.Active && ev.Ended(now) {
		ev.Active = false
		return true, nil
	}
	return false, nil
}

// RemainingEpochs returns max(0, endEpoch - now).
func (r *Registry) RemainingEpochs(id uint64, now uint32) (uint32, error) {
	ev, err := r.get(id)
	if err != nil {
		return 0, err
	}
	return ev.RemainingEpochs(now), nil
}

// RemainingDuration estimates the remaining event duration in seconds,
// assuming the configured average epoch duration.
func (r *Registry) RemainingDuration(id uint64, now uint32) (uint64, error) {
	remaining, err := r.RemainingEpochs(id, now)
	if err != nil {
		return 0, err
	}
	return uint64(remaining) * uint64(farm.AverageEpochDuration.Get()), nil
}

// AddStake credits a deposit to the event totals. Totals saturate rather
// than wrap.
func (r *Registry) AddStake(id uint64, amount, units uint64) error {
	ev, err := r.get(id)
	if err != nil {
		return err
	}
	ev.TotalStaked = satAdd(ev.TotalStaked, amount)
	ev.TotalUnits = satAdd(ev.TotalUnits, units)
	return nil
}

// RemoveStake debits a claimed principal from the event's staked total.
// TotalUnits is left untouched so that the reward shares of later claimants
// keep their denominator.
func (r *Registry) RemoveStake(id uint64, amount uint64) error {
	ev, err := r.get(id)
	if err != nil {
		return err
	}
	if amount > ev.TotalStaked {
		ev.TotalStaked = 0
		return nil
	}
	ev.TotalStaked -= amount
	return nil
}

// List returns snapshots of all events in creation order.
func (r *Registry) List() []*Event {
	out := make([]*Event, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, snapshot(r.events[id]))
	}
	return out
}

// Count returns the number of events ever created.
func (r *Registry) Count() int {
	return len(r.events)
}

func snapshot(ev *Event) *Event {
	cpy := *ev
	return &cpy
}

func satAdd(a, b uint64) uint64 {
	sum, overflow := gmath.SafeAdd(a, b)
	if overflow {
		return math.MaxUint64
	}
	return sum
}
