// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking composes the event registry, position ledger, reward
// engine and eligibility gate into the deposit/claim state machine. It is
// the only package that talks to the external value-transfer ledger, and
// every mutating operation runs inside one exclusive critical section so a
// ledger callback can never re-enter deposit or claim half way through.
package staking

import (
	"fmt"
	"math"
	"math/big"
	"sync"

	gmath "github.com/ethereum/go-ethereum/common/math"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/auditdb"
	"github.com/epochfarm/farm/authority"
	"github.com/epochfarm/farm/ledger"
	"github.com/epochfarm/farm/log"
	"github.com/epochfarm/farm/staking/eligibility"
	"github.com/epochfarm/farm/staking/event"
	"github.com/epochfarm/farm/staking/position"
	"github.com/epochfarm/farm/staking/reject"
	"github.com/epochfarm/farm/staking/reward"
)

var logger = log.WithContext("pkg", "staking")

func SetLogger(l log.Logger) {
	logger = l
}

// Recorder persists the structured audit records emitted by mutating
// operations. Persistence failures are logged but never fail the operation.
type Recorder interface {
	Save(r *auditdb.Record) error
}

// Options configures a Service at construction time.
type Options struct {
	Admin           farm.Account
	FundingPolicy   event.FundingPolicy
	EligibilityTags []string
}

// ClaimResult reports what a successful claim paid out.
type ClaimResult struct {
	Amount uint64
	Reward uint64
	Payout uint64
}

// Service implements the staking operations.
type Service struct {
	mu sync.RWMutex

	events    *event.Registry
	positions *position.Ledger
	rewards   *reward.Engine
	gate      *eligibility.Gate
	auth      *authority.Registry
	book      ledger.Ledger
	audit     Recorder

	tags []string
}

// New creates a new service instance.
func New(book ledger.Ledger, oracle eligibility.Oracle, audit Recorder, opts Options) *Service {
	events := event.NewRegistry(opts.FundingPolicy)
	positions := position.NewLedger()

	return &Service{
		events:    events,
		positions: positions,
		rewards:   reward.NewEngine(events, positions),
		gate:      eligibility.New(oracle),
		auth:      authority.New(opts.Admin),
		book:      book,
		audit:     audit,
		tags:      append([]string(nil), opts.EligibilityTags...),
	}
}

// Authority exposes the capability registry, e.g. for API listings.
func (s *Service) Authority() *authority.Registry {
	return s.auth
}

//
// Getters - no state change
//

// GetEvent returns a snapshot of the event record.
func (s *Service) GetEvent(id uint64) (*event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.Get(id)
}

// ListEvents returns snapshots of all events in creation order.
func (s *Service) ListEvents() []*event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.List()
}

// IsEventActive reports the cached lifecycle flag.
func (s *Service) IsEventActive(id uint64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.IsActive(id)
}

// RemainingEpochs returns max(0, endEpoch - now).
func (s *Service) RemainingEpochs(id uint64, now uint32) (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.RemainingEpochs(id, now)
}

// RemainingDuration returns the remaining window in seconds, assuming the
// configured average epoch duration.
func (s *Service) RemainingDuration(id uint64, now uint32) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.RemainingDuration(id, now)
}

// GetStake returns the participant's stake, zero-valued if none exists.
func (s *Service) GetStake(id uint64, participant farm.Account) position.Stake {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positions.Get(id, participant)
}

// Participants lists the event's participants in first-deposit order.
func (s *Service) Participants(id uint64) []farm.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positions.Participants(id)
}

// CountParticipants returns the length of the participant list.
func (s *Service) CountParticipants(id uint64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positions.Count(id)
}

// ProjectedShare returns the reward the participant would receive if the
// event closed with its current totals.
func (s *Service) ProjectedShare(id uint64, participant farm.Account) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rewards.ShareOf(id, participant)
}

// GlobalRate estimates the event-wide annualized yield in percent-hundredths.
// Returns reward.RateUndefined while nothing is staked.
func (s *Service) GlobalRate(id uint64) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rewards.GlobalRate(id)
}

// PersonalRate estimates the participant's annualized yield.
// Returns reward.RateUndefined while the participant has nothing staked.
func (s *Service) PersonalRate(id uint64, participant farm.Account) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rewards.PersonalRate(id, participant)
}

// EligibilityTags returns the tag set consulted by gated deposits.
func (s *Service) EligibilityTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.tags...)
}

//
// Setters - state change
//

// CreateEvent validates the configuration, pulls the funding amount from
// the caller into custody and registers a new event.
func (s *Service) CreateEvent(caller farm.Account, cfg event.Config, now uint32) (*event.Event, error) {
	logger.Debug("creating event", "caller", caller,
		"start", cfg.StartEpoch, "end", cfg.EndEpoch, "pool", cfg.RewardPool)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.auth.Require(caller, farm.CapabilityManager); err != nil {
		logger.Info("create event failed", "caller", caller, "error", err)
		return nil, err
	}
	if err := s.events.Validate(cfg); err != nil {
		logger.Info("create event failed", "caller", caller, "error", err)
		return nil, err
	}
	if err := s.book.Pull(caller, cfg.Funding); err != nil {
		err = reject.Wrap(err, reject.CodeLedgerTransferFailed, "pull funding")
		logger.Info("create event failed", "caller", caller, "error", err)
		return nil, err
	}

	// Infallible from here: funding is already in custody.
	ev, err := s.events.Create(cfg)
	if err != nil {
		// Validate ran above, creation cannot fail.
		return nil, err
	}

	// Indexers reconstruct the event configuration from this record alone.
	s.record(&auditdb.Record{
		Kind:        auditdb.KindCreation,
		EventID:     ev.ID,
		Participant: caller,
		Amount:      cfg.Funding,
		Reward:      cfg.RewardPool,
		Epoch:       now,
		Detail: fmt.Sprintf("start=%d,end=%d,cap=%d,gated=%t",
			cfg.StartEpoch, cfg.EndEpoch, cfg.MaxPerWallet, cfg.RequiresEligibility),
	})
	metricEventsCreated().Add(1)

	logger.Info("created event", "id", ev.ID, "pool", ev.RewardPool, "cap", ev.MaxPerWallet)
	return ev, nil
}

// Deposit stakes amount into an open event on behalf of the caller.
func (s *Service) Deposit(caller farm.Account, id uint64, amount uint64, now uint32) error {
	logger.Debug("depositing", "participant", caller, "event", id, "amount", amount, "epoch", now)

	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.events.Get(id)
	if err != nil {
		logger.Info("deposit failed", "event", id, "error", err)
		return err
	}
	if err := s.checkDeposit(ev, caller, amount, now); err != nil {
		logger.Info("deposit failed", "event", id, "participant", caller, "error", err)
		metricDeposits().AddWithLabel(1, map[string]string{"outcome": "rejected"})
		return err
	}
	if err := s.book.Pull(caller, amount); err != nil {
		err = reject.Wrap(err, reject.CodeLedgerTransferFailed, "pull deposit")
		logger.Info("deposit failed", "event", id, "participant", caller, "error", err)
		metricDeposits().AddWithLabel(1, map[string]string{"outcome": "rejected"})
		return err
	}

	// Infallible from here: the principal is already in custody.
	units := reward.UnitsForDeposit(amount, now, ev.EndEpoch)
	s.positions.RecordDeposit(id, caller, amount, units, now)
	if err := s.events.AddStake(id, amount, units); err != nil {
		return err
	}

	s.record(&auditdb.Record{
		Kind:        auditdb.KindDeposit,
		EventID:     id,
		Participant: caller,
		Amount:      amount,
		Units:       units,
		Epoch:       now,
	})
	metricDeposits().AddWithLabel(1, map[string]string{"outcome": "accepted"})
	metricStakedTotal().Add(gaugeDelta(amount))

	logger.Info("deposited", "event", id, "participant", caller, "amount", amount, "units", units)
	return nil
}

// checkDeposit validates every deposit precondition without mutating state.
func (s *Service) checkDeposit(ev *event.Event, caller farm.Account, amount uint64, now uint32) error {
	if !ev.Open(now) {
		return reject.Newf(reject.CodeNotOpen, "event %d not open at epoch %d", ev.ID, now)
	}
	if amount == 0 {
		return reject.New(reject.CodeInvalidConfiguration, "deposit amount must be nonzero")
	}
	if ev.RequiresEligibility {
		ok, err := s.gate.Check(caller, s.tags)
		if err != nil {
			return reject.Wrap(err, reject.CodeIneligibleParticipant, "eligibility check")
		}
		if !ok {
			return reject.Newf(reject.CodeIneligibleParticipant, "%s holds none of the required tags", caller)
		}
	}
	// Staked never exceeds the cap, so the subtraction cannot underflow.
	staked := s.positions.Get(ev.ID, caller).Amount
	if amount > ev.MaxPerWallet-staked {
		return reject.Newf(reject.CodeWalletCapExceeded, "cap %d, staked %d, deposit %d",
			ev.MaxPerWallet, staked, amount)
	}
	return nil
}

// Claim pays out the caller's principal plus reward share for a closed
// event and clears the stake. Repeat calls fail with NothingToClaim.
func (s *Service) Claim(caller farm.Account, id uint64, now uint32) (*ClaimResult, error) {
	logger.Debug("claiming", "participant", caller, "event", id, "epoch", now)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.events.RefreshStatus(id, now); err != nil {
		logger.Info("claim failed", "event", id, "error", err)
		return nil, err
	}
	ev, err := s.events.Get(id)
	if err != nil {
		return nil, err
	}
	if !ev.Ended(now) {
		err := reject.Newf(reject.CodeNotClosed, "event %d still open at epoch %d", id, now)
		logger.Info("claim failed", "event", id, "participant", caller, "error", err)
		metricClaims().AddWithLabel(1, map[string]string{"outcome": "rejected"})
		return nil, err
	}
	stake := s.positions.Get(id, caller)
	if stake.IsEmpty() {
		err := reject.Newf(reject.CodeNothingToClaim, "%s has no stake in event %d", caller, id)
		logger.Info("claim failed", "event", id, "participant", caller, "error", err)
		metricClaims().AddWithLabel(1, map[string]string{"outcome": "rejected"})
		return nil, err
	}

	// Reward is computed from the stake before it is cleared.
	share := reward.Share(stake.Units, ev.RewardPool, ev.TotalUnits)
	payout := satAdd(stake.Amount, share)

	if err := s.book.Push(caller, payout); err != nil {
		err = reject.Wrap(err, reject.CodeLedgerTransferFailed, "push payout")
		logger.Info("claim failed", "event", id, "participant", caller, "error", err)
		metricClaims().AddWithLabel(1, map[string]string{"outcome": "rejected"})
		return nil, err
	}

	// Infallible from here: the payout has left custody.
	s.positions.Clear(id, caller)
	if err := s.events.RemoveStake(id, stake.Amount); err != nil {
		return nil, err
	}

	s.record(&auditdb.Record{
		Kind:        auditdb.KindClaim,
		EventID:     id,
		Participant: caller,
		Amount:      stake.Amount,
		Units:       stake.Units,
		Reward:      share,
		Epoch:       now,
	})
	metricClaims().AddWithLabel(1, map[string]string{"outcome": "accepted"})
	metricStakedTotal().Add(-gaugeDelta(stake.Amount))

	logger.Info("claimed", "event", id, "participant", caller,
		"amount", stake.Amount, "reward", share)
	return &ClaimResult{Amount: stake.Amount, Reward: share, Payout: payout}, nil
}

// RefreshEventStatus flips the event's cached active flag if its window
// has passed. Idempotent; reports whether the flag flipped on this call.
func (s *Service) RefreshEventStatus(id uint64, now uint32) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.RefreshStatus(id, now)
}

// SetEligibilityTags replaces the tag set consulted by gated deposits.
func (s *Service) SetEligibilityTags(caller farm.Account, tags []string, now uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.auth.Require(caller, farm.CapabilityManager); err != nil {
		logger.Info("set eligibility tags failed", "caller", caller, "error", err)
		return err
	}
	s.tags = append([]string(nil), tags...)

	s.record(&auditdb.Record{
		Kind:        auditdb.KindTagUpdate,
		Participant: caller,
		Epoch:       now,
		Detail:      formatTags(tags),
	})
	logger.Info("updated eligibility tags", "caller", caller, "tags", formatTags(tags))
	return nil
}

// GrantManager grants the manager capability. Admin only.
func (s *Service) GrantManager(caller, account farm.Account) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth.Grant(caller, account)
}

// RevokeManager revokes the manager capability. Admin only.
func (s *Service) RevokeManager(caller, account farm.Account) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth.Revoke(caller, account)
}

// Sweep pushes the entire custodied balance to the given destination,
// bypassing per-event accounting. Admin only; logged as a distinct record.
func (s *Service) Sweep(caller, to farm.Account, now uint32) (uint64, error) {
	logger.Debug("sweeping custody", "caller", caller, "to", to)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.auth.Require(caller, farm.CapabilityAdmin); err != nil {
		logger.Info("sweep failed", "caller", caller, "error", err)
		return 0, err
	}
	total := s.book.Custody()
	if total > 0 {
		if err := s.book.Push(to, total); err != nil {
			err = reject.Wrap(err, reject.CodeLedgerTransferFailed, "push sweep")
			logger.Info("sweep failed", "caller", caller, "error", err)
			return 0, err
		}
	}

	s.record(&auditdb.Record{
		Kind:        auditdb.KindSweep,
		Participant: caller,
		Amount:      total,
		Epoch:       now,
		Detail:      "to=" + string(to),
	})
	metricSweeps().Add(1)

	logger.Warn("swept custody", "caller", caller, "to", to, "amount", total)
	return total, nil
}

func (s *Service) record(r *auditdb.Record) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Save(r); err != nil {
		logger.Warn("failed to save audit record", "kind", r.Kind, "error", err)
	}
}

func satAdd(a, b uint64) uint64 {
	sum, overflow := gmath.SafeAdd(a, b)
	if overflow {
		return math.MaxUint64
	}
	return sum
}

// gaugeDelta clamps an amount into the gauge's int64 range.
func gaugeDelta(amount uint64) int64 {
	if amount > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(amount)
}

func formatTags(tags []string) string {
	out := ""
	for i, tag := range tags {
		if i > 0 {
			out += ","
		}
		out += tag
	}
	return out
}
