// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/auditdb"
	"github.com/epochfarm/farm/ledger"
	"github.com/epochfarm/farm/staking"
	"github.com/epochfarm/farm/staking/eligibility"
	"github.com/epochfarm/farm/staking/event"
	"github.com/epochfarm/farm/staking/reject"
)

const (
	root  = farm.Account("root")
	alice = farm.Account("alice")
	bob   = farm.Account("bob")
)

type fixture struct {
	svc    *staking.Service
	book   *ledger.Book
	oracle *eligibility.MemoryOracle
	audit  *auditdb.AuditDB
}

func newFixture(t *testing.T) *fixture {
	audit, err := auditdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { audit.Close() })

	book := ledger.NewBook()
	book.Mint(root, 10_000)
	book.Mint(alice, 500)
	book.Mint(bob, 500)

	oracle := eligibility.NewMemoryOracle()
	svc := staking.New(book, oracle, audit, staking.Options{
		Admin:         root,
		FundingPolicy: event.FundingCoversPool,
	})
	return &fixture{svc: svc, book: book, oracle: oracle, audit: audit}
}

func (f *fixture) createEvent(t *testing.T, cfg event.Config) *event.Event {
	ev, err := f.svc.CreateEvent(root, cfg, cfg.StartEpoch)
	require.NoError(t, err)
	return ev
}

func baseConfig() event.Config {
	return event.Config{
		StartEpoch:   100,
		EndEpoch:     200,
		RewardPool:   1000,
		Funding:      1000,
		MaxPerWallet: 500,
	}
}

func TestDepositAndClaimScenario(t *testing.T) {
	f := newFixture(t)
	ev := f.createEvent(t, baseConfig())

	require.NoError(t, f.svc.Deposit(alice, ev.ID, 100, 100))
	require.NoError(t, f.svc.Deposit(bob, ev.ID, 100, 150))

	assert.Equal(t, uint64(10_000), f.svc.GetStake(ev.ID, alice).Units)
	assert.Equal(t, uint64(5_000), f.svc.GetStake(ev.ID, bob).Units)

	got, err := f.svc.GetEvent(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), got.TotalStaked)
	assert.Equal(t, uint64(15_000), got.TotalUnits)

	res, err := f.svc.Claim(alice, ev.ID, 201)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), res.Amount)
	assert.Equal(t, uint64(666), res.Reward)
	assert.Equal(t, uint64(766), res.Payout)

	res, err = f.svc.Claim(bob, ev.ID, 201)
	require.NoError(t, err)
	assert.Equal(t, uint64(433), res.Payout)

	// 500 - 100 deposited + payout.
	assert.Equal(t, uint64(1166), f.book.BalanceOf(alice))
	assert.Equal(t, uint64(833), f.book.BalanceOf(bob))

	// Truncation leaves 1 indivisible reward unit in custody.
	assert.Equal(t, uint64(1), f.book.Custody())

	got, err = f.svc.GetEvent(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got.TotalStaked)
	assert.False(t, got.Active)
}

func TestDepositWindow(t *testing.T) {
	f := newFixture(t)
	ev := f.createEvent(t, baseConfig())

	err := f.svc.Deposit(alice, ev.ID, 10, 99)
	assert.True(t, reject.Is(err, reject.CodeNotOpen))

	assert.NoError(t, f.svc.Deposit(alice, ev.ID, 10, 100))
	assert.NoError(t, f.svc.Deposit(alice, ev.ID, 10, 200))

	err = f.svc.Deposit(alice, ev.ID, 10, 201)
	assert.True(t, reject.Is(err, reject.CodeNotOpen))
}

func TestDepositZeroAmount(t *testing.T) {
	f := newFixture(t)
	ev := f.createEvent(t, baseConfig())

	err := f.svc.Deposit(alice, ev.ID, 0, 150)
	assert.True(t, reject.Is(err, reject.CodeInvalidConfiguration))
}

func TestDepositUnknownEvent(t *testing.T) {
	f := newFixture(t)

	err := f.svc.Deposit(alice, 42, 10, 150)
	assert.True(t, reject.Is(err, reject.CodeNotFound))
}

func TestWalletCapRejectionLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	ev := f.createEvent(t, baseConfig())

	require.NoError(t, f.svc.Deposit(alice, ev.ID, 450, 100))

	err := f.svc.Deposit(alice, ev.ID, 51, 150)
	require.True(t, reject.Is(err, reject.CodeWalletCapExceeded))

	assert.Equal(t, uint64(450), f.svc.GetStake(ev.ID, alice).Amount)
	assert.Equal(t, uint64(50), f.book.BalanceOf(alice))

	got, err := f.svc.GetEvent(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(450), got.TotalStaked)
	assert.Equal(t, uint64(45_000), got.TotalUnits)

	// Topping up to exactly the cap is still allowed.
	assert.NoError(t, f.svc.Deposit(alice, ev.ID, 50, 150))
}

func TestDepositInsufficientBalance(t *testing.T) {
	f := newFixture(t)

	cfg := baseConfig()
	cfg.MaxPerWallet = 10_000
	ev := f.createEvent(t, cfg)

	err := f.svc.Deposit(alice, ev.ID, 501, 150)
	require.True(t, reject.Is(err, reject.CodeLedgerTransferFailed))

	assert.True(t, f.svc.GetStake(ev.ID, alice).IsEmpty())
	got, err := f.svc.GetEvent(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got.TotalStaked)
}

func TestEligibilityGatedDeposit(t *testing.T) {
	f := newFixture(t)

	cfg := baseConfig()
	cfg.RequiresEligibility = true
	ev := f.createEvent(t, cfg)

	require.NoError(t, f.svc.SetEligibilityTags(root, []string{"kyc", "vip"}, 100))

	err := f.svc.Deposit(alice, ev.ID, 10, 150)
	assert.True(t, reject.Is(err, reject.CodeIneligibleParticipant))

	f.oracle.Attest(alice, "vip")
	assert.NoError(t, f.svc.Deposit(alice, ev.ID, 10, 150))

	// An empty tag set admits everyone.
	require.NoError(t, f.svc.SetEligibilityTags(root, nil, 150))
	assert.NoError(t, f.svc.Deposit(bob, ev.ID, 10, 150))
}

func TestClaimExactlyOnce(t *testing.T) {
	f := newFixture(t)
	ev := f.createEvent(t, baseConfig())

	require.NoError(t, f.svc.Deposit(alice, ev.ID, 100, 100))

	_, err := f.svc.Claim(alice, ev.ID, 201)
	require.NoError(t, err)

	_, err = f.svc.Claim(alice, ev.ID, 201)
	assert.True(t, reject.Is(err, reject.CodeNothingToClaim))
}

func TestClaimBeforeClose(t *testing.T) {
	f := newFixture(t)
	ev := f.createEvent(t, baseConfig())

	require.NoError(t, f.svc.Deposit(alice, ev.ID, 100, 100))

	_, err := f.svc.Claim(alice, ev.ID, 200)
	assert.True(t, reject.Is(err, reject.CodeNotClosed))

	active, err := f.svc.IsEventActive(ev.ID)
	require.NoError(t, err)
	assert.True(t, active)
}

func TestClaimWithoutStake(t *testing.T) {
	f := newFixture(t)
	ev := f.createEvent(t, baseConfig())

	_, err := f.svc.Claim(bob, ev.ID, 201)
	assert.True(t, reject.Is(err, reject.CodeNothingToClaim))
}

func TestCreateEventRequiresManager(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateEvent(alice, baseConfig(), 100)
	assert.True(t, reject.Is(err, reject.CodeInsufficientAuthorization))

	ok, err := f.svc.GrantManager(root, alice)
	require.NoError(t, err)
	assert.True(t, ok)

	f.book.Mint(alice, 1000)
	_, err = f.svc.CreateEvent(alice, baseConfig(), 100)
	assert.NoError(t, err)

	ok, err = f.svc.RevokeManager(root, alice)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.CreateEvent(alice, baseConfig(), 100)
	assert.True(t, reject.Is(err, reject.CodeInsufficientAuthorization))
}

func TestCreateEventFundingPull(t *testing.T) {
	f := newFixture(t)

	cfg := baseConfig()
	cfg.RewardPool = 100_000
	cfg.Funding = 100_000

	_, err := f.svc.CreateEvent(root, cfg, 100)
	require.True(t, reject.Is(err, reject.CodeLedgerTransferFailed))
	assert.Empty(t, f.svc.ListEvents())
	assert.Equal(t, uint64(0), f.book.Custody())
}

func TestTotalStakedInvariant(t *testing.T) {
	f := newFixture(t)
	ev := f.createEvent(t, baseConfig())

	require.NoError(t, f.svc.Deposit(alice, ev.ID, 120, 110))
	require.NoError(t, f.svc.Deposit(bob, ev.ID, 80, 120))
	require.NoError(t, f.svc.Deposit(alice, ev.ID, 30, 160))

	check := func() {
		got, err := f.svc.GetEvent(ev.ID)
		require.NoError(t, err)
		var sum uint64
		for _, p := range f.svc.Participants(ev.ID) {
			sum += f.svc.GetStake(ev.ID, p).Amount
		}
		assert.Equal(t, got.TotalStaked, sum)
	}
	check()

	_, err := f.svc.Claim(alice, ev.ID, 201)
	require.NoError(t, err)
	check()

	_, err = f.svc.Claim(bob, ev.ID, 201)
	require.NoError(t, err)
	check()
}

func TestParticipantsOrdered(t *testing.T) {
	f := newFixture(t)
	ev := f.createEvent(t, baseConfig())

	require.NoError(t, f.svc.Deposit(bob, ev.ID, 10, 100))
	require.NoError(t, f.svc.Deposit(alice, ev.ID, 10, 110))
	require.NoError(t, f.svc.Deposit(bob, ev.ID, 10, 120))

	assert.Equal(t, []farm.Account{bob, alice}, f.svc.Participants(ev.ID))
	assert.Equal(t, 2, f.svc.CountParticipants(ev.ID))
}

func TestSweep(t *testing.T) {
	f := newFixture(t)
	ev := f.createEvent(t, baseConfig())
	require.NoError(t, f.svc.Deposit(alice, ev.ID, 100, 100))

	_, err := f.svc.Sweep(alice, alice, 150)
	assert.True(t, reject.Is(err, reject.CodeInsufficientAuthorization))

	treasury := farm.Account("treasury")
	swept, err := f.svc.Sweep(root, treasury, 150)
	require.NoError(t, err)
	assert.Equal(t, uint64(1100), swept)
	assert.Equal(t, uint64(1100), f.book.BalanceOf(treasury))
	assert.Equal(t, uint64(0), f.book.Custody())
}

func TestSetEligibilityTagsRequiresManager(t *testing.T) {
	f := newFixture(t)

	err := f.svc.SetEligibilityTags(alice, []string{"kyc"}, 100)
	assert.True(t, reject.Is(err, reject.CodeInsufficientAuthorization))

	require.NoError(t, f.svc.SetEligibilityTags(root, []string{"kyc"}, 100))
	assert.Equal(t, []string{"kyc"}, f.svc.EligibilityTags())
}

func TestAuditTrail(t *testing.T) {
	f := newFixture(t)
	ev := f.createEvent(t, baseConfig())

	require.NoError(t, f.svc.Deposit(alice, ev.ID, 100, 100))
	_, err := f.svc.Claim(alice, ev.ID, 201)
	require.NoError(t, err)
	_, err = f.svc.Sweep(root, root, 300)
	require.NoError(t, err)

	records, err := f.audit.FilterRecords(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, auditdb.KindCreation, records[0].Kind)
	assert.Equal(t, uint64(1000), records[0].Amount)
	assert.Equal(t, uint64(1000), records[0].Reward)
	assert.Equal(t, "start=100,end=200,cap=500,gated=false", records[0].Detail)
	assert.Equal(t, auditdb.KindDeposit, records[1].Kind)
	assert.Equal(t, auditdb.KindClaim, records[2].Kind)
	// Sole staker, so the whole pool is hers.
	assert.Equal(t, uint64(1000), records[2].Reward)
	assert.Equal(t, auditdb.KindSweep, records[3].Kind)
}

func TestRemainingDuration(t *testing.T) {
	f := newFixture(t)
	ev := f.createEvent(t, baseConfig())

	epochs, err := f.svc.RemainingEpochs(ev.ID, 150)
	require.NoError(t, err)
	assert.Equal(t, uint32(50), epochs)

	dur, err := f.svc.RemainingDuration(ev.ID, 150)
	require.NoError(t, err)
	assert.Equal(t, uint64(50)*uint64(farm.AverageEpochDuration.Get()), dur)
}
