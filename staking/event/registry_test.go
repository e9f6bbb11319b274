// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package event

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/staking/reject"
)

func validConfig() Config {
	return Config{
		StartEpoch:   100,
		EndEpoch:     200,
		RewardPool:   1000,
		Funding:      1000,
		MaxPerWallet: 500,
	}
}

func TestValidate(t *testing.T) {
	r := NewRegistry(FundingCoversPool)

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"end before start", func(c *Config) { c.EndEpoch = c.StartEpoch }, false},
		{"zero pool", func(c *Config) { c.RewardPool = 0 }, false},
		{"zero cap", func(c *Config) { c.MaxPerWallet = 0 }, false},
		{"underfunded", func(c *Config) { c.Funding = c.RewardPool - 1 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := r.Validate(cfg)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, reject.Is(err, reject.CodeInvalidConfiguration))
			}
		})
	}
}

func TestValidateFundingNonZero(t *testing.T) {
	r := NewRegistry(FundingNonZero)

	cfg := validConfig()
	cfg.Funding = 1 // below the pool, but nonzero is enough under this policy
	assert.NoError(t, r.Validate(cfg))

	cfg.Funding = 0
	assert.True(t, reject.Is(r.Validate(cfg), reject.CodeInvalidConfiguration))
}

func TestCreateAssignsMonotonicIDs(t *testing.T) {
	r := NewRegistry(FundingCoversPool)

	for want := uint64(1); want <= 5; want++ {
		ev, err := r.Create(validConfig())
		require.NoError(t, err)
		assert.Equal(t, want, ev.ID)
		assert.True(t, ev.Active)
		assert.Zero(t, ev.TotalStaked)
		assert.Zero(t, ev.TotalUnits)
	}
	assert.Equal(t, 5, r.Count())
	assert.Len(t, r.List(), 5)
}

func TestGetUnknown(t *testing.T) {
	r := NewRegistry(FundingCoversPool)

	_, err := r.Get(42)
	assert.True(t, reject.Is(err, reject.CodeNotFound))

	_, err = r.RemainingEpochs(42, 0)
	assert.True(t, reject.Is(err, reject.CodeNotFound))
}

func TestRefreshStatus(t *testing.T) {
	r := NewRegistry(FundingCoversPool)
	ev, err := r.Create(validConfig())
	require.NoError(t, err)

	// not yet ended, still active
	flipped, err := r.RefreshStatus(ev.ID, 200)
	require.NoError(t, err)
	assert.False(t, flipped)

	active, err := r.IsActive(ev.ID)
	require.NoError(t, err)
	assert.True(t, active)

	// first epoch past the end flips it
	flipped, err = r.RefreshStatus(ev.ID, 201)
	require.NoError(t, err)
	assert.True(t, flipped)

	active, err = r.IsActive(ev.ID)
	require.NoError(t, err)
	assert.False(t, active)

	// idempotent, never flips back
	flipped, err = r.RefreshStatus(ev.ID, 150)
	require.NoError(t, err)
	assert.False(t, flipped)

	active, err = r.IsActive(ev.ID)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestRemaining(t *testing.T) {
	r := NewRegistry(FundingCoversPool)
	ev, err := r.Create(validConfig())
	require.NoError(t, err)

	remaining, err := r.RemainingEpochs(ev.ID, 150)
	require.NoError(t, err)
	assert.Equal(t, uint32(50), remaining)

	remaining, err = r.RemainingEpochs(ev.ID, 300)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	duration, err := r.RemainingDuration(ev.ID, 150)
	require.NoError(t, err)
	assert.Equal(t, uint64(50)*uint64(farm.AverageEpochDuration.Get()), duration)
}

func TestStakeTotals(t *testing.T) {
	r := NewRegistry(FundingCoversPool)
	ev, err := r.Create(validConfig())
	require.NoError(t, err)

	require.NoError(t, r.AddStake(ev.ID, 100, 10000))
	require.NoError(t, r.AddStake(ev.ID, 100, 5000))

	got, err := r.Get(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), got.TotalStaked)
	assert.Equal(t, uint64(15000), got.TotalUnits)

	// claims remove principal but keep the unit denominator
	require.NoError(t, r.RemoveStake(ev.ID, 100))
	got, err = r.Get(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), got.TotalStaked)
	assert.Equal(t, uint64(15000), got.TotalUnits)
}

func TestStakeTotalsSaturate(t *testing.T) {
	r := NewRegistry(FundingCoversPool)
	ev, err := r.Create(validConfig())
	require.NoError(t, err)

	require.NoError(t, r.AddStake(ev.ID, 1, math.MaxUint64))
	require.NoError(t, r.AddStake(ev.ID, 1, math.MaxUint64))

	got, err := r.Get(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), got.TotalUnits)
}

func TestSnapshotIsolation(t *testing.T) {
	r := NewRegistry(FundingCoversPool)
	ev, err := r.Create(validConfig())
	require.NoError(t, err)

	ev.TotalStaked = 999 // mutating the snapshot must not leak into the registry

	got, err := r.Get(ev.ID)
	require.NoError(t, err)
	assert.Zero(t, got.TotalStaked)
}

func TestEventWindow(t *testing.T) {
	ev := &Event{StartEpoch: 100, EndEpoch: 200}

	assert.False(t, ev.Open(99))
	assert.True(t, ev.Open(100))
	assert.True(t, ev.Open(200))
	assert.False(t, ev.Open(201))

	assert.False(t, ev.Ended(200))
	assert.True(t, ev.Ended(201))
}
