// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/staking/reject"
)

func TestAdminCapabilities(t *testing.T) {
	r := New("root")

	assert.Equal(t, farm.Account("root"), r.Admin())
	assert.True(t, r.Has("root", farm.CapabilityAdmin))
	assert.True(t, r.Has("root", farm.CapabilityManager))
	assert.NoError(t, r.Require("root", farm.CapabilityAdmin))
}

func TestGrantRevoke(t *testing.T) {
	r := New("root")

	assert.False(t, r.Has("alice", farm.CapabilityManager))
	err := r.Require("alice", farm.CapabilityManager)
	assert.True(t, reject.Is(err, reject.CodeInsufficientAuthorization))

	granted, err := r.Grant("root", "alice")
	require.NoError(t, err)
	assert.True(t, granted)
	assert.True(t, r.Has("alice", farm.CapabilityManager))
	assert.False(t, r.Has("alice", farm.CapabilityAdmin))

	// double grant is a no-op
	granted, err = r.Grant("root", "alice")
	require.NoError(t, err)
	assert.False(t, granted)

	revoked, err := r.Revoke("root", "alice")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.False(t, r.Has("alice", farm.CapabilityManager))

	revoked, err = r.Revoke("root", "alice")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestGrantRequiresAdmin(t *testing.T) {
	r := New("root")

	_, err := r.Grant("root", "alice")
	require.NoError(t, err)

	// a manager cannot mint other managers
	_, err = r.Grant("alice", "bob")
	assert.True(t, reject.Is(err, reject.CodeInsufficientAuthorization))

	_, err = r.Revoke("alice", "alice")
	assert.True(t, reject.Is(err, reject.CodeInsufficientAuthorization))
}

func TestManagersOrdered(t *testing.T) {
	r := New("root")

	for _, a := range []farm.Account{"alice", "bob", "carol"} {
		_, err := r.Grant("root", a)
		require.NoError(t, err)
	}
	assert.Equal(t, []farm.Account{"alice", "bob", "carol"}, r.Managers())

	_, err := r.Revoke("root", "bob")
	require.NoError(t, err)
	assert.Equal(t, []farm.Account{"alice", "carol"}, r.Managers())
}

func TestGrantZeroAccount(t *testing.T) {
	r := New("root")

	granted, err := r.Grant("root", "")
	require.NoError(t, err)
	assert.False(t, granted)
}
