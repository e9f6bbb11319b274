// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate(t *testing.T) {
	oracle := NewMemoryOracle()
	oracle.Attest("alice", "kyc")
	oracle.Attest("alice", "vip")
	oracle.Attest("bob", "vip")

	gate := New(oracle)

	ok, err := gate.Check("alice", []string{"kyc"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.Check("bob", []string{"kyc"})
	require.NoError(t, err)
	assert.False(t, ok)

	// one matching tag out of many is enough
	ok, err = gate.Check("bob", []string{"kyc", "vip"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.Check("stranger", []string{"kyc"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGateEmptyTagSet(t *testing.T) {
	gate := New(NewMemoryOracle())

	ok, err := gate.Check("anyone", nil)
	require.NoError(t, err)
	assert.True(t, ok, "an empty tag set admits everyone")
}
