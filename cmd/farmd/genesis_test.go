// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/staking/event"
)

func writeGenesis(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadGenesis(t *testing.T) {
	path := writeGenesis(t, `
admin: root
fundingPolicy: non-zero
tags:
  - kyc
balances:
  root: 10000
  alice: 500
attestations:
  alice:
    - kyc
managers:
  - alice
`)
	gene, err := loadGenesis(path)
	require.NoError(t, err)

	assert.Equal(t, farm.Account("root"), gene.Admin)
	assert.Equal(t, []string{"kyc"}, gene.Tags)
	assert.Equal(t, uint64(500), gene.Balances["alice"])
	assert.Equal(t, []string{"kyc"}, gene.Attestations["alice"])
	assert.Equal(t, []farm.Account{"alice"}, gene.Managers)

	policy, err := gene.fundingPolicy()
	require.NoError(t, err)
	assert.Equal(t, event.FundingNonZero, policy)
}

func TestLoadGenesisDefaults(t *testing.T) {
	path := writeGenesis(t, "admin: root\n")
	gene, err := loadGenesis(path)
	require.NoError(t, err)

	policy, err := gene.fundingPolicy()
	require.NoError(t, err)
	assert.Equal(t, event.FundingCoversPool, policy)
}

func TestLoadGenesisRejections(t *testing.T) {
	_, err := loadGenesis(writeGenesis(t, "fundingPolicy: covers-pool\n"))
	assert.ErrorContains(t, err, "admin required")

	_, err = loadGenesis(writeGenesis(t, "admin: root\nfundingPolicy: maybe\n"))
	assert.ErrorContains(t, err, "unknown funding policy")

	_, err = loadGenesis(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLogLevelMapping(t *testing.T) {
	assert.Equal(t, logLevel(0), logLevel(-1))
	assert.NotEqual(t, logLevel(2), logLevel(3))
	assert.Equal(t, logLevel(4), logLevel(9))
}
