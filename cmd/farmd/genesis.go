// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/epochfarm/farm"
	"github.com/epochfarm/farm/staking/event"
)

// Genesis declares the initial state of a fresh engine: who administers
// it, which funding rule applies, the initial ledger balances and the
// credential attestations known to the eligibility oracle.
type Genesis struct {
	Admin         farm.Account              `yaml:"admin"`
	FundingPolicy string                    `yaml:"fundingPolicy"`
	Tags          []string                  `yaml:"tags"`
	Balances      map[farm.Account]uint64   `yaml:"balances"`
	Attestations  map[farm.Account][]string `yaml:"attestations"`
	Managers      []farm.Account            `yaml:"managers"`
}

func loadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithMessage(err, "read genesis")
	}
	var gene Genesis
	if err := yaml.Unmarshal(data, &gene); err != nil {
		return nil, errors.WithMessage(err, "parse genesis")
	}
	if gene.Admin.IsZero() {
		return nil, errors.New("genesis: admin required")
	}
	if _, err := gene.fundingPolicy(); err != nil {
		return nil, err
	}
	return &gene, nil
}

func (g *Genesis) fundingPolicy() (event.FundingPolicy, error) {
	switch g.FundingPolicy {
	case "", "covers-pool":
		return event.FundingCoversPool, nil
	case "non-zero":
		return event.FundingNonZero, nil
	default:
		return 0, errors.Errorf("genesis: unknown funding policy %q", g.FundingPolicy)
	}
}
