// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/epochfarm/farm/metrics"

var (
	metricEventsCreated = metrics.LazyLoadCounter("staking_events_created_count")
	metricDeposits      = metrics.LazyLoadCounterVec("staking_deposit_count", []string{"outcome"})
	metricClaims        = metrics.LazyLoadCounterVec("staking_claim_count", []string{"outcome"})
	metricStakedTotal   = metrics.LazyLoadGauge("staking_staked_total")
	metricSweeps        = metrics.LazyLoadCounter("staking_sweep_count")
)
