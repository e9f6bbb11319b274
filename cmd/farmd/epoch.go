// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"sync/atomic"
	"time"
)

// epochTicker advances an epoch counter on a fixed wall-clock cadence. The
// engine itself never reads the clock; this is the sole time source of the
// daemon.
type epochTicker struct {
	current  atomic.Uint32
	interval time.Duration
}

func newEpochTicker(start uint32, interval time.Duration) *epochTicker {
	t := &epochTicker{interval: interval}
	t.current.Store(start)
	return t
}

func (t *epochTicker) Now() uint32 {
	return t.current.Load()
}

// Run ticks until the context is cancelled.
func (t *epochTicker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.current.Add(1)
		}
	}
}
