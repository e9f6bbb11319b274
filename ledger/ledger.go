// Copyright (c) 2025 The EpochFarm developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger defines the value-transfer collaborator the staking engine
// settles against. The engine only ever pulls funds into custody and pushes
// funds out of it, trusting the ledger's atomicity.
package ledger

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/epochfarm/farm"
)

// ErrInsufficientBalance is returned when a debit exceeds the available
// balance, on either a holder account or the custody pool.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Ledger is the external value store.
type Ledger interface {
	// Pull debits the holder and credits engine custody.
	Pull(from farm.Account, amount uint64) error
	// Push debits engine custody and credits the holder.
	Push(to farm.Account, amount uint64) error
	// Custody returns the engine's custodied balance.
	Custody() uint64
}

// Book is an in-memory Ledger keeping holder balances and the custody pool.
// The solo daemon and tests run against it; production deployments wire the
// real asset store.
type Book struct {
	mu       sync.Mutex
	balances map[farm.Account]uint64
	custody  uint64
}

func NewBook() *Book {
	return &Book{
		balances: make(map[farm.Account]uint64),
	}
}

// Mint credits a holder out of thin air. Genesis only.
func (b *Book) Mint(account farm.Account, amount uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[account] += amount
}

// BalanceOf returns the holder's balance.
func (b *Book) BalanceOf(account farm.Account) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[account]
}

func (b *Book) Pull(from farm.Account, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	bal := b.balances[from]
	if bal < amount {
		return errors.Wrapf(ErrInsufficientBalance, "pull %d from %s (balance %d)", amount, from, bal)
	}
	b.balances[from] = bal - amount
	b.custody += amount
	return nil
}

func (b *Book) Push(to farm.Account, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.custody < amount {
		return errors.Wrapf(ErrInsufficientBalance, "push %d to %s (custody %d)", amount, to, b.custody)
	}
	b.custody -= amount
	b.balances[to] += amount
	return nil
}

func (b *Book) Custody() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.custody
}
