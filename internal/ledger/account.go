package ledger

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Account is a single monetary account held by the ledger. The id never
// changes after creation and the balance is an exact decimal that only moves
// while the account's own mutex is held.
type Account struct {
	id string

	mu      sync.Mutex
	balance decimal.Decimal
}

func newAccount(id string, balance decimal.Decimal) *Account {
	return &Account{id: id, balance: balance}
}

// ID returns the account identifier.
func (a *Account) ID() string {
	return a.id
}

// Balance returns the latest committed balance.
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// adjust applies delta to the balance, rejecting any result below zero.
// The caller must hold a.mu.
func (a *Account) adjust(delta decimal.Decimal) (decimal.Decimal, error) {
	next := a.balance.Add(delta)
	if next.IsNegative() {
		return a.balance, ErrInsufficientFunds
	}
	a.balance = next
	return a.balance, nil
}

// lockOrder returns the two accounts in global lock-acquisition order,
// byte-wise by id. Every code path that holds both locks at once must go
// through this ordering; it is what keeps concurrent transfers over
// overlapping pairs from deadlocking.
func lockOrder(a, b *Account) (first, second *Account) {
	if a.id == b.id {
		panic("ledger: pairwise lock requested for a single account")
	}
	if a.id < b.id {
		return a, b
	}
	return b, a
}
