package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
)

var (
	// ErrDuplicateAccount occurs when creating an account whose id is already taken.
	ErrDuplicateAccount = errors.New("account id already exists")

	// ErrAccountNotFound occurs when an account id is absent from the ledger.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientFunds occurs when a debit would drive a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount occurs when a transfer amount is zero or negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrNegativeBalance occurs when an account would be created with a negative balance.
	ErrNegativeBalance = errors.New("initial balance must not be negative")
)

// Posting reports the committed balances on both sides of a transfer.
type Posting struct {
	FromBalance decimal.Decimal
	ToBalance   decimal.Decimal
}

// Ledger is the authoritative in-memory store of accounts. The map itself is
// guarded by an RWMutex for structural changes (create, lookup, reset);
// balances are guarded by each account's own mutex.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{accounts: make(map[string]*Account)}
}

// CreateAccount inserts a new account with the given starting balance.
// Duplicate ids are rejected, never overwritten.
func (l *Ledger) CreateAccount(id string, initial decimal.Decimal) (*Account, error) {
	if initial.IsNegative() {
		return nil, ErrNegativeBalance
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.accounts[id]; exists {
		return nil, ErrDuplicateAccount
	}
	account := newAccount(id, initial)
	l.accounts[id] = account
	return account, nil
}

// Get returns the live account handle for id. Balance reads through the
// handle always reflect the latest committed value.
func (l *Ledger) Get(id string) (*Account, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	account, ok := l.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// Adjust adds delta (signed) to the account's balance under that account's
// lock. A result below zero rejects the whole adjustment and leaves the
// account unchanged. This and Transfer are the only paths that move money.
func (l *Ledger) Adjust(id string, delta decimal.Decimal) (decimal.Decimal, error) {
	account, err := l.Get(id)
	if err != nil {
		return decimal.Zero, err
	}

	account.mu.Lock()
	defer account.mu.Unlock()
	return account.adjust(delta)
}

// Transfer atomically debits fromID and credits toID by amount. Both account
// locks are taken in the global id order and released in reverse, so
// concurrent transfers over overlapping pairs cannot deadlock. An overdraft
// aborts with no partial change. The context is only consulted before the
// first lock is taken; once locking starts the transfer runs to completion.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) (Posting, error) {
	if !amount.IsPositive() {
		return Posting{}, ErrInvalidAmount
	}

	from, err := l.Get(fromID)
	if err != nil {
		return Posting{}, err
	}
	to, err := l.Get(toID)
	if err != nil {
		return Posting{}, err
	}

	if err := ctx.Err(); err != nil {
		return Posting{}, err
	}

	first, second := lockOrder(from, to)
	first.mu.Lock()
	second.mu.Lock()
	defer first.mu.Unlock()
	defer second.mu.Unlock()

	fromBalance, err := from.adjust(amount.Neg())
	if err != nil {
		return Posting{}, err
	}
	toBalance, err := to.adjust(amount)
	if err != nil {
		// Credit of a positive amount cannot go negative; reaching here is a bug.
		panic("ledger: credit rejected after debit applied")
	}

	return Posting{FromBalance: fromBalance, ToBalance: toBalance}, nil
}

// Clear removes every account. It exists as a reset hook for tests and must
// not run while any transfer is in flight; that combination is undefined and
// callers serialize it externally.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts = make(map[string]*Account)
}
