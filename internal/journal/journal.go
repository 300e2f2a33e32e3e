package journal

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one side of a committed transfer: a negative amount for the debit
// leg, a positive amount for the credit leg. The journal is an audit trail;
// the in-memory ledger stays authoritative for balances.
type Entry struct {
	ID            string
	TransactionID string
	AccountID     string
	Amount        decimal.Decimal
	CreatedAt     time.Time
}

// Journal records committed transfer legs.
type Journal interface {
	Record(ctx context.Context, entries ...Entry) error
	ByAccount(ctx context.Context, accountID string) ([]Entry, error)
}
