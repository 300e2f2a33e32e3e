package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TransferCompleted is emitted after a transfer has committed and both
// account locks have been released.
type TransferCompleted struct {
	TransactionID string          `json:"transaction_id"`
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// Publisher pushes completed-transfer events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event TransferCompleted) error
}
