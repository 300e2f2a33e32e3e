package transfers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atlas-pay/atlas_ledger/internal/events"
	"github.com/atlas-pay/atlas_ledger/internal/journal"
	"github.com/atlas-pay/atlas_ledger/internal/ledger"
	"github.com/atlas-pay/atlas_ledger/internal/notification"
)

var (
	// ErrNonExistentAccount indicates the request names an account the ledger does not hold.
	ErrNonExistentAccount = fmt.Errorf("transfer references a non-existent account: %w", ledger.ErrAccountNotFound)

	// ErrSameAccount indicates source and destination are the same account.
	ErrSameAccount = errors.New("cannot transfer to the same account")

	// ErrOverdraft indicates the debit would drive the source balance below zero.
	ErrOverdraft = fmt.Errorf("transfer would overdraw the source account: %w", ledger.ErrInsufficientFunds)
)

// Request captures a single transfer intent. It is built per call and
// discarded once the coordinator is done with it.
type Request struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
}

// Result describes a committed transfer.
type Result struct {
	TransactionID string
	FromBalance   decimal.Decimal
	ToBalance     decimal.Decimal
	CompletedAt   time.Time
}

// Service coordinates transfers between two ledger accounts. It holds no
// per-transfer state: validation and execution operate transiently on the
// two accounts named by the request.
type Service struct {
	ledger    *ledger.Ledger
	notifier  notification.Notifier
	journal   journal.Journal
	publisher events.Publisher
	logger    *slog.Logger
}

// NewService constructs a transfer coordinator. Notifier, journal and
// publisher may each be nil; they are post-commit side effects only.
func NewService(led *ledger.Ledger, notifier notification.Notifier, jrnl journal.Journal, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{ledger: led, notifier: notifier, journal: jrnl, publisher: publisher, logger: logger}
}

// Validate checks the request against the ledger. The checks run in a fixed
// order and the first violation wins: account existence, then distinct
// accounts, then a positive amount.
func (s *Service) Validate(req Request) error {
	if _, err := s.ledger.Get(req.FromAccountID); err != nil {
		return ErrNonExistentAccount
	}
	if _, err := s.ledger.Get(req.ToAccountID); err != nil {
		return ErrNonExistentAccount
	}
	if req.FromAccountID == req.ToAccountID {
		return ErrSameAccount
	}
	if !req.Amount.IsPositive() {
		return ledger.ErrInvalidAmount
	}
	return nil
}

// Execute applies an already-validated request. The two-sided mutation is
// atomic under the ledger's ordered pairwise locking; everything that can
// fail slowly (journal, notifications, events) happens strictly after both
// locks are released and never rolls the transfer back. Cancellation is
// honored only before locking starts.
func (s *Service) Execute(ctx context.Context, req Request) (Result, error) {
	posting, err := s.ledger.Transfer(ctx, req.FromAccountID, req.ToAccountID, req.Amount)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientFunds) {
			return Result{}, ErrOverdraft
		}
		return Result{}, err
	}

	res := Result{
		TransactionID: uuid.New().String(),
		FromBalance:   posting.FromBalance,
		ToBalance:     posting.ToBalance,
		CompletedAt:   time.Now().UTC(),
	}

	s.record(ctx, req, res)
	s.notify(ctx, req)
	s.publish(ctx, req, res)

	return res, nil
}

// Transfer validates and executes in one call.
func (s *Service) Transfer(ctx context.Context, req Request) (Result, error) {
	if err := s.Validate(req); err != nil {
		return Result{}, err
	}
	return s.Execute(ctx, req)
}

func (s *Service) record(ctx context.Context, req Request, res Result) {
	if s.journal == nil {
		return
	}
	err := s.journal.Record(ctx,
		journal.Entry{
			ID:            res.TransactionID + "-debit",
			TransactionID: res.TransactionID,
			AccountID:     req.FromAccountID,
			Amount:        req.Amount.Neg(),
			CreatedAt:     res.CompletedAt,
		},
		journal.Entry{
			ID:            res.TransactionID + "-credit",
			TransactionID: res.TransactionID,
			AccountID:     req.ToAccountID,
			Amount:        req.Amount,
			CreatedAt:     res.CompletedAt,
		},
	)
	if err != nil && s.logger != nil {
		s.logger.Warn("journal record failed", "transaction_id", res.TransactionID, "error", err)
	}
}

func (s *Service) notify(ctx context.Context, req Request) {
	if s.notifier == nil {
		return
	}
	messages := []notification.Message{
		{
			Kind:      notification.KindTransferSent,
			AccountID: req.FromAccountID,
			Body:      fmt.Sprintf("Transferred %s to account %s", req.Amount, req.ToAccountID),
		},
		{
			Kind:      notification.KindTransferReceived,
			AccountID: req.ToAccountID,
			Body:      fmt.Sprintf("Received %s from account %s", req.Amount, req.FromAccountID),
		},
	}
	for _, msg := range messages {
		if err := s.notifier.Send(ctx, msg); err != nil && s.logger != nil {
			s.logger.Warn("notification failed", "kind", msg.Kind, "account_id", msg.AccountID, "error", err)
		}
	}
}

func (s *Service) publish(ctx context.Context, req Request, res Result) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, events.TransferCompleted{
		TransactionID: res.TransactionID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		OccurredAt:    res.CompletedAt,
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("publish transfer completed failed", "transaction_id", res.TransactionID, "error", err)
	}
}
