package journal

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMemoryJournalRecordAndFilter(t *testing.T) {
	j := NewMemory()
	ctx := context.Background()
	now := time.Now().UTC()

	err := j.Record(ctx,
		Entry{ID: "tx-1-debit", TransactionID: "tx-1", AccountID: "A", Amount: decimal.NewFromInt(-30), CreatedAt: now},
		Entry{ID: "tx-1-credit", TransactionID: "tx-1", AccountID: "B", Amount: decimal.NewFromInt(30), CreatedAt: now},
	)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := j.ByAccount(ctx, "A")
	if err != nil {
		t.Fatalf("by account: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "tx-1-debit" {
		t.Fatalf("expected only the debit leg for A, got %+v", entries)
	}

	entries, err = j.ByAccount(ctx, "C")
	if err != nil {
		t.Fatalf("by account: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries for C, got %+v", entries)
	}
}
