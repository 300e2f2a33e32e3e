package transfers

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/atlas-pay/atlas_ledger/internal/events"
	"github.com/atlas-pay/atlas_ledger/internal/journal"
	"github.com/atlas-pay/atlas_ledger/internal/ledger"
	"github.com/atlas-pay/atlas_ledger/internal/notification"
)

type testNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (n *testNotifier) Send(_ context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return nil
}

func (n *testNotifier) countFor(accountID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, msg := range n.messages {
		if msg.AccountID == accountID {
			count++
		}
	}
	return count
}

type failingNotifier struct{}

func (failingNotifier) Send(context.Context, notification.Message) error {
	return errors.New("smtp is down")
}

type testPublisher struct {
	mu     sync.Mutex
	events []events.TransferCompleted
}

func (p *testPublisher) Publish(_ context.Context, event events.TransferCompleted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func setupService(t *testing.T) (*Service, *ledger.Ledger, *testNotifier, journal.Journal, *testPublisher) {
	t.Helper()
	led := ledger.NewLedger()
	if _, err := led.CreateAccount("A", dec("1000")); err != nil {
		t.Fatalf("create A: %v", err)
	}
	if _, err := led.CreateAccount("B", dec("1000")); err != nil {
		t.Fatalf("create B: %v", err)
	}

	notifier := &testNotifier{}
	jrnl := journal.NewMemory()
	publisher := &testPublisher{}
	svc := NewService(led, notifier, jrnl, publisher, nil)
	return svc, led, notifier, jrnl, publisher
}

func TestValidateReportsFirstViolation(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	// A missing account and a zero amount at once: existence is checked
	// first, so that is the reported failure.
	err := svc.Validate(Request{FromAccountID: "nope", ToAccountID: "B", Amount: dec("0")})
	if !errors.Is(err, ErrNonExistentAccount) {
		t.Fatalf("expected non-existent account, got %v", err)
	}

	// Same account and zero amount: same-account wins over amount.
	err = svc.Validate(Request{FromAccountID: "A", ToAccountID: "A", Amount: dec("0")})
	if !errors.Is(err, ErrSameAccount) {
		t.Fatalf("expected same account, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	svc, _, _, _, _ := setupService(t)

	cases := []struct {
		name string
		req  Request
		want error
	}{
		{"missing from", Request{FromAccountID: "X", ToAccountID: "B", Amount: dec("1")}, ErrNonExistentAccount},
		{"missing to", Request{FromAccountID: "A", ToAccountID: "X", Amount: dec("1")}, ErrNonExistentAccount},
		{"same account", Request{FromAccountID: "A", ToAccountID: "A", Amount: dec("1")}, ErrSameAccount},
		{"zero amount", Request{FromAccountID: "A", ToAccountID: "B", Amount: dec("0")}, ledger.ErrInvalidAmount},
		{"negative amount", Request{FromAccountID: "A", ToAccountID: "B", Amount: dec("-1")}, ledger.ErrInvalidAmount},
		{"valid", Request{FromAccountID: "A", ToAccountID: "B", Amount: dec("1")}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Validate(tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestTransferSuccess(t *testing.T) {
	svc, led, notifier, jrnl, publisher := setupService(t)
	ctx := context.Background()

	res, err := svc.Transfer(ctx, Request{FromAccountID: "A", ToAccountID: "B", Amount: dec("300")})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if !res.FromBalance.Equal(dec("700")) || !res.ToBalance.Equal(dec("1300")) {
		t.Fatalf("unexpected result balances: %+v", res)
	}
	if res.TransactionID == "" {
		t.Fatalf("expected a transaction id")
	}

	a, _ := led.Get("A")
	b, _ := led.Get("B")
	if !a.Balance().Equal(dec("700")) || !b.Balance().Equal(dec("1300")) {
		t.Fatalf("balances not committed: A=%s B=%s", a.Balance(), b.Balance())
	}

	if got := notifier.countFor("A"); got != 1 {
		t.Fatalf("expected sender notified exactly once, got %d", got)
	}
	if got := notifier.countFor("B"); got != 1 {
		t.Fatalf("expected receiver notified exactly once, got %d", got)
	}

	entries, err := jrnl.ByAccount(ctx, "A")
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if len(entries) != 1 || !entries[0].Amount.Equal(dec("-300")) {
		t.Fatalf("expected one debit leg of -300, got %+v", entries)
	}

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	if len(publisher.events) != 1 || publisher.events[0].TransactionID != res.TransactionID {
		t.Fatalf("expected one completed event for %s, got %+v", res.TransactionID, publisher.events)
	}
}

func TestTransferOverdraft(t *testing.T) {
	svc, led, notifier, jrnl, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Transfer(ctx, Request{FromAccountID: "A", ToAccountID: "B", Amount: dec("1500")})
	if !errors.Is(err, ErrOverdraft) {
		t.Fatalf("expected overdraft, got %v", err)
	}
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("overdraft should unwrap to insufficient funds")
	}

	a, _ := led.Get("A")
	b, _ := led.Get("B")
	if !a.Balance().Equal(dec("1000")) || !b.Balance().Equal(dec("1000")) {
		t.Fatalf("failed transfer must not move money: A=%s B=%s", a.Balance(), b.Balance())
	}

	if got := notifier.countFor("A") + notifier.countFor("B"); got != 0 {
		t.Fatalf("no notification may be sent for a failed transfer, got %d", got)
	}
	entries, _ := jrnl.ByAccount(ctx, "A")
	if len(entries) != 0 {
		t.Fatalf("no journal entries expected, got %+v", entries)
	}
}

func TestTransferNotifierFailureDoesNotFailTransfer(t *testing.T) {
	led := ledger.NewLedger()
	led.CreateAccount("A", dec("1000"))
	led.CreateAccount("B", dec("1000"))
	svc := NewService(led, failingNotifier{}, nil, nil, nil)

	res, err := svc.Transfer(context.Background(), Request{FromAccountID: "A", ToAccountID: "B", Amount: dec("10")})
	if err != nil {
		t.Fatalf("notifier failure must not surface, got %v", err)
	}
	if !res.FromBalance.Equal(dec("990")) {
		t.Fatalf("transfer did not commit: %+v", res)
	}
}

func TestExecuteHonorsCancellationBeforeLocking(t *testing.T) {
	svc, led, notifier, _, _ := setupService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Execute(ctx, Request{FromAccountID: "A", ToAccountID: "B", Amount: dec("10")}); err == nil {
		t.Fatalf("expected cancellation error")
	}

	a, _ := led.Get("A")
	if !a.Balance().Equal(dec("1000")) {
		t.Fatalf("cancelled execute must not move money")
	}
	if got := notifier.countFor("A") + notifier.countFor("B"); got != 0 {
		t.Fatalf("cancelled execute must not notify, got %d", got)
	}
}

func TestConcurrentAlternatingTransfers(t *testing.T) {
	svc, led, notifier, _, _ := setupService(t)
	ctx := context.Background()
	amount := dec("20")

	const transfers = 99
	var aToB, bToA int
	var wg sync.WaitGroup
	for i := 1; i <= transfers; i++ {
		from, to := "A", "B"
		if i%2 != 0 {
			from, to = "B", "A"
		}
		if from == "A" {
			aToB++
		} else {
			bToA++
		}
		wg.Add(1)
		go func(from, to string) {
			defer wg.Done()
			if _, err := svc.Transfer(ctx, Request{FromAccountID: from, ToAccountID: to, Amount: amount}); err != nil {
				t.Errorf("transfer %s->%s: %v", from, to, err)
			}
		}(from, to)
	}
	wg.Wait()

	net := amount.Mul(decimal.NewFromInt(int64(bToA - aToB)))
	wantA := dec("1000").Add(net)
	wantB := dec("1000").Sub(net)

	a, _ := led.Get("A")
	b, _ := led.Get("B")
	if !a.Balance().Equal(wantA) || !b.Balance().Equal(wantB) {
		t.Fatalf("expected A=%s B=%s, got A=%s B=%s", wantA, wantB, a.Balance(), b.Balance())
	}

	// One message per side per committed transfer.
	if got := notifier.countFor("A") + notifier.countFor("B"); got != 2*transfers {
		t.Fatalf("expected %d notifications, got %d", 2*transfers, got)
	}
}
