package reports

import (
	"context"
	"testing"

	"github.com/feinhq/fein/internal/app/domain/account"
	"github.com/feinhq/fein/internal/app/domain/transaction"
	"github.com/feinhq/fein/internal/app/domain/user"
	"github.com/feinhq/fein/internal/app/storage/memory"
)

func seed(t *testing.T, store *memory.Store) (user.User, account.Account, account.Account) {
	t.Helper()
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, user.User{UserName: "alice", Email: "alice@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	checking, err := store.CreateAccount(ctx, account.Account{UserID: alice.ID, AccountName: "checking"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	savings, err := store.CreateAccount(ctx, account.Account{UserID: alice.ID, AccountName: "savings"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	_, _, err = store.CreateTransaction(ctx, transaction.Transaction{Name: "salary", Amount: 1000, NetAmount: 1000}, []transaction.Breakdown{
		{AccountID: checking.ID, EarnedAmount: 1000},
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	_, _, err = store.CreateTransaction(ctx, transaction.Transaction{Name: "rent", Amount: 600, NetAmount: -600}, []transaction.Breakdown{
		{AccountID: checking.ID, SpentAmount: 400},
		{AccountID: savings.ID, SpentAmount: 200},
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return alice, checking, savings
}

func TestSummaries(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	alice, checking, savings := seed(t, store)

	summaries, err := svc.Summaries(ctx, alice.ID)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}

	byID := map[string]float64{}
	for _, s := range summaries {
		byID[s.AccountID] = s.Net
	}
	if byID[checking.ID] != 600 {
		t.Fatalf("checking net = %v, want 600", byID[checking.ID])
	}
	if byID[savings.ID] != -200 {
		t.Fatalf("savings net = %v, want -200", byID[savings.ID])
	}

	all, err := svc.Summaries(ctx, "")
	if err != nil {
		t.Fatalf("summaries for all accounts: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 summaries for the empty scope, got %d", len(all))
	}
}

func TestOverviewComputedOnDemandAndCached(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	ctx := context.Background()

	seed(t, store)

	overview, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.GeneratedAt.IsZero() {
		t.Fatal("expected generated_at to be set")
	}
	if overview.TotalEarned != 1000 || overview.TotalSpent != 600 || overview.TotalNet != 400 {
		t.Fatalf("unexpected totals: %+v", overview)
	}

	cached, err := svc.Overview(ctx)
	if err != nil {
		t.Fatalf("cached overview: %v", err)
	}
	if !cached.GeneratedAt.Equal(overview.GeneratedAt) {
		t.Fatal("expected second call to return the cached overview")
	}

	refreshed, err := svc.Refresh(ctx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.GeneratedAt.Before(overview.GeneratedAt) {
		t.Fatal("refresh must advance generated_at")
	}
}

func TestRefresherRejectsBadSchedule(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)

	if _, err := NewRefresher(svc, "not a schedule", nil); err == nil {
		t.Fatal("expected bad schedule to be rejected")
	}
	if _, err := NewRefresher(svc, "@every 1m", nil); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}
}

func TestRefresherLifecycle(t *testing.T) {
	store := memory.New()
	svc := New(store, nil)
	seed(t, store)

	r, err := NewRefresher(svc, "@every 1h", nil)
	if err != nil {
		t.Fatalf("new refresher: %v", err)
	}

	ctx := context.Background()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Idempotent start.
	if err := r.Start(ctx); err != nil {
		t.Fatalf("second start: %v", err)
	}
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := r.Stop(ctx); err != nil {
		t.Fatalf("second stop: %v", err)
	}
}
