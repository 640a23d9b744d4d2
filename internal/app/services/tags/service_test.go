package tags

import (
	"context"
	"testing"

	"github.com/feinhq/fein/internal/app/domain/account"
	"github.com/feinhq/fein/internal/app/domain/transaction"
	"github.com/feinhq/fein/internal/app/domain/user"
	"github.com/feinhq/fein/internal/app/storage/memory"
	apperrors "github.com/feinhq/fein/internal/errors"
)

func seed(t *testing.T, store *memory.Store) (user.User, user.User, transaction.Transaction) {
	t.Helper()
	ctx := context.Background()

	alice, err := store.CreateUser(ctx, user.User{UserName: "alice", Email: "alice@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := store.CreateUser(ctx, user.User{UserName: "bob", Email: "bob@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	acct, err := store.CreateAccount(ctx, account.Account{UserID: alice.ID, AccountName: "checking"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	txn, _, err := store.CreateTransaction(ctx, transaction.Transaction{Name: "groceries", Amount: 80, NetAmount: -80}, []transaction.Breakdown{
		{AccountID: acct.ID, SpentAmount: 80},
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return alice, bob, txn
}

func TestCreateAndList(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, "  food  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "food" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}

	if _, err := svc.Create(ctx, "   "); apperrors.GetServiceError(err) == nil {
		t.Fatalf("expected validation error, got %v", err)
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(all))
	}
}

func TestAssignAndListForTransaction(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()

	alice, bob, txn := seed(t, store)

	food, err := svc.Create(ctx, "food")
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}

	if _, err := svc.Assign(ctx, alice.ID, txn.ID, food.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	attached, err := svc.ListForTransaction(ctx, alice.ID, txn.ID)
	if err != nil {
		t.Fatalf("list for transaction: %v", err)
	}
	if len(attached) != 1 || attached[0].ID != food.ID {
		t.Fatalf("unexpected tags: %+v", attached)
	}

	// Other users cannot see or tag the transaction.
	if _, err := svc.Assign(ctx, bob.ID, txn.ID, food.ID); apperrors.GetServiceError(err) == nil {
		t.Fatalf("expected bob's assign to fail, got %v", err)
	}
	if _, err := svc.ListForTransaction(ctx, bob.ID, txn.ID); apperrors.GetServiceError(err) == nil {
		t.Fatalf("expected bob's listing to fail, got %v", err)
	}
}

func TestAssignUnknownTargets(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	ctx := context.Background()

	alice, _, txn := seed(t, store)

	if _, err := svc.Assign(ctx, alice.ID, "no-such-transaction", "whatever"); apperrors.GetServiceError(err) == nil {
		t.Fatalf("expected unknown transaction to fail, got %v", err)
	}
	if _, err := svc.Assign(ctx, alice.ID, txn.ID, "no-such-tag"); apperrors.GetServiceError(err) == nil {
		t.Fatalf("expected unknown tag to fail, got %v", err)
	}
}
