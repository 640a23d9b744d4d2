package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/feinhq/fein/internal/app/domain/account"
	"github.com/feinhq/fein/internal/app/domain/tag"
	"github.com/feinhq/fein/internal/app/domain/transaction"
	"github.com/feinhq/fein/internal/app/domain/user"
	"github.com/feinhq/fein/internal/app/storage"
)

func TestDuplicateEmailRejected(t *testing.T) {
	store := New()
	ctx := context.Background()

	if _, err := store.CreateUser(ctx, user.User{UserName: "a", Email: "A@fein.com"}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err := store.CreateUser(ctx, user.User{UserName: "b", Email: "a@fein.com"})
	if !errors.Is(err, storage.ErrDuplicateEmail) {
		t.Fatalf("expected duplicate email error, got %v", err)
	}

	u, err := store.GetUserByEmail(ctx, " A@fein.com ")
	if err != nil {
		t.Fatalf("lookup by email: %v", err)
	}
	if u.UserName != "a" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestTransactionVisibilityAndCascade(t *testing.T) {
	store := New()
	ctx := context.Background()

	alice, _ := store.CreateUser(ctx, user.User{UserName: "alice", Email: "alice@x"})
	bob, _ := store.CreateUser(ctx, user.User{UserName: "bob", Email: "bob@x"})
	acctA, _ := store.CreateAccount(ctx, account.Account{UserID: alice.ID, AccountName: "wallet"})

	txn, bds, err := store.CreateTransaction(ctx,
		transaction.Transaction{Name: "groceries", Amount: 40, NetAmount: -40},
		[]transaction.Breakdown{{AccountID: acctA.ID, SpentAmount: 40}},
	)
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if len(bds) != 1 || bds[0].TransactionID != txn.ID {
		t.Fatalf("breakdowns not linked: %v", bds)
	}

	if _, err := store.GetTransactionForUser(ctx, txn.ID, bob.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("bob should not see alice's transaction, got %v", err)
	}
	if _, err := store.GetTransactionForUser(ctx, txn.ID, alice.ID); err != nil {
		t.Fatalf("alice should see her transaction: %v", err)
	}

	tg, _ := store.CreateTag(ctx, tag.Tag{Name: "food"})
	if _, err := store.CreateAssignment(ctx, tag.Assignment{TransactionID: txn.ID, TagID: tg.ID}); err != nil {
		t.Fatalf("assign tag: %v", err)
	}

	if err := store.DeleteTransaction(ctx, txn.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if bds, _ := store.ListBreakdowns(ctx, txn.ID); len(bds) != 0 {
		t.Fatalf("breakdowns not cascaded: %v", bds)
	}
	if tags, _ := store.ListTagsForTransaction(ctx, txn.ID); len(tags) != 0 {
		t.Fatalf("assignments not cascaded: %v", tags)
	}
}

func TestSummarizeAccounts(t *testing.T) {
	store := New()
	ctx := context.Background()

	alice, _ := store.CreateUser(ctx, user.User{UserName: "alice", Email: "alice@x"})
	checking, _ := store.CreateAccount(ctx, account.Account{UserID: alice.ID, AccountName: "checking"})
	savings, _ := store.CreateAccount(ctx, account.Account{UserID: alice.ID, AccountName: "savings"})

	_, _, _ = store.CreateTransaction(ctx, transaction.Transaction{Name: "salary"}, []transaction.Breakdown{
		{AccountID: checking.ID, EarnedAmount: 1000},
	})
	_, _, _ = store.CreateTransaction(ctx, transaction.Transaction{Name: "rent"}, []transaction.Breakdown{
		{AccountID: checking.ID, SpentAmount: 600},
		{AccountID: savings.ID, EarnedAmount: 100},
	})

	summaries, err := store.SummarizeAccounts(ctx, alice.ID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].AccountName != "checking" || summaries[0].Earned != 1000 || summaries[0].Spent != 600 || summaries[0].Net != 400 {
		t.Fatalf("checking summary wrong: %+v", summaries[0])
	}
	if summaries[1].Net != 100 {
		t.Fatalf("savings summary wrong: %+v", summaries[1])
	}
}
