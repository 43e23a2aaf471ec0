package app

import (
	"context"
	"testing"
	"time"

	"github.com/edd34/nft-marketplace/internal/clock"
	"github.com/edd34/nft-marketplace/internal/domain"
)

func TestWalletService_Deposit(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("credits and accumulates", func(t *testing.T) {
		repo := newFakeWalletRepo()
		svc := NewWalletService(repo, clock.NewFixed(now))

		account, err := svc.Deposit(context.Background(), DepositInput{Address: "alice", Amount: 40})
		if err != nil {
			t.Fatalf("deposit: %v", err)
		}
		if account.Balance != 40 {
			t.Fatalf("expected balance 40, got %d", account.Balance)
		}

		account, err = svc.Deposit(context.Background(), DepositInput{Address: "alice", Amount: 10})
		if err != nil {
			t.Fatalf("second deposit: %v", err)
		}
		if account.Balance != 50 {
			t.Fatalf("expected balance 50, got %d", account.Balance)
		}
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		repo := newFakeWalletRepo()
		svc := NewWalletService(repo, clock.NewFixed(now))

		if _, err := svc.Deposit(context.Background(), DepositInput{Address: "alice", Amount: 0}); err != domain.ErrInvalidAmount {
			t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
		}
		if _, err := svc.Deposit(context.Background(), DepositInput{Address: "alice", Amount: -5}); err != domain.ErrInvalidAmount {
			t.Fatalf("expected ErrInvalidAmount for negative, got %v", err)
		}
	})

	t.Run("rejects the null account", func(t *testing.T) {
		repo := newFakeWalletRepo()
		svc := NewWalletService(repo, clock.NewFixed(now))

		if _, err := svc.Deposit(context.Background(), DepositInput{Address: domain.NullAccount, Amount: 10}); err != domain.ErrInvalidAccount {
			t.Fatalf("expected ErrInvalidAccount, got %v", err)
		}
	})
}

func TestWalletService_Balance(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeWalletRepo()
	svc := NewWalletService(repo, clock.NewFixed(now))

	if _, err := svc.Deposit(context.Background(), DepositInput{Address: "alice", Amount: 25}); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	account, err := svc.Balance(context.Background(), "alice")
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if account.Balance != 25 {
		t.Fatalf("expected balance 25, got %d", account.Balance)
	}

	// Unknown accounts read as zero rather than erroring.
	account, err = svc.Balance(context.Background(), "stranger")
	if err != nil {
		t.Fatalf("balance of unknown account: %v", err)
	}
	if account.Balance != 0 {
		t.Fatalf("expected zero balance, got %d", account.Balance)
	}

	if _, err := svc.Balance(context.Background(), domain.NullAccount); err != domain.ErrInvalidAccount {
		t.Fatalf("expected ErrInvalidAccount, got %v", err)
	}
}

type fakeWalletRepo struct {
	balances map[string]int64
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{balances: make(map[string]int64)}
}

func (f *fakeWalletRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeWalletRepo) CreditBalance(_ context.Context, address string, amount int64) error {
	f.balances[address] += amount
	return nil
}

func (f *fakeWalletRepo) GetBalance(_ context.Context, address string) (int64, error) {
	return f.balances[address], nil
}
