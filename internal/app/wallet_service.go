package app

import (
	"context"

	"github.com/edd34/nft-marketplace/internal/clock"
	"github.com/edd34/nft-marketplace/internal/domain"
)

type WalletRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreditBalance(ctx context.Context, address string, amount int64) error
	GetBalance(ctx context.Context, address string) (int64, error)
}

// WalletService is the funds ledger's public face: accounts are funded by
// deposits and spent down by escrowed bids. Escrow and settlement moves are
// performed by the auction engine inside its own transactions.
type WalletService struct {
	repo  WalletRepository
	clock clock.Clock
}

func NewWalletService(repo WalletRepository, clk clock.Clock) *WalletService {
	return &WalletService{
		repo:  repo,
		clock: clk,
	}
}

type DepositInput struct {
	Address string
	Amount  int64
}

// Deposit credits an account with base currency units, creating the account
// row when it does not exist yet.
func (s *WalletService) Deposit(ctx context.Context, in DepositInput) (domain.Account, error) {
	if in.Address == domain.NullAccount {
		return domain.Account{}, domain.ErrInvalidAccount
	}
	if in.Amount <= 0 {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	var result domain.Account
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.CreditBalance(txCtx, in.Address, in.Amount); err != nil {
			return err
		}
		balance, err := s.repo.GetBalance(txCtx, in.Address)
		if err != nil {
			return err
		}
		result = domain.Account{Address: in.Address, Balance: balance}
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	return result, nil
}

// Balance returns the available (non-escrowed) balance; unknown accounts
// have a zero balance.
func (s *WalletService) Balance(ctx context.Context, address string) (domain.Account, error) {
	if address == domain.NullAccount {
		return domain.Account{}, domain.ErrInvalidAccount
	}
	balance, err := s.repo.GetBalance(ctx, address)
	if err != nil {
		return domain.Account{}, err
	}
	return domain.Account{Address: address, Balance: balance}, nil
}
