package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type WalletRepository struct {
	pool *pgxpool.Pool
}

func NewWalletRepository(pool *pgxpool.Pool) *WalletRepository {
	return &WalletRepository{pool: pool}
}

func (r *WalletRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *WalletRepository) CreditBalance(ctx context.Context, address string, amount int64) error {
	return creditBalance(ctx, db(ctx, r.pool), address, amount)
}

func (r *WalletRepository) GetBalance(ctx context.Context, address string) (int64, error) {
	const query = `SELECT balance FROM accounts WHERE address = $1`
	var balance int64
	err := db(ctx, r.pool).QueryRow(ctx, query, address).Scan(&balance)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}
