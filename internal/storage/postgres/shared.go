package postgres

import (
	"context"
	"fmt"

	"github.com/edd34/nft-marketplace/internal/domain"
	"github.com/jackc/pgx/v5"
)

// Helpers shared by the registry, auction and wallet repositories. The
// auction repository reuses the asset and ledger statements inside its own
// transactions so finalize settles custody and funds in one commit.

func nextCounter(ctx context.Context, q querier, name string) (int64, error) {
	const stmt = `UPDATE counters SET next = next + 1 WHERE name = $1 RETURNING next - 1`
	var id int64
	if err := q.QueryRow(ctx, stmt, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return id, nil
}

func getAsset(ctx context.Context, q querier, id int64, forUpdate bool) (domain.Asset, error) {
	query := `SELECT id, owner, metadata_uri, minted_at FROM assets WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var a domain.Asset
	err := q.QueryRow(ctx, query, id).Scan(&a.ID, &a.Owner, &a.MetadataURI, &a.MintedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Asset{}, domain.ErrUnknownAsset
		}
		return domain.Asset{}, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}

func updateAssetOwner(ctx context.Context, q querier, id int64, owner string) error {
	const stmt = `
UPDATE assets
SET owner = $2, acquired_seq = nextval('asset_touch_seq')
WHERE id = $1`
	tag, err := q.Exec(ctx, stmt, id, owner)
	if err != nil {
		return fmt.Errorf("update asset owner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUnknownAsset
	}
	return nil
}

func creditBalance(ctx context.Context, q querier, address string, amount int64) error {
	const stmt = `
INSERT INTO accounts (address, balance)
VALUES ($1, $2)
ON CONFLICT (address) DO UPDATE SET balance = accounts.balance + EXCLUDED.balance`
	if _, err := q.Exec(ctx, stmt, address, amount); err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	return nil
}

func debitBalance(ctx context.Context, q querier, address string, amount int64) error {
	const stmt = `UPDATE accounts SET balance = balance - $2 WHERE address = $1`
	tag, err := q.Exec(ctx, stmt, address, amount)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientFunds
		}
		return fmt.Errorf("debit balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientFunds
	}
	return nil
}

func appendEvent(ctx context.Context, q querier, e domain.Event) (domain.Event, error) {
	const stmt = `
INSERT INTO events (type, asset_id, auction_id, account_from, account_to, amount, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING seq`
	err := q.QueryRow(ctx, stmt,
		string(e.Type),
		e.AssetID,
		e.AuctionID,
		e.From,
		e.To,
		e.Amount,
		e.OccurredAt,
	).Scan(&e.Seq)
	if err != nil {
		return domain.Event{}, fmt.Errorf("append event: %w", err)
	}
	return e, nil
}
