package postgres

import (
	"context"
	"fmt"

	"github.com/edd34/nft-marketplace/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistryRepository struct {
	pool *pgxpool.Pool
}

func NewRegistryRepository(pool *pgxpool.Pool) *RegistryRepository {
	return &RegistryRepository{pool: pool}
}

func (r *RegistryRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *RegistryRepository) NextAssetID(ctx context.Context) (int64, error) {
	return nextCounter(ctx, db(ctx, r.pool), "assets")
}

func (r *RegistryRepository) CreateAsset(ctx context.Context, asset domain.Asset) error {
	const stmt = `
INSERT INTO assets (id, owner, metadata_uri, minted_at)
VALUES ($1, $2, $3, $4)`
	_, err := db(ctx, r.pool).Exec(ctx, stmt, asset.ID, asset.Owner, asset.MetadataURI, asset.MintedAt)
	if err != nil {
		return fmt.Errorf("create asset: %w", err)
	}
	return nil
}

func (r *RegistryRepository) GetAsset(ctx context.Context, id int64) (domain.Asset, error) {
	return getAsset(ctx, db(ctx, r.pool), id, false)
}

func (r *RegistryRepository) GetAssetForUpdate(ctx context.Context, id int64) (domain.Asset, error) {
	return getAsset(ctx, db(ctx, r.pool), id, true)
}

func (r *RegistryRepository) UpdateAssetOwner(ctx context.Context, id int64, owner string) error {
	return updateAssetOwner(ctx, db(ctx, r.pool), id, owner)
}

func (r *RegistryRepository) ListAssetsByOwner(ctx context.Context, owner string) ([]domain.Asset, error) {
	const query = `
SELECT id, owner, metadata_uri, minted_at
FROM assets
WHERE owner = $1
ORDER BY acquired_seq ASC`
	rows, err := db(ctx, r.pool).Query(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("list assets by owner: %w", err)
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.Owner, &a.MetadataURI, &a.MintedAt); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate assets: %w", rows.Err())
	}
	return assets, nil
}

func (r *RegistryRepository) CountAssets(ctx context.Context) (int64, error) {
	var count int64
	if err := db(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM assets`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count assets: %w", err)
	}
	return count, nil
}

func (r *RegistryRepository) AppendEvent(ctx context.Context, e domain.Event) (domain.Event, error) {
	return appendEvent(ctx, db(ctx, r.pool), e)
}
