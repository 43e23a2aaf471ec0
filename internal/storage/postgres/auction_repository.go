package postgres

import (
	"context"
	"fmt"

	"github.com/edd34/nft-marketplace/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuctionRepository struct {
	pool *pgxpool.Pool
}

func NewAuctionRepository(pool *pgxpool.Pool) *AuctionRepository {
	return &AuctionRepository{pool: pool}
}

func (r *AuctionRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *AuctionRepository) NextAuctionID(ctx context.Context) (int64, error) {
	return nextCounter(ctx, db(ctx, r.pool), "auctions")
}

func (r *AuctionRepository) CreateAuction(ctx context.Context, auction domain.Auction) error {
	const stmt = `
INSERT INTO auctions (id, asset_id, seller, title, description, starting_price, deadline, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := db(ctx, r.pool).Exec(ctx, stmt,
		auction.ID,
		auction.AssetID,
		auction.Seller,
		auction.Title,
		auction.Description,
		auction.StartingPrice,
		auction.Deadline,
		string(auction.Status),
		auction.CreatedAt,
	)
	if err != nil {
		// The partial unique index on active auctions backstops the
		// already-listed precondition under concurrent creates.
		if isUniqueViolation(err) {
			return domain.ErrAssetAlreadyListed
		}
		return fmt.Errorf("create auction: %w", err)
	}
	return nil
}

const auctionColumns = `id, asset_id, seller, title, description, starting_price, deadline, status, COALESCE(winner, ''), COALESCE(final_price, 0), created_at`

func scanAuction(row pgx.Row) (domain.Auction, error) {
	var a domain.Auction
	var status string
	err := row.Scan(
		&a.ID,
		&a.AssetID,
		&a.Seller,
		&a.Title,
		&a.Description,
		&a.StartingPrice,
		&a.Deadline,
		&status,
		&a.Winner,
		&a.FinalPrice,
		&a.CreatedAt,
	)
	if err != nil {
		return domain.Auction{}, err
	}
	a.Status = domain.AuctionStatus(status)
	return a, nil
}

func (r *AuctionRepository) getAuction(ctx context.Context, id int64, forUpdate bool) (domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	auction, err := scanAuction(db(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Auction{}, domain.ErrUnknownAuction
		}
		return domain.Auction{}, fmt.Errorf("get auction: %w", err)
	}
	return auction, nil
}

func (r *AuctionRepository) GetAuction(ctx context.Context, id int64) (domain.Auction, error) {
	return r.getAuction(ctx, id, false)
}

func (r *AuctionRepository) GetAuctionForUpdate(ctx context.Context, id int64) (domain.Auction, error) {
	return r.getAuction(ctx, id, true)
}

func (r *AuctionRepository) SetAuctionResolved(ctx context.Context, id int64, status domain.AuctionStatus, winner string, finalPrice int64) error {
	const stmt = `
UPDATE auctions
SET status = $2,
    winner = NULLIF($3, ''),
    final_price = NULLIF($4, 0)
WHERE id = $1 AND status = $5`
	tag, err := db(ctx, r.pool).Exec(ctx, stmt, id, string(status), winner, finalPrice, string(domain.AuctionStatusActive))
	if err != nil {
		return fmt.Errorf("resolve auction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAuctionNotActive
	}
	return nil
}

func (r *AuctionRepository) HasActiveAuctionForAsset(ctx context.Context, assetID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM auctions WHERE asset_id = $1 AND status = $2)`
	var listed bool
	err := db(ctx, r.pool).QueryRow(ctx, query, assetID, string(domain.AuctionStatusActive)).Scan(&listed)
	if err != nil {
		return false, fmt.Errorf("check active auction: %w", err)
	}
	return listed, nil
}

func (r *AuctionRepository) ListAuctionsBySeller(ctx context.Context, seller string) ([]domain.Auction, error) {
	query := `SELECT ` + auctionColumns + ` FROM auctions WHERE seller = $1 ORDER BY id ASC`
	rows, err := db(ctx, r.pool).Query(ctx, query, seller)
	if err != nil {
		return nil, fmt.Errorf("list auctions by seller: %w", err)
	}
	defer rows.Close()

	var auctions []domain.Auction
	for rows.Next() {
		auction, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan auction: %w", err)
		}
		auctions = append(auctions, auction)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate auctions: %w", rows.Err())
	}
	return auctions, nil
}

func (r *AuctionRepository) CountAuctions(ctx context.Context) (int64, error) {
	var count int64
	if err := db(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM auctions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count auctions: %w", err)
	}
	return count, nil
}

func (r *AuctionRepository) AppendBid(ctx context.Context, bid domain.Bid) error {
	const stmt = `
INSERT INTO bids (auction_id, idx, bidder, amount, placed_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := db(ctx, r.pool).Exec(ctx, stmt, bid.AuctionID, bid.Index, bid.Bidder, bid.Amount, bid.PlacedAt)
	if err != nil {
		return fmt.Errorf("append bid: %w", err)
	}
	return nil
}

func (r *AuctionRepository) ListBids(ctx context.Context, auctionID int64) ([]domain.Bid, error) {
	const query = `
SELECT auction_id, idx, bidder, amount, placed_at
FROM bids
WHERE auction_id = $1
ORDER BY idx ASC`
	rows, err := db(ctx, r.pool).Query(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("list bids: %w", err)
	}
	defer rows.Close()

	var bids []domain.Bid
	for rows.Next() {
		var b domain.Bid
		if err := rows.Scan(&b.AuctionID, &b.Index, &b.Bidder, &b.Amount, &b.PlacedAt); err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate bids: %w", rows.Err())
	}
	return bids, nil
}

func (r *AuctionRepository) CountBids(ctx context.Context, auctionID int64) (int64, error) {
	var count int64
	if err := db(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM bids WHERE auction_id = $1`, auctionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count bids: %w", err)
	}
	return count, nil
}

func (r *AuctionRepository) GetAssetForUpdate(ctx context.Context, id int64) (domain.Asset, error) {
	return getAsset(ctx, db(ctx, r.pool), id, true)
}

func (r *AuctionRepository) UpdateAssetOwner(ctx context.Context, id int64, owner string) error {
	return updateAssetOwner(ctx, db(ctx, r.pool), id, owner)
}

func (r *AuctionRepository) DebitBalance(ctx context.Context, address string, amount int64) error {
	return debitBalance(ctx, db(ctx, r.pool), address, amount)
}

func (r *AuctionRepository) CreditBalance(ctx context.Context, address string, amount int64) error {
	return creditBalance(ctx, db(ctx, r.pool), address, amount)
}

func (r *AuctionRepository) AppendEvent(ctx context.Context, e domain.Event) (domain.Event, error) {
	return appendEvent(ctx, db(ctx, r.pool), e)
}
