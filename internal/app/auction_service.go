package app

import (
	"context"

	"github.com/edd34/nft-marketplace/internal/clock"
	"github.com/edd34/nft-marketplace/internal/domain"
)

type AuctionRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	NextAuctionID(ctx context.Context) (int64, error)
	CreateAuction(ctx context.Context, auction domain.Auction) error
	GetAuction(ctx context.Context, id int64) (domain.Auction, error)
	GetAuctionForUpdate(ctx context.Context, id int64) (domain.Auction, error)
	SetAuctionResolved(ctx context.Context, id int64, status domain.AuctionStatus, winner string, finalPrice int64) error
	HasActiveAuctionForAsset(ctx context.Context, assetID int64) (bool, error)
	ListAuctionsBySeller(ctx context.Context, seller string) ([]domain.Auction, error)
	CountAuctions(ctx context.Context) (int64, error)

	AppendBid(ctx context.Context, bid domain.Bid) error
	ListBids(ctx context.Context, auctionID int64) ([]domain.Bid, error)
	CountBids(ctx context.Context, auctionID int64) (int64, error)

	// Registry and ledger mutations ride in the same transaction as the
	// auction mutation so finalize is all-or-nothing.
	GetAssetForUpdate(ctx context.Context, id int64) (domain.Asset, error)
	UpdateAssetOwner(ctx context.Context, id int64, owner string) error
	DebitBalance(ctx context.Context, address string, amount int64) error
	CreditBalance(ctx context.Context, address string, amount int64) error

	AppendEvent(ctx context.Context, e domain.Event) (domain.Event, error)
}

// DefaultCustodyAccount holds listed assets while their auction is active.
const DefaultCustodyAccount = "engine"

// AuctionService is the auction engine. Each public method runs as a single
// transaction: either every sub-step (asset moves, escrow debits, refunds,
// status change, event append) commits, or none do.
type AuctionService struct {
	repo    AuctionRepository
	clock   clock.Clock
	sink    EventSink
	custody string

	// openFinalize lets any caller finalize an expired auction instead of
	// only the seller.
	openFinalize bool
	// absoluteFirstBid requires the first bid to reach the starting price;
	// when false any positive first bid is accepted.
	absoluteFirstBid bool
}

func NewAuctionService(repo AuctionRepository, clk clock.Clock, opts ...AuctionServiceOption) *AuctionService {
	svc := &AuctionService{
		repo:             repo,
		clock:            clk,
		sink:             nopSink{},
		custody:          DefaultCustodyAccount,
		absoluteFirstBid: true,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type AuctionServiceOption func(*AuctionService)

// WithAuctionEventSink wires a live event consumer (e.g. the WebSocket feed).
func WithAuctionEventSink(sink EventSink) AuctionServiceOption {
	return func(s *AuctionService) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithCustodyAccount overrides the account that holds assets during active
// auctions.
func WithCustodyAccount(address string) AuctionServiceOption {
	return func(s *AuctionService) {
		if address != domain.NullAccount {
			s.custody = address
		}
	}
}

// WithOpenFinalize allows any account to finalize an expired auction.
func WithOpenFinalize(open bool) AuctionServiceOption {
	return func(s *AuctionService) {
		s.openFinalize = open
	}
}

// WithAbsoluteFirstBid controls whether the first bid must reach the
// starting price (true, the default) or merely be positive.
func WithAbsoluteFirstBid(absolute bool) AuctionServiceOption {
	return func(s *AuctionService) {
		s.absoluteFirstBid = absolute
	}
}

type CreateAuctionInput struct {
	AssetID       int64
	Title         string
	Description   string
	StartingPrice int64
	Deadline      int64 // epoch milliseconds, strictly after the current time
	Seller        string
}

// CreateAuction lists an asset held by Seller. The asset moves into the
// engine's custody account in the same transaction, so a listed asset can
// never be transferred or re-listed while the auction is active.
func (s *AuctionService) CreateAuction(ctx context.Context, in CreateAuctionInput) (domain.Auction, error) {
	if in.Seller == domain.NullAccount {
		return domain.Auction{}, domain.ErrNotAssetOwner
	}
	if in.StartingPrice < 0 {
		return domain.Auction{}, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	deadline := fromUnixMilli(in.Deadline)
	if !deadline.After(now) {
		return domain.Auction{}, domain.ErrInvalidDeadline
	}

	var (
		result domain.Auction
		events []domain.Event
	)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		asset, err := s.repo.GetAssetForUpdate(txCtx, in.AssetID)
		if err != nil {
			return err
		}
		if asset.Owner != in.Seller {
			return domain.ErrNotAssetOwner
		}

		listed, err := s.repo.HasActiveAuctionForAsset(txCtx, in.AssetID)
		if err != nil {
			return err
		}
		if listed {
			return domain.ErrAssetAlreadyListed
		}

		id, err := s.repo.NextAuctionID(txCtx)
		if err != nil {
			return err
		}

		auction := domain.Auction{
			ID:            id,
			AssetID:       in.AssetID,
			Seller:        in.Seller,
			Title:         in.Title,
			Description:   in.Description,
			StartingPrice: in.StartingPrice,
			Deadline:      deadline,
			Status:        domain.AuctionStatusActive,
			CreatedAt:     now,
		}
		if err := s.repo.CreateAuction(txCtx, auction); err != nil {
			return err
		}

		if err := s.repo.UpdateAssetOwner(txCtx, in.AssetID, s.custody); err != nil {
			return err
		}

		custodied, err := s.repo.AppendEvent(txCtx, domain.Event{
			Type:       domain.EventAssetTransferred,
			AssetID:    &asset.ID,
			From:       in.Seller,
			To:         s.custody,
			OccurredAt: now,
		})
		if err != nil {
			return err
		}
		created, err := s.repo.AppendEvent(txCtx, domain.Event{
			Type:       domain.EventAuctionCreated,
			AuctionID:  &auction.ID,
			AssetID:    &asset.ID,
			From:       in.Seller,
			Amount:     in.StartingPrice,
			OccurredAt: now,
		})
		if err != nil {
			return err
		}

		result = auction
		events = append(events, custodied, created)
		return nil
	})
	if err != nil {
		return domain.Auction{}, err
	}

	publishAll(s.sink, events)
	return result, nil
}

type PlaceBidInput struct {
	AuctionID int64
	Bidder    string
	Amount    int64
}

// PlaceBid escrows Amount from the bidder's balance and appends the bid.
// Bids must strictly exceed the leading bid; ties are rejected. Escrowed
// funds are held until finalization, so outbid bidders are not refunded
// early.
func (s *AuctionService) PlaceBid(ctx context.Context, in PlaceBidInput) (domain.Bid, error) {
	if in.Bidder == domain.NullAccount {
		return domain.Bid{}, domain.ErrInvalidAccount
	}
	if in.Amount <= 0 {
		return domain.Bid{}, domain.ErrBidTooLow
	}

	now := s.clock.Now()
	var (
		result domain.Bid
		events []domain.Event
	)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		auction, err := s.repo.GetAuctionForUpdate(txCtx, in.AuctionID)
		if err != nil {
			return err
		}
		if auction.Status != domain.AuctionStatusActive {
			return domain.ErrAuctionNotActive
		}
		if !now.Before(auction.Deadline) {
			return domain.ErrAuctionExpired
		}

		bids, err := s.repo.ListBids(txCtx, in.AuctionID)
		if err != nil {
			return err
		}
		if len(bids) == 0 {
			if s.absoluteFirstBid && in.Amount < auction.StartingPrice {
				return domain.ErrBidTooLow
			}
		} else if in.Amount <= bids[len(bids)-1].Amount {
			return domain.ErrBidTooLow
		}

		if err := s.repo.DebitBalance(txCtx, in.Bidder, in.Amount); err != nil {
			return err
		}

		bid := domain.Bid{
			AuctionID: in.AuctionID,
			Index:     len(bids),
			Bidder:    in.Bidder,
			Amount:    in.Amount,
			PlacedAt:  now,
		}
		if err := s.repo.AppendBid(txCtx, bid); err != nil {
			return err
		}

		accepted, err := s.repo.AppendEvent(txCtx, domain.Event{
			Type:       domain.EventBidAccepted,
			AuctionID:  &auction.ID,
			From:       in.Bidder,
			Amount:     in.Amount,
			OccurredAt: now,
		})
		if err != nil {
			return err
		}

		result = bid
		events = append(events, accepted)
		return nil
	})
	if err != nil {
		return domain.Bid{}, err
	}

	publishAll(s.sink, events)
	return result, nil
}

type FinalizeInput struct {
	AuctionID int64
	Caller    string
}

// Finalize resolves an expired auction. With at least one bid the asset
// moves from custody to the highest bidder, the winning amount is credited
// to the seller and every other escrowed bid is refunded to its bidder.
// With zero bids the asset returns to the seller and the auction is marked
// cancelled. All of it commits atomically or not at all.
func (s *AuctionService) Finalize(ctx context.Context, in FinalizeInput) (domain.Auction, error) {
	now := s.clock.Now()
	var (
		result domain.Auction
		events []domain.Event
	)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		auction, err := s.repo.GetAuctionForUpdate(txCtx, in.AuctionID)
		if err != nil {
			return err
		}
		if auction.Status != domain.AuctionStatusActive {
			return domain.ErrAuctionNotActive
		}
		if now.Before(auction.Deadline) {
			return domain.ErrAuctionNotExpired
		}
		if !s.openFinalize && in.Caller != auction.Seller {
			return domain.ErrNotSeller
		}

		bids, err := s.repo.ListBids(txCtx, in.AuctionID)
		if err != nil {
			return err
		}

		if len(bids) == 0 {
			if err := s.repo.UpdateAssetOwner(txCtx, auction.AssetID, auction.Seller); err != nil {
				return err
			}
			if err := s.repo.SetAuctionResolved(txCtx, auction.ID, domain.AuctionStatusCancelled, domain.NullAccount, 0); err != nil {
				return err
			}

			returned, err := s.repo.AppendEvent(txCtx, domain.Event{
				Type:       domain.EventAssetTransferred,
				AssetID:    &auction.AssetID,
				From:       s.custody,
				To:         auction.Seller,
				OccurredAt: now,
			})
			if err != nil {
				return err
			}
			cancelled, err := s.repo.AppendEvent(txCtx, domain.Event{
				Type:       domain.EventAuctionCancelled,
				AuctionID:  &auction.ID,
				AssetID:    &auction.AssetID,
				From:       auction.Seller,
				OccurredAt: now,
			})
			if err != nil {
				return err
			}

			auction.Status = domain.AuctionStatusCancelled
			result = auction
			events = append(events, returned, cancelled)
			return nil
		}

		winning := bids[len(bids)-1]

		if err := s.repo.UpdateAssetOwner(txCtx, auction.AssetID, winning.Bidder); err != nil {
			return err
		}
		if err := s.repo.CreditBalance(txCtx, auction.Seller, winning.Amount); err != nil {
			return err
		}
		// Every escrowed bid except the winning one is refunded, including
		// earlier bids placed by the eventual winner.
		for _, bid := range bids[:len(bids)-1] {
			if err := s.repo.CreditBalance(txCtx, bid.Bidder, bid.Amount); err != nil {
				return err
			}
		}
		if err := s.repo.SetAuctionResolved(txCtx, auction.ID, domain.AuctionStatusFinalized, winning.Bidder, winning.Amount); err != nil {
			return err
		}

		awarded, err := s.repo.AppendEvent(txCtx, domain.Event{
			Type:       domain.EventAssetTransferred,
			AssetID:    &auction.AssetID,
			From:       s.custody,
			To:         winning.Bidder,
			OccurredAt: now,
		})
		if err != nil {
			return err
		}
		finalized, err := s.repo.AppendEvent(txCtx, domain.Event{
			Type:       domain.EventAuctionFinalized,
			AuctionID:  &auction.ID,
			AssetID:    &auction.AssetID,
			From:       auction.Seller,
			To:         winning.Bidder,
			Amount:     winning.Amount,
			OccurredAt: now,
		})
		if err != nil {
			return err
		}

		auction.Status = domain.AuctionStatusFinalized
		auction.Winner = winning.Bidder
		auction.FinalPrice = winning.Amount
		result = auction
		events = append(events, awarded, finalized)
		return nil
	})
	if err != nil {
		return domain.Auction{}, err
	}

	publishAll(s.sink, events)
	return result, nil
}

// Get returns the auction record.
func (s *AuctionService) Get(ctx context.Context, auctionID int64) (domain.Auction, error) {
	return s.repo.GetAuction(ctx, auctionID)
}

// CurrentBid returns the leading bid, or nil when no bid has been accepted
// yet.
func (s *AuctionService) CurrentBid(ctx context.Context, auctionID int64) (*domain.Bid, error) {
	if _, err := s.repo.GetAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	bids, err := s.repo.ListBids(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	if len(bids) == 0 {
		return nil, nil
	}
	leading := bids[len(bids)-1]
	return &leading, nil
}

// BidsCount returns the number of accepted bids for an auction.
func (s *AuctionService) BidsCount(ctx context.Context, auctionID int64) (int64, error) {
	if _, err := s.repo.GetAuction(ctx, auctionID); err != nil {
		return 0, err
	}
	return s.repo.CountBids(ctx, auctionID)
}

// Bids returns the full bid history in acceptance order.
func (s *AuctionService) Bids(ctx context.Context, auctionID int64) ([]domain.Bid, error) {
	if _, err := s.repo.GetAuction(ctx, auctionID); err != nil {
		return nil, err
	}
	return s.repo.ListBids(ctx, auctionID)
}

// Count returns the total number of auctions ever created.
func (s *AuctionService) Count(ctx context.Context) (int64, error) {
	return s.repo.CountAuctions(ctx)
}

// AuctionsOf returns the auctions created by seller, in creation order.
func (s *AuctionService) AuctionsOf(ctx context.Context, seller string) ([]domain.Auction, error) {
	if seller == domain.NullAccount {
		return nil, domain.ErrInvalidAccount
	}
	return s.repo.ListAuctionsBySeller(ctx, seller)
}
