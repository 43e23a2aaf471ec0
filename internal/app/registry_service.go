package app

import (
	"context"

	"github.com/edd34/nft-marketplace/internal/clock"
	"github.com/edd34/nft-marketplace/internal/domain"
)

type RegistryRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	NextAssetID(ctx context.Context) (int64, error)
	CreateAsset(ctx context.Context, asset domain.Asset) error
	GetAsset(ctx context.Context, id int64) (domain.Asset, error)
	GetAssetForUpdate(ctx context.Context, id int64) (domain.Asset, error)
	UpdateAssetOwner(ctx context.Context, id int64, owner string) error
	ListAssetsByOwner(ctx context.Context, owner string) ([]domain.Asset, error)
	CountAssets(ctx context.Context) (int64, error)
	AppendEvent(ctx context.Context, e domain.Event) (domain.Event, error)
}

// RegistryService is the asset registry: it tracks which account holds each
// unique asset. It never calls into the auction engine.
type RegistryService struct {
	repo  RegistryRepository
	clock clock.Clock
	sink  EventSink
}

func NewRegistryService(repo RegistryRepository, clk clock.Clock, opts ...RegistryServiceOption) *RegistryService {
	svc := &RegistryService{
		repo:  repo,
		clock: clk,
		sink:  nopSink{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type RegistryServiceOption func(*RegistryService)

// WithRegistryEventSink wires a live event consumer (e.g. the WebSocket feed).
func WithRegistryEventSink(sink EventSink) RegistryServiceOption {
	return func(s *RegistryService) {
		if sink != nil {
			s.sink = sink
		}
	}
}

type MintInput struct {
	To          string
	MetadataURI string
}

// Mint creates a new asset owned by To. Asset ids are sequential from 0 and
// never reused.
func (s *RegistryService) Mint(ctx context.Context, in MintInput) (domain.Asset, error) {
	if in.To == domain.NullAccount {
		return domain.Asset{}, domain.ErrInvalidHolder
	}

	now := s.clock.Now()
	var (
		result domain.Asset
		events []domain.Event
	)

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		id, err := s.repo.NextAssetID(txCtx)
		if err != nil {
			return err
		}

		asset := domain.Asset{
			ID:          id,
			Owner:       in.To,
			MetadataURI: in.MetadataURI,
			MintedAt:    now,
		}
		if err := s.repo.CreateAsset(txCtx, asset); err != nil {
			return err
		}

		minted, err := s.repo.AppendEvent(txCtx, domain.Event{
			Type:       domain.EventAssetMinted,
			AssetID:    &asset.ID,
			To:         asset.Owner,
			OccurredAt: now,
		})
		if err != nil {
			return err
		}

		result = asset
		events = append(events, minted)
		return nil
	})
	if err != nil {
		return domain.Asset{}, err
	}

	publishAll(s.sink, events)
	return result, nil
}

type TransferInput struct {
	AssetID int64
	From    string
	To      string
}

// Transfer moves an asset between holders. From must be the current holder
// and To must be a non-null account.
func (s *RegistryService) Transfer(ctx context.Context, in TransferInput) error {
	if in.To == domain.NullAccount {
		return domain.ErrInvalidRecipient
	}

	now := s.clock.Now()
	var events []domain.Event

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		asset, err := s.repo.GetAssetForUpdate(txCtx, in.AssetID)
		if err != nil {
			return err
		}
		if asset.Owner != in.From {
			return domain.ErrNotOwner
		}

		if err := s.repo.UpdateAssetOwner(txCtx, in.AssetID, in.To); err != nil {
			return err
		}

		transferred, err := s.repo.AppendEvent(txCtx, domain.Event{
			Type:       domain.EventAssetTransferred,
			AssetID:    &asset.ID,
			From:       in.From,
			To:         in.To,
			OccurredAt: now,
		})
		if err != nil {
			return err
		}

		events = append(events, transferred)
		return nil
	})
	if err != nil {
		return err
	}

	publishAll(s.sink, events)
	return nil
}

// OwnerOf returns the current holder of an asset.
func (s *RegistryService) OwnerOf(ctx context.Context, assetID int64) (string, error) {
	asset, err := s.repo.GetAsset(ctx, assetID)
	if err != nil {
		return "", err
	}
	return asset.Owner, nil
}

// Get returns the full asset record.
func (s *RegistryService) Get(ctx context.Context, assetID int64) (domain.Asset, error) {
	return s.repo.GetAsset(ctx, assetID)
}

// AssetsHeldBy returns the assets currently held by owner, ordered by when
// the holder acquired them (mint or transfer order).
func (s *RegistryService) AssetsHeldBy(ctx context.Context, owner string) ([]domain.Asset, error) {
	if owner == domain.NullAccount {
		return nil, domain.ErrInvalidHolder
	}
	return s.repo.ListAssetsByOwner(ctx, owner)
}

// Count returns the total number of assets ever minted.
func (s *RegistryService) Count(ctx context.Context) (int64, error) {
	return s.repo.CountAssets(ctx)
}
