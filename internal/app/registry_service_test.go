package app

import (
	"context"
	"testing"
	"time"

	"github.com/edd34/nft-marketplace/internal/clock"
	"github.com/edd34/nft-marketplace/internal/domain"
)

func TestRegistryService_Mint(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("assigns sequential ids from zero", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		svc := NewRegistryService(repo, clock.NewFixed(now))

		first, err := svc.Mint(context.Background(), MintInput{To: "alice", MetadataURI: "ipfs://one"})
		if err != nil {
			t.Fatalf("mint first: %v", err)
		}
		second, err := svc.Mint(context.Background(), MintInput{To: "alice", MetadataURI: "ipfs://two"})
		if err != nil {
			t.Fatalf("mint second: %v", err)
		}
		if first.ID != 0 || second.ID != 1 {
			t.Fatalf("expected ids 0 and 1, got %d and %d", first.ID, second.ID)
		}
		if first.Owner != "alice" || first.MetadataURI != "ipfs://one" {
			t.Fatalf("unexpected asset %+v", first)
		}
		if !first.MintedAt.Equal(now) {
			t.Fatalf("expected minted at %v, got %v", now, first.MintedAt)
		}
	})

	t.Run("records a minted event", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		svc := NewRegistryService(repo, clock.NewFixed(now))

		asset, err := svc.Mint(context.Background(), MintInput{To: "alice"})
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		if len(repo.events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(repo.events))
		}
		e := repo.events[0]
		if e.Type != domain.EventAssetMinted || e.To != "alice" {
			t.Fatalf("unexpected event %+v", e)
		}
		if e.AssetID == nil || *e.AssetID != asset.ID {
			t.Fatalf("expected event asset id %d, got %v", asset.ID, e.AssetID)
		}
	})

	t.Run("rejects the null account", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		svc := NewRegistryService(repo, clock.NewFixed(now))

		if _, err := svc.Mint(context.Background(), MintInput{To: domain.NullAccount}); err != domain.ErrInvalidHolder {
			t.Fatalf("expected ErrInvalidHolder, got %v", err)
		}
		if len(repo.assets) != 0 {
			t.Fatalf("expected no assets minted, got %d", len(repo.assets))
		}
	})
}

func TestRegistryService_Transfer(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("moves the asset to the recipient", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		svc := NewRegistryService(repo, clock.NewFixed(now))

		asset, err := svc.Mint(context.Background(), MintInput{To: "alice"})
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		if err := svc.Transfer(context.Background(), TransferInput{AssetID: asset.ID, From: "alice", To: "bob"}); err != nil {
			t.Fatalf("transfer: %v", err)
		}

		owner, err := svc.OwnerOf(context.Background(), asset.ID)
		if err != nil {
			t.Fatalf("owner of: %v", err)
		}
		if owner != "bob" {
			t.Fatalf("expected owner bob, got %q", owner)
		}
		if last := repo.events[len(repo.events)-1]; last.Type != domain.EventAssetTransferred || last.From != "alice" || last.To != "bob" {
			t.Fatalf("unexpected transfer event %+v", last)
		}
	})

	t.Run("rejects a sender that is not the holder", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		svc := NewRegistryService(repo, clock.NewFixed(now))

		asset, err := svc.Mint(context.Background(), MintInput{To: "alice"})
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		if err := svc.Transfer(context.Background(), TransferInput{AssetID: asset.ID, From: "mallory", To: "bob"}); err != domain.ErrNotOwner {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
		if repo.assets[asset.ID].Owner != "alice" {
			t.Fatalf("expected asset still with alice, got %q", repo.assets[asset.ID].Owner)
		}
	})

	t.Run("rejects the null recipient", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		svc := NewRegistryService(repo, clock.NewFixed(now))

		asset, err := svc.Mint(context.Background(), MintInput{To: "alice"})
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		if err := svc.Transfer(context.Background(), TransferInput{AssetID: asset.ID, From: "alice", To: domain.NullAccount}); err != domain.ErrInvalidRecipient {
			t.Fatalf("expected ErrInvalidRecipient, got %v", err)
		}
	})

	t.Run("rejects an unknown asset", func(t *testing.T) {
		repo := newFakeRegistryRepo()
		svc := NewRegistryService(repo, clock.NewFixed(now))

		if err := svc.Transfer(context.Background(), TransferInput{AssetID: 9, From: "alice", To: "bob"}); err != domain.ErrUnknownAsset {
			t.Fatalf("expected ErrUnknownAsset, got %v", err)
		}
	})
}

func TestRegistryService_AssetsHeldBy(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := newFakeRegistryRepo()
	svc := NewRegistryService(repo, clock.NewFixed(now))

	// Alice mints 0 and 1, then receives 2 from bob; her holdings must be
	// reported in acquisition order.
	a0, _ := svc.Mint(context.Background(), MintInput{To: "alice"})
	a1, _ := svc.Mint(context.Background(), MintInput{To: "alice"})
	a2, _ := svc.Mint(context.Background(), MintInput{To: "bob"})
	if err := svc.Transfer(context.Background(), TransferInput{AssetID: a2.ID, From: "bob", To: "alice"}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	held, err := svc.AssetsHeldBy(context.Background(), "alice")
	if err != nil {
		t.Fatalf("assets held by: %v", err)
	}
	if len(held) != 3 {
		t.Fatalf("expected 3 assets, got %d", len(held))
	}
	if held[0].ID != a0.ID || held[1].ID != a1.ID || held[2].ID != a2.ID {
		t.Fatalf("expected acquisition order [%d %d %d], got [%d %d %d]",
			a0.ID, a1.ID, a2.ID, held[0].ID, held[1].ID, held[2].ID)
	}

	if _, err := svc.AssetsHeldBy(context.Background(), domain.NullAccount); err != domain.ErrInvalidHolder {
		t.Fatalf("expected ErrInvalidHolder, got %v", err)
	}

	count, err := svc.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 minted assets, got %d", count)
	}
}

type fakeRegistryRepo struct {
	assets  map[int64]domain.Asset
	touched []int64
	events  []domain.Event
	nextID  int64
	nextSeq int64
}

func newFakeRegistryRepo() *fakeRegistryRepo {
	return &fakeRegistryRepo{assets: make(map[int64]domain.Asset)}
}

func (f *fakeRegistryRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeRegistryRepo) NextAssetID(context.Context) (int64, error) {
	id := f.nextID
	f.nextID++
	return id, nil
}

func (f *fakeRegistryRepo) CreateAsset(_ context.Context, asset domain.Asset) error {
	f.assets[asset.ID] = asset
	f.touch(asset.ID)
	return nil
}

func (f *fakeRegistryRepo) GetAsset(_ context.Context, id int64) (domain.Asset, error) {
	asset, ok := f.assets[id]
	if !ok {
		return domain.Asset{}, domain.ErrUnknownAsset
	}
	return asset, nil
}

func (f *fakeRegistryRepo) GetAssetForUpdate(ctx context.Context, id int64) (domain.Asset, error) {
	return f.GetAsset(ctx, id)
}

func (f *fakeRegistryRepo) UpdateAssetOwner(_ context.Context, id int64, owner string) error {
	asset, ok := f.assets[id]
	if !ok {
		return domain.ErrUnknownAsset
	}
	asset.Owner = owner
	f.assets[id] = asset
	f.touch(id)
	return nil
}

func (f *fakeRegistryRepo) ListAssetsByOwner(_ context.Context, owner string) ([]domain.Asset, error) {
	var out []domain.Asset
	for _, id := range f.touched {
		if asset := f.assets[id]; asset.Owner == owner {
			out = append(out, asset)
		}
	}
	return out, nil
}

func (f *fakeRegistryRepo) CountAssets(context.Context) (int64, error) {
	return int64(len(f.assets)), nil
}

func (f *fakeRegistryRepo) AppendEvent(_ context.Context, e domain.Event) (domain.Event, error) {
	f.nextSeq++
	e.Seq = f.nextSeq
	f.events = append(f.events, e)
	return e, nil
}

// touch moves an asset to the end of the acquisition order, mirroring the
// ownership-change sequence the real store keeps.
func (f *fakeRegistryRepo) touch(id int64) {
	for i, existing := range f.touched {
		if existing == id {
			f.touched = append(f.touched[:i], f.touched[i+1:]...)
			break
		}
	}
	f.touched = append(f.touched, id)
}
