package domain

import "time"

type EventType string

const (
	EventAssetMinted      EventType = "asset.minted"
	EventAssetTransferred EventType = "asset.transferred"
	EventAuctionCreated   EventType = "auction.created"
	EventBidAccepted      EventType = "auction.bid_accepted"
	EventAuctionFinalized EventType = "auction.finalized"
	EventAuctionCancelled EventType = "auction.cancelled"
)

// Event is one entry of the marketplace event log, appended in the same
// transaction as the state change it describes and retained indefinitely
// for external indexing. Field use depends on Type:
//
//   - asset.minted: AssetID, To (holder)
//   - asset.transferred: AssetID, From, To
//   - auction.created: AuctionID, AssetID, From (seller), Amount (starting price)
//   - auction.bid_accepted: AuctionID, From (bidder), Amount
//   - auction.finalized: AuctionID, AssetID, From (seller), To (winner), Amount (final price)
//   - auction.cancelled: AuctionID, AssetID, From (seller)
type Event struct {
	Seq        int64     `json:"seq"`
	Type       EventType `json:"type"`
	AssetID    *int64    `json:"asset_id,omitempty"`
	AuctionID  *int64    `json:"auction_id,omitempty"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
