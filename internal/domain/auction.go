package domain

import "time"

type AuctionStatus string

const (
	AuctionStatusActive    AuctionStatus = "active"
	AuctionStatusFinalized AuctionStatus = "finalized"
	AuctionStatusCancelled AuctionStatus = "cancelled"
)

// Auction is a listing for a single asset. While the auction is active the
// asset is held by the engine's custody account; finalization moves it to
// the winner, or back to the seller when no bids were placed.
type Auction struct {
	ID            int64
	AssetID       int64
	Seller        string
	Title         string
	Description   string
	StartingPrice int64
	Deadline      time.Time
	Status        AuctionStatus
	// Winner and FinalPrice are set only on the finalized path.
	Winner     string
	FinalPrice int64
	CreatedAt  time.Time
}

// Bid is one accepted bid. Bids for an auction are totally ordered by
// Index; the leading bid is the one with the highest index. Amount is in
// base currency units and is escrowed from the bidder's balance until the
// auction resolves.
type Bid struct {
	AuctionID int64
	Index     int
	Bidder    string
	Amount    int64
	PlacedAt  time.Time
}
