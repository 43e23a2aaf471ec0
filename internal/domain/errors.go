package domain

import "errors"

var (
	// Asset registry.
	ErrInvalidHolder    = errors.New("invalid holder")
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrNotOwner         = errors.New("not owner")
	ErrUnknownAsset     = errors.New("unknown asset")

	// Auction engine.
	ErrNotAssetOwner      = errors.New("not asset owner")
	ErrInvalidDeadline    = errors.New("invalid deadline")
	ErrAssetAlreadyListed = errors.New("asset already listed")
	ErrAuctionNotActive   = errors.New("auction not active")
	ErrAuctionExpired     = errors.New("auction expired")
	ErrAuctionNotExpired  = errors.New("auction not expired")
	ErrBidTooLow          = errors.New("bid too low")
	ErrNotSeller          = errors.New("not seller")
	ErrUnknownAuction     = errors.New("unknown auction")

	// Funds ledger.
	ErrInvalidAccount    = errors.New("invalid account")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
