package domain

// Account is a funds-ledger entry. Balance is the available (non-escrowed)
// amount in base currency units; escrowed funds live in the bids of active
// auctions until finalization settles them.
type Account struct {
	Address string
	Balance int64
}
