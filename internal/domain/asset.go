package domain

import "time"

// NullAccount is the empty address. It can never hold an asset and can
// never receive a transfer.
const NullAccount = ""

// Asset is a unique, non-fungible item tracked by the registry. Ids are
// assigned sequentially starting at 0 and are never reused; an asset is
// never destroyed.
type Asset struct {
	ID          int64
	Owner       string
	MetadataURI string
	MintedAt    time.Time
}
