package http

import (
	"context"
	"net/http"
)

// AssetCounter reports the total number of minted assets.
type AssetCounter interface {
	Count(ctx context.Context) (int64, error)
}

// HandleCollection serves GET /collection: the registry's human-readable
// identity plus total supply.
func HandleCollection(name, symbol string, registry AssetCounter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		total, err := registry.Count(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, collectionResponse{
			Name:        name,
			Symbol:      symbol,
			TotalSupply: total,
		})
	}
}

type collectionResponse struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	TotalSupply int64  `json:"total_supply"`
}
