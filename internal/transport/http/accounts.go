package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/edd34/nft-marketplace/internal/app"
	"github.com/edd34/nft-marketplace/internal/domain"
)

// Wallet is the funds-ledger surface the account handlers need.
type Wallet interface {
	Deposit(ctx context.Context, in app.DepositInput) (domain.Account, error)
	Balance(ctx context.Context, address string) (domain.Account, error)
}

// AssetLister resolves an account's asset holdings.
type AssetLister interface {
	AssetsHeldBy(ctx context.Context, owner string) ([]domain.Asset, error)
}

// HandleAccounts serves GET /accounts/{addr}, POST /accounts/{addr}/deposits
// and GET /accounts/{addr}/assets.
func HandleAccounts(wallet Wallet, registry AssetLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address, action, ok := parseAccountPath(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			account, err := wallet.Balance(r.Context(), address)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, accountResponse{
				Address: account.Address,
				Balance: account.Balance,
			})

		case action == "deposits" && r.Method == http.MethodPost:
			var req depositRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			account, err := wallet.Deposit(r.Context(), app.DepositInput{
				Address: address,
				Amount:  req.Amount,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, accountResponse{
				Address: account.Address,
				Balance: account.Balance,
			})

		case action == "assets" && r.Method == http.MethodGet:
			assets, err := registry.AssetsHeldBy(r.Context(), address)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := accountAssetsResponse{
				Address: address,
				Count:   len(assets),
				Assets:  make([]assetResponse, 0, len(assets)),
			}
			for _, a := range assets {
				resp.Assets = append(resp.Assets, assetResponse{
					ID:          a.ID,
					Owner:       a.Owner,
					MetadataURI: a.MetadataURI,
					MintedAt:    a.MintedAt,
				})
			}
			writeJSON(w, http.StatusOK, resp)

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func parseAccountPath(path string) (string, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "accounts" || parts[1] == "" {
		return "", "", false
	}
	if len(parts) == 3 {
		return parts[1], parts[2], parts[2] != ""
	}
	return parts[1], "", true
}

type depositRequest struct {
	Amount int64 `json:"amount"`
}

type accountResponse struct {
	Address string `json:"address"`
	Balance int64  `json:"balance"`
}

type accountAssetsResponse struct {
	Address string          `json:"address"`
	Count   int             `json:"count"`
	Assets  []assetResponse `json:"assets"`
}
