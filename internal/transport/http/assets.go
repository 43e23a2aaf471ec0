package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/edd34/nft-marketplace/internal/app"
	"github.com/edd34/nft-marketplace/internal/domain"
)

// AssetRegistry is the registry surface the asset handlers need.
type AssetRegistry interface {
	Mint(ctx context.Context, in app.MintInput) (domain.Asset, error)
	Transfer(ctx context.Context, in app.TransferInput) error
	Get(ctx context.Context, assetID int64) (domain.Asset, error)
}

// HandleMintAsset returns the handler for POST /assets.
func HandleMintAsset(svc AssetRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		var req mintAssetRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
			return
		}

		asset, err := svc.Mint(r.Context(), app.MintInput{
			To:          req.To,
			MetadataURI: req.MetadataURI,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, assetResponse{
			ID:          asset.ID,
			Owner:       asset.Owner,
			MetadataURI: asset.MetadataURI,
			MintedAt:    asset.MintedAt,
		})
	}
}

// HandleAsset serves GET /assets/{id} and POST /assets/{id}/transfer.
func HandleAsset(svc AssetRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, action, ok := parseAssetPath(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			asset, err := svc.Get(r.Context(), id)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, assetResponse{
				ID:          asset.ID,
				Owner:       asset.Owner,
				MetadataURI: asset.MetadataURI,
				MintedAt:    asset.MintedAt,
			})

		case action == "transfer" && r.Method == http.MethodPost:
			var req transferAssetRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			err := svc.Transfer(r.Context(), app.TransferInput{
				AssetID: id,
				From:    req.From,
				To:      req.To,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, transferAssetResponse{
				AssetID: id,
				Owner:   req.To,
			})

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// parseAssetPath splits /assets/{id} or /assets/{id}/{action}.
func parseAssetPath(path string) (int64, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "assets" {
		return 0, "", false
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id < 0 {
		return 0, "", false
	}
	if len(parts) == 3 {
		return id, parts[2], parts[2] != ""
	}
	return id, "", true
}

type mintAssetRequest struct {
	To          string `json:"to"`
	MetadataURI string `json:"metadata_uri"`
}

type transferAssetRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type transferAssetResponse struct {
	AssetID int64  `json:"asset_id"`
	Owner   string `json:"owner"`
}

type assetResponse struct {
	ID          int64     `json:"id"`
	Owner       string    `json:"owner"`
	MetadataURI string    `json:"metadata_uri"`
	MintedAt    time.Time `json:"minted_at"`
}
