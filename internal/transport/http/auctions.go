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

// AuctionEngine is the engine surface the auction handlers need.
type AuctionEngine interface {
	CreateAuction(ctx context.Context, in app.CreateAuctionInput) (domain.Auction, error)
	PlaceBid(ctx context.Context, in app.PlaceBidInput) (domain.Bid, error)
	Finalize(ctx context.Context, in app.FinalizeInput) (domain.Auction, error)
	Get(ctx context.Context, auctionID int64) (domain.Auction, error)
	CurrentBid(ctx context.Context, auctionID int64) (*domain.Bid, error)
	Bids(ctx context.Context, auctionID int64) ([]domain.Bid, error)
	BidsCount(ctx context.Context, auctionID int64) (int64, error)
	Count(ctx context.Context) (int64, error)
	AuctionsOf(ctx context.Context, seller string) ([]domain.Auction, error)
}

// HandleAuctions serves POST /auctions (create) and GET /auctions
// (count, or the auctions of ?seller=addr in creation order).
func HandleAuctions(svc AuctionEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var req createAuctionRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			auction, err := svc.CreateAuction(r.Context(), app.CreateAuctionInput{
				AssetID:       req.AssetID,
				Title:         req.Title,
				Description:   req.Description,
				StartingPrice: req.StartingPrice,
				Deadline:      req.DeadlineMillis,
				Seller:        req.Seller,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, auctionResponseFrom(auction, nil, 0))

		case http.MethodGet:
			seller := r.URL.Query().Get("seller")
			if seller == "" {
				count, err := svc.Count(r.Context())
				if err != nil {
					writeDomainError(w, err)
					return
				}
				writeJSON(w, http.StatusOK, auctionsCountResponse{Count: count})
				return
			}

			auctions, err := svc.AuctionsOf(r.Context(), seller)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := auctionsListResponse{Auctions: make([]auctionSummary, 0, len(auctions))}
			for _, a := range auctions {
				resp.Auctions = append(resp.Auctions, auctionSummary{
					ID:      a.ID,
					AssetID: a.AssetID,
					Title:   a.Title,
					Status:  string(a.Status),
				})
			}
			writeJSON(w, http.StatusOK, resp)

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

// HandleAuction serves GET /auctions/{id}, GET/POST /auctions/{id}/bids and
// POST /auctions/{id}/finalize.
func HandleAuction(svc AuctionEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, action, ok := parseAuctionPath(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			return
		}

		switch {
		case action == "" && r.Method == http.MethodGet:
			auction, err := svc.Get(r.Context(), id)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			leading, err := svc.CurrentBid(r.Context(), id)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			count, err := svc.BidsCount(r.Context(), id)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, auctionResponseFrom(auction, leading, count))

		case action == "bids" && r.Method == http.MethodGet:
			bids, err := svc.Bids(r.Context(), id)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			resp := bidsListResponse{Bids: make([]bidResponse, 0, len(bids))}
			for _, b := range bids {
				resp.Bids = append(resp.Bids, bidResponse{
					AuctionID: b.AuctionID,
					Index:     b.Index,
					Bidder:    b.Bidder,
					Amount:    b.Amount,
					PlacedAt:  b.PlacedAt,
				})
			}
			writeJSON(w, http.StatusOK, resp)

		case action == "bids" && r.Method == http.MethodPost:
			var req placeBidRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			bid, err := svc.PlaceBid(r.Context(), app.PlaceBidInput{
				AuctionID: id,
				Bidder:    req.Bidder,
				Amount:    req.Amount,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, bidResponse{
				AuctionID: bid.AuctionID,
				Index:     bid.Index,
				Bidder:    bid.Bidder,
				Amount:    bid.Amount,
				PlacedAt:  bid.PlacedAt,
			})

		case action == "finalize" && r.Method == http.MethodPost:
			var req finalizeRequest
			dec := json.NewDecoder(r.Body)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
				return
			}

			auction, err := svc.Finalize(r.Context(), app.FinalizeInput{
				AuctionID: id,
				Caller:    req.Caller,
			})
			if err != nil {
				writeDomainError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, auctionResponseFrom(auction, nil, 0))

		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
	}
}

func parseAuctionPath(path string) (int64, string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "auctions" {
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

type createAuctionRequest struct {
	AssetID        int64  `json:"asset_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	StartingPrice  int64  `json:"starting_price"`
	DeadlineMillis int64  `json:"deadline_ms"`
	Seller         string `json:"seller"`
}

type placeBidRequest struct {
	Bidder string `json:"bidder"`
	Amount int64  `json:"amount"`
}

type finalizeRequest struct {
	Caller string `json:"caller"`
}

type bidResponse struct {
	AuctionID int64     `json:"auction_id"`
	Index     int       `json:"index"`
	Bidder    string    `json:"bidder"`
	Amount    int64     `json:"amount"`
	PlacedAt  time.Time `json:"placed_at"`
}

type auctionResponse struct {
	ID            int64        `json:"id"`
	AssetID       int64        `json:"asset_id"`
	Seller        string       `json:"seller"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	StartingPrice int64        `json:"starting_price"`
	Deadline      time.Time    `json:"deadline"`
	Status        string       `json:"status"`
	Winner        string       `json:"winner,omitempty"`
	FinalPrice    int64        `json:"final_price,omitempty"`
	CurrentBid    *bidResponse `json:"current_bid,omitempty"`
	BidsCount     int64        `json:"bids_count"`
	CreatedAt     time.Time    `json:"created_at"`
}

func auctionResponseFrom(a domain.Auction, leading *domain.Bid, bidsCount int64) auctionResponse {
	resp := auctionResponse{
		ID:            a.ID,
		AssetID:       a.AssetID,
		Seller:        a.Seller,
		Title:         a.Title,
		Description:   a.Description,
		StartingPrice: a.StartingPrice,
		Deadline:      a.Deadline,
		Status:        string(a.Status),
		Winner:        a.Winner,
		FinalPrice:    a.FinalPrice,
		BidsCount:     bidsCount,
		CreatedAt:     a.CreatedAt,
	}
	if leading != nil {
		resp.CurrentBid = &bidResponse{
			AuctionID: leading.AuctionID,
			Index:     leading.Index,
			Bidder:    leading.Bidder,
			Amount:    leading.Amount,
			PlacedAt:  leading.PlacedAt,
		}
	}
	return resp
}

type bidsListResponse struct {
	Bids []bidResponse `json:"bids"`
}

type auctionsCountResponse struct {
	Count int64 `json:"count"`
}

type auctionSummary struct {
	ID      int64  `json:"id"`
	AssetID int64  `json:"asset_id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
}

type auctionsListResponse struct {
	Auctions []auctionSummary `json:"auctions"`
}
