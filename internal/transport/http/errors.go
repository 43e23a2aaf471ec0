package http

import (
	"encoding/json"
	"net/http"

	"github.com/edd34/nft-marketplace/internal/domain"
)

const (
	codeMethodNotAllowed   = "method_not_allowed"
	codeNotFound           = "not_found"
	codeInvalidRequestBody = "invalid_request_body"
	codeForbidden          = "forbidden"
	codeInternalError      = "internal_error"

	codeInvalidHolder     = "invalid_holder"
	codeInvalidRecipient  = "invalid_recipient"
	codeNotOwner          = "not_owner"
	codeUnknownAsset      = "unknown_asset"
	codeNotAssetOwner     = "not_asset_owner"
	codeInvalidDeadline   = "invalid_deadline"
	codeAssetListed       = "asset_already_listed"
	codeAuctionNotActive  = "auction_not_active"
	codeAuctionExpired    = "auction_expired"
	codeAuctionNotExpired = "auction_not_expired"
	codeBidTooLow         = "bid_too_low"
	codeNotSeller         = "not_seller"
	codeUnknownAuction    = "unknown_auction"
	codeInvalidAccount    = "invalid_account"
	codeInvalidAmount     = "invalid_amount"
	codeInsufficientFunds = "insufficient_funds"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(errorResponse{
		Error: msg,
		Code:  code,
	})
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

// writeDomainError maps the sentinel error taxonomy onto HTTP statuses and
// stable machine codes.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := codeInternalError
	msg := "internal error"

	switch err {
	case domain.ErrInvalidHolder:
		status, code, msg = http.StatusBadRequest, codeInvalidHolder, err.Error()
	case domain.ErrInvalidRecipient:
		status, code, msg = http.StatusBadRequest, codeInvalidRecipient, err.Error()
	case domain.ErrInvalidDeadline:
		status, code, msg = http.StatusBadRequest, codeInvalidDeadline, err.Error()
	case domain.ErrInvalidAccount:
		status, code, msg = http.StatusBadRequest, codeInvalidAccount, err.Error()
	case domain.ErrInvalidAmount:
		status, code, msg = http.StatusBadRequest, codeInvalidAmount, err.Error()
	case domain.ErrUnknownAsset:
		status, code, msg = http.StatusNotFound, codeUnknownAsset, err.Error()
	case domain.ErrUnknownAuction:
		status, code, msg = http.StatusNotFound, codeUnknownAuction, err.Error()
	case domain.ErrNotOwner:
		status, code, msg = http.StatusForbidden, codeNotOwner, err.Error()
	case domain.ErrNotAssetOwner:
		status, code, msg = http.StatusForbidden, codeNotAssetOwner, err.Error()
	case domain.ErrNotSeller:
		status, code, msg = http.StatusForbidden, codeNotSeller, err.Error()
	case domain.ErrAssetAlreadyListed:
		status, code, msg = http.StatusConflict, codeAssetListed, err.Error()
	case domain.ErrAuctionNotActive:
		status, code, msg = http.StatusConflict, codeAuctionNotActive, err.Error()
	case domain.ErrAuctionExpired:
		status, code, msg = http.StatusConflict, codeAuctionExpired, err.Error()
	case domain.ErrAuctionNotExpired:
		status, code, msg = http.StatusConflict, codeAuctionNotExpired, err.Error()
	case domain.ErrBidTooLow:
		status, code, msg = http.StatusConflict, codeBidTooLow, err.Error()
	case domain.ErrInsufficientFunds:
		status, code, msg = http.StatusConflict, codeInsufficientFunds, err.Error()
	}

	writeError(w, status, code, msg)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
