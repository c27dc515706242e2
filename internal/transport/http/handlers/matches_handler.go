package handlers

import (
	"errors"
	"net/http"
	"time"

	matchessvc "github.com/zus-pop/rizz-backend-sub002/internal/services/matches"
	"github.com/zus-pop/rizz-backend-sub002/internal/transport/http/dto"
	httperrors "github.com/zus-pop/rizz-backend-sub002/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *matchessvc.Service
}

func NewMatchesHandler(service *matchessvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) Unmatch(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	var req dto.UnmatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.MatchID <= 0 || req.ByUserID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "match_id and by_user_id are required")
		return
	}

	retired, err := h.service.Unmatch(r.Context(), req.MatchID, req.ByUserID)
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid unmatch request")
		case errors.Is(err, matchessvc.ErrNotFound):
			httperrors.Write(w, http.StatusNotFound, httperrors.APIError{
				Code:    "MATCH_NOT_FOUND",
				Message: "match does not exist or is already unmatched",
			})
		case errors.Is(err, matchessvc.ErrForbidden):
			httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
				Code:    "FORBIDDEN",
				Message: "user is not a participant of the match",
			})
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to unmatch")
		}
		return
	}

	var unmatchedAt time.Time
	if retired.UnmatchedAt != nil {
		unmatchedAt = *retired.UnmatchedAt
	}

	httperrors.Write(w, http.StatusOK, dto.UnmatchResponse{
		OK:          true,
		MatchID:     retired.ID,
		UnmatchedAt: unmatchedAt,
	})
}

func (h *MatchesHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	userID, ok := userIDFromPath(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	items, err := h.service.ListActiveForUser(r.Context(), userID, parseIntOrDefault(r.URL.Query().Get("limit"), 100))
	if err != nil {
		switch {
		case errors.Is(err, matchessvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid matches request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		}
		return
	}

	responseItems := make([]dto.MatchItemResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, dto.MatchItemResponse{
			ID:        item.ID,
			UserAID:   item.UserAID,
			UserBID:   item.UserBID,
			MatchedAt: item.MatchedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Items: responseItems})
}
