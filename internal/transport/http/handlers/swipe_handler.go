package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	swipesvc "github.com/zus-pop/rizz-backend-sub002/internal/services/swipes"
	"github.com/zus-pop/rizz-backend-sub002/internal/transport/http/dto"
	httperrors "github.com/zus-pop/rizz-backend-sub002/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *swipesvc.Service
}

func NewSwipeHandler(service *swipesvc.Service) *SwipeHandler {
	return &SwipeHandler{service: service}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.ActorID <= 0 || req.TargetID <= 0 || strings.TrimSpace(req.Direction) == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "actor_id, target_id and direction are required")
		return
	}

	result, err := h.service.Swipe(r.Context(), req.ActorID, req.TargetID, req.Direction)
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipe request")
		case errors.Is(err, swipesvc.ErrUnsupportedDirection):
			writeBadRequest(w, "VALIDATION_ERROR", "unsupported swipe direction")
		default:
			if tf, ok := swipesvc.IsTooFast(err); ok {
				httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
					Code:          "TOO_FAST",
					Message:       "too many swipes, slow down",
					RetryAfterSec: tf.RetryAfterSec,
				})
				return
			}
			writeInternal(w, "INTERNAL_ERROR", "failed to process swipe")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SwipeResponse{
		OK:           true,
		SwipeID:      result.Swipe.ID,
		Direction:    string(result.Swipe.Direction),
		MatchCreated: result.MatchCreated,
		MatchID:      result.MatchID,
	})
}

func (h *SwipeHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	userID, ok := userIDFromPath(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	items, err := h.service.ListByActor(r.Context(), userID, parseIntOrDefault(r.URL.Query().Get("limit"), 100))
	if err != nil {
		switch {
		case errors.Is(err, swipesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid swipes request")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load swipes")
		}
		return
	}

	responseItems := make([]dto.SwipeItemResponse, 0, len(items))
	for _, item := range items {
		responseItems = append(responseItems, dto.SwipeItemResponse{
			ID:           item.ID,
			TargetUserID: item.TargetUserID,
			Direction:    string(item.Direction),
			CreatedAt:    item.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.SwipesResponse{Items: responseItems})
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func parseIntOrDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func userIDFromPath(r *http.Request) (int64, bool) {
	value, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "userID")), 10, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}
