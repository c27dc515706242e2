package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/zus-pop/rizz-backend-sub002/internal/domain/model"
	matchessvc "github.com/zus-pop/rizz-backend-sub002/internal/services/matches"
)

type matchStoreStub struct {
	items []model.Match
}

func (s matchStoreStub) CreateIfAbsent(context.Context, pgx.Tx, int64, int64, time.Time) (model.Match, bool, error) {
	return model.Match{}, false, nil
}

func (s matchStoreStub) GetByIDForUpdate(context.Context, pgx.Tx, int64) (model.Match, error) {
	return model.Match{}, nil
}

func (s matchStoreStub) Retire(context.Context, pgx.Tx, int64, int64, time.Time) error {
	return nil
}

func (s matchStoreStub) ListActiveForUser(_ context.Context, userID int64, _ int) ([]model.Match, error) {
	var out []model.Match
	for _, item := range s.items {
		if item.UserAID == userID || item.UserBID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func TestMatchesListReturnsActiveMatchesForUser(t *testing.T) {
	matchedAt := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	svc := matchessvc.NewService(matchessvc.Dependencies{
		MatchStore: matchStoreStub{items: []model.Match{
			{ID: 7, UserAID: 1, UserBID: 5, Active: true, MatchedAt: matchedAt},
			{ID: 8, UserAID: 3, UserBID: 4, Active: true, MatchedAt: matchedAt},
		}},
	})
	h := NewMatchesHandler(svc)

	rec := performMatchesListRequest(t, h, "5")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}

	var payload struct {
		Items []struct {
			ID      int64 `json:"id"`
			UserAID int64 `json:"user_a_id"`
			UserBID int64 `json:"user_b_id"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(payload.Items) != 1 {
		t.Fatalf("unexpected item count: got %d want 1", len(payload.Items))
	}
	if payload.Items[0].ID != 7 || payload.Items[0].UserAID != 1 || payload.Items[0].UserBID != 5 {
		t.Fatalf("unexpected item: %+v", payload.Items[0])
	}
}

func TestMatchesListRejectsBadUserID(t *testing.T) {
	h := NewMatchesHandler(matchessvc.NewService(matchessvc.Dependencies{MatchStore: matchStoreStub{}}))

	for _, raw := range []string{"abc", "0", "-3"} {
		rec := performMatchesListRequest(t, h, raw)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("user id %q: unexpected status %d", raw, rec.Code)
		}
	}
}

func TestUnmatchRejectsIncompleteRequest(t *testing.T) {
	h := NewMatchesHandler(matchessvc.NewService(matchessvc.Dependencies{}))

	cases := []struct {
		name string
		body string
	}{
		{"broken json", `{"match_id": 1,`},
		{"missing by_user_id", `{"match_id": 10}`},
		{"missing match_id", `{"by_user_id": 3}`},
		{"unknown field", `{"match_id": 10, "by_user_id": 3, "force": true}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/matches/unmatch", bytes.NewReader([]byte(tc.body)))
			rec := httptest.NewRecorder()
			h.Unmatch(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func performMatchesListRequest(t *testing.T, h *MatchesHandler, rawUserID string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/v1/users/"+rawUserID+"/matches", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("userID", rawUserID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	rec := httptest.NewRecorder()
	h.ListByUser(rec, req)
	return rec
}
