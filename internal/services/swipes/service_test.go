package swipes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/zus-pop/rizz-backend-sub002/internal/domain/enums"
	"github.com/zus-pop/rizz-backend-sub002/internal/domain/model"
)

type pairKey struct {
	actor  int64
	target int64
}

type swipeStoreStub struct {
	nextID    int64
	decisions map[pairKey]model.Swipe
	lockCalls int
}

func newSwipeStoreStub() *swipeStoreStub {
	return &swipeStoreStub{decisions: make(map[pairKey]model.Swipe)}
}

func (s *swipeStoreStub) Upsert(_ context.Context, _ pgx.Tx, actorUserID, targetUserID int64, direction enums.SwipeDirection, now time.Time) (model.Swipe, error) {
	key := pairKey{actor: actorUserID, target: targetUserID}
	rec, ok := s.decisions[key]
	if !ok {
		s.nextID++
		rec = model.Swipe{ID: s.nextID, ActorUserID: actorUserID, TargetUserID: targetUserID}
	}
	rec.Direction = direction
	rec.CreatedAt = now
	s.decisions[key] = rec
	return rec, nil
}

func (s *swipeStoreStub) ReverseDirection(_ context.Context, _ pgx.Tx, actorUserID, targetUserID int64) (enums.SwipeDirection, bool, error) {
	rec, ok := s.decisions[pairKey{actor: targetUserID, target: actorUserID}]
	if !ok {
		return "", false, nil
	}
	return rec.Direction, true, nil
}

func (s *swipeStoreStub) ListByActor(context.Context, int64, int) ([]model.Swipe, error) {
	return nil, nil
}

func (s *swipeStoreStub) AcquirePairLock(context.Context, pgx.Tx, int64, int64) error {
	s.lockCalls++
	return nil
}

type lifecycleStub struct {
	nextID  int64
	active  map[pairKey]model.Match
	created int
}

func newLifecycleStub() *lifecycleStub {
	return &lifecycleStub{active: make(map[pairKey]model.Match)}
}

func (s *lifecycleStub) CreateIfAbsent(_ context.Context, _ pgx.Tx, userID, targetID int64) (model.Match, bool, error) {
	userA, userB := model.CanonicalPair(userID, targetID)
	key := pairKey{actor: userA, target: userB}
	if match, ok := s.active[key]; ok {
		return match, false, nil
	}

	s.nextID++
	s.created++
	match := model.Match{ID: s.nextID, UserAID: userA, UserBID: userB, Active: true}
	s.active[key] = match
	return match, true, nil
}

type publisherStub struct {
	eventTypes []string
	payloads   []any
}

func (s *publisherStub) Enqueue(_ context.Context, _ pgx.Tx, eventType string, payload any) error {
	s.eventTypes = append(s.eventTypes, eventType)
	s.payloads = append(s.payloads, payload)
	return nil
}

func newTestService(store *swipeStoreStub, lifecycle *lifecycleStub, events *publisherStub) *Service {
	return &Service{
		swipeStore: store,
		pairLocks:  store,
		lifecycle:  lifecycle,
		events:     events,
		now:        func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func TestSwipeRejectsInvalidInput(t *testing.T) {
	svc := NewService(Dependencies{})

	cases := []struct {
		name      string
		actor     int64
		target    int64
		direction string
		expected  error
	}{
		{"self swipe", 5, 5, "like", ErrValidation},
		{"zero actor", 0, 5, "like", ErrValidation},
		{"negative target", 5, -1, "like", ErrValidation},
		{"unknown direction", 5, 6, "wink", ErrUnsupportedDirection},
		{"empty direction", 5, 6, "", ErrUnsupportedDirection},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Swipe(context.Background(), tc.actor, tc.target, tc.direction); !errors.Is(err, tc.expected) {
				t.Fatalf("got %v want %v", err, tc.expected)
			}
		})
	}
}

func TestSwipePassEmitsEventWithoutDetection(t *testing.T) {
	store := newSwipeStoreStub()
	lifecycle := newLifecycleStub()
	events := &publisherStub{}
	svc := newTestService(store, lifecycle, events)

	result, err := svc.swipeInTx(context.Background(), nil, 1, 2, enums.SwipeDirectionPass)
	if err != nil {
		t.Fatalf("swipe: %v", err)
	}

	if result.MatchCreated {
		t.Fatalf("pass must never create a match")
	}
	if len(events.eventTypes) != 1 || events.eventTypes[0] != model.EventSwipePerformed {
		t.Fatalf("expected one swipe.performed event, got %v", events.eventTypes)
	}
	if store.lockCalls != 0 {
		t.Fatalf("pass must not take the pair lock")
	}
}

func TestMutualLikeCreatesExactlyOneMatch(t *testing.T) {
	store := newSwipeStoreStub()
	lifecycle := newLifecycleStub()
	events := &publisherStub{}
	svc := newTestService(store, lifecycle, events)
	ctx := context.Background()

	first, err := svc.swipeInTx(ctx, nil, 1, 2, enums.SwipeDirectionLike)
	if err != nil {
		t.Fatalf("first swipe: %v", err)
	}
	if first.MatchCreated {
		t.Fatalf("one-sided like must not create a match")
	}

	second, err := svc.swipeInTx(ctx, nil, 2, 1, enums.SwipeDirectionLike)
	if err != nil {
		t.Fatalf("second swipe: %v", err)
	}
	if !second.MatchCreated || second.MatchID == 0 {
		t.Fatalf("reciprocal like must create a match, got %+v", second)
	}
	if lifecycle.created != 1 {
		t.Fatalf("expected exactly one match creation, got %d", lifecycle.created)
	}
	if store.lockCalls != 2 {
		t.Fatalf("expected pair lock on both like swipes, got %d", store.lockCalls)
	}

	match := lifecycle.active[pairKey{actor: 1, target: 2}]
	if match.UserAID != 1 || match.UserBID != 2 {
		t.Fatalf("match pair is not canonical: %+v", match)
	}
}

func TestReverseSuperLikeCountsAsLike(t *testing.T) {
	store := newSwipeStoreStub()
	lifecycle := newLifecycleStub()
	svc := newTestService(store, lifecycle, &publisherStub{})
	ctx := context.Background()

	if _, err := svc.swipeInTx(ctx, nil, 9, 4, enums.SwipeDirectionSuperLike); err != nil {
		t.Fatalf("first swipe: %v", err)
	}

	result, err := svc.swipeInTx(ctx, nil, 4, 9, enums.SwipeDirectionLike)
	if err != nil {
		t.Fatalf("second swipe: %v", err)
	}
	if !result.MatchCreated {
		t.Fatalf("superlike + like must be mutual")
	}
}

func TestReversePassDoesNotMatch(t *testing.T) {
	store := newSwipeStoreStub()
	lifecycle := newLifecycleStub()
	svc := newTestService(store, lifecycle, &publisherStub{})
	ctx := context.Background()

	if _, err := svc.swipeInTx(ctx, nil, 1, 2, enums.SwipeDirectionPass); err != nil {
		t.Fatalf("first swipe: %v", err)
	}

	result, err := svc.swipeInTx(ctx, nil, 2, 1, enums.SwipeDirectionLike)
	if err != nil {
		t.Fatalf("second swipe: %v", err)
	}
	if result.MatchCreated {
		t.Fatalf("like against a pass must not create a match")
	}
	if lifecycle.created != 0 {
		t.Fatalf("expected no matches, got %d", lifecycle.created)
	}
}

func TestReSwipeUpgradeTriggersDetection(t *testing.T) {
	store := newSwipeStoreStub()
	lifecycle := newLifecycleStub()
	events := &publisherStub{}
	svc := newTestService(store, lifecycle, events)
	ctx := context.Background()

	if _, err := svc.swipeInTx(ctx, nil, 2, 1, enums.SwipeDirectionLike); err != nil {
		t.Fatalf("reverse like: %v", err)
	}
	if _, err := svc.swipeInTx(ctx, nil, 1, 2, enums.SwipeDirectionPass); err != nil {
		t.Fatalf("initial pass: %v", err)
	}
	if lifecycle.created != 0 {
		t.Fatalf("pass must not match")
	}

	result, err := svc.swipeInTx(ctx, nil, 1, 2, enums.SwipeDirectionLike)
	if err != nil {
		t.Fatalf("upgraded swipe: %v", err)
	}
	if !result.MatchCreated {
		t.Fatalf("pass→like upgrade must re-run detection and match")
	}

	// the overwrite keeps a single decision row per (actor, target)
	if len(store.decisions) != 2 {
		t.Fatalf("expected 2 decision rows, got %d", len(store.decisions))
	}
}

func TestAlreadyMatchedPairReportsExistingMatch(t *testing.T) {
	store := newSwipeStoreStub()
	lifecycle := newLifecycleStub()
	events := &publisherStub{}
	svc := newTestService(store, lifecycle, events)
	ctx := context.Background()

	if _, err := svc.swipeInTx(ctx, nil, 1, 2, enums.SwipeDirectionLike); err != nil {
		t.Fatalf("first swipe: %v", err)
	}
	second, err := svc.swipeInTx(ctx, nil, 2, 1, enums.SwipeDirectionLike)
	if err != nil {
		t.Fatalf("second swipe: %v", err)
	}

	// re-swipe on an already matched pair
	repeat, err := svc.swipeInTx(ctx, nil, 1, 2, enums.SwipeDirectionLike)
	if err != nil {
		t.Fatalf("repeat swipe: %v", err)
	}
	if repeat.MatchCreated {
		t.Fatalf("repeat swipe must not report a new match")
	}
	if repeat.MatchID != second.MatchID {
		t.Fatalf("repeat swipe must report the existing match id")
	}
	if lifecycle.created != 1 {
		t.Fatalf("expected exactly one match, got %d", lifecycle.created)
	}
}
