package model

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"
	EventStatusDelivered EventStatus = "delivered"
	EventStatusFailed    EventStatus = "failed"
)

const (
	EventSwipePerformed = "swipe.performed"
	EventMatchCreated   = "match.created"
	EventMatchUnmatched = "match.unmatched"
)

// DomainEvent is an immutable fact recorded in the same transaction as the
// state change that produced it. Only delivery bookkeeping mutates after insert.
type DomainEvent struct {
	ID            uuid.UUID   `json:"id"`
	EventType     string      `json:"event_type"`
	Payload       []byte      `json:"payload"`
	OccurredAt    time.Time   `json:"occurred_at"`
	Status        EventStatus `json:"status"`
	Attempts      int         `json:"attempts"`
	NextAttemptAt time.Time   `json:"next_attempt_at"`
	LastError     string      `json:"last_error,omitempty"`
	DeliveredAt   *time.Time  `json:"delivered_at,omitempty"`
}

type SwipePerformedPayload struct {
	SwipeID      int64     `json:"swipe_id"`
	ActorUserID  int64     `json:"actor_user_id"`
	TargetUserID int64     `json:"target_user_id"`
	Direction    string    `json:"direction"`
	OccurredAt   time.Time `json:"occurred_at"`
}

type MatchCreatedPayload struct {
	MatchID   int64     `json:"match_id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	MatchedAt time.Time `json:"matched_at"`
}

type MatchUnmatchedPayload struct {
	MatchID     int64     `json:"match_id"`
	UserAID     int64     `json:"user_a_id"`
	UserBID     int64     `json:"user_b_id"`
	UnmatchedAt time.Time `json:"unmatched_at"`
	UnmatchedBy int64     `json:"unmatched_by"`
}
