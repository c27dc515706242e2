package model

import "time"

// Match rows keep the pair in canonical order: UserAID < UserBID. At most one
// active row exists per pair; retired rows stay around so the pair can match again.
type Match struct {
	ID          int64      `json:"id"`
	UserAID     int64      `json:"user_a_id"`
	UserBID     int64      `json:"user_b_id"`
	Active      bool       `json:"active"`
	MatchedAt   time.Time  `json:"matched_at"`
	UnmatchedAt *time.Time `json:"unmatched_at,omitempty"`
	UnmatchedBy *int64     `json:"unmatched_by,omitempty"`
}

// CanonicalPair orders two user ids the way match rows store them.
func CanonicalPair(userID, targetID int64) (int64, int64) {
	if userID > targetID {
		return targetID, userID
	}
	return userID, targetID
}
