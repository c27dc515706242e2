package dto

import "time"

type UnmatchRequest struct {
	MatchID  int64  `json:"match_id"`
	ByUserID int64  `json:"by_user_id"`
	Reason   string `json:"reason,omitempty"`
}

type UnmatchResponse struct {
	OK          bool      `json:"ok"`
	MatchID     int64     `json:"match_id"`
	UnmatchedAt time.Time `json:"unmatched_at"`
}

type MatchItemResponse struct {
	ID        int64     `json:"id"`
	UserAID   int64     `json:"user_a_id"`
	UserBID   int64     `json:"user_b_id"`
	MatchedAt time.Time `json:"matched_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}
