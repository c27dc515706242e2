package dto

import "time"

type SwipeRequest struct {
	ActorID   int64  `json:"actor_id"`
	TargetID  int64  `json:"target_id"`
	Direction string `json:"direction"`
}

type SwipeResponse struct {
	OK           bool   `json:"ok"`
	SwipeID      int64  `json:"swipe_id"`
	Direction    string `json:"direction"`
	MatchCreated bool   `json:"match_created"`
	MatchID      int64  `json:"match_id,omitempty"`
}

type SwipeItemResponse struct {
	ID           int64     `json:"id"`
	TargetUserID int64     `json:"target_user_id"`
	Direction    string    `json:"direction"`
	CreatedAt    time.Time `json:"created_at"`
}

type SwipesResponse struct {
	Items []SwipeItemResponse `json:"items"`
}
