package rules

import (
	"testing"

	"github.com/zus-pop/rizz-backend-sub002/internal/domain/enums"
)

func TestDecideMutual(t *testing.T) {
	cases := []struct {
		name     string
		forward  enums.SwipeDirection
		reverse  enums.SwipeDirection
		expected MatchDecision
	}{
		{"like both ways", enums.SwipeDirectionLike, enums.SwipeDirectionLike, DecisionMutual},
		{"superlike meets like", enums.SwipeDirectionSuperLike, enums.SwipeDirectionLike, DecisionMutual},
		{"superlike both ways", enums.SwipeDirectionSuperLike, enums.SwipeDirectionSuperLike, DecisionMutual},
		{"reverse is pass", enums.SwipeDirectionLike, enums.SwipeDirectionPass, DecisionNoMatch},
		{"forward is pass", enums.SwipeDirectionPass, enums.SwipeDirectionLike, DecisionNoMatch},
		{"pass both ways", enums.SwipeDirectionPass, enums.SwipeDirectionPass, DecisionNoMatch},
		{"reverse missing", enums.SwipeDirectionLike, "", DecisionNoMatch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DecideMutual(tc.forward, tc.reverse); got != tc.expected {
				t.Fatalf("unexpected decision: got %q want %q", got, tc.expected)
			}
		})
	}
}

func TestParseSwipeDirection(t *testing.T) {
	for input, want := range map[string]enums.SwipeDirection{
		"like":       enums.SwipeDirectionLike,
		" LIKE ":     enums.SwipeDirectionLike,
		"super_like": enums.SwipeDirectionSuperLike,
		"SuperLike":  enums.SwipeDirectionSuperLike,
		"pass":       enums.SwipeDirectionPass,
	} {
		got, ok := enums.ParseSwipeDirection(input)
		if !ok || got != want {
			t.Fatalf("parse %q: got %q ok=%v want %q", input, got, ok, want)
		}
	}

	for _, input := range []string{"", "dislike", "nope", "like!"} {
		if _, ok := enums.ParseSwipeDirection(input); ok {
			t.Fatalf("expected %q to be rejected", input)
		}
	}
}
