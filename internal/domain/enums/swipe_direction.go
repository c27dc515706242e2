package enums

import "strings"

type SwipeDirection string

const (
	SwipeDirectionPass      SwipeDirection = "PASS"
	SwipeDirectionLike      SwipeDirection = "LIKE"
	SwipeDirectionSuperLike SwipeDirection = "SUPERLIKE"
)

// ParseSwipeDirection normalizes client input ("super_like", "like ") into a
// known direction. Unknown values are rejected by the caller.
func ParseSwipeDirection(input string) (SwipeDirection, bool) {
	value := strings.ToUpper(strings.TrimSpace(input))
	value = strings.ReplaceAll(value, "_", "")

	switch SwipeDirection(value) {
	case SwipeDirectionPass, SwipeDirectionLike, SwipeDirectionSuperLike:
		return SwipeDirection(value), true
	default:
		return "", false
	}
}

// IsLike reports whether the direction counts toward a mutual match.
func (d SwipeDirection) IsLike() bool {
	return d == SwipeDirectionLike || d == SwipeDirectionSuperLike
}
