package rules

import "github.com/zus-pop/rizz-backend-sub002/internal/domain/enums"

type MatchDecision string

const (
	DecisionNoMatch MatchDecision = "no_match"
	DecisionMutual  MatchDecision = "mutual"
)

// DecideMutual is the reciprocity rule: a match exists iff both directed swipes
// are likes (Like or SuperLike). Pass on either side never forms a match. The
// function is pure; all mutation stays with the match lifecycle code.
func DecideMutual(forward, reverse enums.SwipeDirection) MatchDecision {
	if forward.IsLike() && reverse.IsLike() {
		return DecisionMutual
	}
	return DecisionNoMatch
}
