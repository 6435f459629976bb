package brackets

import (
	"errors"
	"fmt"
	"math"

	"github.com/matchdayhq/league-platform/models"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() Generator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) Name() string {
	return "SingleElimination"
}

// node is one entrant of a round: a concrete team, the winner of an
// earlier match, or a bye placeholder.
type node struct {
	teamID    *int
	sourceUID *string
	bye       bool
}

// Generate builds a single-elimination tree for the given teams. The
// bracket is padded to the next power of two with byes; a team drawn
// against a bye advances without a match being created, entering its next
// round with a direct team id alongside a source-linked opponent.
func (g *SingleEliminationGenerator) Generate(params GenerateParams) ([]*PlannedMatch, error) {
	n := len(params.TeamIDs)
	if n < 2 {
		return nil, errors.New("single elimination requires at least 2 teams")
	}

	numRounds := int(math.Ceil(math.Log2(float64(n))))
	bracketSize := 1 << uint(numRounds)

	current := make([]*node, 0, bracketSize)
	for _, id := range params.TeamIDs {
		teamID := id
		current = append(current, &node{teamID: &teamID})
	}
	for i := n; i < bracketSize; i++ {
		current = append(current, &node{bye: true})
	}

	matches := make([]*PlannedMatch, 0, bracketSize-1)
	for round := 1; round <= numRounds; round++ {
		next := make([]*node, 0, len(current)/2)
		pos := 0

		for i := 0; i < len(current); i += 2 {
			left, right := current[i], current[i+1]

			switch {
			case left.bye && right.bye:
				next = append(next, &node{bye: true})
			case right.bye:
				next = append(next, left)
			case left.bye:
				next = append(next, right)
			default:
				pos++
				uid := fmt.Sprintf("R%dM%d", round, pos)
				pm := &PlannedMatch{
					UID:        uid,
					Round:      round,
					BracketPos: pos,
					TeamAID:    left.teamID,
					TeamBID:    right.teamID,
				}
				if left.sourceUID != nil {
					pm.SourceAUID = left.sourceUID
					pm.SourceAOutcome = models.SourceOutcomeWinner
				}
				if right.sourceUID != nil {
					pm.SourceBUID = right.sourceUID
					pm.SourceBOutcome = models.SourceOutcomeWinner
				}
				matches = append(matches, pm)
				next = append(next, &node{sourceUID: &pm.UID})
			}
		}
		current = next
	}

	if params.ThirdPlace {
		if tp := thirdPlaceMatch(matches, numRounds); tp != nil {
			matches = append(matches, tp)
		}
	}
	return matches, nil
}

// thirdPlaceMatch pairs the semifinal losers. It is only well defined when
// the penultimate round holds exactly two matches; byes can collapse a
// semifinal, in which case the playoff is skipped.
func thirdPlaceMatch(matches []*PlannedMatch, numRounds int) *PlannedMatch {
	if numRounds < 2 {
		return nil
	}
	var semis []*PlannedMatch
	for _, m := range matches {
		if m.Round == numRounds-1 {
			semis = append(semis, m)
		}
	}
	if len(semis) != 2 {
		return nil
	}
	return &PlannedMatch{
		UID:            fmt.Sprintf("R%dM2", numRounds),
		Round:          numRounds,
		BracketPos:     2,
		SourceAUID:     &semis[0].UID,
		SourceAOutcome: models.SourceOutcomeLoser,
		SourceBUID:     &semis[1].UID,
		SourceBOutcome: models.SourceOutcomeLoser,
	}
}
