package brackets

import (
	"errors"
	"fmt"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() Generator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) Name() string {
	return "RoundRobin"
}

// Generate produces round-robin fixtures with the circle method: one team
// stays fixed while the rest rotate, giving n-1 matchdays of n/2 pairings
// (an odd team count adds a dummy entrant whose opponent sits the matchday
// out). Round carries the matchday number. With DoubleRound set the whole
// schedule is mirrored with home and away swapped.
func (g *RoundRobinGenerator) Generate(params GenerateParams) ([]*PlannedMatch, error) {
	n := len(params.TeamIDs)
	if n < 2 {
		return nil, errors.New("round robin requires at least 2 teams")
	}

	teams := make([]int, n)
	copy(teams, params.TeamIDs)
	if n%2 != 0 {
		teams = append(teams, 0) // dummy entrant, pairings against it are skipped
		n++
	}

	matchdays := n - 1
	half := n / 2
	matches := make([]*PlannedMatch, 0, matchdays*half)

	for day := 1; day <= matchdays; day++ {
		pos := 0
		for i := 0; i < half; i++ {
			home, away := teams[i], teams[n-1-i]
			if home == 0 || away == 0 {
				continue
			}
			pos++
			h, a := home, away
			matches = append(matches, &PlannedMatch{
				UID:        fmt.Sprintf("D%dM%d", day, pos),
				Round:      day,
				BracketPos: pos,
				TeamAID:    &h,
				TeamBID:    &a,
			})
		}
		// Rotate, keeping the first team fixed.
		teams = append(teams[:1], append([]int{teams[n-1]}, teams[1:n-1]...)...)
	}

	if params.DoubleRound {
		firstLeg := len(matches)
		for i := 0; i < firstLeg; i++ {
			m := matches[i]
			day := m.Round + matchdays
			h, a := *m.TeamBID, *m.TeamAID
			matches = append(matches, &PlannedMatch{
				UID:        fmt.Sprintf("D%dM%d", day, m.BracketPos),
				Round:      day,
				BracketPos: m.BracketPos,
				TeamAID:    &h,
				TeamBID:    &a,
			})
		}
	}
	return matches, nil
}
