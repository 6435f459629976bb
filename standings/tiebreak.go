package standings

import (
	"errors"
	"fmt"

	"github.com/matchdayhq/league-platform/models"
)

// Criterion is one tie-break rule applied when ordering a table. The set
// is closed: unrecognized tags are rejected at configuration time instead
// of being silently skipped during a sort.
type Criterion string

const (
	CriterionPoints      Criterion = "points"
	CriterionGoalDiff    Criterion = "goal_diff"
	CriterionGoalsFor    Criterion = "goals_for"
	CriterionH2HPoints   Criterion = "h2h_points"
	CriterionH2HGoalDiff Criterion = "h2h_goal_diff"
	CriterionFairPlay    Criterion = "fair_play"
)

// DefaultTieBreakers is the order applied when a stage carries no explicit
// tie-break configuration. Historical tables depend on this exact order.
var DefaultTieBreakers = []Criterion{
	CriterionPoints,
	CriterionGoalDiff,
	CriterionGoalsFor,
	CriterionH2HPoints,
	CriterionH2HGoalDiff,
	CriterionFairPlay,
}

var ErrUnknownCriterion = errors.New("unknown tie-break criterion")

var knownCriteria = map[Criterion]struct{}{
	CriterionPoints:      {},
	CriterionGoalDiff:    {},
	CriterionGoalsFor:    {},
	CriterionH2HPoints:   {},
	CriterionH2HGoalDiff: {},
	CriterionFairPlay:    {},
}

// ParseCriteria validates raw tags from a stage config blob. An empty list
// yields the default order.
func ParseCriteria(tags []string) ([]Criterion, error) {
	if len(tags) == 0 {
		return DefaultTieBreakers, nil
	}
	criteria := make([]Criterion, 0, len(tags))
	for _, tag := range tags {
		c := Criterion(tag)
		if _, ok := knownCriteria[c]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCriterion, tag)
		}
		criteria = append(criteria, c)
	}
	return criteria, nil
}

func validateCriteria(criteria []Criterion) error {
	for _, c := range criteria {
		if _, ok := knownCriteria[c]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCriterion, string(c))
		}
	}
	return nil
}

// Fair-play card weights. Lower totals rank better.
const (
	weightYellow = 1
	weightRed    = 3
	weightBlue   = 2
)

func fairPlayPenalty(t models.CardTally) int {
	return t.Yellow*weightYellow + t.Red*weightRed + t.Blue*weightBlue
}

// headToHead holds the result of replaying the mutual finished matches of
// one pair of teams. It is computed lazily per comparison, never as a
// global table.
type headToHead struct {
	pointsX, pointsY int
	diffX, diffY     int
	played           bool
}

func replayHeadToHead(matches []models.Match, teamX, teamY int, rule PointsRule) headToHead {
	var h headToHead
	for _, m := range matches {
		if m.TeamAID == nil || m.TeamBID == nil {
			continue
		}
		a, b := *m.TeamAID, *m.TeamBID
		if !(a == teamX && b == teamY) && !(a == teamY && b == teamX) {
			continue
		}
		h.played = true
		scoreX, scoreY := *m.ScoreA, *m.ScoreB
		if a == teamY {
			scoreX, scoreY = scoreY, scoreX
		}
		switch {
		case scoreX > scoreY:
			h.pointsX += rule.Win
			h.pointsY += rule.Loss
		case scoreX < scoreY:
			h.pointsX += rule.Loss
			h.pointsY += rule.Win
		default:
			h.pointsX += rule.Draw
			h.pointsY += rule.Draw
		}
		h.diffX += scoreX - scoreY
		h.diffY += scoreY - scoreX
	}
	return h
}
