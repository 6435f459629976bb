// Package standings computes league and group tables from finished
// matches. Computation is pure: the engine takes an explicit snapshot of
// matches and returns a fresh row set, no state survives between calls.
package standings

import (
	"errors"
	"fmt"
	"sort"

	"github.com/matchdayhq/league-platform/models"
)

// Scope identifies the table being computed. A nil GroupID is the implicit
// single group of a league stage.
type Scope struct {
	StageID int
	GroupID *int
}

// PointsRule maps match outcomes to table points. The default (3/1/0) must
// not change: historical standings depend on it.
type PointsRule struct {
	Win  int
	Draw int
	Loss int
}

var DefaultPointsRule = PointsRule{Win: 3, Draw: 1, Loss: 0}

// Table is the result of one computation: ordered rows plus any
// data-integrity warnings collected along the way. Warnings are non-fatal;
// the rows are a best-effort result over the valid matches.
type Table struct {
	Rows     []models.StandingRow
	Warnings []string
}

var ErrNoParticipants = errors.New("standings: participant set is empty")

type Engine struct {
	rule PointsRule
}

func NewEngine() *Engine {
	return &Engine{rule: DefaultPointsRule}
}

// NewEngineWithRule builds an engine with a non-default points rule.
func NewEngineWithRule(rule PointsRule) *Engine {
	return &Engine{rule: rule}
}

// Compute aggregates the finished matches of one scope into a ranked table.
//
// Every team in teamIDs appears exactly once, teams without finished
// matches with all-zero stats. Matches whose status is not "finished" are
// ignored (a filter, not an error); finished matches missing a score or a
// team are excluded with a warning. criteria may be nil for the default
// order; cards may be nil when the competition does not track sanctions.
func (e *Engine) Compute(scope Scope, matches []models.Match, teamIDs []int, criteria []Criterion, cards map[int]models.CardTally) (*Table, error) {
	if len(teamIDs) == 0 {
		return nil, ErrNoParticipants
	}
	if len(criteria) == 0 {
		criteria = DefaultTieBreakers
	} else if err := validateCriteria(criteria); err != nil {
		return nil, err
	}

	index := make(map[int]*models.StandingRow, len(teamIDs))
	for _, id := range teamIDs {
		if _, ok := index[id]; ok {
			continue
		}
		index[id] = &models.StandingRow{
			StageID: scope.StageID,
			GroupID: scope.GroupID,
			TeamID:  id,
		}
	}

	table := &Table{}
	valid := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Status != models.MatchStatusFinished {
			continue
		}
		if warn := checkFinishedMatch(m); warn != "" {
			table.Warnings = append(table.Warnings, warn)
			continue
		}
		rowA, okA := index[*m.TeamAID]
		rowB, okB := index[*m.TeamBID]
		if !okA || !okB {
			table.Warnings = append(table.Warnings,
				fmt.Sprintf("match %d references a team outside the participant set, excluded", m.ID))
			continue
		}
		valid = append(valid, m)

		scoreA, scoreB := *m.ScoreA, *m.ScoreB
		rowA.Played++
		rowB.Played++
		rowA.GoalsFor += scoreA
		rowA.GoalsAgainst += scoreB
		rowB.GoalsFor += scoreB
		rowB.GoalsAgainst += scoreA
		switch {
		case scoreA > scoreB:
			rowA.Wins++
			rowB.Losses++
		case scoreA < scoreB:
			rowB.Wins++
			rowA.Losses++
		default:
			rowA.Draws++
			rowB.Draws++
		}
	}

	rows := make([]*models.StandingRow, 0, len(index))
	for _, row := range index {
		// Derived, never accumulated separately, so the two cannot drift.
		row.GoalDiff = row.GoalsFor - row.GoalsAgainst
		row.Points = row.Wins*e.rule.Win + row.Draws*e.rule.Draw + row.Losses*e.rule.Loss
		rows = append(rows, row)
	}

	// Start from team-id order so the stable sort below is deterministic
	// regardless of map iteration.
	sort.Slice(rows, func(i, j int) bool { return rows[i].TeamID < rows[j].TeamID })
	sort.SliceStable(rows, func(i, j int) bool {
		return e.less(rows[i], rows[j], criteria, valid, cards)
	})

	table.Rows = make([]models.StandingRow, len(rows))
	for i, row := range rows {
		row.Rank = i + 1
		table.Rows[i] = *row
	}
	return table, nil
}

// less applies the tie-break list left to right; ties carry to the next
// criterion, and the terminal fallback is team id ascending so the order
// is never undefined.
//
// Head-to-head is replayed lazily for the specific pair being compared.
// Under a three-way cyclic head-to-head tie this comparator can be
// non-transitive; the stable sort settles such triangles using the
// remaining criteria, which matches how historical tables were produced.
func (e *Engine) less(a, b *models.StandingRow, criteria []Criterion, valid []models.Match, cards map[int]models.CardTally) bool {
	for _, c := range criteria {
		switch c {
		case CriterionPoints:
			if a.Points != b.Points {
				return a.Points > b.Points
			}
		case CriterionGoalDiff:
			if a.GoalDiff != b.GoalDiff {
				return a.GoalDiff > b.GoalDiff
			}
		case CriterionGoalsFor:
			if a.GoalsFor != b.GoalsFor {
				return a.GoalsFor > b.GoalsFor
			}
		case CriterionH2HPoints:
			h := replayHeadToHead(valid, a.TeamID, b.TeamID, e.rule)
			if h.played && h.pointsX != h.pointsY {
				return h.pointsX > h.pointsY
			}
		case CriterionH2HGoalDiff:
			h := replayHeadToHead(valid, a.TeamID, b.TeamID, e.rule)
			if h.played && h.diffX != h.diffY {
				return h.diffX > h.diffY
			}
		case CriterionFairPlay:
			// Lower penalty ranks better, unlike the numeric criteria.
			pa := fairPlayPenalty(cards[a.TeamID])
			pb := fairPlayPenalty(cards[b.TeamID])
			if pa != pb {
				return pa < pb
			}
		}
	}
	return a.TeamID < b.TeamID
}

func checkFinishedMatch(m models.Match) string {
	if m.TeamAID == nil || m.TeamBID == nil {
		return fmt.Sprintf("match %d finished with an unresolved team slot, excluded from standings", m.ID)
	}
	if m.ScoreA == nil || m.ScoreB == nil {
		return fmt.Sprintf("match %d finished without both scores, excluded from standings", m.ID)
	}
	if *m.ScoreA < 0 || *m.ScoreB < 0 {
		return fmt.Sprintf("match %d has a negative score, excluded from standings", m.ID)
	}
	if *m.TeamAID == *m.TeamBID {
		return fmt.Sprintf("match %d has the same team in both slots, excluded from standings", m.ID)
	}
	return ""
}
