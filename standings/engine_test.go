package standings

import (
	"testing"

	"github.com/matchdayhq/league-platform/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func finished(id, teamA, teamB, scoreA, scoreB int) models.Match {
	return models.Match{
		ID:      id,
		TeamAID: intPtr(teamA),
		TeamBID: intPtr(teamB),
		ScoreA:  intPtr(scoreA),
		ScoreB:  intPtr(scoreB),
		Status:  models.MatchStatusFinished,
	}
}

func TestComputeBasicTable(t *testing.T) {
	engine := NewEngine()
	matches := []models.Match{
		finished(1, 1, 2, 2, 0),
		finished(2, 2, 3, 1, 1),
		finished(3, 3, 1, 0, 1),
	}

	table, err := engine.Compute(Scope{StageID: 7}, matches, []int{1, 2, 3}, nil, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	assert.Empty(t, table.Warnings)

	// Team 1 won both games; teams 2 and 3 drew each other and differ on
	// goal difference (-2 vs -1).
	assert.Equal(t, []int{1, 3, 2}, teamOrder(table))
	assert.Equal(t, []int{1, 2, 3}, rankOrder(table))

	top := table.Rows[0]
	assert.Equal(t, 2, top.Played)
	assert.Equal(t, 2, top.Wins)
	assert.Equal(t, 6, top.Points)
	assert.Equal(t, 3, top.GoalDiff)
	assert.Equal(t, 7, top.StageID)
}

func TestComputeDefaultPointsScenario(t *testing.T) {
	engine := NewEngine()
	// A(1) beats B(2) 2-0, B beats C(3) 1-0, A draws C 1-1.
	matches := []models.Match{
		finished(1, 1, 2, 2, 0),
		finished(2, 2, 3, 1, 0),
		finished(3, 1, 3, 1, 1),
	}

	table, err := engine.Compute(Scope{StageID: 1}, matches, []int{1, 2, 3}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, teamOrder(table))

	a, b, c := table.Rows[0], table.Rows[1], table.Rows[2]
	assert.Equal(t, 2, a.Played)
	assert.Equal(t, 4, a.Points)
	assert.Equal(t, 2, a.GoalDiff)
	assert.Equal(t, 3, b.Points)
	assert.Equal(t, -1, b.GoalDiff)
	assert.Equal(t, 1, c.Points)
	assert.Equal(t, -1, c.GoalDiff)
}

func TestComputeIsDeterministic(t *testing.T) {
	engine := NewEngine()
	matches := []models.Match{
		finished(1, 4, 2, 1, 1),
		finished(2, 3, 1, 0, 0),
	}
	teams := []int{1, 2, 3, 4}

	first, err := engine.Compute(Scope{StageID: 1}, matches, teams, nil, nil)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := engine.Compute(Scope{StageID: 1}, matches, teams, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, first.Rows, again.Rows)
	}
}

func TestComputeConservation(t *testing.T) {
	engine := NewEngine()
	matches := []models.Match{
		finished(1, 1, 2, 3, 2),
		finished(2, 3, 4, 0, 0),
		finished(3, 1, 3, 2, 2),
		finished(4, 4, 2, 1, 5),
	}

	table, err := engine.Compute(Scope{StageID: 1}, matches, []int{1, 2, 3, 4}, nil, nil)
	require.NoError(t, err)

	var goalsFor, goalsAgainst, wins, losses, played int
	for _, row := range table.Rows {
		goalsFor += row.GoalsFor
		goalsAgainst += row.GoalsAgainst
		wins += row.Wins
		losses += row.Losses
		played += row.Played
	}
	assert.Equal(t, goalsFor, goalsAgainst)
	assert.Equal(t, wins, losses)
	assert.Equal(t, len(matches)*2, played)
}

func TestComputeNoMatchesYieldsZeroRows(t *testing.T) {
	engine := NewEngine()

	table, err := engine.Compute(Scope{StageID: 1}, nil, []int{30, 10, 20}, nil, nil)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	// All-zero stats, ordered by the terminal team-id fallback.
	assert.Equal(t, []int{10, 20, 30}, teamOrder(table))
	for i, row := range table.Rows {
		assert.Equal(t, i+1, row.Rank)
		assert.Zero(t, row.Played)
		assert.Zero(t, row.Points)
	}
}

func TestComputeIgnoresUnfinishedMatches(t *testing.T) {
	engine := NewEngine()
	scheduled := models.Match{
		ID: 5, TeamAID: intPtr(1), TeamBID: intPtr(2),
		Status: models.MatchStatusScheduled,
	}
	live := finished(6, 1, 2, 4, 0)
	live.Status = models.MatchStatusLive

	table, err := engine.Compute(Scope{StageID: 1}, []models.Match{scheduled, live}, []int{1, 2}, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, table.Warnings)
	for _, row := range table.Rows {
		assert.Zero(t, row.Played)
	}
}

func TestComputeWarnsOnMalformedFinishedMatches(t *testing.T) {
	engine := NewEngine()
	missingScore := models.Match{
		ID: 1, TeamAID: intPtr(1), TeamBID: intPtr(2),
		Status: models.MatchStatusFinished,
	}
	outsider := finished(2, 1, 99, 1, 0)
	sameTeam := finished(3, 2, 2, 1, 0)

	table, err := engine.Compute(Scope{StageID: 1},
		[]models.Match{missingScore, outsider, sameTeam}, []int{1, 2}, nil, nil)
	require.NoError(t, err)
	assert.Len(t, table.Warnings, 3)

	// Malformed matches contribute nothing.
	for _, row := range table.Rows {
		assert.Zero(t, row.Played)
	}
}

func TestComputeRejectsEmptyParticipants(t *testing.T) {
	_, err := NewEngine().Compute(Scope{StageID: 1}, nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrNoParticipants)
}

func TestComputeRejectsUnknownCriterion(t *testing.T) {
	_, err := NewEngine().Compute(Scope{StageID: 1}, nil, []int{1, 2}, []Criterion{"coin_flip"}, nil)
	assert.ErrorIs(t, err, ErrUnknownCriterion)
}

func TestComputeCustomPointsRule(t *testing.T) {
	engine := NewEngineWithRule(PointsRule{Win: 2, Draw: 1, Loss: 0})
	matches := []models.Match{
		finished(1, 1, 2, 1, 0),
		finished(2, 1, 2, 2, 2),
	}

	table, err := engine.Compute(Scope{StageID: 1}, matches, []int{1, 2}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Rows[0].Points)
	assert.Equal(t, 1, table.Rows[1].Points)
}

func TestHeadToHeadCriterionOrdersPair(t *testing.T) {
	engine := NewEngine()
	// Team 2 beat team 1; with head-to-head as the only criterion the
	// overall points never enter the comparison.
	matches := []models.Match{finished(1, 1, 2, 0, 2)}

	table, err := engine.Compute(Scope{StageID: 1}, matches, []int{1, 2},
		[]Criterion{CriterionH2HPoints}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, teamOrder(table))
}

func TestHeadToHeadGoalDiffBreaksSplitPair(t *testing.T) {
	engine := NewEngine()
	// Each leg won once; team 1 holds the better aggregate (+1).
	matches := []models.Match{
		finished(1, 1, 2, 3, 1),
		finished(2, 2, 1, 1, 0),
	}

	table, err := engine.Compute(Scope{StageID: 1}, matches, []int{2, 1},
		[]Criterion{CriterionH2HPoints, CriterionH2HGoalDiff}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, teamOrder(table))
}

func TestFairPlayRanksLowerPenaltyFirst(t *testing.T) {
	engine := NewEngine()
	matches := []models.Match{finished(1, 1, 2, 1, 1)}
	cards := map[int]models.CardTally{
		1: {TeamID: 1, Red: 1},    // penalty 3
		2: {TeamID: 2, Yellow: 2}, // penalty 2
	}

	table, err := engine.Compute(Scope{StageID: 1}, matches, []int{1, 2},
		[]Criterion{CriterionPoints, CriterionFairPlay}, cards)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, teamOrder(table))
}

func TestFairPlayBlueWeighsBetweenYellowAndRed(t *testing.T) {
	assert.Equal(t, 1, fairPlayPenalty(models.CardTally{Yellow: 1}))
	assert.Equal(t, 2, fairPlayPenalty(models.CardTally{Blue: 1}))
	assert.Equal(t, 3, fairPlayPenalty(models.CardTally{Red: 1}))
}

func TestParseCriteria(t *testing.T) {
	criteria, err := ParseCriteria(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTieBreakers, criteria)

	criteria, err = ParseCriteria([]string{"points", "fair_play"})
	require.NoError(t, err)
	assert.Equal(t, []Criterion{CriterionPoints, CriterionFairPlay}, criteria)

	_, err = ParseCriteria([]string{"points", "alphabetical"})
	assert.ErrorIs(t, err, ErrUnknownCriterion)
}

func teamOrder(table *Table) []int {
	order := make([]int, len(table.Rows))
	for i, row := range table.Rows {
		order[i] = row.TeamID
	}
	return order
}

func rankOrder(table *Table) []int {
	ranks := make([]int, len(table.Rows))
	for i, row := range table.Rows {
		ranks[i] = row.Rank
	}
	return ranks
}
