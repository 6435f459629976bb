package brackets

import (
	"testing"

	"github.com/matchdayhq/league-platform/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func finishedMatch(id, round, teamA, teamB, scoreA, scoreB int) models.Match {
	return models.Match{
		ID:      id,
		Round:   round,
		TeamAID: intPtr(teamA),
		TeamBID: intPtr(teamB),
		ScoreA:  intPtr(scoreA),
		ScoreB:  intPtr(scoreB),
		Status:  models.MatchStatusFinished,
	}
}

func TestPropagateFillsEmptySlot(t *testing.T) {
	semifinal := finishedMatch(1, 1, 10, 20, 2, 1)
	final := models.Match{
		ID: 5, Round: 2,
		SourceA: &models.SourceLink{MatchID: 1, Outcome: models.SourceOutcomeWinner},
		SourceB: &models.SourceLink{MatchID: 2, Outcome: models.SourceOutcomeWinner},
	}

	result, err := Propagate(semifinal, []models.Match{final})
	require.NoError(t, err)
	require.Len(t, result.Updates, 1)
	assert.Empty(t, result.Conflicts)
	assert.Equal(t, SlotUpdate{MatchID: 5, Slot: models.TeamSlotA, TeamID: 10}, result.Updates[0])
}

func TestPropagateIsIdempotent(t *testing.T) {
	semifinal := finishedMatch(1, 1, 10, 20, 2, 1)
	final := models.Match{
		ID: 5, Round: 2,
		TeamAID: intPtr(10), // already propagated
		SourceA: &models.SourceLink{MatchID: 1, Outcome: models.SourceOutcomeWinner},
	}

	result, err := Propagate(semifinal, []models.Match{final})
	require.NoError(t, err)
	assert.Empty(t, result.Updates)
	assert.Empty(t, result.Conflicts)
}

func TestPropagateReportsConflictWithoutApplying(t *testing.T) {
	semifinal := finishedMatch(1, 1, 10, 20, 0, 3)
	final := models.Match{
		ID: 5, Round: 2,
		TeamAID: intPtr(7), // manual correction in place
		SourceA: &models.SourceLink{MatchID: 1, Outcome: models.SourceOutcomeWinner},
	}

	result, err := Propagate(semifinal, []models.Match{final})
	require.NoError(t, err)
	assert.Empty(t, result.Updates)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, SlotConflict{
		MatchID: 5, Slot: models.TeamSlotA, Existing: 7, Attempted: 20,
	}, result.Conflicts[0])
}

func TestPropagateLoserLinkFeedsThirdPlacePlayoff(t *testing.T) {
	semifinal := finishedMatch(1, 1, 10, 20, 1, 4)
	playoff := models.Match{
		ID: 6, Round: 2,
		SourceA: &models.SourceLink{MatchID: 1, Outcome: models.SourceOutcomeLoser},
		SourceB: &models.SourceLink{MatchID: 2, Outcome: models.SourceOutcomeLoser},
	}

	result, err := Propagate(semifinal, []models.Match{playoff})
	require.NoError(t, err)
	require.Len(t, result.Updates, 1)
	assert.Equal(t, SlotUpdate{MatchID: 6, Slot: models.TeamSlotA, TeamID: 10}, result.Updates[0])
}

func TestPropagateBothSlotsOfOneDependent(t *testing.T) {
	// A dependent can reference the same source in both slots only through
	// distinct outcomes; winner and loser land in their own slots.
	decider := finishedMatch(1, 1, 10, 20, 2, 0)
	dependent := models.Match{
		ID: 9, Round: 2,
		SourceA: &models.SourceLink{MatchID: 1, Outcome: models.SourceOutcomeWinner},
		SourceB: &models.SourceLink{MatchID: 1, Outcome: models.SourceOutcomeLoser},
	}

	result, err := Propagate(decider, []models.Match{dependent})
	require.NoError(t, err)
	require.Len(t, result.Updates, 2)
	assert.Equal(t, SlotUpdate{MatchID: 9, Slot: models.TeamSlotA, TeamID: 10}, result.Updates[0])
	assert.Equal(t, SlotUpdate{MatchID: 9, Slot: models.TeamSlotB, TeamID: 20}, result.Updates[1])
}

func TestPropagateNeverTouchesDirectSlots(t *testing.T) {
	semifinal := finishedMatch(1, 1, 10, 20, 2, 1)
	// Slot A holds a direct entrant with no source link; only slot B is
	// wired to the finished match.
	final := models.Match{
		ID: 5, Round: 2,
		TeamAID: intPtr(30),
		SourceB: &models.SourceLink{MatchID: 1, Outcome: models.SourceOutcomeWinner},
	}

	result, err := Propagate(semifinal, []models.Match{final})
	require.NoError(t, err)
	require.Len(t, result.Updates, 1)
	assert.Equal(t, models.TeamSlotB, result.Updates[0].Slot)
}

func TestPropagateExplicitWinnerOverridesLevelScore(t *testing.T) {
	semifinal := finishedMatch(1, 1, 10, 20, 1, 1)
	semifinal.WinnerTeamID = intPtr(20) // decided on penalties
	final := models.Match{
		ID: 5, Round: 2,
		SourceA: &models.SourceLink{MatchID: 1, Outcome: models.SourceOutcomeWinner},
	}

	result, err := Propagate(semifinal, []models.Match{final})
	require.NoError(t, err)
	require.Len(t, result.Updates, 1)
	assert.Equal(t, 20, result.Updates[0].TeamID)
}

func TestPropagateRejectsDraw(t *testing.T) {
	semifinal := finishedMatch(1, 1, 10, 20, 1, 1)
	final := models.Match{
		ID: 5, Round: 2,
		SourceA: &models.SourceLink{MatchID: 1, Outcome: models.SourceOutcomeWinner},
	}

	_, err := Propagate(semifinal, []models.Match{final})
	assert.ErrorIs(t, err, ErrWinnerRequired)
}

func TestPropagateRejectsWinnerOutsideMatch(t *testing.T) {
	semifinal := finishedMatch(1, 1, 10, 20, 2, 1)
	semifinal.WinnerTeamID = intPtr(99)

	_, err := Propagate(semifinal, []models.Match{})
	assert.ErrorIs(t, err, ErrWinnerRequired)
}

func TestPropagateRejectsUnfinishedMatch(t *testing.T) {
	m := finishedMatch(1, 1, 10, 20, 2, 1)
	m.Status = models.MatchStatusLive

	_, err := Propagate(m, nil)
	assert.ErrorIs(t, err, ErrMatchNotFinished)
}

func TestPropagateRejectsBackwardRoundLink(t *testing.T) {
	semifinal := finishedMatch(1, 2, 10, 20, 2, 1)
	earlier := models.Match{
		ID: 5, Round: 1,
		SourceA: &models.SourceLink{MatchID: 1, Outcome: models.SourceOutcomeWinner},
	}

	_, err := Propagate(semifinal, []models.Match{earlier})
	assert.ErrorIs(t, err, ErrInvalidSourceLink)
}

func TestPropagateRejectsCrossTournamentLink(t *testing.T) {
	semifinal := finishedMatch(1, 1, 10, 20, 2, 1)
	semifinal.TournamentID = 1
	foreign := models.Match{
		ID: 5, Round: 2, TournamentID: 2,
		SourceA: &models.SourceLink{MatchID: 1, Outcome: models.SourceOutcomeWinner},
	}

	_, err := Propagate(semifinal, []models.Match{foreign})
	assert.ErrorIs(t, err, ErrInvalidSourceLink)
}

func TestPropagateIgnoresUnrelatedDependents(t *testing.T) {
	semifinal := finishedMatch(1, 1, 10, 20, 2, 1)
	unrelated := models.Match{
		ID: 5, Round: 2,
		SourceA: &models.SourceLink{MatchID: 42, Outcome: models.SourceOutcomeWinner},
	}

	result, err := Propagate(semifinal, []models.Match{unrelated})
	require.NoError(t, err)
	assert.Empty(t, result.Updates)
	assert.Empty(t, result.Conflicts)
}
