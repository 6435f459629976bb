package services

import (
	"testing"

	"github.com/matchdayhq/league-platform/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func scheduledMatch() *models.Match {
	return &models.Match{
		ID:      1,
		TeamAID: intPtr(10),
		TeamBID: intPtr(20),
		Status:  models.MatchStatusScheduled,
	}
}

func TestValidateFinalizationDerivesWinnerFromScore(t *testing.T) {
	winner, err := validateFinalization(scheduledMatch(), FinalizeMatchInput{ScoreA: 2, ScoreB: 1})
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, 10, *winner)

	winner, err = validateFinalization(scheduledMatch(), FinalizeMatchInput{ScoreA: 0, ScoreB: 3})
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, 20, *winner)
}

func TestValidateFinalizationDrawHasNoWinner(t *testing.T) {
	winner, err := validateFinalization(scheduledMatch(), FinalizeMatchInput{ScoreA: 1, ScoreB: 1})
	require.NoError(t, err)
	assert.Nil(t, winner)
}

func TestValidateFinalizationLevelScoreAcceptsExplicitWinner(t *testing.T) {
	input := FinalizeMatchInput{ScoreA: 2, ScoreB: 2, WinnerTeamID: intPtr(20)}
	winner, err := validateFinalization(scheduledMatch(), input)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, 20, *winner)
}

func TestValidateFinalizationRejectsContradictoryWinner(t *testing.T) {
	input := FinalizeMatchInput{ScoreA: 3, ScoreB: 0, WinnerTeamID: intPtr(20)}
	_, err := validateFinalization(scheduledMatch(), input)
	assert.ErrorIs(t, err, ErrWinnerContradictsScore)
}

func TestValidateFinalizationRejectsForeignWinner(t *testing.T) {
	input := FinalizeMatchInput{ScoreA: 1, ScoreB: 1, WinnerTeamID: intPtr(99)}
	_, err := validateFinalization(scheduledMatch(), input)
	assert.ErrorIs(t, err, ErrWinnerNotInMatch)
}

func TestValidateFinalizationRejectsNegativeScores(t *testing.T) {
	_, err := validateFinalization(scheduledMatch(), FinalizeMatchInput{ScoreA: -1, ScoreB: 0})
	assert.ErrorIs(t, err, ErrInvalidScore)
}

func TestValidateFinalizationRejectsCanceledMatch(t *testing.T) {
	match := scheduledMatch()
	match.Status = models.MatchStatusCanceled
	_, err := validateFinalization(match, FinalizeMatchInput{ScoreA: 1, ScoreB: 0})
	assert.ErrorIs(t, err, ErrMatchStatusTransition)
}

func TestValidateFinalizationAllowsCorrectionOfFinishedMatch(t *testing.T) {
	match := scheduledMatch()
	match.Status = models.MatchStatusFinished
	winner, err := validateFinalization(match, FinalizeMatchInput{ScoreA: 0, ScoreB: 1})
	require.NoError(t, err)
	assert.Equal(t, 20, *winner)
}

func TestValidateFinalizationRejectsUnresolvedSlots(t *testing.T) {
	match := scheduledMatch()
	match.TeamBID = nil
	_, err := validateFinalization(match, FinalizeMatchInput{ScoreA: 1, ScoreB: 0})
	assert.ErrorIs(t, err, ErrMatchTeamsUnresolved)
}
