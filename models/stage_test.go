package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestStageConfigParsesBlob(t *testing.T) {
	blob := `{"tie_breakers":["points","h2h_points"],"points_win":2,"third_place":true}`
	stage := &Stage{Kind: StageKindKnockout, ConfigJSON: strPtr(blob)}

	cfg, err := stage.Config()
	require.NoError(t, err)
	assert.Equal(t, []string{"points", "h2h_points"}, cfg.TieBreakers)
	require.NotNil(t, cfg.PointsWin)
	assert.Equal(t, 2, *cfg.PointsWin)
	assert.True(t, cfg.ThirdPlace)
	assert.False(t, cfg.DoubleRound)
	assert.Nil(t, cfg.PointsDraw)
}

func TestStageConfigMissingBlobYieldsDefaults(t *testing.T) {
	for _, stage := range []*Stage{
		{Kind: StageKindLeague},
		{Kind: StageKindLeague, ConfigJSON: strPtr("")},
	} {
		cfg, err := stage.Config()
		require.NoError(t, err)
		assert.Empty(t, cfg.TieBreakers)
		assert.Nil(t, cfg.PointsWin)
	}
}

func TestStageConfigRejectsMalformedBlob(t *testing.T) {
	stage := &Stage{ConfigJSON: strPtr(`{"tie_breakers":`)}
	_, err := stage.Config()
	assert.Error(t, err)
}

func TestTournamentStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to TournamentStatus
		ok       bool
	}{
		{TournamentStatusScheduled, TournamentStatusRunning, true},
		{TournamentStatusRunning, TournamentStatusCompleted, true},
		{TournamentStatusCompleted, TournamentStatusArchived, true},
		{TournamentStatusScheduled, TournamentStatusCompleted, false},
		{TournamentStatusCompleted, TournamentStatusRunning, false},
		{TournamentStatusArchived, TournamentStatusRunning, false},
		{TournamentStatusRunning, TournamentStatusRunning, true},
	}
	for _, tc := range cases {
		tournament := &Tournament{Status: tc.from}
		assert.Equal(t, tc.ok, tournament.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
