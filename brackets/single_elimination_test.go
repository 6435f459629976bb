package brackets

import (
	"testing"

	"github.com/matchdayhq/league-platform/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleEliminationFourTeams(t *testing.T) {
	g := NewSingleEliminationGenerator()

	matches, err := g.Generate(GenerateParams{TeamIDs: []int{1, 2, 3, 4}})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	byUID := indexByUID(matches)
	semi1, semi2, final := byUID["R1M1"], byUID["R1M2"], byUID["R2M1"]
	require.NotNil(t, semi1)
	require.NotNil(t, semi2)
	require.NotNil(t, final)

	assert.Equal(t, 1, *semi1.TeamAID)
	assert.Equal(t, 2, *semi1.TeamBID)
	assert.Equal(t, 3, *semi2.TeamAID)
	assert.Equal(t, 4, *semi2.TeamBID)

	assert.Nil(t, final.TeamAID)
	assert.Nil(t, final.TeamBID)
	assert.Equal(t, "R1M1", *final.SourceAUID)
	assert.Equal(t, "R1M2", *final.SourceBUID)
	assert.Equal(t, models.SourceOutcomeWinner, final.SourceAOutcome)
	assert.Equal(t, models.SourceOutcomeWinner, final.SourceBOutcome)
}

func TestSingleEliminationByesSkipMatches(t *testing.T) {
	g := NewSingleEliminationGenerator()

	matches, err := g.Generate(GenerateParams{TeamIDs: []int{1, 2, 3, 4, 5}})
	require.NoError(t, err)
	// A bracket without byes creates exactly n-1 matches; byes never
	// produce placeholder games.
	require.Len(t, matches, 4)

	// Team 5 rides two byes into the final as a direct entrant.
	final := matches[len(matches)-1]
	assert.Equal(t, 3, final.Round)
	require.NotNil(t, final.TeamBID)
	assert.Equal(t, 5, *final.TeamBID)
	assert.Nil(t, final.SourceBUID)
	require.NotNil(t, final.SourceAUID)
	assert.Equal(t, "R2M1", *final.SourceAUID)
}

func TestSingleEliminationThirdPlacePlayoff(t *testing.T) {
	g := NewSingleEliminationGenerator()

	matches, err := g.Generate(GenerateParams{TeamIDs: []int{1, 2, 3, 4}, ThirdPlace: true})
	require.NoError(t, err)
	require.Len(t, matches, 4)

	playoff := matches[len(matches)-1]
	assert.Equal(t, 2, playoff.Round)
	assert.Equal(t, 2, playoff.BracketPos)
	assert.Equal(t, "R1M1", *playoff.SourceAUID)
	assert.Equal(t, "R1M2", *playoff.SourceBUID)
	assert.Equal(t, models.SourceOutcomeLoser, playoff.SourceAOutcome)
	assert.Equal(t, models.SourceOutcomeLoser, playoff.SourceBOutcome)
}

func TestSingleEliminationThirdPlaceSkippedWhenSemisCollapse(t *testing.T) {
	g := NewSingleEliminationGenerator()

	// With three teams one semifinal collapses into a bye, so there are no
	// two semifinal losers to pair.
	matches, err := g.Generate(GenerateParams{TeamIDs: []int{1, 2, 3}, ThirdPlace: true})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.NotEqual(t, models.SourceOutcomeLoser, m.SourceAOutcome)
		assert.NotEqual(t, models.SourceOutcomeLoser, m.SourceBOutcome)
	}
}

func TestSingleEliminationRejectsTooFewTeams(t *testing.T) {
	g := NewSingleEliminationGenerator()
	_, err := g.Generate(GenerateParams{TeamIDs: []int{1}})
	assert.Error(t, err)
}

func indexByUID(matches []*PlannedMatch) map[string]*PlannedMatch {
	byUID := make(map[string]*PlannedMatch, len(matches))
	for _, m := range matches {
		byUID[m.UID] = m
	}
	return byUID
}
