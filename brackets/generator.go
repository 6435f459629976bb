package brackets

import "github.com/matchdayhq/league-platform/models"

// PlannedMatch is one match of a freshly generated stage, before it has a
// database id. Source links between planned matches are expressed through
// UIDs; the tournament service resolves them to match ids in a second pass
// when the plan is persisted.
type PlannedMatch struct {
	UID        string
	Round      int
	BracketPos int

	TeamAID *int
	TeamBID *int

	SourceAUID     *string
	SourceAOutcome models.SourceOutcome
	SourceBUID     *string
	SourceBOutcome models.SourceOutcome
}

type GenerateParams struct {
	TeamIDs []int
	// Knockout: add a third-place playoff fed by the semifinal losers.
	ThirdPlace bool
	// Round robin: every pairing is played twice, legs mirrored.
	DoubleRound bool
}

type Generator interface {
	Generate(params GenerateParams) ([]*PlannedMatch, error)
	Name() string
}
