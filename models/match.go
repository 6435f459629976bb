package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusLive      MatchStatus = "live"
	MatchStatusFinished  MatchStatus = "finished"
	MatchStatusPostponed MatchStatus = "postponed"
	MatchStatusCanceled  MatchStatus = "canceled"
)

// TeamSlot names one of the two team positions of a match.
type TeamSlot string

const (
	TeamSlotA TeamSlot = "A"
	TeamSlotB TeamSlot = "B"
)

type SourceOutcome string

const (
	SourceOutcomeWinner SourceOutcome = "winner"
	SourceOutcomeLoser  SourceOutcome = "loser"
)

// SourceLink points a team slot at the outcome of an earlier match in the
// same tournament. The referenced match must have a strictly smaller round
// number, which keeps the bracket graph acyclic.
type SourceLink struct {
	MatchID int           `json:"match_id"`
	Outcome SourceOutcome `json:"outcome"`
}

type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	StageID      int         `json:"stage_id" db:"stage_id"`
	GroupID      *int        `json:"group_id,omitempty" db:"group_id"`
	TeamAID      *int        `json:"team_a_id,omitempty" db:"team_a_id"`
	TeamBID      *int        `json:"team_b_id,omitempty" db:"team_b_id"`
	ScoreA       *int        `json:"score_a,omitempty" db:"score_a"`
	ScoreB       *int        `json:"score_b,omitempty" db:"score_b"`
	Status       MatchStatus `json:"status" db:"status"`
	WinnerTeamID *int        `json:"winner_team_id,omitempty" db:"winner_team_id"`
	Round        int         `json:"round" db:"round"`
	BracketPos   int         `json:"bracket_pos" db:"bracket_pos"`
	SourceA      *SourceLink `json:"source_a,omitempty" db:"-"`
	SourceB      *SourceLink `json:"source_b,omitempty" db:"-"`
	MatchTime    time.Time   `json:"match_time" db:"match_time"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// Source returns the source-match link feeding the given slot, or nil.
func (m *Match) Source(slot TeamSlot) *SourceLink {
	if slot == TeamSlotA {
		return m.SourceA
	}
	return m.SourceB
}

// TeamIn returns the team currently occupying the given slot, or nil if
// the slot is still unresolved.
func (m *Match) TeamIn(slot TeamSlot) *int {
	if slot == TeamSlotA {
		return m.TeamAID
	}
	return m.TeamBID
}
