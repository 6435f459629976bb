package models

import "time"

// TournamentStatus mirrors the tournament_status ENUM in the database.
type TournamentStatus string

const (
	TournamentStatusScheduled TournamentStatus = "scheduled"
	TournamentStatusRunning   TournamentStatus = "running"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusArchived  TournamentStatus = "archived"
)

// TournamentFormat is a coarse tag describing which stage kinds a
// tournament is built from.
type TournamentFormat string

const (
	TournamentFormatLeague   TournamentFormat = "league"
	TournamentFormatGroups   TournamentFormat = "groups"
	TournamentFormatKnockout TournamentFormat = "knockout"
	TournamentFormatMixed    TournamentFormat = "mixed"
)

type Tournament struct {
	ID           int              `json:"id" db:"id"`
	Name         string           `json:"name" db:"name"`
	Slug         string           `json:"slug" db:"slug"`
	Season       string           `json:"season" db:"season"`
	Status       TournamentStatus `json:"status" db:"status"`
	Format       TournamentFormat `json:"format" db:"format"`
	WinnerTeamID *int             `json:"winner_team_id,omitempty" db:"winner_team_id"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`

	// Optional linked data, not mapped directly; populated by the service.
	Stages    []Stage       `json:"stages,omitempty" db:"-"`
	Matches   []Match       `json:"matches,omitempty" db:"-"`
	Standings []StandingRow `json:"standings,omitempty" db:"-"`
}

// CanTransitionTo reports whether the tournament lifecycle allows moving
// from the current status to next.
func (t *Tournament) CanTransitionTo(next TournamentStatus) bool {
	if t.Status == next {
		return true
	}
	allowed := map[TournamentStatus][]TournamentStatus{
		TournamentStatusScheduled: {TournamentStatusRunning},
		TournamentStatusRunning:   {TournamentStatusCompleted},
		TournamentStatusCompleted: {TournamentStatusArchived},
		TournamentStatusArchived:  {},
	}
	for _, s := range allowed[t.Status] {
		if s == next {
			return true
		}
	}
	return false
}
