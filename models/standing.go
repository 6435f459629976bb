package models

import "time"

// StandingRow is one line of a league or group table. Rows are a derived
// cache: the standings service recomputes and replaces the whole set for a
// (stage, group) scope, nothing else writes them.
type StandingRow struct {
	ID           int       `json:"id" db:"id"`
	StageID      int       `json:"stage_id" db:"stage_id"`
	GroupID      *int      `json:"group_id,omitempty" db:"group_id"`
	TeamID       int       `json:"team_id" db:"team_id"`
	Played       int       `json:"played" db:"played"`
	Wins         int       `json:"wins" db:"wins"`
	Draws        int       `json:"draws" db:"draws"`
	Losses       int       `json:"losses" db:"losses"`
	GoalsFor     int       `json:"goals_for" db:"goals_for"`
	GoalsAgainst int       `json:"goals_against" db:"goals_against"`
	GoalDiff     int       `json:"goal_diff" db:"goal_diff"`
	Points       int       `json:"points" db:"points"`
	Rank         int       `json:"rank" db:"rank"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Team *Team `json:"team,omitempty" db:"-"`
}

// CardTally aggregates disciplinary sanctions for one team within a
// standings scope. The blue card is a sanction specific to local
// competition rules, distinct from yellow and red.
type CardTally struct {
	TeamID int `json:"team_id" db:"team_id"`
	Yellow int `json:"yellow" db:"yellow"`
	Red    int `json:"red" db:"red"`
	Blue   int `json:"blue" db:"blue"`
}
