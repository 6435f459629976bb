package models

import "encoding/json"

type StageKind string

const (
	StageKindLeague   StageKind = "league"
	StageKindGroups   StageKind = "groups"
	StageKindKnockout StageKind = "knockout"
)

// StageConfig is the parsed form of a stage's configuration blob.
// TieBreakers holds raw criterion tags; they are validated by the
// standings package when a table is computed, not here.
type StageConfig struct {
	TieBreakers []string `json:"tie_breakers,omitempty"`
	PointsWin   *int     `json:"points_win,omitempty"`
	PointsDraw  *int     `json:"points_draw,omitempty"`
	PointsLoss  *int     `json:"points_loss,omitempty"`
	// Knockout: add a third-place playoff fed by the semifinal losers.
	ThirdPlace bool `json:"third_place,omitempty"`
	// League/groups: every pairing is played twice (home and away).
	DoubleRound bool `json:"double_round,omitempty"`
}

// Stage is one phase of a tournament with its own ranking rules.
// A "groups" stage owns zero or more Groups; a "league" stage has an
// implicit single group (null group id on its matches and standings).
type Stage struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Kind         StageKind `json:"kind" db:"kind"`
	Position     int       `json:"position" db:"position"`
	ConfigJSON   *string   `json:"-" db:"config_json"`

	Groups []Group `json:"groups,omitempty" db:"-"`
}

// Config unmarshals the raw configuration blob. A missing or empty blob
// yields a zero config, which makes every setting fall back to defaults.
func (s *Stage) Config() (*StageConfig, error) {
	cfg := &StageConfig{}
	if s.ConfigJSON == nil || *s.ConfigJSON == "" {
		return cfg, nil
	}
	if err := json.Unmarshal([]byte(*s.ConfigJSON), cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

type Group struct {
	ID      int    `json:"id" db:"id"`
	StageID int    `json:"stage_id" db:"stage_id"`
	Name    string `json:"name" db:"name"`
}
