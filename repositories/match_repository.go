package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/matchdayhq/league-platform/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchTeamInvalid       = errors.New("match team conflict or invalid")
	// ErrMatchSlotTaken is returned by the conditional slot fill when the
	// slot is no longer null: either a concurrent propagation won the race
	// or a manual correction is in place. The caller treats it as a
	// conflict to surface, not an error to retry.
	ErrMatchSlotTaken = errors.New("match team slot already filled")
)

const matchColumns = `
	id, tournament_id, stage_id, group_id, team_a_id, team_b_id,
	score_a, score_b, status, winner_team_id, round, bracket_pos,
	team_a_source_match_id, team_a_source_outcome,
	team_b_source_match_id, team_b_source_outcome,
	match_time, created_at`

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListByStage(ctx context.Context, stageID int, groupID *int, status *models.MatchStatus) ([]*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// ListDependents returns every match whose source link references the
	// given match id, i.e. the immediate downstream nodes of the bracket.
	ListDependents(ctx context.Context, matchID int) ([]*models.Match, error)
	UpdateScoreStatusWinner(ctx context.Context, id int, scoreA, scoreB int, status models.MatchStatus, winnerTeamID *int) error
	// FillTeamSlot writes a team into a slot only if the slot is still
	// null. Returns ErrMatchSlotTaken otherwise; the read-check-write is a
	// single statement, so concurrent propagations cannot lose an update.
	FillTeamSlot(ctx context.Context, exec SQLExecutor, matchID int, slot models.TeamSlot, teamID int) error
	UpdateSourceLinks(ctx context.Context, exec SQLExecutor, matchID int, sourceA, sourceB *models.SourceLink) error
	CountUnfinishedByStage(ctx context.Context, stageID int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, stage_id, group_id, team_a_id, team_b_id, score_a, score_b,
			 status, winner_team_id, round, bracket_pos,
			 team_a_source_match_id, team_a_source_outcome,
			 team_b_source_match_id, team_b_source_outcome, match_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at`

	var srcAMatch, srcBMatch *int
	var srcAOutcome, srcBOutcome *string
	if match.SourceA != nil {
		srcAMatch = &match.SourceA.MatchID
		outcome := string(match.SourceA.Outcome)
		srcAOutcome = &outcome
	}
	if match.SourceB != nil {
		srcBMatch = &match.SourceB.MatchID
		outcome := string(match.SourceB.Outcome)
		srcBOutcome = &outcome
	}

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID, match.StageID, match.GroupID,
		match.TeamAID, match.TeamBID, match.ScoreA, match.ScoreB,
		match.Status, match.WinnerTeamID, match.Round, match.BracketPos,
		srcAMatch, srcAOutcome, srcBMatch, srcBOutcome, match.MatchTime,
	).Scan(&match.ID, &match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) scanMatch(rowScanner interface{ Scan(...interface{}) error }) (*models.Match, error) {
	var m models.Match
	var srcAMatch, srcBMatch sql.NullInt64
	var srcAOutcome, srcBOutcome sql.NullString

	err := rowScanner.Scan(
		&m.ID, &m.TournamentID, &m.StageID, &m.GroupID, &m.TeamAID, &m.TeamBID,
		&m.ScoreA, &m.ScoreB, &m.Status, &m.WinnerTeamID, &m.Round, &m.BracketPos,
		&srcAMatch, &srcAOutcome, &srcBMatch, &srcBOutcome,
		&m.MatchTime, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if srcAMatch.Valid {
		m.SourceA = &models.SourceLink{MatchID: int(srcAMatch.Int64), Outcome: models.SourceOutcome(srcAOutcome.String)}
	}
	if srcBMatch.Valid {
		m.SourceB = &models.SourceLink{MatchID: int(srcBMatch.Int64), Outcome: models.SourceOutcome(srcBOutcome.String)}
	}
	return &m, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	match, err := r.scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return match, nil
}

func (r *postgresMatchRepository) ListByStage(ctx context.Context, stageID int, groupID *int, status *models.MatchStatus) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE stage_id = $1`)

	args := []interface{}{stageID}
	placeholder := 2

	if groupID != nil {
		queryBuilder.WriteString(" AND group_id = $")
		queryBuilder.WriteString(strconv.Itoa(placeholder))
		args = append(args, *groupID)
		placeholder++
	}
	if status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholder))
		args = append(args, *status)
		placeholder++
	}
	queryBuilder.WriteString(" ORDER BY round, bracket_pos, id")

	return r.queryMatches(ctx, queryBuilder.String(), args...)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY stage_id, round, bracket_pos, id`
	return r.queryMatches(ctx, query, tournamentID)
}

func (r *postgresMatchRepository) ListDependents(ctx context.Context, matchID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches
		WHERE team_a_source_match_id = $1 OR team_b_source_match_id = $1
		ORDER BY round, bracket_pos, id`
	return r.queryMatches(ctx, query, matchID)
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := r.scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) UpdateScoreStatusWinner(ctx context.Context, id int, scoreA, scoreB int, status models.MatchStatus, winnerTeamID *int) error {
	query := `
		UPDATE matches
		SET score_a = $1, score_b = $2, status = $3, winner_team_id = $4
		WHERE id = $5`

	result, err := r.db.ExecContext(ctx, query, scoreA, scoreB, status, winnerTeamID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) FillTeamSlot(ctx context.Context, exec SQLExecutor, matchID int, slot models.TeamSlot, teamID int) error {
	executor := exec
	if executor == nil {
		executor = r.db
	}

	column := "team_a_id"
	if slot == models.TeamSlotB {
		column = "team_b_id"
	}
	query := fmt.Sprintf(`UPDATE matches SET %s = $1 WHERE id = $2 AND %s IS NULL`, column, column)

	result, err := executor.ExecContext(ctx, query, teamID, matchID)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchSlotTaken)
}

func (r *postgresMatchRepository) UpdateSourceLinks(ctx context.Context, exec SQLExecutor, matchID int, sourceA, sourceB *models.SourceLink) error {
	var srcAMatch, srcBMatch *int
	var srcAOutcome, srcBOutcome *string
	if sourceA != nil {
		srcAMatch = &sourceA.MatchID
		outcome := string(sourceA.Outcome)
		srcAOutcome = &outcome
	}
	if sourceB != nil {
		srcBMatch = &sourceB.MatchID
		outcome := string(sourceB.Outcome)
		srcBOutcome = &outcome
	}

	query := `
		UPDATE matches
		SET team_a_source_match_id = $1, team_a_source_outcome = $2,
		    team_b_source_match_id = $3, team_b_source_outcome = $4
		WHERE id = $5`

	result, err := exec.ExecContext(ctx, query, srcAMatch, srcAOutcome, srcBMatch, srcBOutcome, matchID)
	if err != nil {
		return fmt.Errorf("UpdateSourceLinks: failed for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CountUnfinishedByStage(ctx context.Context, stageID int) (int, error) {
	query := `
		SELECT COUNT(*) FROM matches
		WHERE stage_id = $1 AND status NOT IN ('finished', 'canceled')`

	var count int
	if err := r.db.QueryRowContext(ctx, query, stageID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unfinished matches for stage %d: %w", stageID, err)
	}
	return count, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey", "matches_stage_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_team_a_id_fkey", "matches_team_b_id_fkey", "matches_winner_team_id_fkey":
			return ErrMatchTeamInvalid
		}
	}
	return err
}
