package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matchdayhq/league-platform/models"
)

var ErrStandingNotFound = errors.New("standing row not found")

type StandingRepository interface {
	// ReplaceScope swaps out the cached table of one (stage, group) scope
	// in a single shot: delete, then batch insert. Callers run it inside a
	// transaction so readers never observe a half-written table.
	ReplaceScope(ctx context.Context, exec SQLExecutor, stageID int, groupID *int, rows []*models.StandingRow) error
	ListByScope(ctx context.Context, stageID int, groupID *int, sortByRank bool) ([]*models.StandingRow, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.StandingRow, error)
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStandingRepository) ReplaceScope(ctx context.Context, exec SQLExecutor, stageID int, groupID *int, rows []*models.StandingRow) error {
	executor := r.getExecutor(exec)

	deleteQuery := `DELETE FROM standing_rows WHERE stage_id = $1 AND group_id IS NOT DISTINCT FROM $2`
	if _, err := executor.ExecContext(ctx, deleteQuery, stageID, groupID); err != nil {
		return fmt.Errorf("ReplaceScope: failed to clear stage %d: %w", stageID, err)
	}

	insertQuery := `
		INSERT INTO standing_rows
			(stage_id, group_id, team_id, played, wins, draws, losses,
			 goals_for, goals_against, goal_diff, points, rank, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	now := time.Now()
	for _, row := range rows {
		if row.UpdatedAt.IsZero() {
			row.UpdatedAt = now
		}
		_, err := executor.ExecContext(ctx, insertQuery,
			stageID, groupID, row.TeamID, row.Played, row.Wins, row.Draws, row.Losses,
			row.GoalsFor, row.GoalsAgainst, row.GoalDiff, row.Points, row.Rank, row.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("ReplaceScope: failed to insert row for team %d: %w", row.TeamID, err)
		}
	}
	return nil
}

func (r *postgresStandingRepository) scanRow(rowScanner interface{ Scan(...interface{}) error }) (*models.StandingRow, error) {
	var s models.StandingRow
	err := rowScanner.Scan(
		&s.ID, &s.StageID, &s.GroupID, &s.TeamID, &s.Played, &s.Wins, &s.Draws, &s.Losses,
		&s.GoalsFor, &s.GoalsAgainst, &s.GoalDiff, &s.Points, &s.Rank, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresStandingRepository) ListByScope(ctx context.Context, stageID int, groupID *int, sortByRank bool) ([]*models.StandingRow, error) {
	queryBuilder := strings.Builder{}
	queryBuilder.WriteString(`
		SELECT id, stage_id, group_id, team_id, played, wins, draws, losses,
		       goals_for, goals_against, goal_diff, points, rank, updated_at
		FROM standing_rows
		WHERE stage_id = $1 AND group_id IS NOT DISTINCT FROM $2`)
	if sortByRank {
		queryBuilder.WriteString(" ORDER BY rank")
	} else {
		queryBuilder.WriteString(" ORDER BY team_id")
	}

	return r.queryRows(ctx, queryBuilder.String(), stageID, groupID)
}

func (r *postgresStandingRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.StandingRow, error) {
	query := `
		SELECT sr.id, sr.stage_id, sr.group_id, sr.team_id, sr.played, sr.wins, sr.draws, sr.losses,
		       sr.goals_for, sr.goals_against, sr.goal_diff, sr.points, sr.rank, sr.updated_at
		FROM standing_rows sr
		JOIN stages s ON s.id = sr.stage_id
		WHERE s.tournament_id = $1
		ORDER BY sr.stage_id, sr.group_id, sr.rank`

	return r.queryRows(ctx, query, tournamentID)
}

func (r *postgresStandingRepository) queryRows(ctx context.Context, query string, args ...interface{}) ([]*models.StandingRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query standing rows: %w", err)
	}
	defer rows.Close()

	standings := make([]*models.StandingRow, 0)
	for rows.Next() {
		s, scanErr := r.scanRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}
