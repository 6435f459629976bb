package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matchdayhq/league-platform/models"
)

var ErrTeamNotFound = errors.New("team not found")

type TeamRepository interface {
	GetByID(ctx context.Context, id int) (*models.Team, error)
	// ListIDsByScope returns the ids of the teams assigned to a
	// (stage, group) pair via team_stage_groups. A nil groupID is the
	// implicit single group of a league stage.
	ListIDsByScope(ctx context.Context, stageID int, groupID *int) ([]int, error)
	ListByScope(ctx context.Context, stageID int, groupID *int) ([]*models.Team, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, name, logo_key, created_at FROM teams WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&team.ID, &team.Name, &team.LogoKey, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team by id %d: %w", id, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) ListIDsByScope(ctx context.Context, stageID int, groupID *int) ([]int, error) {
	query := `
		SELECT team_id FROM team_stage_groups
		WHERE stage_id = $1 AND group_id IS NOT DISTINCT FROM $2
		ORDER BY team_id`

	rows, err := r.db.QueryContext(ctx, query, stageID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team ids for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan team id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *postgresTeamRepository) ListByScope(ctx context.Context, stageID int, groupID *int) ([]*models.Team, error) {
	query := `
		SELECT t.id, t.name, t.logo_key, t.created_at
		FROM teams t
		JOIN team_stage_groups tsg ON tsg.team_id = t.id
		WHERE tsg.stage_id = $1 AND tsg.group_id IS NOT DISTINCT FROM $2
		ORDER BY t.id`

	rows, err := r.db.QueryContext(ctx, query, stageID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		if err := rows.Scan(&team.ID, &team.Name, &team.LogoKey, &team.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}
