package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matchdayhq/league-platform/models"
)

var (
	ErrStageNotFound = errors.New("stage not found")
	ErrGroupNotFound = errors.New("group not found")
)

type StageRepository interface {
	GetByID(ctx context.Context, id int) (*models.Stage, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Stage, error)
	ListGroups(ctx context.Context, stageID int) ([]*models.Group, error)
	GetGroup(ctx context.Context, groupID int) (*models.Group, error)
}

type postgresStageRepository struct {
	db *sql.DB
}

func NewPostgresStageRepository(db *sql.DB) StageRepository {
	return &postgresStageRepository{db: db}
}

func (r *postgresStageRepository) GetByID(ctx context.Context, id int) (*models.Stage, error) {
	query := `
		SELECT id, tournament_id, name, kind, position, config_json
		FROM stages WHERE id = $1`

	stage := &models.Stage{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&stage.ID, &stage.TournamentID, &stage.Name, &stage.Kind, &stage.Position, &stage.ConfigJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to scan stage by id %d: %w", id, err)
	}
	return stage, nil
}

func (r *postgresStageRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Stage, error) {
	query := `
		SELECT id, tournament_id, name, kind, position, config_json
		FROM stages WHERE tournament_id = $1
		ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	stages := make([]*models.Stage, 0)
	for rows.Next() {
		stage := &models.Stage{}
		if err := rows.Scan(&stage.ID, &stage.TournamentID, &stage.Name, &stage.Kind, &stage.Position, &stage.ConfigJSON); err != nil {
			return nil, fmt.Errorf("failed to scan stage row: %w", err)
		}
		stages = append(stages, stage)
	}
	return stages, rows.Err()
}

func (r *postgresStageRepository) ListGroups(ctx context.Context, stageID int) ([]*models.Group, error) {
	query := `SELECT id, stage_id, name FROM groups WHERE stage_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.StageID, &group.Name); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

func (r *postgresStageRepository) GetGroup(ctx context.Context, groupID int) (*models.Group, error) {
	query := `SELECT id, stage_id, name FROM groups WHERE id = $1`

	group := &models.Group{}
	err := r.db.QueryRowContext(ctx, query, groupID).Scan(&group.ID, &group.StageID, &group.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to scan group by id %d: %w", groupID, err)
	}
	return group, nil
}
