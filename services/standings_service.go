package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/matchdayhq/league-platform/models"
	"github.com/matchdayhq/league-platform/repositories"
	"github.com/matchdayhq/league-platform/standings"
	"golang.org/x/sync/singleflight"
)

type StandingsService interface {
	// Recalculate recomputes the table of one (stage, group) scope from
	// scratch and replaces the cached rows atomically. Concurrent calls
	// for the same scope are collapsed into one computation.
	Recalculate(ctx context.Context, stageID int, groupID *int) (*standings.Table, error)
	GetTable(ctx context.Context, stageID int, groupID *int) ([]*models.StandingRow, error)
}

type standingsService struct {
	db           *sql.DB
	stageRepo    repositories.StageRepository
	teamRepo     repositories.TeamRepository
	matchRepo    repositories.MatchRepository
	standingRepo repositories.StandingRepository
	cardRepo     repositories.CardRepository
	logger       *slog.Logger

	// Advisory at-most-one recompute per scope key. Not required for
	// correctness (recompute is idempotent for a given snapshot), it just
	// avoids wasted work when finalizations race.
	flight singleflight.Group
}

func NewStandingsService(
	db *sql.DB,
	stageRepo repositories.StageRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	cardRepo repositories.CardRepository,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		db:           db,
		stageRepo:    stageRepo,
		teamRepo:     teamRepo,
		matchRepo:    matchRepo,
		standingRepo: standingRepo,
		cardRepo:     cardRepo,
		logger:       logger,
	}
}

func (s *standingsService) Recalculate(ctx context.Context, stageID int, groupID *int) (*standings.Table, error) {
	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	if err := validateScope(stage, groupID); err != nil {
		return nil, err
	}
	if groupID != nil {
		group, err := s.stageRepo.GetGroup(ctx, *groupID)
		if err != nil {
			if errors.Is(err, repositories.ErrGroupNotFound) {
				return nil, ErrGroupNotFound
			}
			return nil, fmt.Errorf("failed to load group %d: %w", *groupID, err)
		}
		if group.StageID != stage.ID {
			return nil, ErrGroupStageMismatch
		}
	}

	key := scopeKey(stageID, groupID)
	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		return s.recalculate(ctx, stage, groupID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*standings.Table), nil
}

func (s *standingsService) recalculate(ctx context.Context, stage *models.Stage, groupID *int) (*standings.Table, error) {
	teamIDs, err := s.teamRepo.ListIDsByScope(ctx, stage.ID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants for stage %d: %w", stage.ID, err)
	}
	if len(teamIDs) == 0 {
		return nil, ErrStandingsScopeEmpty
	}

	cfg, err := stage.Config()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStageConfigInvalid, err)
	}
	criteria, err := standings.ParseCriteria(cfg.TieBreakers)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStageConfigInvalid, err)
	}

	matches, err := s.matchRepo.ListByStage(ctx, stage.ID, groupID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load matches for stage %d: %w", stage.ID, err)
	}
	cards, err := s.cardRepo.TallyByScope(ctx, stage.ID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load card tallies for stage %d: %w", stage.ID, err)
	}

	engine := standings.NewEngineWithRule(pointsRule(cfg))
	snapshot := make([]models.Match, len(matches))
	for i, m := range matches {
		snapshot[i] = *m
	}
	table, err := engine.Compute(
		standings.Scope{StageID: stage.ID, GroupID: groupID},
		snapshot, teamIDs, criteria, cards,
	)
	if err != nil {
		return nil, err
	}
	for _, warning := range table.Warnings {
		s.logger.Warn("standings data-integrity warning",
			slog.Int("stage_id", stage.ID), slog.String("warning", warning))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	rows := make([]*models.StandingRow, len(table.Rows))
	for i := range table.Rows {
		rows[i] = &table.Rows[i]
	}
	if err := s.standingRepo.ReplaceScope(ctx, tx, stage.ID, groupID, rows); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed after standings replace error", slog.Any("error", rbErr))
		}
		return nil, fmt.Errorf("failed to replace standings for stage %d: %w", stage.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit standings for stage %d: %w", stage.ID, err)
	}

	return table, nil
}

func (s *standingsService) GetTable(ctx context.Context, stageID int, groupID *int) ([]*models.StandingRow, error) {
	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	if err := validateScope(stage, groupID); err != nil {
		return nil, err
	}
	rows, err := s.standingRepo.ListByScope(ctx, stageID, groupID, true)
	if err != nil {
		return nil, err
	}

	teams, err := s.teamRepo.ListByScope(ctx, stageID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams for stage %d: %w", stageID, err)
	}
	byID := make(map[int]*models.Team, len(teams))
	for _, team := range teams {
		byID[team.ID] = team
	}
	for _, row := range rows {
		row.Team = byID[row.TeamID]
	}
	return rows, nil
}

// validateScope checks the (stage kind, group id) pairing: standings exist
// only for league/groups stages, a groups stage needs an explicit group,
// and a league stage has the implicit nil group.
func validateScope(stage *models.Stage, groupID *int) error {
	switch stage.Kind {
	case models.StageKindLeague:
		if groupID != nil {
			return ErrGroupStageMismatch
		}
	case models.StageKindGroups:
		if groupID == nil {
			return ErrGroupRequired
		}
	default:
		return ErrStageKindMismatch
	}
	return nil
}

func scopeKey(stageID int, groupID *int) string {
	if groupID == nil {
		return fmt.Sprintf("stage:%d", stageID)
	}
	return fmt.Sprintf("stage:%d:group:%d", stageID, *groupID)
}

func pointsRule(cfg *models.StageConfig) standings.PointsRule {
	rule := standings.DefaultPointsRule
	if cfg.PointsWin != nil {
		rule.Win = *cfg.PointsWin
	}
	if cfg.PointsDraw != nil {
		rule.Draw = *cfg.PointsDraw
	}
	if cfg.PointsLoss != nil {
		rule.Loss = *cfg.PointsLoss
	}
	return rule
}
