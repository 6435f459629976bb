package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/matchdayhq/league-platform/brackets"
	"github.com/matchdayhq/league-platform/live"
	"github.com/matchdayhq/league-platform/models"
	"github.com/matchdayhq/league-platform/repositories"
	"golang.org/x/sync/errgroup"
)

type TournamentService interface {
	// Get loads a tournament with its stages, groups, matches and cached
	// standings.
	Get(ctx context.Context, tournamentID int) (*models.Tournament, error)
	GetBySlug(ctx context.Context, slug string) (*models.Tournament, error)
	// GetBracket returns the matches of the tournament's knockout stages
	// in (round, bracket position) order.
	GetBracket(ctx context.Context, tournamentID int) ([]*models.Match, error)
	// SetupStage generates and persists the match plan of a stage:
	// round-robin fixtures for league/groups kinds, an elimination tree
	// with source links for knockout.
	SetupStage(ctx context.Context, tournamentID, stageID int) ([]*models.Match, error)
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	stageRepo      repositories.StageRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	standingRepo   repositories.StandingRepository
	hub            *live.Hub
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	stageRepo repositories.StageRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	standingRepo repositories.StandingRepository,
	hub *live.Hub,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		stageRepo:      stageRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		standingRepo:   standingRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *tournamentService) Get(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	if err := s.populate(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) GetBySlug(ctx context.Context, slug string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %q: %w", slug, err)
	}
	if err := s.populate(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) populate(ctx context.Context, tournament *models.Tournament) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stages, err := s.stageRepo.ListByTournament(gCtx, tournament.ID)
		if err != nil {
			return fmt.Errorf("failed to load stages: %w", err)
		}
		tournament.Stages = make([]models.Stage, len(stages))
		for i, stage := range stages {
			groups, err := s.stageRepo.ListGroups(gCtx, stage.ID)
			if err != nil {
				return fmt.Errorf("failed to load groups of stage %d: %w", stage.ID, err)
			}
			stage.Groups = make([]models.Group, len(groups))
			for j, group := range groups {
				stage.Groups[j] = *group
			}
			tournament.Stages[i] = *stage
		}
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, tournament.ID)
		if err != nil {
			return fmt.Errorf("failed to load matches: %w", err)
		}
		tournament.Matches = make([]models.Match, len(matches))
		for i, m := range matches {
			tournament.Matches[i] = *m
		}
		return nil
	})

	g.Go(func() error {
		rows, err := s.standingRepo.ListByTournament(gCtx, tournament.ID)
		if err != nil {
			return fmt.Errorf("failed to load standings: %w", err)
		}
		tournament.Standings = make([]models.StandingRow, len(rows))
		for i, row := range rows {
			tournament.Standings[i] = *row
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to populate tournament %d: %w", tournament.ID, err)
	}
	return nil
}

func (s *tournamentService) GetBracket(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	stages, err := s.stageRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages for tournament %d: %w", tournamentID, err)
	}

	bracket := make([]*models.Match, 0)
	for _, stage := range stages {
		if stage.Kind != models.StageKindKnockout {
			continue
		}
		matches, err := s.matchRepo.ListByStage(ctx, stage.ID, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to list matches for stage %d: %w", stage.ID, err)
		}
		bracket = append(bracket, matches...)
	}
	return bracket, nil
}

func (s *tournamentService) SetupStage(ctx context.Context, tournamentID, stageID int) ([]*models.Match, error) {
	stage, err := s.stageRepo.GetByID(ctx, stageID)
	if err != nil {
		if errors.Is(err, repositories.ErrStageNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("failed to load stage %d: %w", stageID, err)
	}
	if stage.TournamentID != tournamentID {
		return nil, ErrStageNotFound
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, stage.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament %d: %w", stage.TournamentID, err)
	}
	cfg, err := stage.Config()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStageConfigInvalid, err)
	}

	existing, err := s.matchRepo.ListByStage(ctx, stageID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing matches for stage %d: %w", stageID, err)
	}
	if len(existing) > 0 {
		return nil, ErrStageAlreadySetUp
	}

	var plans []groupPlan

	switch stage.Kind {
	case models.StageKindKnockout, models.StageKindLeague:
		planned, err := s.generatePlan(ctx, stage, cfg, nil)
		if err != nil {
			return nil, err
		}
		plans = append(plans, groupPlan{planned: planned})
	case models.StageKindGroups:
		groups, err := s.stageRepo.ListGroups(ctx, stageID)
		if err != nil {
			return nil, fmt.Errorf("failed to list groups for stage %d: %w", stageID, err)
		}
		if len(groups) == 0 {
			return nil, ErrGroupRequired
		}
		for _, group := range groups {
			groupID := group.ID
			planned, err := s.generatePlan(ctx, stage, cfg, &groupID)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", group.Name, err)
			}
			plans = append(plans, groupPlan{groupID: &groupID, planned: planned})
		}
	default:
		return nil, ErrStageKindMismatch
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	created, err := s.persistPlans(ctx, tx, stage, plans)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("rollback failed after stage setup error", slog.Any("error", rbErr))
		}
		return nil, err
	}
	if tournament.Status != models.TournamentStatusRunning && tournament.CanTransitionTo(models.TournamentStatusRunning) {
		if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournament.ID, models.TournamentStatusRunning); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback failed after status update error", slog.Any("error", rbErr))
			}
			return nil, fmt.Errorf("failed to mark tournament %d running: %w", tournament.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit stage %d setup: %w", stageID, err)
	}

	s.logger.Info("stage set up",
		slog.Int("stage_id", stageID),
		slog.String("kind", string(stage.Kind)),
		slog.Int("matches", len(created)))
	if s.hub != nil {
		s.hub.BroadcastToRoom("tournament_"+strconv.Itoa(stage.TournamentID), live.Message{
			Type:    live.EventBracketUpdated,
			Payload: created,
		})
	}
	return created, nil
}

func (s *tournamentService) generatePlan(ctx context.Context, stage *models.Stage, cfg *models.StageConfig, groupID *int) ([]*brackets.PlannedMatch, error) {
	teamIDs, err := s.teamRepo.ListIDsByScope(ctx, stage.ID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams for stage %d: %w", stage.ID, err)
	}
	if len(teamIDs) < 2 {
		return nil, ErrNotEnoughTeams
	}

	var generator brackets.Generator
	if stage.Kind == models.StageKindKnockout {
		generator = brackets.NewSingleEliminationGenerator()
	} else {
		generator = brackets.NewRoundRobinGenerator()
	}

	planned, err := generator.Generate(brackets.GenerateParams{
		TeamIDs:     teamIDs,
		ThirdPlace:  cfg.ThirdPlace,
		DoubleRound: cfg.DoubleRound,
	})
	if err != nil {
		return nil, fmt.Errorf("%s generation failed for stage %d: %w", generator.Name(), stage.ID, err)
	}
	return planned, nil
}

// groupPlan is the generated fixture plan of one scope. League and
// knockout stages use the implicit nil group.
type groupPlan struct {
	groupID *int
	planned []*brackets.PlannedMatch
}

// persistPlans writes planned matches in two passes: insert every match
// first to obtain ids, then resolve the planned UID links into
// source-match references.
func (s *tournamentService) persistPlans(ctx context.Context, tx *sql.Tx, stage *models.Stage, plans []groupPlan) ([]*models.Match, error) {
	kickoff := time.Now().Add(15 * time.Minute)
	created := make([]*models.Match, 0)

	for _, plan := range plans {
		uidToID := make(map[string]int, len(plan.planned))
		uidToMatch := make(map[string]*models.Match, len(plan.planned))

		for _, pm := range plan.planned {
			match := &models.Match{
				TournamentID: stage.TournamentID,
				StageID:      stage.ID,
				GroupID:      plan.groupID,
				TeamAID:      pm.TeamAID,
				TeamBID:      pm.TeamBID,
				Status:       models.MatchStatusScheduled,
				Round:        pm.Round,
				BracketPos:   pm.BracketPos,
				MatchTime:    kickoff,
			}
			if err := s.matchRepo.Create(ctx, tx, match); err != nil {
				return nil, fmt.Errorf("failed to create match %s: %w", pm.UID, err)
			}
			uidToID[pm.UID] = match.ID
			uidToMatch[pm.UID] = match
			created = append(created, match)
		}

		for _, pm := range plan.planned {
			if pm.SourceAUID == nil && pm.SourceBUID == nil {
				continue
			}
			match := uidToMatch[pm.UID]
			if pm.SourceAUID != nil {
				match.SourceA = &models.SourceLink{MatchID: uidToID[*pm.SourceAUID], Outcome: pm.SourceAOutcome}
			}
			if pm.SourceBUID != nil {
				match.SourceB = &models.SourceLink{MatchID: uidToID[*pm.SourceBUID], Outcome: pm.SourceBOutcome}
			}
			if err := s.matchRepo.UpdateSourceLinks(ctx, tx, match.ID, match.SourceA, match.SourceB); err != nil {
				return nil, fmt.Errorf("failed to link sources of match %s: %w", pm.UID, err)
			}
		}
	}
	return created, nil
}
