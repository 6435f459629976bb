package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/matchdayhq/league-platform/brackets"
	"github.com/matchdayhq/league-platform/live"
	"github.com/matchdayhq/league-platform/models"
	"github.com/matchdayhq/league-platform/repositories"
)

type FinalizeMatchInput struct {
	ScoreA int `json:"score_a"`
	ScoreB int `json:"score_b"`
	// WinnerTeamID resolves a level score in a knockout stage (e.g. a
	// penalty shoot-out). It is derived from the score when the score is
	// decisive.
	WinnerTeamID *int `json:"winner_team_id,omitempty"`
}

type FinalizeMatchResult struct {
	Match *models.Match `json:"match"`

	// League/groups: the freshly recomputed table for the match's scope.
	Standings []models.StandingRow `json:"standings,omitempty"`

	// Knockout: slot assignments applied downstream, and conflicts that
	// were detected but deliberately not applied.
	SlotUpdates   []brackets.SlotUpdate   `json:"slot_updates,omitempty"`
	SlotConflicts []brackets.SlotConflict `json:"slot_conflicts,omitempty"`

	// Data-integrity warnings; the result above them is still valid.
	Warnings []string `json:"warnings,omitempty"`

	TournamentWinnerID *int `json:"tournament_winner_id,omitempty"`
}

type MatchService interface {
	// Finalize records a result and runs everything that hangs off it:
	// standings recompute for league/group stages, bracket propagation for
	// knockout stages, tournament completion when the final is decided.
	Finalize(ctx context.Context, matchID int, input FinalizeMatchInput) (*FinalizeMatchResult, error)
	GetByID(ctx context.Context, matchID int) (*models.Match, error)
	ListByStage(ctx context.Context, stageID int, groupID *int) ([]*models.Match, error)
}

type matchService struct {
	matchRepo      repositories.MatchRepository
	stageRepo      repositories.StageRepository
	tournamentRepo repositories.TournamentRepository
	standingsSvc   StandingsService
	hub            *live.Hub
	logger         *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	stageRepo repositories.StageRepository,
	tournamentRepo repositories.TournamentRepository,
	standingsSvc StandingsService,
	hub *live.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:      matchRepo,
		stageRepo:      stageRepo,
		tournamentRepo: tournamentRepo,
		standingsSvc:   standingsSvc,
		hub:            hub,
		logger:         logger,
	}
}

func (s *matchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	return match, nil
}

func (s *matchService) ListByStage(ctx context.Context, stageID int, groupID *int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByStage(ctx, stageID, groupID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for stage %d: %w", stageID, err)
	}
	return matches, nil
}

func (s *matchService) Finalize(ctx context.Context, matchID int, input FinalizeMatchInput) (*FinalizeMatchResult, error) {
	match, err := s.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}

	winner, err := validateFinalization(match, input)
	if err != nil {
		return nil, err
	}

	if err := s.matchRepo.UpdateScoreStatusWinner(ctx, matchID, input.ScoreA, input.ScoreB, models.MatchStatusFinished, winner); err != nil {
		return nil, fmt.Errorf("failed to finalize match %d: %w", matchID, err)
	}
	match.ScoreA = &input.ScoreA
	match.ScoreB = &input.ScoreB
	match.Status = models.MatchStatusFinished
	match.WinnerTeamID = winner

	stage, err := s.stageRepo.GetByID(ctx, match.StageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage %d: %w", match.StageID, err)
	}

	result := &FinalizeMatchResult{Match: match}
	switch stage.Kind {
	case models.StageKindLeague, models.StageKindGroups:
		table, err := s.standingsSvc.Recalculate(ctx, stage.ID, match.GroupID)
		if err != nil {
			return nil, fmt.Errorf("standings recompute after match %d failed: %w", matchID, err)
		}
		result.Standings = table.Rows
		result.Warnings = append(result.Warnings, table.Warnings...)
		s.broadcast(match.TournamentID, live.EventStandingsUpdated, result.Standings)

	case models.StageKindKnockout:
		if err := s.progressBracket(ctx, match, stage, result); err != nil {
			return nil, err
		}
	}

	s.broadcast(match.TournamentID, live.EventMatchFinalized, match)
	return result, nil
}

func (s *matchService) progressBracket(ctx context.Context, match *models.Match, stage *models.Stage, result *FinalizeMatchResult) error {
	if match.WinnerTeamID == nil {
		// A drawn knockout match cannot propagate; the caller must record
		// a decisive winner (e.g. penalties folded into the score delta)
		// and finalize again.
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("match %d finished level with no winner recorded, bracket propagation skipped", match.ID))
		return nil
	}

	dependents, err := s.matchRepo.ListDependents(ctx, match.ID)
	if err != nil {
		return fmt.Errorf("failed to load dependents of match %d: %w", match.ID, err)
	}

	snapshot := make([]models.Match, len(dependents))
	for i, dep := range dependents {
		snapshot[i] = *dep
	}
	propagation, err := brackets.Propagate(*match, snapshot)
	if err != nil {
		return fmt.Errorf("bracket propagation for match %d failed: %w", match.ID, err)
	}

	result.SlotConflicts = propagation.Conflicts
	for _, update := range propagation.Updates {
		err := s.matchRepo.FillTeamSlot(ctx, nil, update.MatchID, update.Slot, update.TeamID)
		if errors.Is(err, repositories.ErrMatchSlotTaken) {
			// Lost a check-then-write race, or a manual correction landed
			// in between. Re-read and surface as a conflict; manual state
			// wins.
			conflict := brackets.SlotConflict{MatchID: update.MatchID, Slot: update.Slot, Attempted: update.TeamID}
			if current, getErr := s.matchRepo.GetByID(ctx, update.MatchID); getErr == nil {
				if existing := current.TeamIn(update.Slot); existing != nil {
					conflict.Existing = *existing
				}
			}
			result.SlotConflicts = append(result.SlotConflicts, conflict)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to fill slot %s of match %d: %w", update.Slot, update.MatchID, err)
		}
		result.SlotUpdates = append(result.SlotUpdates, update)
	}
	for _, conflict := range result.SlotConflicts {
		s.logger.Warn("bracket propagation conflict, manual review required",
			slog.Int("match_id", conflict.MatchID),
			slog.String("slot", string(conflict.Slot)),
			slog.Int("existing", conflict.Existing),
			slog.Int("attempted", conflict.Attempted))
	}

	if len(dependents) == 0 {
		if err := s.completeTournament(ctx, match, stage, result); err != nil {
			return err
		}
	}

	s.broadcast(match.TournamentID, live.EventBracketUpdated, result.SlotUpdates)
	return nil
}

// completeTournament records the champion once every match of the last
// stage is finished. The final is the knockout match nobody depends on at
// bracket position 1 (a third-place playoff sits at position 2), so its
// winner is the champion regardless of which terminal match finished last.
func (s *matchService) completeTournament(ctx context.Context, match *models.Match, stage *models.Stage, result *FinalizeMatchResult) error {
	stages, err := s.stageRepo.ListByTournament(ctx, match.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to list stages for tournament %d: %w", match.TournamentID, err)
	}
	for _, other := range stages {
		if other.Position > stage.Position {
			return nil // a later stage still has to be played
		}
	}
	unfinished, err := s.matchRepo.CountUnfinishedByStage(ctx, stage.ID)
	if err != nil {
		return fmt.Errorf("failed to count unfinished matches for stage %d: %w", stage.ID, err)
	}
	if unfinished > 0 {
		s.logger.Info("tournament completion deferred",
			slog.Int("stage_id", stage.ID), slog.Int("unfinished", unfinished))
		return nil
	}

	final := match
	if match.BracketPos != 1 {
		final, err = s.findFinal(ctx, stage)
		if err != nil {
			return err
		}
		if final == nil || final.WinnerTeamID == nil {
			return nil
		}
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, match.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to load tournament %d: %w", match.TournamentID, err)
	}
	if !tournament.CanTransitionTo(models.TournamentStatusCompleted) {
		s.logger.Warn("tournament cannot move to completed",
			slog.Int("tournament_id", tournament.ID),
			slog.String("status", string(tournament.Status)))
		return nil
	}

	err = s.tournamentRepo.SetWinnerAndStatus(ctx, nil, match.TournamentID, final.WinnerTeamID, models.TournamentStatusCompleted)
	if err != nil {
		return fmt.Errorf("failed to record tournament %d winner: %w", match.TournamentID, err)
	}
	result.TournamentWinnerID = final.WinnerTeamID
	s.logger.Info("tournament completed",
		slog.Int("tournament_id", match.TournamentID),
		slog.Int("winner_team_id", *final.WinnerTeamID))
	return nil
}

func (s *matchService) findFinal(ctx context.Context, stage *models.Stage) (*models.Match, error) {
	matches, err := s.matchRepo.ListByStage(ctx, stage.ID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for stage %d: %w", stage.ID, err)
	}
	var final *models.Match
	for _, m := range matches {
		if m.BracketPos != 1 {
			continue
		}
		if final == nil || m.Round > final.Round {
			final = m
		}
	}
	return final, nil
}

func (s *matchService) broadcast(tournamentID int, event string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom("tournament_"+strconv.Itoa(tournamentID), live.Message{
		Type:    event,
		Payload: payload,
	})
}

// validateFinalization checks the transition and determines the winner
// reference to persist. Re-finalizing an already finished match is allowed
// as a correction; a canceled match is not.
func validateFinalization(match *models.Match, input FinalizeMatchInput) (*int, error) {
	if match.Status == models.MatchStatusCanceled {
		return nil, ErrMatchStatusTransition
	}
	if match.TeamAID == nil || match.TeamBID == nil {
		return nil, ErrMatchTeamsUnresolved
	}
	if input.ScoreA < 0 || input.ScoreB < 0 {
		return nil, ErrInvalidScore
	}

	a, b := *match.TeamAID, *match.TeamBID
	if input.WinnerTeamID != nil && *input.WinnerTeamID != a && *input.WinnerTeamID != b {
		return nil, ErrWinnerNotInMatch
	}

	switch {
	case input.ScoreA > input.ScoreB:
		if input.WinnerTeamID != nil && *input.WinnerTeamID != a {
			return nil, ErrWinnerContradictsScore
		}
		return &a, nil
	case input.ScoreA < input.ScoreB:
		if input.WinnerTeamID != nil && *input.WinnerTeamID != b {
			return nil, ErrWinnerContradictsScore
		}
		return &b, nil
	default:
		// Level score: nil means a draw; an explicit winner means the tie
		// was decided beyond regulation.
		return input.WinnerTeamID, nil
	}
}
