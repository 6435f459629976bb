package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/matchdayhq/league-platform/models"
	"github.com/matchdayhq/league-platform/repositories"
)

type TeamService interface {
	GetByID(ctx context.Context, teamID int) (*models.Team, error)
	// ListByScope returns the teams assigned to a (stage, group) scope,
	// the same participant set the standings are computed over.
	ListByScope(ctx context.Context, stageID int, groupID *int) ([]*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	// logoBaseURL is the public base of the asset store holding team
	// logos. Empty means logos are not served.
	logoBaseURL string
}

func NewTeamService(teamRepo repositories.TeamRepository, logoBaseURL string) TeamService {
	return &teamService{
		teamRepo:    teamRepo,
		logoBaseURL: strings.TrimRight(logoBaseURL, "/"),
	}
}

func (s *teamService) GetByID(ctx context.Context, teamID int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team %d: %w", teamID, err)
	}
	s.decorateLogo(team)
	return team, nil
}

func (s *teamService) ListByScope(ctx context.Context, stageID int, groupID *int) ([]*models.Team, error) {
	teams, err := s.teamRepo.ListByScope(ctx, stageID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for stage %d: %w", stageID, err)
	}
	for _, team := range teams {
		s.decorateLogo(team)
	}
	return teams, nil
}

func (s *teamService) decorateLogo(team *models.Team) {
	if s.logoBaseURL == "" || team.LogoKey == nil {
		return
	}
	url := s.logoBaseURL + "/" + *team.LogoKey
	team.LogoURL = &url
}
