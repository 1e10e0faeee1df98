package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/brainbattle/arena-api/models"
	"github.com/brainbattle/arena-api/repositories"
	"github.com/brainbattle/arena-api/storage"
)

// AddTeamInput links an existing team (by id) or creates and links a new one
// (by name) in a single call, matching the registration flow of the API.
type AddTeamInput struct {
	TeamID *int    `json:"team_id"`
	Name   *string `json:"name"`
}

type TeamService interface {
	Create(ctx context.Context, name string) (*models.Team, error)
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	Rename(ctx context.Context, id int, name string) (*models.Team, error)
	Delete(ctx context.Context, id int) error

	AddToTournament(ctx context.Context, tournamentID int, input AddTeamInput) (*models.Team, error)
	RemoveFromTournament(ctx context.Context, tournamentID, teamID int) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error)
	UploadLogo(ctx context.Context, id int, contentType string, r io.Reader) (*models.Team, error)
}

type teamService struct {
	tx          repositories.TxBeginner
	teams       repositories.TeamRepository
	tournaments repositories.TournamentRepository
	matches     repositories.MatchRepository
	uploader    storage.FileUploader
}

func NewTeamService(
	tx repositories.TxBeginner,
	teams repositories.TeamRepository,
	tournaments repositories.TournamentRepository,
	matches repositories.MatchRepository,
	uploader storage.FileUploader,
) TeamService {
	return &teamService{
		tx:          tx,
		teams:       teams,
		tournaments: tournaments,
		matches:     matches,
		uploader:    uploader,
	}
}

func (s *teamService) Create(ctx context.Context, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team := &models.Team{Name: name}
	if err := s.teams.Create(ctx, nil, team); err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}
	return team, nil
}

func (s *teamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	populateTeamLogoURL(team, s.uploader)
	if err := s.populateMemberships(ctx, []*models.Team{team}); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) List(ctx context.Context) ([]models.Team, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	ptrs := make([]*models.Team, len(teams))
	for i := range teams {
		populateTeamLogoURL(&teams[i], s.uploader)
		ptrs[i] = &teams[i]
	}
	if err := s.populateMemberships(ctx, ptrs); err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *teamService) Rename(ctx context.Context, id int, name string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}

	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	team.Name = name
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, s.mapRepoError(err)
	}
	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

// Delete removes the team and cascades: every match referencing the team, in
// any tournament and on either side, goes with it, as do its memberships.
// The cascade is a domain rule, not a storage-level one, so it runs here in
// one transaction.
func (s *teamService) Delete(ctx context.Context, id int) error {
	if _, err := s.teams.GetByID(ctx, id); err != nil {
		return s.mapRepoError(err)
	}

	return withTx(ctx, s.tx, func(exec repositories.SQLExecutor) error {
		if err := s.matches.DeleteByTeam(ctx, exec, id); err != nil {
			return fmt.Errorf("delete team matches: %w", err)
		}
		if err := s.teams.RemoveAllMemberships(ctx, exec, id); err != nil {
			return fmt.Errorf("remove team memberships: %w", err)
		}
		if err := s.teams.Delete(ctx, exec, id); err != nil {
			return s.mapRepoError(err)
		}
		return nil
	})
}

func (s *teamService) AddToTournament(ctx context.Context, tournamentID int, input AddTeamInput) (*models.Team, error) {
	if _, err := s.tournaments.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	switch {
	case input.TeamID != nil:
		team, err := s.teams.GetByID(ctx, *input.TeamID)
		if err != nil {
			return nil, s.mapRepoError(err)
		}
		if err := s.teams.AddToTournament(ctx, nil, tournamentID, team.ID); err != nil {
			return nil, s.mapRepoError(err)
		}
		populateTeamLogoURL(team, s.uploader)
		return team, nil

	case input.Name != nil:
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTeamNameRequired
		}
		team := &models.Team{Name: name}
		err := withTx(ctx, s.tx, func(exec repositories.SQLExecutor) error {
			if err := s.teams.Create(ctx, exec, team); err != nil {
				return fmt.Errorf("create team: %w", err)
			}
			if err := s.teams.AddToTournament(ctx, exec, tournamentID, team.ID); err != nil {
				return s.mapRepoError(err)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return team, nil

	default:
		return nil, ErrTeamIDOrNameRequired
	}
}

// RemoveFromTournament severs the membership only. The team survives, and so
// do matches already referencing it; those remain as historical record.
func (s *teamService) RemoveFromTournament(ctx context.Context, tournamentID, teamID int) error {
	if _, err := s.tournaments.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		return s.mapRepoError(err)
	}
	return s.teams.RemoveFromTournament(ctx, tournamentID, teamID)
}

func (s *teamService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	if _, err := s.tournaments.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	teams, err := s.teams.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list tournament teams: %w", err)
	}
	for i := range teams {
		populateTeamLogoURL(&teams[i], s.uploader)
	}
	return teams, nil
}

func (s *teamService) UploadLogo(ctx context.Context, id int, contentType string, r io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, ErrMediaNotConfigured
	}
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	ext, err := extensionForContentType(contentType)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("teams/%d/logo%s", id, ext)

	result, err := s.uploader.Upload(ctx, key, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("upload team logo: %w", err)
	}
	if err := s.teams.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		return nil, s.mapRepoError(err)
	}
	team.LogoKey = &result.Key
	populateTeamLogoURL(team, s.uploader)
	return team, nil
}

func (s *teamService) populateMemberships(ctx context.Context, teams []*models.Team) error {
	ids := make([]int, len(teams))
	for i, team := range teams {
		ids[i] = team.ID
	}
	memberships, err := s.teams.ListMemberships(ctx, ids)
	if err != nil {
		return fmt.Errorf("list team memberships: %w", err)
	}

	byTeam := make(map[int][]repositories.TeamMembership)
	for _, m := range memberships {
		byTeam[m.TeamID] = append(byTeam[m.TeamID], m)
	}
	for _, team := range teams {
		for _, m := range byTeam[team.ID] {
			team.TournamentIDs = append(team.TournamentIDs, m.TournamentID)
			team.TournamentNames = append(team.TournamentNames, m.TournamentName)
		}
	}
	return nil
}

func (s *teamService) mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTeamAlreadyInTournament):
		return ErrTeamAlreadyInTournament
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	}
	return err
}
