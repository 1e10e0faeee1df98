package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/brainbattle/arena-api/models"
	"github.com/brainbattle/arena-api/repositories"
	"github.com/brainbattle/arena-api/storage"
	"golang.org/x/sync/errgroup"
)

type CreateTournamentInput struct {
	Name     string `json:"name"`
	GameType string `json:"game_type"`
}

type UpdateTournamentInput struct {
	Name     *string `json:"name"`
	GameType *string `json:"game_type"`
}

type ListTournamentsFilter struct {
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error)
	Delete(ctx context.Context, id int) error
	UploadLogo(ctx context.Context, id int, contentType string, r io.Reader) (*models.Tournament, error)
}

type tournamentService struct {
	tx          repositories.TxBeginner
	tournaments repositories.TournamentRepository
	teams       repositories.TeamRepository
	matches     repositories.MatchRepository
	uploader    storage.FileUploader
	now         func() time.Time
}

func NewTournamentService(
	tx repositories.TxBeginner,
	tournaments repositories.TournamentRepository,
	teams repositories.TeamRepository,
	matches repositories.MatchRepository,
	uploader storage.FileUploader,
	now func() time.Time,
) TournamentService {
	return &tournamentService{
		tx:          tx,
		tournaments: tournaments,
		teams:       teams,
		matches:     matches,
		uploader:    uploader,
		now:         now,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	gameType := strings.TrimSpace(input.GameType)
	if gameType == "" {
		return nil, ErrGameTypeRequired
	}

	tournament := &models.Tournament{
		Name:     name,
		GameType: gameType,
		Status:   models.TournamentActive,
	}
	if err := s.tournaments.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("create tournament: %w", err)
	}
	return tournament, nil
}

// GetByID returns the tournament with its roster and matches. Match statuses
// are derived at call time, never read from storage.
func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	populateTournamentLogoURL(tournament, s.uploader)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		teams, err := s.teams.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("list tournament teams: %w", err)
		}
		for i := range teams {
			populateTeamLogoURL(&teams[i], s.uploader)
		}
		tournament.Teams = teams
		return nil
	})

	g.Go(func() error {
		matches, err := s.matches.ListByTournament(gCtx, id)
		if err != nil {
			return fmt.Errorf("list tournament matches: %w", err)
		}
		tournament.Matches = matches
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := populateMatchTeams(ctx, s.teams, s.uploader, tournament.Matches, s.now()); err != nil {
		return nil, err
	}
	tournament.TeamCount = len(tournament.Teams)
	return tournament, nil
}

func (s *tournamentService) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	tournaments, err := s.tournaments.List(ctx, repositories.ListTournamentsFilter{
		Status: filter.Status,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}

	ids := make([]int, len(tournaments))
	for i := range tournaments {
		ids[i] = tournaments[i].ID
	}
	counts, err := s.teams.MembershipCounts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("count tournament teams: %w", err)
	}
	for i := range tournaments {
		tournaments[i].TeamCount = counts[tournaments[i].ID]
		populateTournamentLogoURL(&tournaments[i], s.uploader)
	}
	return tournaments, nil
}

func (s *tournamentService) Update(ctx context.Context, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	tournament, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTournamentNameRequired
		}
		tournament.Name = name
	}
	if input.GameType != nil {
		gameType := strings.TrimSpace(*input.GameType)
		if gameType == "" {
			return nil, ErrGameTypeRequired
		}
		tournament.GameType = gameType
	}

	if err := s.tournaments.Update(ctx, tournament); err != nil {
		return nil, s.mapRepoError(err)
	}
	populateTournamentLogoURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTournamentStatus, status)
	}

	tournament, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	if !tournament.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrStatusTransitionDenied, tournament.Status, status)
	}

	if err := s.tournaments.UpdateStatus(ctx, id, status); err != nil {
		return nil, s.mapRepoError(err)
	}
	tournament.Status = status
	populateTournamentLogoURL(tournament, s.uploader)
	return tournament, nil
}

// Delete removes the tournament along with its matches and team memberships
// in one transaction. Teams themselves survive; only their association with
// this tournament is severed.
func (s *tournamentService) Delete(ctx context.Context, id int) error {
	if _, err := s.tournaments.GetByID(ctx, id); err != nil {
		return s.mapRepoError(err)
	}

	return withTx(ctx, s.tx, func(exec repositories.SQLExecutor) error {
		if err := s.matches.DeleteByTournament(ctx, exec, id); err != nil {
			return fmt.Errorf("delete tournament matches: %w", err)
		}
		if err := s.teams.RemoveTournamentMemberships(ctx, exec, id); err != nil {
			return fmt.Errorf("remove tournament memberships: %w", err)
		}
		if err := s.tournaments.Delete(ctx, exec, id); err != nil {
			return s.mapRepoError(err)
		}
		return nil
	})
}

func (s *tournamentService) UploadLogo(ctx context.Context, id int, contentType string, r io.Reader) (*models.Tournament, error) {
	if s.uploader == nil {
		return nil, ErrMediaNotConfigured
	}
	tournament, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	ext, err := extensionForContentType(contentType)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("tournaments/%d/logo%s", id, ext)

	result, err := s.uploader.Upload(ctx, key, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("upload tournament logo: %w", err)
	}
	if err := s.tournaments.UpdateLogoKey(ctx, id, &result.Key); err != nil {
		return nil, s.mapRepoError(err)
	}
	tournament.LogoKey = &result.Key
	populateTournamentLogoURL(tournament, s.uploader)
	return tournament, nil
}

func (s *tournamentService) mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}
