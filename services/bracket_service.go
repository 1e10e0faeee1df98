package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brainbattle/arena-api/brackets"
	"github.com/brainbattle/arena-api/models"
	"github.com/brainbattle/arena-api/repositories"
	"github.com/brainbattle/arena-api/storage"
)

// GenerateMatchesResult carries the created matches plus the teams that
// received a bye because the roster count was odd.
type GenerateMatchesResult struct {
	Matches []models.Match `json:"matches"`
	ByeIDs  []int          `json:"bye_team_ids,omitempty"`
}

type BracketService interface {
	// GenerateMatches pairs the tournament roster into round-one matches.
	// Precondition: at least two registered teams and no existing matches.
	// Repeated calls fail the precondition rather than merging.
	GenerateMatches(ctx context.Context, tournamentID int, strategy string) (*GenerateMatchesResult, error)
}

type bracketService struct {
	tx          repositories.TxBeginner
	tournaments repositories.TournamentRepository
	teams       repositories.TeamRepository
	matches     repositories.MatchRepository
	uploader    storage.FileUploader
	now         func() time.Time
}

func NewBracketService(
	tx repositories.TxBeginner,
	tournaments repositories.TournamentRepository,
	teams repositories.TeamRepository,
	matches repositories.MatchRepository,
	uploader storage.FileUploader,
	now func() time.Time,
) BracketService {
	return &bracketService{
		tx:          tx,
		tournaments: tournaments,
		teams:       teams,
		matches:     matches,
		uploader:    uploader,
		now:         now,
	}
}

func (s *bracketService) GenerateMatches(ctx context.Context, tournamentID int, strategy string) (*GenerateMatchesResult, error) {
	if _, err := s.tournaments.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	generator, err := brackets.ForStrategy(strategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}

	roster, err := s.teams.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list tournament teams: %w", err)
	}
	if len(roster) < 2 {
		return nil, ErrNotEnoughTeams
	}

	existing, err := s.matches.CountByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("count tournament matches: %w", err)
	}
	if existing > 0 {
		return nil, ErrMatchesAlreadyGenerated
	}

	teamIDs := make([]int, len(roster))
	for i := range roster {
		teamIDs[i] = roster[i].ID
	}
	generated, err := generator.Generate(teamIDs)
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughTeams) {
			return nil, ErrNotEnoughTeams
		}
		return nil, fmt.Errorf("generate pairings: %w", err)
	}

	created := make([]models.Match, 0, len(generated.Pairings))
	err = withTx(ctx, s.tx, func(exec repositories.SQLExecutor) error {
		for _, pairing := range generated.Pairings {
			match := models.Match{
				TournamentID: tournamentID,
				Team1ID:      pairing.Team1ID,
				Team2ID:      pairing.Team2ID,
				Round:        pairing.Round,
			}
			if err := s.matches.Create(ctx, exec, &match); err != nil {
				return fmt.Errorf("create generated match: %w", err)
			}
			created = append(created, match)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := populateMatchTeams(ctx, s.teams, s.uploader, created, s.now()); err != nil {
		return nil, err
	}
	return &GenerateMatchesResult{Matches: created, ByeIDs: generated.Byes}, nil
}
