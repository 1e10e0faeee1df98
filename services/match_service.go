package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brainbattle/arena-api/models"
	"github.com/brainbattle/arena-api/repositories"
	"github.com/brainbattle/arena-api/storage"
)

type CreateMatchInput struct {
	Team1ID       int     `json:"team1_id"`
	Team2ID       int     `json:"team2_id"`
	ScheduledDate *string `json:"scheduled_date"`
	ScheduledTime *string `json:"scheduled_time"`
	Location      *string `json:"location"`
}

// UpdateMatchInput is a partial edit. Nil fields are left untouched; winner
// assignment is only ever done through Finish.
type UpdateMatchInput struct {
	Team1ID       *int    `json:"team1_id"`
	Team2ID       *int    `json:"team2_id"`
	ScheduledDate *string `json:"scheduled_date"`
	ScheduledTime *string `json:"scheduled_time"`
	Location      *string `json:"location"`
	Score         *string `json:"score"`
}

type MatchService interface {
	Create(ctx context.Context, tournamentID int, input CreateMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListAll(ctx context.Context) ([]models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error)
	Update(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error)
	UpdateScore(ctx context.Context, id int, score string) (*models.Match, error)
	Finish(ctx context.Context, id int, team1Score, team2Score int) (*models.Match, error)
	Delete(ctx context.Context, id int) error
}

type matchService struct {
	matches     repositories.MatchRepository
	teams       repositories.TeamRepository
	tournaments repositories.TournamentRepository
	uploader    storage.FileUploader
	now         func() time.Time
}

func NewMatchService(
	matches repositories.MatchRepository,
	teams repositories.TeamRepository,
	tournaments repositories.TournamentRepository,
	uploader storage.FileUploader,
	now func() time.Time,
) MatchService {
	return &matchService{
		matches:     matches,
		teams:       teams,
		tournaments: tournaments,
		uploader:    uploader,
		now:         now,
	}
}

// ParseScore splits an "a-b" score string into its two sides. Parsing is
// lenient: malformed or missing segments count as 0, mirroring how scores
// have always been read in this system.
func ParseScore(score string) (team1 int, team2 int) {
	parts := strings.SplitN(score, "-", 2)
	if len(parts) > 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil && n >= 0 {
			team1 = n
		}
	}
	if len(parts) > 1 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && n >= 0 {
			team2 = n
		}
	}
	return team1, team2
}

// FormatScore renders the canonical stored form of a score.
func FormatScore(team1, team2 int) string {
	return fmt.Sprintf("%d-%d", team1, team2)
}

func (s *matchService) Create(ctx context.Context, tournamentID int, input CreateMatchInput) (*models.Match, error) {
	if _, err := s.tournaments.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	if input.Team1ID == 0 || input.Team2ID == 0 {
		return nil, ErrMatchTeamsRequired
	}
	if err := s.validateTeamPair(ctx, tournamentID, input.Team1ID, input.Team2ID); err != nil {
		return nil, err
	}
	if err := validateScheduledDate(input.ScheduledDate); err != nil {
		return nil, err
	}
	if err := validateScheduledTime(input.ScheduledTime); err != nil {
		return nil, err
	}

	match := &models.Match{
		TournamentID:  tournamentID,
		Team1ID:       input.Team1ID,
		Team2ID:       input.Team2ID,
		Round:         1,
		ScheduledDate: normalizeOptional(input.ScheduledDate),
		ScheduledTime: normalizeOptional(input.ScheduledTime),
		Location:      normalizeOptional(input.Location),
	}
	if err := s.matches.Create(ctx, nil, match); err != nil {
		return nil, s.mapRepoError(err)
	}
	return s.enrich(ctx, match)
}

func (s *matchService) GetByID(ctx context.Context, id int) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}
	return s.enrich(ctx, match)
}

// ListAll returns the global schedule with the owning tournament name on
// each match.
func (s *matchService) ListAll(ctx context.Context) ([]models.Match, error) {
	matches, err := s.matches.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	if err := populateMatchTeams(ctx, s.teams, s.uploader, matches, s.now()); err != nil {
		return nil, err
	}
	if err := s.populateTournamentNames(ctx, matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error) {
	if _, err := s.tournaments.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	matches, err := s.matches.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list tournament matches: %w", err)
	}
	if err := populateMatchTeams(ctx, s.teams, s.uploader, matches, s.now()); err != nil {
		return nil, err
	}
	return matches, nil
}

func (s *matchService) Update(ctx context.Context, id int, input UpdateMatchInput) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	team1 := match.Team1ID
	team2 := match.Team2ID
	if input.Team1ID != nil {
		team1 = *input.Team1ID
	}
	if input.Team2ID != nil {
		team2 = *input.Team2ID
	}
	if team1 != match.Team1ID || team2 != match.Team2ID {
		if team1 == 0 || team2 == 0 {
			return nil, ErrMatchTeamsRequired
		}
		if err := s.validateTeamPair(ctx, match.TournamentID, team1, team2); err != nil {
			return nil, err
		}
		// A finished match can only be re-paired while its winner stays one
		// of the two sides; otherwise winner_id would dangle.
		if match.WinnerID != nil && *match.WinnerID != team1 && *match.WinnerID != team2 {
			return nil, fmt.Errorf("%w: team %d", ErrWinnerNotInTeamPair, *match.WinnerID)
		}
		match.Team1ID = team1
		match.Team2ID = team2
	}

	if input.ScheduledDate != nil {
		if err := validateScheduledDate(input.ScheduledDate); err != nil {
			return nil, err
		}
		match.ScheduledDate = normalizeOptional(input.ScheduledDate)
	}
	if input.ScheduledTime != nil {
		if err := validateScheduledTime(input.ScheduledTime); err != nil {
			return nil, err
		}
		match.ScheduledTime = normalizeOptional(input.ScheduledTime)
	}
	if input.Location != nil {
		match.Location = normalizeOptional(input.Location)
	}
	// Score edits are folded into the same statement as the other fields so
	// a partial update is all-or-nothing. They never touch the winner: after
	// a match is finished they are corrections, not lifecycle transitions.
	if input.Score != nil {
		team1Score, team2Score := ParseScore(*input.Score)
		normalized := FormatScore(team1Score, team2Score)
		match.Score = &normalized
	}

	if err := s.matches.Update(ctx, match); err != nil {
		return nil, s.mapRepoError(err)
	}
	return s.enrich(ctx, match)
}

// UpdateScore stores a normalized score. It is permitted in any lifecycle
// state and leaves winner_id alone.
func (s *matchService) UpdateScore(ctx context.Context, id int, score string) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	team1, team2 := ParseScore(score)
	normalized := FormatScore(team1, team2)
	if err := s.matches.UpdateScore(ctx, id, &normalized); err != nil {
		return nil, s.mapRepoError(err)
	}
	match.Score = &normalized
	return s.enrich(ctx, match)
}

// Finish commits a result. A tie is rejected outright and nothing is
// written; otherwise score and winner are persisted together in a single
// statement, so the match can never carry a winner without its score.
func (s *matchService) Finish(ctx context.Context, id int, team1Score, team2Score int) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoError(err)
	}

	if team1Score == team2Score {
		return nil, fmt.Errorf("%w: %d-%d", ErrTie, team1Score, team2Score)
	}

	winnerID := match.Team1ID
	if team2Score > team1Score {
		winnerID = match.Team2ID
	}
	score := FormatScore(team1Score, team2Score)

	if err := s.matches.UpdateScoreAndWinner(ctx, id, score, winnerID); err != nil {
		return nil, s.mapRepoError(err)
	}
	match.Score = &score
	match.WinnerID = &winnerID
	return s.enrich(ctx, match)
}

func (s *matchService) Delete(ctx context.Context, id int) error {
	if err := s.matches.Delete(ctx, id); err != nil {
		return s.mapRepoError(err)
	}
	return nil
}

// validateTeamPair enforces the two invariants on a match's team pair: the
// teams are distinct and both are registered in the owning tournament.
func (s *matchService) validateTeamPair(ctx context.Context, tournamentID, team1ID, team2ID int) error {
	if team1ID == team2ID {
		return ErrDuplicateTeams
	}
	for _, teamID := range []int{team1ID, team2ID} {
		member, err := s.teams.IsMember(ctx, tournamentID, teamID)
		if err != nil {
			return fmt.Errorf("check tournament membership: %w", err)
		}
		if !member {
			return fmt.Errorf("%w: team %d", ErrUnknownTeam, teamID)
		}
	}
	return nil
}

func (s *matchService) enrich(ctx context.Context, match *models.Match) (*models.Match, error) {
	matches := []models.Match{*match}
	if err := populateMatchTeams(ctx, s.teams, s.uploader, matches, s.now()); err != nil {
		return nil, err
	}
	return &matches[0], nil
}

func (s *matchService) populateTournamentNames(ctx context.Context, matches []models.Match) error {
	names := make(map[int]*string)
	for i := range matches {
		id := matches[i].TournamentID
		name, ok := names[id]
		if !ok {
			tournament, err := s.tournaments.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, repositories.ErrTournamentNotFound) {
					names[id] = nil
					continue
				}
				return fmt.Errorf("load tournament %d: %w", id, err)
			}
			name = &tournament.Name
			names[id] = name
		}
		matches[i].TournamentName = name
	}
	return nil
}

func (s *matchService) mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrTeamNotFound):
		return ErrTeamNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	}
	return err
}
