package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/brainbattle/arena-api/models"
	"github.com/lib/pq"
)

var ErrMatchNotFound = errors.New("match not found")

const matchColumns = `
	id, tournament_id, team1_id, team2_id, round,
	scheduled_date, scheduled_time, location, score, winner_id, created_at`

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	ListAll(ctx context.Context) ([]models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error)
	Update(ctx context.Context, match *models.Match) error
	UpdateScore(ctx context.Context, id int, score *string) error
	UpdateScoreAndWinner(ctx context.Context, id int, score string, winnerID int) error
	Delete(ctx context.Context, id int) error
	DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
	CountByTournament(ctx context.Context, tournamentID int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO matches
			(tournament_id, team1_id, team2_id, round, scheduled_date, scheduled_time, location, score, winner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`

	err := executor.QueryRowContext(ctx, query,
		m.TournamentID, m.Team1ID, m.Team2ID, m.Round,
		m.ScheduledDate, m.ScheduledTime, m.Location, m.Score, m.WinnerID,
	).Scan(&m.ID, &m.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches WHERE id = $1`

	m := &models.Match{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.TournamentID, &m.Team1ID, &m.Team2ID, &m.Round,
		&m.ScheduledDate, &m.ScheduledTime, &m.Location, &m.Score, &m.WinnerID, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

// ListAll returns every match ordered for the global schedule view:
// unscheduled matches last, the rest by date and time.
func (r *postgresMatchRepository) ListAll(ctx context.Context) ([]models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		ORDER BY scheduled_date NULLS LAST, scheduled_time NULLS LAST, id`
	return r.queryMatches(ctx, query)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error) {
	query := `SELECT` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		ORDER BY round, id`
	return r.queryMatches(ctx, query, tournamentID)
}

// Update rewrites the editable fields of a match in one statement: the team
// pair, schedule, location and score. The winner has a dedicated method.
func (r *postgresMatchRepository) Update(ctx context.Context, m *models.Match) error {
	query := `
		UPDATE matches SET
			team1_id = $1,
			team2_id = $2,
			scheduled_date = $3,
			scheduled_time = $4,
			location = $5,
			score = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		m.Team1ID, m.Team2ID, m.ScheduledDate, m.ScheduledTime, m.Location, m.Score, m.ID,
	)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, id int, score *string) error {
	query := `UPDATE matches SET score = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, score, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// UpdateScoreAndWinner commits a match result. Score and winner change in one
// statement; there is no state where the winner is set without its score.
func (r *postgresMatchRepository) UpdateScoreAndWinner(ctx context.Context, id int, score string, winnerID int) error {
	query := `UPDATE matches SET score = $1, winner_id = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, score, winnerID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) DeleteByTeam(ctx context.Context, exec SQLExecutor, teamID int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM matches WHERE team1_id = $1 OR team2_id = $1`
	_, err := executor.ExecContext(ctx, query, teamID)
	return err
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresMatchRepository) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE tournament_id = $1`, tournamentID,
	).Scan(&count)
	return count, err
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(
			&m.ID, &m.TournamentID, &m.Team1ID, &m.Team2ID, &m.Round,
			&m.ScheduledDate, &m.ScheduledTime, &m.Location, &m.Score, &m.WinnerID, &m.CreatedAt,
		); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrTournamentNotFound
		case "matches_team1_id_fkey", "matches_team2_id_fkey", "matches_winner_id_fkey":
			return ErrTeamNotFound
		}
	}
	return err
}
