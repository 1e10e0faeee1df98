package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/brainbattle/arena-api/models"
	"github.com/lib/pq"
)

var (
	ErrTeamNotFound            = errors.New("team not found")
	ErrTeamAlreadyInTournament = errors.New("team is already registered in this tournament")
)

// TeamMembership links a team to a tournament it is registered in.
type TeamMembership struct {
	TeamID         int
	TournamentID   int
	TournamentName string
}

type TeamRepository interface {
	Create(ctx context.Context, exec SQLExecutor, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]models.Team, error)
	ListByIDs(ctx context.Context, ids []int) ([]models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error

	AddToTournament(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) error
	RemoveFromTournament(ctx context.Context, tournamentID, teamID int) error
	RemoveAllMemberships(ctx context.Context, exec SQLExecutor, teamID int) error
	RemoveTournamentMemberships(ctx context.Context, exec SQLExecutor, tournamentID int) error
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error)
	IsMember(ctx context.Context, tournamentID, teamID int) (bool, error)
	MembershipCounts(ctx context.Context, tournamentIDs []int) (map[int]int, error)
	ListMemberships(ctx context.Context, teamIDs []int) ([]TeamMembership, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTeamRepository) Create(ctx context.Context, exec SQLExecutor, team *models.Team) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO teams (name) VALUES ($1) RETURNING id, created_at`
	return executor.QueryRowContext(ctx, query, team.Name).Scan(&team.ID, &team.CreatedAt)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, name, logo_key, created_at FROM teams WHERE id = $1`

	team := &models.Team{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&team.ID, &team.Name, &team.LogoKey, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]models.Team, error) {
	query := `SELECT id, name, logo_key, created_at FROM teams ORDER BY name, id`
	return r.queryTeams(ctx, query)
}

func (r *postgresTeamRepository) ListByIDs(ctx context.Context, ids []int) ([]models.Team, error) {
	if len(ids) == 0 {
		return []models.Team{}, nil
	}
	query := `SELECT id, name, logo_key, created_at FROM teams WHERE id = ANY($1)`
	return r.queryTeams(ctx, query, pq.Array(ids))
}

func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	query := `UPDATE teams SET name = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, team.Name, team.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE teams SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update team logo key: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// Delete removes the team row only. Matches referencing the team and its
// memberships are removed first by the service inside the same transaction.
func (r *postgresTeamRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	executor := r.getExecutor(exec)
	result, err := executor.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) AddToTournament(ctx context.Context, exec SQLExecutor, tournamentID, teamID int) error {
	executor := r.getExecutor(exec)
	query := `INSERT INTO team_tournaments (tournament_id, team_id) VALUES ($1, $2)`
	_, err := executor.ExecContext(ctx, query, tournamentID, teamID)
	return r.handleMembershipError(err)
}

func (r *postgresTeamRepository) RemoveFromTournament(ctx context.Context, tournamentID, teamID int) error {
	query := `DELETE FROM team_tournaments WHERE tournament_id = $1 AND team_id = $2`
	// Removing a membership that does not exist is a no-op, matching the
	// unconditional contract of the operation.
	_, err := r.db.ExecContext(ctx, query, tournamentID, teamID)
	return err
}

func (r *postgresTeamRepository) RemoveAllMemberships(ctx context.Context, exec SQLExecutor, teamID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM team_tournaments WHERE team_id = $1`, teamID)
	return err
}

func (r *postgresTeamRepository) RemoveTournamentMemberships(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	executor := r.getExecutor(exec)
	_, err := executor.ExecContext(ctx, `DELETE FROM team_tournaments WHERE tournament_id = $1`, tournamentID)
	return err
}

// ListByTournament returns the roster in registration order. Match
// generation depends on this ordering being stable.
func (r *postgresTeamRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	query := `
		SELECT t.id, t.name, t.logo_key, t.created_at
		FROM teams t
		JOIN team_tournaments tt ON tt.team_id = t.id
		WHERE tt.tournament_id = $1
		ORDER BY tt.created_at, t.id`
	return r.queryTeams(ctx, query, tournamentID)
}

func (r *postgresTeamRepository) IsMember(ctx context.Context, tournamentID, teamID int) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM team_tournaments WHERE tournament_id = $1 AND team_id = $2
	)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, tournamentID, teamID).Scan(&exists)
	return exists, err
}

func (r *postgresTeamRepository) MembershipCounts(ctx context.Context, tournamentIDs []int) (map[int]int, error) {
	counts := make(map[int]int, len(tournamentIDs))
	if len(tournamentIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT tournament_id, COUNT(*)
		FROM team_tournaments
		WHERE tournament_id = ANY($1)
		GROUP BY tournament_id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(tournamentIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id, count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, err
		}
		counts[id] = count
	}
	return counts, rows.Err()
}

func (r *postgresTeamRepository) ListMemberships(ctx context.Context, teamIDs []int) ([]TeamMembership, error) {
	if len(teamIDs) == 0 {
		return []TeamMembership{}, nil
	}

	query := `
		SELECT tt.team_id, tt.tournament_id, tr.name
		FROM team_tournaments tt
		JOIN tournaments tr ON tr.id = tt.tournament_id
		WHERE tt.team_id = ANY($1)
		ORDER BY tt.team_id, tt.created_at`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(teamIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	memberships := make([]TeamMembership, 0)
	for rows.Next() {
		var m TeamMembership
		if err := rows.Scan(&m.TeamID, &m.TournamentID, &m.TournamentName); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

func (r *postgresTeamRepository) queryTeams(ctx context.Context, query string, args ...interface{}) ([]models.Team, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.LogoKey, &team.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *postgresTeamRepository) handleMembershipError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return ErrTeamAlreadyInTournament
		case "23503":
			switch pqErr.Constraint {
			case "team_tournaments_team_id_fkey":
				return ErrTeamNotFound
			case "team_tournaments_tournament_id_fkey":
				return ErrTournamentNotFound
			}
		}
	}
	return err
}
