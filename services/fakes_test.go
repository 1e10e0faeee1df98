package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/brainbattle/arena-api/models"
	"github.com/brainbattle/arena-api/repositories"
	"github.com/brainbattle/arena-api/storage"
)

// In-memory repository fakes. They implement the repository interfaces over
// plain maps so service rules, in particular the cascade transactions, can be
// exercised without a database.

type fakeTx struct {
	commits   *int
	rollbacks *int
}

func (t fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (t fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (t fakeTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (t fakeTx) Commit() error {
	*t.commits++
	return nil
}

func (t fakeTx) Rollback() error {
	*t.rollbacks++
	return nil
}

type fakeTxBeginner struct {
	commits   int
	rollbacks int
}

func (b *fakeTxBeginner) Begin(ctx context.Context) (repositories.Tx, error) {
	return fakeTx{commits: &b.commits, rollbacks: &b.rollbacks}, nil
}

type fakeTournamentRepo struct {
	items  map[int]models.Tournament
	nextID int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{items: map[int]models.Tournament{}, nextID: 1}
}

func (r *fakeTournamentRepo) add(name string, status models.TournamentStatus) models.Tournament {
	t := models.Tournament{
		ID:        r.nextID,
		Name:      name,
		GameType:  "cs2",
		Status:    status,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	r.items[t.ID] = t
	r.nextID++
	return t
}

func (r *fakeTournamentRepo) Create(ctx context.Context, t *models.Tournament) error {
	t.ID = r.nextID
	t.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.items[t.ID] = *t
	r.nextID++
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	ids := make([]int, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := []models.Tournament{}
	for _, id := range ids {
		t := r.items[id]
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, t *models.Tournament) error {
	if _, ok := r.items[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.items[t.ID] = *t
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) error {
	t, ok := r.items[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	r.items[id] = t
	return nil
}

func (r *fakeTournamentRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	t, ok := r.items[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = logoKey
	r.items[id] = t
	return nil
}

func (r *fakeTournamentRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.items[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.items, id)
	return nil
}

type membership struct {
	tournamentID int
	teamID       int
}

type fakeTeamRepo struct {
	items       map[int]models.Team
	memberships []membership
	tournaments *fakeTournamentRepo
	nextID      int
}

func newFakeTeamRepo(tournaments *fakeTournamentRepo) *fakeTeamRepo {
	return &fakeTeamRepo{items: map[int]models.Team{}, tournaments: tournaments, nextID: 1}
}

func (r *fakeTeamRepo) add(name string) models.Team {
	team := models.Team{
		ID:        r.nextID,
		Name:      name,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	r.items[team.ID] = team
	r.nextID++
	return team
}

func (r *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	team.ID = r.nextID
	team.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.items[team.ID] = *team
	r.nextID++
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	return &team, nil
}

func (r *fakeTeamRepo) List(ctx context.Context) ([]models.Team, error) {
	ids := make([]int, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]models.Team, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *fakeTeamRepo) ListByIDs(ctx context.Context, ids []int) ([]models.Team, error) {
	out := []models.Team{}
	for _, id := range ids {
		if team, ok := r.items[id]; ok {
			out = append(out, team)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, team *models.Team) error {
	if _, ok := r.items[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	r.items[team.ID] = *team
	return nil
}

func (r *fakeTeamRepo) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	team, ok := r.items[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = logoKey
	r.items[id] = team
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.items[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeTeamRepo) AddToTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID, teamID int) error {
	for _, m := range r.memberships {
		if m.tournamentID == tournamentID && m.teamID == teamID {
			return repositories.ErrTeamAlreadyInTournament
		}
	}
	r.memberships = append(r.memberships, membership{tournamentID: tournamentID, teamID: teamID})
	return nil
}

func (r *fakeTeamRepo) RemoveFromTournament(ctx context.Context, tournamentID, teamID int) error {
	kept := r.memberships[:0]
	for _, m := range r.memberships {
		if m.tournamentID == tournamentID && m.teamID == teamID {
			continue
		}
		kept = append(kept, m)
	}
	r.memberships = kept
	return nil
}

func (r *fakeTeamRepo) RemoveAllMemberships(ctx context.Context, exec repositories.SQLExecutor, teamID int) error {
	kept := r.memberships[:0]
	for _, m := range r.memberships {
		if m.teamID == teamID {
			continue
		}
		kept = append(kept, m)
	}
	r.memberships = kept
	return nil
}

func (r *fakeTeamRepo) RemoveTournamentMemberships(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	kept := r.memberships[:0]
	for _, m := range r.memberships {
		if m.tournamentID == tournamentID {
			continue
		}
		kept = append(kept, m)
	}
	r.memberships = kept
	return nil
}

func (r *fakeTeamRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Team, error) {
	out := []models.Team{}
	for _, m := range r.memberships {
		if m.tournamentID != tournamentID {
			continue
		}
		if team, ok := r.items[m.teamID]; ok {
			out = append(out, team)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) IsMember(ctx context.Context, tournamentID, teamID int) (bool, error) {
	for _, m := range r.memberships {
		if m.tournamentID == tournamentID && m.teamID == teamID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTeamRepo) MembershipCounts(ctx context.Context, tournamentIDs []int) (map[int]int, error) {
	counts := map[int]int{}
	for _, id := range tournamentIDs {
		for _, m := range r.memberships {
			if m.tournamentID == id {
				counts[id]++
			}
		}
	}
	return counts, nil
}

func (r *fakeTeamRepo) ListMemberships(ctx context.Context, teamIDs []int) ([]repositories.TeamMembership, error) {
	out := []repositories.TeamMembership{}
	for _, id := range teamIDs {
		for _, m := range r.memberships {
			if m.teamID != id {
				continue
			}
			name := ""
			if t, ok := r.tournaments.items[m.tournamentID]; ok {
				name = t.Name
			}
			out = append(out, repositories.TeamMembership{
				TeamID:         m.teamID,
				TournamentID:   m.tournamentID,
				TournamentName: name,
			})
		}
	}
	return out, nil
}

type fakeMatchRepo struct {
	items  map[int]models.Match
	order  []int
	nextID int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{items: map[int]models.Match{}, nextID: 1}
}

func (r *fakeMatchRepo) add(m models.Match) models.Match {
	m.ID = r.nextID
	m.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.items[m.ID] = m
	r.order = append(r.order, m.ID)
	r.nextID++
	return m
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, m *models.Match) error {
	m.ID = r.nextID
	m.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.items[m.ID] = *m
	r.order = append(r.order, m.ID)
	r.nextID++
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, id int) (*models.Match, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return &m, nil
}

func (r *fakeMatchRepo) ListAll(ctx context.Context) ([]models.Match, error) {
	out := make([]models.Match, 0, len(r.order))
	for _, id := range r.order {
		if m, ok := r.items[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error) {
	out := []models.Match{}
	for _, id := range r.order {
		if m, ok := r.items[id]; ok && m.TournamentID == tournamentID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) Update(ctx context.Context, m *models.Match) error {
	if _, ok := r.items[m.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	r.items[m.ID] = *m
	return nil
}

func (r *fakeMatchRepo) UpdateScore(ctx context.Context, id int, score *string) error {
	m, ok := r.items[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Score = score
	r.items[id] = m
	return nil
}

func (r *fakeMatchRepo) UpdateScoreAndWinner(ctx context.Context, id int, score string, winnerID int) error {
	m, ok := r.items[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Score = &score
	m.WinnerID = &winnerID
	r.items[id] = m
	return nil
}

func (r *fakeMatchRepo) Delete(ctx context.Context, id int) error {
	if _, ok := r.items[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *fakeMatchRepo) DeleteByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) error {
	for id, m := range r.items {
		if m.Team1ID == teamID || m.Team2ID == teamID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *fakeMatchRepo) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	for id, m := range r.items {
		if m.TournamentID == tournamentID {
			delete(r.items, id)
		}
	}
	return nil
}

func (r *fakeMatchRepo) CountByTournament(ctx context.Context, tournamentID int) (int, error) {
	count := 0
	for _, m := range r.items {
		if m.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

type fakeUploader struct {
	uploaded map[string]string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{uploaded: map[string]string{}}
}

func (u *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	u.uploaded[key] = contentType
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(ctx context.Context, key string) error {
	delete(u.uploaded, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return fmt.Sprintf("https://cdn.example.test/%s", key)
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}
