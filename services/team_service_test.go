package services

import (
	"context"
	"testing"

	"github.com/brainbattle/arena-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type teamFixture struct {
	tx          *fakeTxBeginner
	tournaments *fakeTournamentRepo
	teams       *fakeTeamRepo
	matches     *fakeMatchRepo
	service     TeamService
}

func newTeamFixture() *teamFixture {
	tournaments := newFakeTournamentRepo()
	teams := newFakeTeamRepo(tournaments)
	matches := newFakeMatchRepo()
	tx := &fakeTxBeginner{}

	return &teamFixture{
		tx:          tx,
		tournaments: tournaments,
		teams:       teams,
		matches:     matches,
		service:     NewTeamService(tx, teams, tournaments, matches, nil),
	}
}

func TestTeamService_Create(t *testing.T) {
	f := newTeamFixture()

	team, err := f.service.Create(context.Background(), "  Alpha  ")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", team.Name)
	assert.NotZero(t, team.ID)

	_, err = f.service.Create(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrTeamNameRequired)
}

func TestTeamService_DeleteCascades(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	cup := f.tournaments.add("Summer Cup", models.TournamentActive)
	league := f.tournaments.add("Winter League", models.TournamentActive)
	alpha := f.teams.add("Alpha")
	bravo := f.teams.add("Bravo")
	charlie := f.teams.add("Charlie")

	require.NoError(t, f.teams.AddToTournament(ctx, nil, cup.ID, alpha.ID))
	require.NoError(t, f.teams.AddToTournament(ctx, nil, cup.ID, bravo.ID))
	require.NoError(t, f.teams.AddToTournament(ctx, nil, league.ID, alpha.ID))
	require.NoError(t, f.teams.AddToTournament(ctx, nil, league.ID, charlie.ID))

	// Alpha appears on both sides of matches across both tournaments.
	f.matches.add(models.Match{TournamentID: cup.ID, Team1ID: alpha.ID, Team2ID: bravo.ID})
	f.matches.add(models.Match{TournamentID: league.ID, Team1ID: charlie.ID, Team2ID: alpha.ID})
	survivor := f.matches.add(models.Match{TournamentID: cup.ID, Team1ID: bravo.ID, Team2ID: charlie.ID})

	require.NoError(t, f.service.Delete(ctx, alpha.ID))

	_, err := f.teams.GetByID(ctx, alpha.ID)
	assert.Error(t, err)

	// Every match referencing Alpha is gone, on either side; the rest stay.
	assert.Len(t, f.matches.items, 1)
	_, ok := f.matches.items[survivor.ID]
	assert.True(t, ok)

	// Memberships in every tournament are severed.
	member, err := f.teams.IsMember(ctx, cup.ID, alpha.ID)
	require.NoError(t, err)
	assert.False(t, member)
	member, err = f.teams.IsMember(ctx, league.ID, alpha.ID)
	require.NoError(t, err)
	assert.False(t, member)

	// The cascade ran inside a committed transaction.
	assert.Equal(t, 1, f.tx.commits)
	assert.Equal(t, 0, f.tx.rollbacks)
}

func TestTeamService_DeleteUnknownTeam(t *testing.T) {
	f := newTeamFixture()

	err := f.service.Delete(context.Background(), 404)
	assert.ErrorIs(t, err, ErrTeamNotFound)
	assert.Equal(t, 0, f.tx.commits)
}

func TestTeamService_AddToTournamentByID(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	cup := f.tournaments.add("Summer Cup", models.TournamentActive)
	alpha := f.teams.add("Alpha")

	team, err := f.service.AddToTournament(ctx, cup.ID, AddTeamInput{TeamID: intPtr(alpha.ID)})
	require.NoError(t, err)
	assert.Equal(t, alpha.ID, team.ID)

	member, err := f.teams.IsMember(ctx, cup.ID, alpha.ID)
	require.NoError(t, err)
	assert.True(t, member)
}

func TestTeamService_AddToTournamentByNameCreatesTeam(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	cup := f.tournaments.add("Summer Cup", models.TournamentActive)

	team, err := f.service.AddToTournament(ctx, cup.ID, AddTeamInput{Name: strPtr("Delta")})
	require.NoError(t, err)
	assert.NotZero(t, team.ID)
	assert.Equal(t, "Delta", team.Name)

	member, err := f.teams.IsMember(ctx, cup.ID, team.ID)
	require.NoError(t, err)
	assert.True(t, member)
	assert.Equal(t, 1, f.tx.commits)
}

func TestTeamService_AddToTournamentDuplicate(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	cup := f.tournaments.add("Summer Cup", models.TournamentActive)
	alpha := f.teams.add("Alpha")

	_, err := f.service.AddToTournament(ctx, cup.ID, AddTeamInput{TeamID: intPtr(alpha.ID)})
	require.NoError(t, err)

	_, err = f.service.AddToTournament(ctx, cup.ID, AddTeamInput{TeamID: intPtr(alpha.ID)})
	assert.ErrorIs(t, err, ErrTeamAlreadyInTournament)
}

func TestTeamService_AddToTournamentRequiresIDOrName(t *testing.T) {
	f := newTeamFixture()

	cup := f.tournaments.add("Summer Cup", models.TournamentActive)

	_, err := f.service.AddToTournament(context.Background(), cup.ID, AddTeamInput{})
	assert.ErrorIs(t, err, ErrTeamIDOrNameRequired)

	_, err = f.service.AddToTournament(context.Background(), 999, AddTeamInput{Name: strPtr("Delta")})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestTeamService_RemoveFromTournamentKeepsTeamAndMatches(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	cup := f.tournaments.add("Summer Cup", models.TournamentActive)
	alpha := f.teams.add("Alpha")
	bravo := f.teams.add("Bravo")
	require.NoError(t, f.teams.AddToTournament(ctx, nil, cup.ID, alpha.ID))
	require.NoError(t, f.teams.AddToTournament(ctx, nil, cup.ID, bravo.ID))
	played := f.matches.add(models.Match{TournamentID: cup.ID, Team1ID: alpha.ID, Team2ID: bravo.ID})

	require.NoError(t, f.service.RemoveFromTournament(ctx, cup.ID, alpha.ID))

	member, err := f.teams.IsMember(ctx, cup.ID, alpha.ID)
	require.NoError(t, err)
	assert.False(t, member)

	// The team and its historical match survive.
	_, err = f.teams.GetByID(ctx, alpha.ID)
	assert.NoError(t, err)
	_, ok := f.matches.items[played.ID]
	assert.True(t, ok)
}

func TestTeamService_ListByTournamentKeepsRegistrationOrder(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	cup := f.tournaments.add("Summer Cup", models.TournamentActive)
	zulu := f.teams.add("Zulu")
	alpha := f.teams.add("Alpha")
	require.NoError(t, f.teams.AddToTournament(ctx, nil, cup.ID, zulu.ID))
	require.NoError(t, f.teams.AddToTournament(ctx, nil, cup.ID, alpha.ID))

	roster, err := f.service.ListByTournament(ctx, cup.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Zulu", roster[0].Name)
	assert.Equal(t, "Alpha", roster[1].Name)
}

func TestTeamService_GetByIDPopulatesMemberships(t *testing.T) {
	f := newTeamFixture()
	ctx := context.Background()

	cup := f.tournaments.add("Summer Cup", models.TournamentActive)
	league := f.tournaments.add("Winter League", models.TournamentActive)
	alpha := f.teams.add("Alpha")
	require.NoError(t, f.teams.AddToTournament(ctx, nil, cup.ID, alpha.ID))
	require.NoError(t, f.teams.AddToTournament(ctx, nil, league.ID, alpha.ID))

	team, err := f.service.GetByID(ctx, alpha.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{cup.ID, league.ID}, team.TournamentIDs)
	assert.Equal(t, []string{"Summer Cup", "Winter League"}, team.TournamentNames)
}

func TestTeamService_UploadLogoWithoutStorage(t *testing.T) {
	f := newTeamFixture()
	alpha := f.teams.add("Alpha")

	_, err := f.service.UploadLogo(context.Background(), alpha.ID, "image/png", nil)
	assert.ErrorIs(t, err, ErrMediaNotConfigured)
}

func TestTeamService_UploadLogo(t *testing.T) {
	uploader := newFakeUploader()
	f := newTeamFixture()
	f.service = NewTeamService(f.tx, f.teams, f.tournaments, f.matches, uploader)
	alpha := f.teams.add("Alpha")

	team, err := f.service.UploadLogo(context.Background(), alpha.ID, "image/png", nil)
	require.NoError(t, err)
	require.NotNil(t, team.LogoURL)
	assert.Contains(t, *team.LogoURL, "teams/")
	assert.Len(t, uploader.uploaded, 1)

	_, err = f.service.UploadLogo(context.Background(), alpha.ID, "application/pdf", nil)
	assert.ErrorIs(t, err, ErrUnsupportedImageType)
}
