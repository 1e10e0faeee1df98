package services

import (
	"context"
	"testing"

	"github.com/brainbattle/arena-api/brackets"
	"github.com/brainbattle/arena-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bracketFixture struct {
	tx          *fakeTxBeginner
	tournaments *fakeTournamentRepo
	teams       *fakeTeamRepo
	matches     *fakeMatchRepo
	service     BracketService
}

func newBracketFixture() *bracketFixture {
	tournaments := newFakeTournamentRepo()
	teams := newFakeTeamRepo(tournaments)
	matches := newFakeMatchRepo()
	tx := &fakeTxBeginner{}

	return &bracketFixture{
		tx:          tx,
		tournaments: tournaments,
		teams:       teams,
		matches:     matches,
		service:     NewBracketService(tx, tournaments, teams, matches, nil, fixedNow),
	}
}

func (f *bracketFixture) register(t *testing.T, tournamentID int, names ...string) []models.Team {
	t.Helper()
	teams := make([]models.Team, 0, len(names))
	for _, name := range names {
		team := f.teams.add(name)
		require.NoError(t, f.teams.AddToTournament(context.Background(), nil, tournamentID, team.ID))
		teams = append(teams, team)
	}
	return teams
}

func TestBracketService_GenerateSequential(t *testing.T) {
	f := newBracketFixture()
	cup := f.tournaments.add("Summer Cup", models.TournamentActive)
	roster := f.register(t, cup.ID, "Alpha", "Bravo", "Charlie", "Delta")

	result, err := f.service.GenerateMatches(context.Background(), cup.ID, "")
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	assert.Empty(t, result.ByeIDs)

	// Pairing follows registration order.
	assert.Equal(t, roster[0].ID, result.Matches[0].Team1ID)
	assert.Equal(t, roster[1].ID, result.Matches[0].Team2ID)
	assert.Equal(t, roster[2].ID, result.Matches[1].Team1ID)
	assert.Equal(t, roster[3].ID, result.Matches[1].Team2ID)

	for _, m := range result.Matches {
		assert.Equal(t, cup.ID, m.TournamentID)
		assert.Equal(t, 1, m.Round)
		assert.Equal(t, models.MatchNotScheduled, m.Status)
	}
	assert.Len(t, f.matches.items, 2)
	assert.Equal(t, 1, f.tx.commits)
}

func TestBracketService_GenerateOddRosterGetsBye(t *testing.T) {
	f := newBracketFixture()
	cup := f.tournaments.add("Summer Cup", models.TournamentActive)
	roster := f.register(t, cup.ID, "Alpha", "Bravo", "Charlie")

	result, err := f.service.GenerateMatches(context.Background(), cup.ID, brackets.StrategySequential)
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, []int{roster[2].ID}, result.ByeIDs)
}

func TestBracketService_GenerateRoundRobin(t *testing.T) {
	f := newBracketFixture()
	cup := f.tournaments.add("Summer Cup", models.TournamentActive)
	f.register(t, cup.ID, "Alpha", "Bravo", "Charlie")

	result, err := f.service.GenerateMatches(context.Background(), cup.ID, brackets.StrategyRoundRobin)
	require.NoError(t, err)

	assert.Len(t, result.Matches, 3)
	assert.Empty(t, result.ByeIDs)
}

func TestBracketService_GeneratePreconditions(t *testing.T) {
	f := newBracketFixture()
	ctx := context.Background()

	_, err := f.service.GenerateMatches(ctx, 999, "")
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	cup := f.tournaments.add("Summer Cup", models.TournamentActive)
	_, err = f.service.GenerateMatches(ctx, cup.ID, "")
	assert.ErrorIs(t, err, ErrNotEnoughTeams)

	f.register(t, cup.ID, "Alpha")
	_, err = f.service.GenerateMatches(ctx, cup.ID, "")
	assert.ErrorIs(t, err, ErrNotEnoughTeams)

	f.register(t, cup.ID, "Bravo")
	_, err = f.service.GenerateMatches(ctx, cup.ID, "double_elimination")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestBracketService_GenerateRefusesExistingMatches(t *testing.T) {
	f := newBracketFixture()
	ctx := context.Background()

	cup := f.tournaments.add("Summer Cup", models.TournamentActive)
	f.register(t, cup.ID, "Alpha", "Bravo")

	_, err := f.service.GenerateMatches(ctx, cup.ID, "")
	require.NoError(t, err)

	// A second run refuses rather than merging with the first.
	_, err = f.service.GenerateMatches(ctx, cup.ID, "")
	assert.ErrorIs(t, err, ErrMatchesAlreadyGenerated)
	assert.Len(t, f.matches.items, 1)

	// A hand-created match blocks generation the same way.
	other := newBracketFixture()
	otherCup := other.tournaments.add("Other Cup", models.TournamentActive)
	otherRoster := other.register(t, otherCup.ID, "Alpha", "Bravo")
	other.matches.add(models.Match{
		TournamentID: otherCup.ID,
		Team1ID:      otherRoster[0].ID,
		Team2ID:      otherRoster[1].ID,
	})
	_, err = other.service.GenerateMatches(ctx, otherCup.ID, "")
	assert.ErrorIs(t, err, ErrMatchesAlreadyGenerated)
}
