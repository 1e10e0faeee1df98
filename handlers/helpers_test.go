package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brainbattle/arena-api/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetIDFromURL(t *testing.T) {
	newRequest := func(raw string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("tournamentID", raw)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := getIDFromURL(newRequest("42"), "tournamentID")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	_, err = getIDFromURL(newRequest("abc"), "tournamentID")
	assert.Error(t, err)

	_, err = getIDFromURL(newRequest("0"), "tournamentID")
	assert.Error(t, err)

	_, err = getIDFromURL(newRequest("-5"), "tournamentID")
	assert.Error(t, err)
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	newRequest := func(body string) (*httptest.ResponseRecorder, *http.Request) {
		return httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	}

	var dst payload
	w, r := newRequest(`{"name":"Alpha"}`)
	require.NoError(t, readJSON(w, r, &dst))
	assert.Equal(t, "Alpha", dst.Name)

	w, r = newRequest(`{"name":"Alpha","bogus":true}`)
	err := readJSON(w, r, &payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")

	w, r = newRequest(`{"name":`)
	assert.Error(t, readJSON(w, r, &payload{}))

	w, r = newRequest(``)
	err = readJSON(w, r, &payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")

	w, r = newRequest(`{"name":"a"}{"name":"b"}`)
	err = readJSON(w, r, &payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single JSON value")
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{services.ErrTournamentNotFound, http.StatusNotFound},
		{services.ErrTeamNotFound, http.StatusNotFound},
		{services.ErrMatchNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: 1-1", services.ErrTie), http.StatusConflict},
		{fmt.Errorf("%w: team 1", services.ErrWinnerNotInTeamPair), http.StatusConflict},
		{services.ErrTeamAlreadyInTournament, http.StatusConflict},
		{services.ErrMatchesAlreadyGenerated, http.StatusConflict},
		{services.ErrStatusTransitionDenied, http.StatusConflict},
		{services.ErrTournamentNameRequired, http.StatusBadRequest},
		{services.ErrMatchTeamsRequired, http.StatusBadRequest},
		{services.ErrDuplicateTeams, http.StatusBadRequest},
		{services.ErrUnknownTeam, http.StatusBadRequest},
		{services.ErrNotEnoughTeams, http.StatusBadRequest},
		{services.ErrInvalidScheduledDate, http.StatusBadRequest},
		{services.ErrMediaNotConfigured, http.StatusServiceUnavailable},
		{errors.New("database is on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		mapServiceErrorToHTTP(w, r, tt.err)
		assert.Equal(t, tt.status, w.Code, "status for %v", tt.err)
		assert.Contains(t, w.Body.String(), "error")
	}
}
