package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	// Not found
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Validation
	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrGameTypeRequired        = errors.New("tournament game type is required")
	ErrTeamNameRequired        = errors.New("team name is required")
	ErrTeamIDOrNameRequired    = errors.New("either team_id or name is required")
	ErrInvalidTournamentStatus = errors.New("invalid tournament status")
	ErrInvalidScheduledDate    = errors.New("scheduled_date must be an ISO date (YYYY-MM-DD)")
	ErrInvalidScheduledTime    = errors.New("scheduled_time must be a 24h time (HH:MM)")
	ErrMatchTeamsRequired      = errors.New("both team1_id and team2_id are required")
	ErrDuplicateTeams          = errors.New("a match requires two distinct teams")
	ErrUnknownTeam             = errors.New("team is not registered in this tournament")
	ErrUnknownStrategy         = errors.New("unknown pairing strategy")
	ErrNotEnoughTeams          = errors.New("at least two teams are required to generate matches")

	// Conflicts
	ErrTie                     = errors.New("match cannot finish in a tie")
	ErrWinnerNotInTeamPair     = errors.New("recorded winner must remain one of the match teams")
	ErrTeamAlreadyInTournament = errors.New("team is already registered in this tournament")
	ErrMatchesAlreadyGenerated = errors.New("tournament already has matches")
	ErrStatusTransitionDenied  = errors.New("completed tournaments cannot be reopened")

	// Media
	ErrMediaNotConfigured   = errors.New("media storage is not configured")
	ErrUnsupportedImageType = errors.New("unsupported image content type")
)
