package models

import "time"

// TournamentStatus mirrors the status ENUM in the tournaments table.
type TournamentStatus string

const (
	TournamentActive    TournamentStatus = "active"
	TournamentCompleted TournamentStatus = "completed"
)

func (s TournamentStatus) Valid() bool {
	return s == TournamentActive || s == TournamentCompleted
}

// CanTransitionTo reports whether the status change is allowed. The only
// real transition is active -> completed; a completed tournament never
// reopens.
func (s TournamentStatus) CanTransitionTo(next TournamentStatus) bool {
	if s == next {
		return true
	}
	return s == TournamentActive && next == TournamentCompleted
}

type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	GameType  string           `json:"game_type" db:"game_type"`
	Status    TournamentStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	// Populated by the service layer, not mapped to columns.
	TeamCount int     `json:"team_count" db:"-"`
	Teams     []Team  `json:"teams,omitempty" db:"-"`
	Matches   []Match `json:"matches,omitempty" db:"-"`
}
