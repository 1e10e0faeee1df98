package models

import "time"

type Team struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	// Tournament memberships, populated by the service layer. A team may be
	// registered in any number of tournaments at once.
	TournamentIDs   []int    `json:"tournament_ids,omitempty" db:"-"`
	TournamentNames []string `json:"tournament_names,omitempty" db:"-"`
}
