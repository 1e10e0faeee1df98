package models

import "time"

// MatchStatus is the derived lifecycle classification of a match. It is
// computed from the match fields and the current time on every read and is
// deliberately not stored anywhere: a match flips from upcoming to live
// without any write happening.
type MatchStatus string

const (
	MatchFinished     MatchStatus = "finished"
	MatchLive         MatchStatus = "live"
	MatchUpcoming     MatchStatus = "upcoming"
	MatchNotScheduled MatchStatus = "not_scheduled"
)

const (
	ScheduleDateLayout = "2006-01-02"
	ScheduleTimeLayout = "15:04"
)

type Match struct {
	ID           int `json:"id" db:"id"`
	TournamentID int `json:"tournament_id" db:"tournament_id"`
	Team1ID      int `json:"team1_id" db:"team1_id"`
	Team2ID      int `json:"team2_id" db:"team2_id"`
	Round        int `json:"round" db:"round"`

	ScheduledDate *string `json:"scheduled_date,omitempty" db:"scheduled_date"`
	ScheduledTime *string `json:"scheduled_time,omitempty" db:"scheduled_time"`
	Location      *string `json:"location,omitempty" db:"location"`

	Score     *string   `json:"score,omitempty" db:"score"`
	WinnerID  *int      `json:"winner_id,omitempty" db:"winner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Populated by the service layer, not mapped to columns.
	Status         MatchStatus `json:"status,omitempty" db:"-"`
	Team1          *Team       `json:"team1,omitempty" db:"-"`
	Team2          *Team       `json:"team2,omitempty" db:"-"`
	TournamentName *string     `json:"tournament_name,omitempty" db:"-"`
}

// StatusAt classifies the match lifecycle at the given instant. The checks
// are ordered: a winner always means finished, regardless of schedule; a
// match without a date is not scheduled; otherwise the kickoff timestamp
// decides between live and upcoming.
func (m *Match) StatusAt(now time.Time) MatchStatus {
	if m.WinnerID != nil {
		return MatchFinished
	}
	if m.ScheduledDate == nil || *m.ScheduledDate == "" {
		return MatchNotScheduled
	}
	kickoff, err := m.ScheduledAt()
	if err != nil {
		// An unparseable stored date never compares as reached.
		return MatchUpcoming
	}
	if !now.Before(kickoff) {
		return MatchLive
	}
	return MatchUpcoming
}

// ScheduledAt builds the kickoff timestamp from the schedule fields,
// interpreted in UTC. The time component defaults to midnight when absent.
func (m *Match) ScheduledAt() (time.Time, error) {
	clock := "00:00"
	if m.ScheduledTime != nil && *m.ScheduledTime != "" {
		clock = *m.ScheduledTime
	}
	return time.ParseInLocation(
		ScheduleDateLayout+" "+ScheduleTimeLayout,
		*m.ScheduledDate+" "+clock,
		time.UTC,
	)
}
