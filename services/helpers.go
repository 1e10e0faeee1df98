package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brainbattle/arena-api/models"
	"github.com/brainbattle/arena-api/repositories"
	"github.com/brainbattle/arena-api/storage"
)

// withTx runs fn inside a transaction, rolling back on error.
func withTx(ctx context.Context, tx repositories.TxBeginner, fn func(exec repositories.SQLExecutor) error) error {
	t, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(t); err != nil {
		_ = t.Rollback()
		return err
	}
	if err := t.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func validateScheduledDate(date *string) error {
	if date == nil || *date == "" {
		return nil
	}
	if _, err := time.Parse(models.ScheduleDateLayout, *date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidScheduledDate, *date)
	}
	return nil
}

func validateScheduledTime(clock *string) error {
	if clock == nil || *clock == "" {
		return nil
	}
	if _, err := time.Parse(models.ScheduleTimeLayout, *clock); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidScheduledTime, *clock)
	}
	return nil
}

// normalizeOptional maps empty strings to nil so clearing a field and
// omitting it store the same way.
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func populateTournamentLogoURL(t *models.Tournament, uploader storage.FileUploader) {
	if t == nil || t.LogoKey == nil || *t.LogoKey == "" || uploader == nil {
		return
	}
	if url := uploader.GetPublicURL(*t.LogoKey); url != "" {
		t.LogoURL = &url
	}
}

func populateTeamLogoURL(team *models.Team, uploader storage.FileUploader) {
	if team == nil || team.LogoKey == nil || *team.LogoKey == "" || uploader == nil {
		return
	}
	if url := uploader.GetPublicURL(*team.LogoKey); url != "" {
		team.LogoURL = &url
	}
}

// populateMatchTeams resolves the team objects referenced by the given
// matches in one batch and stamps the derived lifecycle status.
func populateMatchTeams(ctx context.Context, teams repositories.TeamRepository, uploader storage.FileUploader, matches []models.Match, now time.Time) error {
	idSet := make(map[int]struct{})
	for i := range matches {
		idSet[matches[i].Team1ID] = struct{}{}
		idSet[matches[i].Team2ID] = struct{}{}
	}
	ids := make([]int, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	loaded, err := teams.ListByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load match teams: %w", err)
	}
	byID := make(map[int]*models.Team, len(loaded))
	for i := range loaded {
		populateTeamLogoURL(&loaded[i], uploader)
		byID[loaded[i].ID] = &loaded[i]
	}

	for i := range matches {
		matches[i].Status = matches[i].StatusAt(now)
		matches[i].Team1 = byID[matches[i].Team1ID]
		matches[i].Team2 = byID[matches[i].Team2ID]
	}
	return nil
}

// extensionForContentType maps an image content type to a file extension for
// stored logo objects.
func extensionForContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImageType, contentType)
	}
}
