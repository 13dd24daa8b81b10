// Package jobs holds background work: scheduled maintenance and event-driven backups.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/drive"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/events"
)

// DriveBackup copies the text of new notes and assignments into the drive
type DriveBackup struct {
	client drive.Client
	logger zerolog.Logger
	now    func() time.Time
}

// NewDriveBackup creates the backup subscriber
func NewDriveBackup(client drive.Client, logger zerolog.Logger) *DriveBackup {
	return &DriveBackup{
		client: client,
		logger: logger.With().Str("subscriber", "drive-backup").Logger(),
		now:    time.Now,
	}
}

// Name identifies the subscriber
func (b *DriveBackup) Name() string { return "drive-backup" }

// Handle uploads a plain-text copy of the item. Other kinds are ignored.
func (b *DriveBackup) Handle(ctx context.Context, evt events.ContentCreated) error {
	var name, label string
	switch evt.Kind {
	case events.KindNote:
		if evt.Body == "" {
			return nil
		}
		name = fmt.Sprintf("%s_%d.txt", evt.Title, b.now().UnixMilli())
		label = "note"
	case events.KindAssignment:
		name = fmt.Sprintf("Assignment_%s_%d.txt", evt.Title, b.now().UnixMilli())
		label = "assignment"
	default:
		return nil
	}

	body := evt.Body
	f, err := b.client.Upload(ctx, strings.NewReader(body), drive.UploadInput{
		Name:        name,
		MimeType:    "text/plain",
		Description: fmt.Sprintf("Auto-backup of %s: %s", label, evt.Title),
		Size:        int64(len(body)),
	})
	if err != nil {
		return fmt.Errorf("backup of %s %s: %w", label, evt.ID, err)
	}

	b.logger.Info().
		Str("kind", evt.Kind).
		Str("id", evt.ID).
		Str("driveFileId", f.ID).
		Msg("Content backed up")
	return nil
}
