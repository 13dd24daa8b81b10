package services

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/auth"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/drive"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/events"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

// UploadRequest carries an upload's metadata
type UploadRequest struct {
	OriginalName string
	MimeType     string
	Size         int64
	Description  string
	Category     string
	Subject      string
	Course       string
	Department   string
	Tags         []string
	IsPublic     bool
}

// DriveAnalytics summarizes the stored files
type DriveAnalytics struct {
	TotalFiles     int64               `json:"totalFiles"`
	PublicFiles    int64               `json:"publicFiles"`
	ByCategory     map[string]int64    `json:"byCategory"`
	ByFileType     map[string]int64    `json:"byFileType"`
	MostDownloaded []*models.DriveFile `json:"mostDownloaded"`
}

// DriveFileService keeps drive file records in step with the drive backend
type DriveFileService struct {
	*ContentService[models.DriveFile, *models.DriveFile]
	drive drive.Client
}

// NewDriveFileService creates a DriveFileService
func NewDriveFileService(store repositories.Store[models.DriveFile], client drive.Client, users UserDirectory, publisher events.Publisher, logger zerolog.Logger) *DriveFileService {
	return &DriveFileService{
		ContentService: NewContentService[models.DriveFile, *models.DriveFile](store, ContentConfig[models.DriveFile]{
			Entity:     "drive file",
			Kind:       events.KindDriveFile,
			OwnerField: "uploadedBy",
			Body:       func(f *models.DriveFile) string { return f.Description },
		}, users, publisher, logger),
		drive: client,
	}
}

// FindByCategory lists files of one category
func (s *DriveFileService) FindByCategory(ctx context.Context, category string, opts query.Options) (*query.Result[*models.DriveFile], error) {
	return s.findWhere(ctx, opts, query.Eq("category", category))
}

// FindByFileType lists files whose MIME type matches a coarse file type such as "pdf"
func (s *DriveFileService) FindByFileType(ctx context.Context, fileType string, opts query.Options) (*query.Result[*models.DriveFile], error) {
	return s.findWhere(ctx, opts, query.Match("mimeType", models.FileTypePatternFor(fileType)))
}

// FindByDriveFileID returns the record of a backend object
func (s *DriveFileService) FindByDriveFileID(ctx context.Context, driveFileID string) (*models.DriveFile, error) {
	return s.Store().FindOne(ctx, query.Filter{query.Eq("driveFileId", driveFileID)})
}

// GetMostDownloaded returns the n most downloaded public files
func (s *DriveFileService) GetMostDownloaded(ctx context.Context, n int, filter query.Filter) ([]*models.DriveFile, error) {
	return s.top(ctx, n, filter, query.SortField{Field: "downloads", Desc: true})
}

// GetRecentUploads returns the n newest public files
func (s *DriveFileService) GetRecentUploads(ctx context.Context, n int, filter query.Filter) ([]*models.DriveFile, error) {
	return s.top(ctx, n, filter, query.SortField{Field: "createdAt", Desc: true})
}

func fromDrive(f *models.DriveFile, df *drive.File) {
	f.DriveFileID = df.ID
	f.Name = df.Name
	if df.MimeType != "" {
		f.MimeType = df.MimeType
	}
	f.Size = df.Size
	f.DriveURL = df.WebViewLink
	f.WebViewLink = df.WebViewLink
	f.WebContentLink = df.WebContentLink
}

// Upload stores r in the backend and records it. When the record cannot be
// created the backend object is removed again.
func (s *DriveFileService) Upload(ctx context.Context, actor *auth.Actor, r io.Reader, req UploadRequest) (*models.DriveFile, error) {
	if strings.TrimSpace(req.OriginalName) == "" {
		return nil, apperrors.NewBadRequestError("no file uploaded")
	}
	if req.MimeType == "" {
		req.MimeType = "application/octet-stream"
	}
	category := req.Category
	if category == "" {
		category = models.CategoryForMIME(req.MimeType)
	}

	stored, err := s.drive.Upload(ctx, r, drive.UploadInput{
		Name:        req.OriginalName,
		MimeType:    req.MimeType,
		Description: req.Description,
		Size:        req.Size,
	})
	if err != nil {
		return nil, err
	}

	record := &models.DriveFile{
		ContentMeta: models.ContentMeta{
			Subject:    req.Subject,
			Course:     req.Course,
			Department: req.Department,
			Tags:       req.Tags,
			IsPublic:   req.IsPublic,
		},
		OriginalName: req.OriginalName,
		MimeType:     req.MimeType,
		Description:  req.Description,
		Category:     category,
	}
	fromDrive(record, stored)
	if record.Size == 0 {
		record.Size = req.Size
	}

	created, err := s.CreateAs(ctx, actor, record)
	if err != nil {
		if _, derr := s.drive.Delete(ctx, stored.ID); derr != nil {
			s.logger.Error().Err(derr).Str("driveFileId", stored.ID).Msg("Failed to remove orphaned drive object")
		}
		return nil, err
	}
	return created, nil
}

// SyncWithDrive refreshes the record of a backend object. When the object
// is gone the record is deleted and nil returned.
func (s *DriveFileService) SyncWithDrive(ctx context.Context, actor *auth.Actor, driveFileID string) (*models.DriveFile, error) {
	record, err := s.FindByDriveFileID(ctx, driveFileID)
	if err != nil {
		return nil, err
	}
	return s.sync(ctx, actor, record)
}

// SyncRecord is SyncWithDrive addressed by the local record id
func (s *DriveFileService) SyncRecord(ctx context.Context, actor *auth.Actor, id string) (*models.DriveFile, error) {
	record, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.sync(ctx, actor, record)
}

func (s *DriveFileService) sync(ctx context.Context, actor *auth.Actor, record *models.DriveFile) (*models.DriveFile, error) {
	if err := auth.AuthorizeMutate(actor, record.OwnerID(), "drive file"); err != nil {
		return nil, err
	}

	remote, err := s.drive.Get(ctx, record.DriveFileID)
	if err != nil {
		return nil, err
	}
	if remote == nil {
		if _, err := s.Store().Delete(ctx, record.ID); err != nil {
			return nil, err
		}
		s.logger.Info().Str("id", record.ID.Hex()).Str("driveFileId", record.DriveFileID).Msg("Drive object gone, record removed")
		return nil, nil
	}

	return s.save(ctx, record, func(f *models.DriveFile) error {
		fromDrive(f, remote)
		if remote.Description != "" {
			f.Description = remote.Description
		}
		return nil
	})
}

// UpdateMetadata renames a file or changes its description in the backend
// and applies the remaining patch to the record
func (s *DriveFileService) UpdateMetadata(ctx context.Context, actor *auth.Actor, id, name, description string, apply func(f *models.DriveFile) error) (*models.DriveFile, error) {
	record, err := s.GetAs(ctx, actor, id, false)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeMutate(actor, record.OwnerID(), "drive file"); err != nil {
		return nil, err
	}

	var remote *drive.File
	if name != "" || description != "" {
		remote, err = s.drive.Update(ctx, record.DriveFileID, name, description)
		if err != nil {
			return nil, err
		}
	}

	return s.UpdateAs(ctx, actor, id, func(f *models.DriveFile) error {
		if apply != nil {
			if err := apply(f); err != nil {
				return err
			}
		}
		if remote != nil {
			f.Name = remote.Name
			f.Description = remote.Description
		}
		return nil
	})
}

// DeleteCompletely removes the backend object and then the record. The record
// goes even when the backend refuses; the result reports whether it confirmed.
func (s *DriveFileService) DeleteCompletely(ctx context.Context, actor *auth.Actor, id string) (bool, error) {
	record, err := s.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if err := auth.AuthorizeMutate(actor, record.OwnerID(), "drive file"); err != nil {
		return false, err
	}

	driveDeleted, err := s.drive.Delete(ctx, record.DriveFileID)
	if err != nil {
		s.logger.Warn().Err(err).Str("driveFileId", record.DriveFileID).Msg("Drive delete failed, removing record anyway")
		driveDeleted = false
	}

	if _, err := s.Store().Delete(ctx, record.ID); err != nil {
		return driveDeleted, err
	}
	return driveDeleted, nil
}

// Download opens the file content and counts the download
func (s *DriveFileService) Download(ctx context.Context, actor *auth.Actor, id string) (io.ReadCloser, *models.DriveFile, error) {
	record, err := s.GetAs(ctx, actor, id, false)
	if err != nil {
		return nil, nil, err
	}

	rc, _, err := s.drive.Download(ctx, record.DriveFileID)
	if err != nil {
		return nil, nil, err
	}
	s.IncrementDownloads(ctx, record.ID)
	return rc, record, nil
}

// Share grants email access to the backend object
func (s *DriveFileService) Share(ctx context.Context, actor *auth.Actor, id, email, role string) (bool, error) {
	if role == "" {
		role = drive.RoleReader
	}
	if !drive.ValidShareRole(role) {
		return false, apperrors.NewValidationError("invalid share request", map[string]interface{}{
			"role": "role must be one of reader, writer, commenter",
		})
	}

	record, err := s.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	if err := auth.AuthorizeMutate(actor, record.OwnerID(), "drive file"); err != nil {
		return false, err
	}
	return s.drive.Share(ctx, record.DriveFileID, email, role)
}

// Analytics counts files per category and file type concurrently
func (s *DriveFileService) Analytics(ctx context.Context) (*DriveAnalytics, error) {
	out := &DriveAnalytics{
		ByCategory: make(map[string]int64, len(models.DriveCategories)),
		ByFileType: make(map[string]int64, len(models.FileTypePatterns)),
	}
	var mu sync.Mutex
	store := s.Store()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := store.Count(gctx, nil, "")
		out.TotalFiles = n
		return err
	})
	g.Go(func() error {
		n, err := store.Count(gctx, query.Filter{query.Eq("isPublic", true)}, "")
		out.PublicFiles = n
		return err
	})
	for _, c := range models.DriveCategories {
		c := c
		g.Go(func() error {
			n, err := store.Count(gctx, query.Filter{query.Eq("category", c)}, "")
			mu.Lock()
			out.ByCategory[c] = n
			mu.Unlock()
			return err
		})
	}
	for _, p := range models.FileTypePatterns {
		p := p
		g.Go(func() error {
			n, err := store.Count(gctx, query.Filter{query.Match("mimeType", p.Pattern)}, "")
			mu.Lock()
			out.ByFileType[p.Type] = n
			mu.Unlock()
			return err
		})
	}
	g.Go(func() error {
		top, err := s.GetMostDownloaded(gctx, 5, nil)
		out.MostDownloaded = top
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
