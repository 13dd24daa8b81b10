package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const fileFields = "id,name,mimeType,size,description,createdTime,modifiedTime,webViewLink,webContentLink"

// GoogleClient stores files in a Google Drive folder through a service account
type GoogleClient struct {
	svc      *gdrive.Service
	folderID string
	logger   zerolog.Logger
}

// NewGoogleClient builds a Drive v3 client from a service-account credentials file
func NewGoogleClient(ctx context.Context, credentialsPath, folderID string, logger zerolog.Logger) (*GoogleClient, error) {
	svc, err := gdrive.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(gdrive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	logger.Info().Str("folder", folderID).Msg("Google Drive client initialized")
	return &GoogleClient{svc: svc, folderID: folderID, logger: logger}, nil
}

func toFile(f *gdrive.File) *File {
	out := &File{
		ID:             f.Id,
		Name:           f.Name,
		MimeType:       f.MimeType,
		Size:           f.Size,
		Description:    f.Description,
		WebViewLink:    f.WebViewLink,
		WebContentLink: f.WebContentLink,
	}
	out.CreatedTime, _ = time.Parse(time.RFC3339, f.CreatedTime)
	out.ModifiedTime, _ = time.Parse(time.RFC3339, f.ModifiedTime)
	return out
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}

// Upload creates the file in the configured folder and makes it readable by link
func (g *GoogleClient) Upload(ctx context.Context, r io.Reader, in UploadInput) (*File, error) {
	meta := &gdrive.File{
		Name:        in.Name,
		MimeType:    in.MimeType,
		Description: in.Description,
	}
	if meta.Description == "" {
		meta.Description = "University document"
	}
	if g.folderID != "" {
		meta.Parents = []string{g.folderID}
	}

	created, err := g.svc.Files.Create(meta).
		Media(r, googleapi.ContentType(in.MimeType)).
		Fields(fileFields).
		Context(ctx).
		Do()
	if err != nil {
		g.logger.Error().Err(err).Str("name", in.Name).Msg("Error uploading file to Google Drive")
		return nil, err
	}

	_, err = g.svc.Permissions.Create(created.Id, &gdrive.Permission{Role: RoleReader, Type: "anyone"}).
		Context(ctx).
		Do()
	if err != nil {
		g.logger.Warn().Err(err).Str("fileId", created.Id).Msg("Failed to make uploaded file readable by link")
	}

	return toFile(created), nil
}

// Get returns file metadata, or nil when the file is gone
func (g *GoogleClient) Get(ctx context.Context, id string) (*File, error) {
	f, err := g.svc.Files.Get(id).Fields(fileFields).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if f.Trashed {
		return nil, nil
	}
	return toFile(f), nil
}

// Download streams the file content
func (g *GoogleClient) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	meta, err := g.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if meta == nil {
		return nil, nil, fmt.Errorf("drive file %s not found", id)
	}

	resp, err := g.svc.Files.Get(id).Context(ctx).Download()
	if err != nil {
		return nil, nil, err
	}
	return resp.Body, meta, nil
}

// Update renames the file and/or replaces its description
func (g *GoogleClient) Update(ctx context.Context, id, name, description string) (*File, error) {
	patch := &gdrive.File{Name: name, Description: description}
	f, err := g.svc.Files.Update(id, patch).Fields(fileFields).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return toFile(f), nil
}

// Delete removes the file permanently
func (g *GoogleClient) Delete(ctx context.Context, id string) (bool, error) {
	if err := g.svc.Files.Delete(id).Context(ctx).Do(); err != nil {
		if isNotFound(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// Share grants role on the file to a user e-mail
func (g *GoogleClient) Share(ctx context.Context, id, email, role string) (bool, error) {
	perm := &gdrive.Permission{Type: "user", Role: role, EmailAddress: email}
	if _, err := g.svc.Permissions.Create(id, perm).SendNotificationEmail(true).Context(ctx).Do(); err != nil {
		return false, err
	}
	return true, nil
}
