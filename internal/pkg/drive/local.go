package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/logger"
)

// LocalClient keeps files on the local filesystem. Every object is stored as
// <id> next to a <id>.json metadata sidecar.
type LocalClient struct {
	basePath string
	baseURL  string
	mu       sync.Mutex
}

type localMeta struct {
	Name        string    `json:"name"`
	MimeType    string    `json:"mimeType"`
	Size        int64     `json:"size"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	ModifiedAt  time.Time `json:"modifiedAt"`
	Shares      []string  `json:"shares,omitempty"`
}

// NewLocalClient creates the storage directory when missing.
// baseURL is optional; when set it prefixes the generated links.
func NewLocalClient(basePath, baseURL string) (*LocalClient, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local drive directory ensured")

	return &LocalClient{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *LocalClient) contentPath(id string) string { return filepath.Join(l.basePath, id) }
func (l *LocalClient) metaPath(id string) string    { return filepath.Join(l.basePath, id+".json") }

// ids are generated by us; anything with a separator is not one of ours
func validLocalID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (l *LocalClient) link(id string) string {
	if l.baseURL == "" {
		return "/" + filepath.ToSlash(filepath.Join("uploads", id))
	}
	return l.baseURL + "/" + id
}

func (l *LocalClient) toFile(id string, m localMeta) *File {
	return &File{
		ID:             id,
		Name:           m.Name,
		MimeType:       m.MimeType,
		Size:           m.Size,
		Description:    m.Description,
		WebViewLink:    l.link(id),
		WebContentLink: l.link(id) + "?download=1",
		CreatedTime:    m.CreatedAt,
		ModifiedTime:   m.ModifiedAt,
	}
}

func (l *LocalClient) readMeta(id string) (*localMeta, error) {
	raw, err := os.ReadFile(l.metaPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var m localMeta
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("corrupt metadata for %s: %w", id, err)
	}
	return &m, nil
}

func (l *LocalClient) writeMeta(id string, m localMeta) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(l.metaPath(id), raw, 0o644)
}

// Upload copies r into a new object
func (l *LocalClient) Upload(_ context.Context, r io.Reader, in UploadInput) (*File, error) {
	id := uuid.New().String()
	dstPath := l.contentPath(id)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, r)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file content: %w", err)
	}

	now := time.Now().UTC()
	m := localMeta{
		Name:        in.Name,
		MimeType:    in.MimeType,
		Size:        written,
		Description: in.Description,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	if err := l.writeMeta(id, m); err != nil {
		_ = os.Remove(dstPath)
		return nil, fmt.Errorf("failed to save file metadata: %w", err)
	}

	logger.Info().Str("filename", in.Name).Str("saved_as", id).Msg("File saved successfully")
	return l.toFile(id, m), nil
}

// Get returns the stored metadata, nil when the object is gone
func (l *LocalClient) Get(_ context.Context, id string) (*File, error) {
	if !validLocalID(id) {
		return nil, nil
	}
	m, err := l.readMeta(id)
	if err != nil || m == nil {
		return nil, err
	}
	return l.toFile(id, *m), nil
}

// Download opens the object for reading
func (l *LocalClient) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	f, err := l.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if f == nil {
		return nil, nil, fmt.Errorf("file %s not found", id)
	}
	rc, err := os.Open(l.contentPath(id))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return rc, f, nil
}

// Update changes the stored name and description; empty values are left as-is
func (l *LocalClient) Update(_ context.Context, id, name, description string) (*File, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !validLocalID(id) {
		return nil, fmt.Errorf("file %s not found", id)
	}
	m, err := l.readMeta(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("file %s not found", id)
	}
	if name != "" {
		m.Name = name
	}
	if description != "" {
		m.Description = description
	}
	m.ModifiedAt = time.Now().UTC()
	if err := l.writeMeta(id, *m); err != nil {
		return nil, err
	}
	return l.toFile(id, *m), nil
}

// Delete removes the object and its sidecar. Missing objects count as deleted.
func (l *LocalClient) Delete(_ context.Context, id string) (bool, error) {
	if !validLocalID(id) {
		return false, fmt.Errorf("invalid file id: %s", id)
	}
	for _, p := range []string{l.contentPath(id), l.metaPath(id)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Error().Err(err).Str("path", p).Msg("Failed to delete file")
			return false, fmt.Errorf("failed to delete file: %w", err)
		}
	}
	logger.Info().Str("id", id).Msg("File deleted successfully")
	return true, nil
}

// Share records the grant in the sidecar; the local backend has no real ACLs
func (l *LocalClient) Share(_ context.Context, id, email, role string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !validLocalID(id) {
		return false, fmt.Errorf("file %s not found", id)
	}
	m, err := l.readMeta(id)
	if err != nil {
		return false, err
	}
	if m == nil {
		return false, fmt.Errorf("file %s not found", id)
	}
	m.Shares = append(m.Shares, email+":"+role)
	if err := l.writeMeta(id, *m); err != nil {
		return false, err
	}
	return true, nil
}
