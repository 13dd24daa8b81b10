// Package drive talks to the external file store that backs uploaded files.
package drive

import (
	"context"
	"errors"
	"io"
	"time"
)

// Share roles accepted by Client.Share
const (
	RoleReader    = "reader"
	RoleWriter    = "writer"
	RoleCommenter = "commenter"
)

// ErrUnsupported is returned by backends that cannot perform an operation
var ErrUnsupported = errors.New("operation not supported by drive backend")

// File is the backend's view of a stored object
type File struct {
	ID             string
	Name           string
	MimeType       string
	Size           int64
	Description    string
	WebViewLink    string
	WebContentLink string
	CreatedTime    time.Time
	ModifiedTime   time.Time
}

// UploadInput describes a new object
type UploadInput struct {
	Name        string
	MimeType    string
	Description string
	Size        int64
}

// Client is the contract every drive backend implements.
// Get returns (nil, nil) when the object no longer exists.
type Client interface {
	Upload(ctx context.Context, r io.Reader, in UploadInput) (*File, error)
	Get(ctx context.Context, id string) (*File, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *File, error)
	Update(ctx context.Context, id, name, description string) (*File, error)
	Delete(ctx context.Context, id string) (bool, error)
	Share(ctx context.Context, id, email, role string) (bool, error)
}

// ValidShareRole reports whether role may be granted through Share
func ValidShareRole(role string) bool {
	switch role {
	case RoleReader, RoleWriter, RoleCommenter:
		return true
	}
	return false
}
