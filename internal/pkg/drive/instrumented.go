package drive

import (
	"context"
	"errors"
	"io"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/metrics"
)

// Instrumented counts every backend call and turns backend failures into
// external-service errors.
type Instrumented struct {
	next    Client
	service string
}

// Instrument wraps c; service names the backend in error messages
func Instrument(c Client, service string) *Instrumented {
	return &Instrumented{next: c, service: service}
}

func (i *Instrumented) observe(op string, err error) error {
	metrics.DriveOperations.WithLabelValues(op, metrics.Result(err)).Inc()
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUnsupported) {
		return apperrors.NewBadRequestError(op + " is not supported by the " + i.service + " backend")
	}
	return apperrors.NewExternalServiceError(i.service, err)
}

func (i *Instrumented) Upload(ctx context.Context, r io.Reader, in UploadInput) (*File, error) {
	f, err := i.next.Upload(ctx, r, in)
	return f, i.observe("upload", err)
}

func (i *Instrumented) Get(ctx context.Context, id string) (*File, error) {
	f, err := i.next.Get(ctx, id)
	return f, i.observe("get", err)
}

func (i *Instrumented) Download(ctx context.Context, id string) (io.ReadCloser, *File, error) {
	rc, f, err := i.next.Download(ctx, id)
	return rc, f, i.observe("download", err)
}

func (i *Instrumented) Update(ctx context.Context, id, name, description string) (*File, error) {
	f, err := i.next.Update(ctx, id, name, description)
	return f, i.observe("update", err)
}

func (i *Instrumented) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := i.next.Delete(ctx, id)
	return ok, i.observe("delete", err)
}

func (i *Instrumented) Share(ctx context.Context, id, email, role string) (bool, error) {
	ok, err := i.next.Share(ctx, id, email, role)
	return ok, i.observe("share", err)
}
