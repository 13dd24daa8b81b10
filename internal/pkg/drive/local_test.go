package drive_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/drive"
)

var _ = Describe("LocalClient", func() {
	var (
		ctx    context.Context
		dir    string
		client *drive.LocalClient
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		dir, err = os.MkdirTemp("", "drive-test")
		Expect(err).To(BeNil())
		client, err = drive.NewLocalClient(filepath.Join(dir, "store"), "http://files.local/uploads/")
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	upload := func(name, body string) *drive.File {
		f, err := client.Upload(ctx, strings.NewReader(body), drive.UploadInput{
			Name:        name,
			MimeType:    "text/plain",
			Description: "first",
		})
		Expect(err).To(BeNil())
		return f
	}

	Specify("upload, get and download round trip", func() {
		f := upload("notes.txt", "hello drive")
		Expect(f.Size).To(BeEquivalentTo(len("hello drive")))
		Expect(f.WebViewLink).To(Equal("http://files.local/uploads/" + f.ID))
		Expect(f.WebContentLink).To(HaveSuffix("?download=1"))

		got, err := client.Get(ctx, f.ID)
		Expect(err).To(BeNil())
		Expect(got.Name).To(Equal("notes.txt"))

		rc, meta, err := client.Download(ctx, f.ID)
		Expect(err).To(BeNil())
		defer rc.Close()
		body, _ := io.ReadAll(rc)
		Expect(string(body)).To(Equal("hello drive"))
		Expect(meta.MimeType).To(Equal("text/plain"))
	})

	Specify("unknown and foreign ids are reported as gone", func() {
		got, err := client.Get(ctx, "../../etc/passwd")
		Expect(err).To(BeNil())
		Expect(got).To(BeNil())

		_, err = client.Delete(ctx, "../secret")
		Expect(err).NotTo(BeNil())
	})

	Specify("update keeps empty fields", func() {
		f := upload("notes.txt", "x")

		updated, err := client.Update(ctx, f.ID, "renamed.txt", "")
		Expect(err).To(BeNil())
		Expect(updated.Name).To(Equal("renamed.txt"))
		Expect(updated.Description).To(Equal("first"))
	})

	Specify("share records the grant", func() {
		f := upload("notes.txt", "x")
		ok, err := client.Share(ctx, f.ID, "bob@example.com", drive.RoleReader)
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())

		raw, err := os.ReadFile(filepath.Join(dir, "store", f.ID+".json"))
		Expect(err).To(BeNil())
		Expect(string(raw)).To(ContainSubstring("bob@example.com:reader"))
	})

	Specify("delete removes content and metadata", func() {
		f := upload("notes.txt", "x")
		ok, err := client.Delete(ctx, f.ID)
		Expect(err).To(BeNil())
		Expect(ok).To(BeTrue())

		got, err := client.Get(ctx, f.ID)
		Expect(err).To(BeNil())
		Expect(got).To(BeNil())
		_, err = os.Stat(filepath.Join(dir, "store", f.ID))
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	})
})

type failingClient struct {
	drive.Client
	err error
}

func (f failingClient) Share(context.Context, string, string, string) (bool, error) {
	return false, f.err
}

var _ = Describe("Instrumented", func() {
	Specify("unsupported operations become bad requests", func() {
		c := drive.Instrument(failingClient{err: drive.ErrUnsupported}, "s3")
		_, err := c.Share(context.Background(), "id", "a@b.c", drive.RoleReader)
		Expect(errors.Is(err, apperrors.ErrBadRequest)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("s3"))
	})

	Specify("other failures become external service errors", func() {
		c := drive.Instrument(failingClient{err: errors.New("quota exceeded")}, "google drive")
		_, err := c.Share(context.Background(), "id", "a@b.c", drive.RoleReader)
		Expect(errors.Is(err, apperrors.ErrExternalService)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("quota exceeded"))
	})

	Specify("share roles are limited", func() {
		Expect(drive.ValidShareRole(drive.RoleWriter)).To(BeTrue())
		Expect(drive.ValidShareRole("owner")).To(BeFalse())
	})
})
