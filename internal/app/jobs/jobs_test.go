package jobs

import (
	"context"
	"errors"
	"io"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/drive"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/events"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/scheduler"
)

type uploadRecorder struct {
	drive.Client
	inputs []drive.UploadInput
	bodies []string
	err    error
}

func (u *uploadRecorder) Upload(_ context.Context, r io.Reader, in drive.UploadInput) (*drive.File, error) {
	if u.err != nil {
		return nil, u.err
	}
	b, _ := io.ReadAll(r)
	u.inputs = append(u.inputs, in)
	u.bodies = append(u.bodies, string(b))
	return &drive.File{ID: "backup-1", Name: in.Name}, nil
}

type stubDeactivator struct {
	n   int64
	err error
}

func (s stubDeactivator) DeactivateExpired(context.Context) (int64, error) { return s.n, s.err }

var _ = Describe("DriveBackup", func() {
	var (
		rec    *uploadRecorder
		backup *DriveBackup
	)

	BeforeEach(func() {
		rec = &uploadRecorder{}
		backup = NewDriveBackup(rec, zerolog.Nop())
		backup.now = func() time.Time { return time.UnixMilli(1700000000000) }
	})

	Specify("notes are backed up as text", func() {
		err := backup.Handle(context.Background(), events.ContentCreated{
			Kind: events.KindNote, ID: "n1", Title: "Graphs", Body: "vertices and edges",
		})
		Expect(err).To(BeNil())
		Expect(rec.inputs).To(HaveLen(1))
		Expect(rec.inputs[0].Name).To(Equal("Graphs_1700000000000.txt"))
		Expect(rec.inputs[0].MimeType).To(Equal("text/plain"))
		Expect(rec.inputs[0].Description).To(Equal("Auto-backup of note: Graphs"))
		Expect(rec.bodies[0]).To(Equal("vertices and edges"))
	})

	Specify("assignments get a prefixed name", func() {
		err := backup.Handle(context.Background(), events.ContentCreated{
			Kind: events.KindAssignment, ID: "a1", Title: "Lab 1", Body: "Assignment: Lab 1",
		})
		Expect(err).To(BeNil())
		Expect(rec.inputs[0].Name).To(Equal("Assignment_Lab 1_1700000000000.txt"))
	})

	Specify("other kinds and empty notes are skipped", func() {
		Expect(backup.Handle(context.Background(), events.ContentCreated{Kind: events.KindResource, Title: "r"})).To(Succeed())
		Expect(backup.Handle(context.Background(), events.ContentCreated{Kind: events.KindNote, Title: "empty"})).To(Succeed())
		Expect(rec.inputs).To(BeEmpty())
	})

	Specify("upload failures are returned", func() {
		rec.err = errors.New("drive offline")
		err := backup.Handle(context.Background(), events.ContentCreated{Kind: events.KindNote, ID: "n1", Title: "t", Body: "b"})
		Expect(err).To(MatchError(ContainSubstring("drive offline")))
	})
})

var _ = Describe("AssignmentSweep", func() {
	Specify("reports how many assignments were deactivated", func() {
		m := scheduler.NewCronManager(zerolog.Nop())
		Expect(RegisterAll(m, stubDeactivator{n: 4}, "@every 24h")).To(Succeed())
		Expect(m.RunNow(context.Background(), SweepJobName)).To(Succeed())

		statuses := m.Statuses()
		Expect(statuses).To(HaveLen(1))
		Expect(statuses[0].Status).To(Equal("completed"))
		Expect(statuses[0].Message).To(Equal("deactivated 4 assignments"))
	})

	Specify("failures are recorded", func() {
		m := scheduler.NewCronManager(zerolog.Nop())
		Expect(RegisterAll(m, stubDeactivator{err: errors.New("db down")}, "@every 24h")).To(Succeed())
		Expect(m.RunNow(context.Background(), SweepJobName)).NotTo(Succeed())
		Expect(m.Statuses()[0].Error).To(Equal("db down"))
	})
})
