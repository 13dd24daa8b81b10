package models_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
)

var _ = Describe("Assignment", func() {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	DescribeTable("StatusAt",
		func(active bool, due time.Time, expected string) {
			a := models.Assignment{IsActive: active, DueDate: due}
			Expect(a.StatusAt(now)).To(Equal(expected))
		},
		Entry("inactive wins over expired", false, now.Add(-time.Hour), models.AssignmentStatusInactive),
		Entry("past due", true, now.Add(-time.Minute), models.AssignmentStatusExpired),
		Entry("upcoming", true, now.Add(time.Hour), models.AssignmentStatusActive),
	)

	Specify("JSON carries the derived fields", func() {
		a := models.Assignment{
			Title:    "Lab",
			IsActive: true,
			DueDate:  time.Now().Add(50 * time.Hour),
			Instructor: models.OwnerRef{
				ID: primitive.NewObjectID(),
			},
		}
		b, err := json.Marshal(a)
		Expect(err).To(BeNil())

		var out map[string]interface{}
		Expect(json.Unmarshal(b, &out)).To(Succeed())
		Expect(out["status"]).To(Equal("Active"))
		Expect(out["timeRemaining"]).To(Equal("2 days remaining"))
		Expect(out["instructor"]).To(Equal(a.Instructor.ID.Hex()))
		Expect(out["title"]).To(Equal("Lab"))
	})

	Specify("Validate normalizes instructions and formats", func() {
		a := &models.Assignment{
			ContentMeta:      models.ContentMeta{Subject: "Physics", Course: "PHY1", Department: "Science"},
			Title:            " Lab ",
			Description:      "Measure g",
			DueDate:          now,
			MaxMarks:         10,
			Instructions:     []string{" one ", "", "two"},
			SubmissionFormat: []string{" PDF ", "zip"},
			Instructor:       models.OwnerRef{ID: primitive.NewObjectID()},
			InstructorName:   "Marie Curie",
		}
		Expect(a.Validate()).To(Succeed())
		Expect(a.Title).To(Equal("Lab"))
		Expect(a.Instructions).To(Equal([]string{"one", "two"}))
		Expect(a.SubmissionFormat).To(Equal([]string{"pdf", "zip"}))

		a.SubmissionFormat = []string{"exe"}
		Expect(a.Validate()).NotTo(Succeed())
	})
})

var _ = Describe("Drive file types", func() {
	DescribeTable("FileTypeOf and CategoryForMIME",
		func(mime, fileType, category string) {
			Expect(models.FileTypeOf(mime)).To(Equal(fileType))
			Expect(models.CategoryForMIME(mime)).To(Equal(category))
		},
		Entry("png", "image/png", "image", models.DriveCategoryMedia),
		Entry("mp4", "video/mp4", "video", models.DriveCategoryMedia),
		Entry("pdf", "application/pdf", "pdf", models.DriveCategoryDocuments),
		Entry("docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "document", models.DriveCategoryDocuments),
		Entry("xlsx claimed by document first", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "document", models.DriveCategoryDocuments),
		Entry("xls", "application/vnd.ms-excel", "spreadsheet", models.DriveCategoryDocuments),
		Entry("pptx claimed by document first", "application/vnd.openxmlformats-officedocument.presentationml.presentation", "document", models.DriveCategoryDocuments),
		Entry("ppt", "application/vnd.ms-powerpoint", "presentation", models.DriveCategoryPresentations),
		Entry("zip", "application/zip", "other", models.DriveCategoryOther),
	)

	Specify("unknown filter types are matched literally", func() {
		Expect(models.FileTypePatternFor(" PDF ")).To(Equal("pdf"))
		Expect(models.FileTypePatternFor("image")).To(Equal("^image/"))
		Expect(models.FileTypePatternFor("a+b")).To(Equal(`a\+b`))
	})

	Specify("JSON carries extension and fileType", func() {
		b, err := json.Marshal(models.DriveFile{Name: "Slides.PPTX", MimeType: "application/vnd.ms-powerpoint"})
		Expect(err).To(BeNil())
		Expect(string(b)).To(ContainSubstring(`"extension":"pptx"`))
		Expect(string(b)).To(ContainSubstring(`"fileType":"presentation"`))
	})
})

var _ = Describe("Helpers", func() {
	Specify("NormalizeTags", func() {
		Expect(models.NormalizeTags([]string{" Go ", "", "SQL"})).To(Equal([]string{"go", "sql"}))
	})

	Specify("Excerpt counts runes", func() {
		Expect(models.Excerpt("héllo world", 5)).To(Equal("héllo..."))
		Expect(models.Excerpt("short", 10)).To(Equal("short"))
	})

	Specify("users never serialize their password", func() {
		b, err := json.Marshal(models.User{FirstName: "Ada", LastName: "Lovelace", Password: "hash"})
		Expect(err).To(BeNil())
		Expect(string(b)).NotTo(ContainSubstring("hash"))
		Expect(string(b)).To(ContainSubstring(`"fullName":"Ada Lovelace"`))
	})
})
