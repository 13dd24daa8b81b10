package models

import (
	"path"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Drive file categories
const (
	DriveCategoryNotes         = "notes"
	DriveCategoryAssignments   = "assignments"
	DriveCategoryResources     = "resources"
	DriveCategoryPresentations = "presentations"
	DriveCategoryDocuments     = "documents"
	DriveCategoryMedia         = "media"
	DriveCategoryOther         = "other"
)

// DriveCategories lists every valid drive file category
var DriveCategories = []string{
	DriveCategoryNotes,
	DriveCategoryAssignments,
	DriveCategoryResources,
	DriveCategoryPresentations,
	DriveCategoryDocuments,
	DriveCategoryMedia,
	DriveCategoryOther,
}

// IsDriveCategory reports whether c is a valid category
func IsDriveCategory(c string) bool {
	for _, v := range DriveCategories {
		if v == c {
			return true
		}
	}
	return false
}

// FileTypePattern maps a coarse file type to a MIME type pattern
type FileTypePattern struct {
	Type    string
	Pattern string
}

// FileTypePatterns is evaluated in order, so "pdf" is claimed before "document".
var FileTypePatterns = []FileTypePattern{
	{Type: "image", Pattern: "^image/"},
	{Type: "video", Pattern: "^video/"},
	{Type: "audio", Pattern: "^audio/"},
	{Type: "pdf", Pattern: "pdf"},
	{Type: "document", Pattern: "word|document"},
	{Type: "spreadsheet", Pattern: "sheet|excel"},
	{Type: "presentation", Pattern: "presentation|powerpoint"},
}

var compiledFileTypes = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(FileTypePatterns))
	for i, p := range FileTypePatterns {
		out[i] = regexp.MustCompile("(?i)" + p.Pattern)
	}
	return out
}()

// FileTypePatternFor returns the MIME pattern for a coarse file type. Unknown
// types yield a literal pattern so callers never run user input as a regex.
func FileTypePatternFor(fileType string) string {
	ft := strings.ToLower(strings.TrimSpace(fileType))
	for _, p := range FileTypePatterns {
		if p.Type == ft {
			return p.Pattern
		}
	}
	return regexp.QuoteMeta(ft)
}

// FileTypeOf classifies a MIME type
func FileTypeOf(mimeType string) string {
	for i, re := range compiledFileTypes {
		if re.MatchString(mimeType) {
			return FileTypePatterns[i].Type
		}
	}
	return "other"
}

// CategoryForMIME derives the default category of an upload
func CategoryForMIME(mimeType string) string {
	switch FileTypeOf(mimeType) {
	case "image", "video", "audio":
		return DriveCategoryMedia
	case "presentation":
		return DriveCategoryPresentations
	case "pdf", "document", "spreadsheet":
		return DriveCategoryDocuments
	default:
		return DriveCategoryOther
	}
}

// DriveFile is the local record of a file kept in the Drive backend
type DriveFile struct {
	ContentMeta
	DriveFileID    string   `json:"driveFileId"`
	Name           string   `json:"name"`
	OriginalName   string   `json:"originalName"`
	MimeType       string   `json:"mimeType"`
	Size           int64    `json:"size"`
	DriveURL       string   `json:"driveUrl"`
	WebViewLink    string   `json:"webViewLink"`
	WebContentLink string   `json:"webContentLink"`
	Description    string   `json:"description,omitempty"`
	Category       string   `json:"category"`
	UploadedBy     OwnerRef `json:"uploadedBy"`
	UploaderName   string   `json:"uploaderName"`
}

// OwnerID returns the uploader id
func (f DriveFile) OwnerID() primitive.ObjectID { return f.UploadedBy.ID }

func (f DriveFile) OwnerName() string { return f.UploaderName }

// AssignOwner sets the uploader
func (f *DriveFile) AssignOwner(id primitive.ObjectID, name string) {
	f.UploadedBy = OwnerRef{ID: id}
	f.UploaderName = name
}

// PopulateOwner attaches the uploader's profile
func (f *DriveFile) PopulateOwner(p *OwnerProfile) { f.UploadedBy.Profile = p }

// DisplayTitle returns the file name
func (f DriveFile) DisplayTitle() string { return f.Name }

// Extension returns the lower-case extension of the file name without the dot
func (f DriveFile) Extension() string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(f.Name)), ".")
}

// MarshalJSON adds the derived extension and fileType fields
func (f DriveFile) MarshalJSON() ([]byte, error) {
	type plain DriveFile
	return marshalWith(plain(f), map[string]interface{}{
		"extension": f.Extension(),
		"fileType":  FileTypeOf(f.MimeType),
	})
}

// Validate normalizes and checks the drive file record
func (f *DriveFile) Validate() error {
	errs := fieldErrors{}
	f.Name = strings.TrimSpace(f.Name)
	f.Category = strings.ToLower(strings.TrimSpace(f.Category))
	if f.Category == "" {
		f.Category = CategoryForMIME(f.MimeType)
	}

	errs.required("driveFileId", f.DriveFileID)
	errs.required("name", f.Name)
	errs.maxLen("name", f.Name, MaxTitleLength)
	errs.required("originalName", f.OriginalName)
	errs.required("mimeType", f.MimeType)
	if f.Size < 0 {
		errs.add("size", "file size cannot be negative")
	}
	if !IsDriveCategory(f.Category) {
		errs.add("category", "category must be one of "+strings.Join(DriveCategories, ", "))
	}
	f.ContentMeta.validate(errs, false)

	if f.UploadedBy.ID.IsZero() {
		errs.add("uploadedBy", "uploader is required")
	}
	errs.required("uploaderName", f.UploaderName)

	return errs.err("DriveFile")
}
