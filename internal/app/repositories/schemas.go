package repositories

import (
	"strings"
	"time"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
)

var contentColumns = []string{
	"id", "subject", "course", "department", "tags", "is_public",
	"views", "downloads", "created_at", "updated_at",
}

func contentValues(m *models.ContentMeta) []interface{} {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return []interface{}{
		m.ID.Hex(), m.Subject, m.Course, m.Department, tags, m.IsPublic,
		m.Views, m.Downloads, m.CreatedAt, m.UpdatedAt,
	}
}

func contentTargets(m *models.ContentMeta) []interface{} {
	return []interface{}{
		&objectIDColumn{&m.ID}, &textColumn[string]{&m.Subject}, &textColumn[string]{&m.Course}, &m.Department,
		&m.Tags, &m.IsPublic, &m.Views, &m.Downloads, &m.CreatedAt, &m.UpdatedAt,
	}
}

// contentFields maps the shared content field names onto columns
func contentFields[E any](meta func(*E) *models.ContentMeta) map[string]Field[E] {
	return map[string]Field[E]{
		"_id":        {Column: "id", Get: func(e *E) interface{} { return meta(e).ID }},
		"subject":    {Column: "subject", Get: func(e *E) interface{} { return meta(e).Subject }},
		"course":     {Column: "course", Get: func(e *E) interface{} { return meta(e).Course }},
		"department": {Column: "department", Get: func(e *E) interface{} { return meta(e).Department }},
		"tags":       {Column: "tags", Get: func(e *E) interface{} { return meta(e).Tags }},
		"isPublic": {Column: "is_public", Get: func(e *E) interface{} { return meta(e).IsPublic },
			Set: func(e *E, v interface{}) { meta(e).IsPublic = v.(bool) }},
		"views": {Column: "views", Get: func(e *E) interface{} { return meta(e).Views },
			Set: func(e *E, v interface{}) { meta(e).Views = v.(int64) }},
		"downloads": {Column: "downloads", Get: func(e *E) interface{} { return meta(e).Downloads },
			Set: func(e *E, v interface{}) { meta(e).Downloads = v.(int64) }},
		"createdAt": {Column: "created_at", Get: func(e *E) interface{} { return meta(e).CreatedAt }},
		"updatedAt": {Column: "updated_at", Get: func(e *E) interface{} { return meta(e).UpdatedAt },
			Set: func(e *E, v interface{}) { meta(e).UpdatedAt = v.(time.Time) }},
	}
}

func withFields[E any](base map[string]Field[E], extra map[string]Field[E]) map[string]Field[E] {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

func cloneOwner(o models.OwnerRef) models.OwnerRef {
	if o.Profile != nil {
		p := *o.Profile
		o.Profile = &p
	}
	return o
}

func searchText(parts ...string) string {
	return strings.Join(parts, " ")
}

// NoteSchema describes the notes table
func NoteSchema() *Schema[models.Note] {
	meta := func(n *models.Note) *models.ContentMeta { return &n.ContentMeta }
	return &Schema[models.Note]{
		Entity: "Note",
		Table:  "notes",
		Fields: withFields(contentFields(meta), map[string]Field[models.Note]{
			"title":      {Column: "title", Get: func(n *models.Note) interface{} { return n.Title }},
			"author":     {Column: "author_id", Get: func(n *models.Note) interface{} { return n.Author.ID }},
			"authorName": {Column: "author_name", Get: func(n *models.Note) interface{} { return n.AuthorName }},
		}),
		Columns: append(append([]string{}, contentColumns...), "title", "content", "author_id", "author_name"),
		Values: func(n *models.Note) []interface{} {
			return append(contentValues(&n.ContentMeta), n.Title, n.Content, n.Author.ID.Hex(), n.AuthorName)
		},
		Targets: func(n *models.Note) []interface{} {
			return append(contentTargets(&n.ContentMeta), &n.Title, &n.Content, &objectIDColumn{&n.Author.ID}, &n.AuthorName)
		},
		SearchText: func(n *models.Note) string {
			return searchText(n.Title, n.Content, strings.Join(n.Tags, " "))
		},
		Counters: []string{"views", "downloads"},
		Clone: func(n *models.Note) *models.Note {
			c := *n
			c.Tags = cloneStrings(n.Tags)
			c.Author = cloneOwner(n.Author)
			return &c
		},
	}
}

// AssignmentSchema describes the assignments table
func AssignmentSchema() *Schema[models.Assignment] {
	meta := func(a *models.Assignment) *models.ContentMeta { return &a.ContentMeta }
	return &Schema[models.Assignment]{
		Entity: "Assignment",
		Table:  "assignments",
		Fields: withFields(contentFields(meta), map[string]Field[models.Assignment]{
			"title":    {Column: "title", Get: func(a *models.Assignment) interface{} { return a.Title }},
			"dueDate":  {Column: "due_date", Get: func(a *models.Assignment) interface{} { return a.DueDate }},
			"maxMarks": {Column: "max_marks", Get: func(a *models.Assignment) interface{} { return a.MaxMarks }},
			"isActive": {Column: "is_active", Get: func(a *models.Assignment) interface{} { return a.IsActive },
				Set: func(a *models.Assignment, v interface{}) { a.IsActive = v.(bool) }},
			"instructor":     {Column: "instructor_id", Get: func(a *models.Assignment) interface{} { return a.Instructor.ID }},
			"instructorName": {Column: "instructor_name", Get: func(a *models.Assignment) interface{} { return a.InstructorName }},
		}),
		Columns: append(append([]string{}, contentColumns...),
			"title", "description", "due_date", "max_marks", "instructions", "submission_format",
			"is_active", "instructor_id", "instructor_name"),
		Values: func(a *models.Assignment) []interface{} {
			instructions, formats := a.Instructions, a.SubmissionFormat
			if instructions == nil {
				instructions = []string{}
			}
			if formats == nil {
				formats = []string{}
			}
			return append(contentValues(&a.ContentMeta),
				a.Title, a.Description, a.DueDate, a.MaxMarks, instructions, formats,
				a.IsActive, a.Instructor.ID.Hex(), a.InstructorName)
		},
		Targets: func(a *models.Assignment) []interface{} {
			return append(contentTargets(&a.ContentMeta),
				&a.Title, &a.Description, &a.DueDate, &a.MaxMarks, &a.Instructions, &a.SubmissionFormat,
				&a.IsActive, &objectIDColumn{&a.Instructor.ID}, &a.InstructorName)
		},
		SearchText: func(a *models.Assignment) string {
			return searchText(a.Title, a.Description, strings.Join(a.Tags, " "))
		},
		Counters: []string{"views", "downloads"},
		Clone: func(a *models.Assignment) *models.Assignment {
			c := *a
			c.Tags = cloneStrings(a.Tags)
			c.Instructions = cloneStrings(a.Instructions)
			c.SubmissionFormat = cloneStrings(a.SubmissionFormat)
			c.Instructor = cloneOwner(a.Instructor)
			return &c
		},
	}
}

// ResourceSchema describes the resources table
func ResourceSchema() *Schema[models.Resource] {
	meta := func(r *models.Resource) *models.ContentMeta { return &r.ContentMeta }
	return &Schema[models.Resource]{
		Entity: "Resource",
		Table:  "resources",
		Fields: withFields(contentFields(meta), map[string]Field[models.Resource]{
			"title":      {Column: "title", Get: func(r *models.Resource) interface{} { return r.Title }},
			"type":       {Column: "type", Get: func(r *models.Resource) interface{} { return string(r.Type) }},
			"category":   {Column: "category", Get: func(r *models.Resource) interface{} { return r.Category }},
			"author":     {Column: "author_id", Get: func(r *models.Resource) interface{} { return r.Author.ID }},
			"authorName": {Column: "author_name", Get: func(r *models.Resource) interface{} { return r.AuthorName }},
		}),
		Columns: append(append([]string{}, contentColumns...),
			"title", "description", "type", "category", "file_url", "external_url", "author_id", "author_name"),
		Values: func(r *models.Resource) []interface{} {
			return append(contentValues(&r.ContentMeta),
				r.Title, r.Description, string(r.Type), r.Category, r.FileURL, r.ExternalURL,
				r.Author.ID.Hex(), r.AuthorName)
		},
		Targets: func(r *models.Resource) []interface{} {
			return append(contentTargets(&r.ContentMeta),
				&r.Title, &r.Description, &textColumn[models.ResourceType]{&r.Type}, &r.Category,
				&textColumn[string]{&r.FileURL}, &textColumn[string]{&r.ExternalURL},
				&objectIDColumn{&r.Author.ID}, &r.AuthorName)
		},
		SearchText: func(r *models.Resource) string {
			return searchText(r.Title, r.Description, strings.Join(r.Tags, " "))
		},
		Counters: []string{"views", "downloads"},
		Clone: func(r *models.Resource) *models.Resource {
			c := *r
			c.Tags = cloneStrings(r.Tags)
			c.Author = cloneOwner(r.Author)
			return &c
		},
	}
}

// DriveFileSchema describes the drive_files table
func DriveFileSchema() *Schema[models.DriveFile] {
	meta := func(f *models.DriveFile) *models.ContentMeta { return &f.ContentMeta }
	return &Schema[models.DriveFile]{
		Entity: "DriveFile",
		Table:  "drive_files",
		Fields: withFields(contentFields(meta), map[string]Field[models.DriveFile]{
			"driveFileId":  {Column: "drive_file_id", Get: func(f *models.DriveFile) interface{} { return f.DriveFileID }},
			"name":         {Column: "name", Get: func(f *models.DriveFile) interface{} { return f.Name }},
			"mimeType":     {Column: "mime_type", Get: func(f *models.DriveFile) interface{} { return f.MimeType }},
			"size":         {Column: "size", Get: func(f *models.DriveFile) interface{} { return f.Size }},
			"category":     {Column: "category", Get: func(f *models.DriveFile) interface{} { return f.Category }},
			"uploadedBy":   {Column: "uploaded_by", Get: func(f *models.DriveFile) interface{} { return f.UploadedBy.ID }},
			"uploaderName": {Column: "uploader_name", Get: func(f *models.DriveFile) interface{} { return f.UploaderName }},
		}),
		Columns: append(append([]string{}, contentColumns...),
			"drive_file_id", "name", "original_name", "mime_type", "size", "drive_url",
			"web_view_link", "web_content_link", "description", "category", "uploaded_by", "uploader_name"),
		Values: func(f *models.DriveFile) []interface{} {
			return append(contentValues(&f.ContentMeta),
				f.DriveFileID, f.Name, f.OriginalName, f.MimeType, f.Size, f.DriveURL,
				f.WebViewLink, f.WebContentLink, f.Description, f.Category, f.UploadedBy.ID.Hex(), f.UploaderName)
		},
		Targets: func(f *models.DriveFile) []interface{} {
			return append(contentTargets(&f.ContentMeta),
				&f.DriveFileID, &f.Name, &f.OriginalName, &f.MimeType, &f.Size, &textColumn[string]{&f.DriveURL},
				&textColumn[string]{&f.WebViewLink}, &textColumn[string]{&f.WebContentLink},
				&textColumn[string]{&f.Description}, &f.Category, &objectIDColumn{&f.UploadedBy.ID}, &f.UploaderName)
		},
		SearchText: func(f *models.DriveFile) string {
			return searchText(f.Name, strings.Join(f.Tags, " "))
		},
		Counters: []string{"views", "downloads"},
		Unique:   []string{"driveFileId"},
		Clone: func(f *models.DriveFile) *models.DriveFile {
			c := *f
			c.Tags = cloneStrings(f.Tags)
			c.UploadedBy = cloneOwner(f.UploadedBy)
			return &c
		},
	}
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// UserSchema describes the users table
func UserSchema() *Schema[models.User] {
	return &Schema[models.User]{
		Entity: "User",
		Table:  "users",
		Fields: map[string]Field[models.User]{
			"_id":        {Column: "id", Get: func(u *models.User) interface{} { return u.ID }},
			"email":      {Column: "email", Get: func(u *models.User) interface{} { return u.Email }},
			"firstName":  {Column: "first_name", Get: func(u *models.User) interface{} { return u.FirstName }},
			"lastName":   {Column: "last_name", Get: func(u *models.User) interface{} { return u.LastName }},
			"role":       {Column: "role", Get: func(u *models.User) interface{} { return string(u.Role) }},
			"studentId":  {Column: "student_id", Get: func(u *models.User) interface{} { return u.StudentID }},
			"employeeId": {Column: "employee_id", Get: func(u *models.User) interface{} { return u.EmployeeID }},
			"department": {Column: "department", Get: func(u *models.User) interface{} { return u.Department }},
			"isActive": {Column: "is_active", Get: func(u *models.User) interface{} { return u.IsActive },
				Set: func(u *models.User, v interface{}) { u.IsActive = v.(bool) }},
			"lastLogin": {Column: "last_login", Get: func(u *models.User) interface{} { return u.LastLogin }},
			"createdAt": {Column: "created_at", Get: func(u *models.User) interface{} { return u.CreatedAt }},
			"updatedAt": {Column: "updated_at", Get: func(u *models.User) interface{} { return u.UpdatedAt },
				Set: func(u *models.User, v interface{}) { u.UpdatedAt = v.(time.Time) }},
		},
		Columns: []string{
			"id", "email", "password", "first_name", "last_name", "role", "student_id", "employee_id",
			"department", "is_active", "last_login", "created_at", "updated_at",
		},
		Values: func(u *models.User) []interface{} {
			return []interface{}{
				u.ID.Hex(), u.Email, u.Password, u.FirstName, u.LastName, string(u.Role),
				nullIfEmpty(u.StudentID), nullIfEmpty(u.EmployeeID),
				u.Department, u.IsActive, u.LastLogin, u.CreatedAt, u.UpdatedAt,
			}
		},
		Targets: func(u *models.User) []interface{} {
			return []interface{}{
				&objectIDColumn{&u.ID}, &u.Email, &u.Password, &u.FirstName, &u.LastName, &textColumn[models.Role]{&u.Role},
				&textColumn[string]{&u.StudentID}, &textColumn[string]{&u.EmployeeID},
				&u.Department, &u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt,
			}
		},
		SearchText: func(u *models.User) string {
			return searchText(u.Email, u.FirstName, u.LastName, u.StudentID, u.EmployeeID)
		},
		Unique: []string{"email", "studentId", "employeeId"},
		Clone: func(u *models.User) *models.User {
			c := *u
			if u.LastLogin != nil {
				t := *u.LastLogin
				c.LastLogin = &t
			}
			return &c
		},
	}
}
