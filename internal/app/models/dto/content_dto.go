package dto

import "time"

// ContentFields are the fields every content kind accepts on create
type ContentFields struct {
	Subject    string   `json:"subject" binding:"required"`
	Course     string   `json:"course" binding:"required"`
	Department string   `json:"department" binding:"required"`
	Tags       []string `json:"tags" binding:"omitempty,dive,max=50"`
	IsPublic   *bool    `json:"isPublic"`
}

// ContentPatch are the optional shared fields of an update
type ContentPatch struct {
	Subject    *string  `json:"subject" binding:"omitempty,min=1"`
	Course     *string  `json:"course" binding:"omitempty,min=1"`
	Department *string  `json:"department" binding:"omitempty,min=1"`
	Tags       []string `json:"tags" binding:"omitempty,dive,max=50"`
	IsPublic   *bool    `json:"isPublic"`
}

// CreateNoteRequest is the body of POST /notes
type CreateNoteRequest struct {
	ContentFields
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required,max=50000"`
}

// UpdateNoteRequest is the body of PUT /notes/:id
type UpdateNoteRequest struct {
	ContentPatch
	Title   *string `json:"title" binding:"omitempty,min=1,max=200"`
	Content *string `json:"content" binding:"omitempty,min=1,max=50000"`
}

// CreateAssignmentRequest is the body of POST /assignments
type CreateAssignmentRequest struct {
	ContentFields
	Title            string    `json:"title" binding:"required,max=200"`
	Description      string    `json:"description" binding:"required,max=10000"`
	DueDate          time.Time `json:"dueDate" binding:"required"`
	MaxMarks         int       `json:"maxMarks" binding:"required,min=1"`
	Instructions     []string  `json:"instructions"`
	SubmissionFormat []string  `json:"submissionFormat" binding:"omitempty,dive,submissionformat"`
	IsActive         *bool     `json:"isActive"`
}

// UpdateAssignmentRequest is the body of PUT /assignments/:id
type UpdateAssignmentRequest struct {
	ContentPatch
	Title            *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description      *string    `json:"description" binding:"omitempty,min=1,max=10000"`
	DueDate          *time.Time `json:"dueDate"`
	MaxMarks         *int       `json:"maxMarks" binding:"omitempty,min=1"`
	Instructions     []string   `json:"instructions"`
	SubmissionFormat []string   `json:"submissionFormat" binding:"omitempty,dive,submissionformat"`
	IsActive         *bool      `json:"isActive"`
}

// CreateResourceRequest is the body of POST /resources
type CreateResourceRequest struct {
	ContentFields
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=5000"`
	Type        string `json:"type" binding:"required,resourcetype"`
	Category    string `json:"category" binding:"required"`
	FileURL     string `json:"fileUrl" binding:"omitempty,url"`
	ExternalURL string `json:"externalUrl" binding:"required_if=Type link"`
}

// UpdateResourceRequest is the body of PUT /resources/:id
type UpdateResourceRequest struct {
	ContentPatch
	Title       *string `json:"title" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,min=1,max=5000"`
	Type        *string `json:"type" binding:"omitempty,resourcetype"`
	Category    *string `json:"category" binding:"omitempty,min=1"`
	FileURL     *string `json:"fileUrl" binding:"omitempty,url"`
	ExternalURL *string `json:"externalUrl" binding:"omitempty,url"`
}

// UploadDriveFileForm holds the multipart fields sent with an upload
type UploadDriveFileForm struct {
	Description string `form:"description" binding:"max=1000"`
	Category    string `form:"category" binding:"omitempty,drivecategory"`
	Subject     string `form:"subject"`
	Course      string `form:"course"`
	Department  string `form:"department" binding:"required"`
	Tags        string `form:"tags"`
	IsPublic    *bool  `form:"isPublic"`
}

// UpdateDriveFileRequest is the body of PUT /drive/files/:id
type UpdateDriveFileRequest struct {
	ContentPatch
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Category    *string `json:"category" binding:"omitempty,drivecategory"`
}

// ShareFileRequest is the body of POST /drive/files/:id/share
type ShareFileRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"omitempty,oneof=reader writer commenter"`
}
