package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models/dto"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/middleware"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/logger"
)

// DriveController handles uploads and drive file records
type DriveController struct {
	driveService *services.DriveFileService
	maxUpload    int64
}

// NewDriveController creates a new DriveController. maxUpload is in bytes.
func NewDriveController(driveService *services.DriveFileService, maxUpload int64) *DriveController {
	return &DriveController{driveService: driveService, maxUpload: maxUpload}
}

// UploadFile godoc
// @Summary Upload a file to the drive
// @Tags drive
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Param department formData string true "Department"
// @Success 201 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /drive/upload [post]
func (dc *DriveController) UploadFile(c *gin.Context) {
	var form dto.UploadDriveFileForm
	if !middleware.Bind(c, &form) {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperrors.NewBadRequestError("no file uploaded"))
		return
	}
	if dc.maxUpload > 0 && header.Size > dc.maxUpload {
		respondError(c, apperrors.NewBadRequestError(fmt.Sprintf("file exceeds the %d MB upload limit", dc.maxUpload>>20)))
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, apperrors.NewBadRequestError("uploaded file could not be read"))
		return
	}
	defer file.Close()

	isPublic := true
	if form.IsPublic != nil {
		isPublic = *form.IsPublic
	}

	record, err := dc.driveService.Upload(c.Request.Context(), middleware.ActorFrom(c), file, services.UploadRequest{
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		Description:  form.Description,
		Category:     form.Category,
		Subject:      form.Subject,
		Course:       form.Course,
		Department:   form.Department,
		Tags:         splitTags(form.Tags),
		IsPublic:     isPublic,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, record, "File uploaded successfully")
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return models.NormalizeTags(strings.Split(raw, ","))
}

// GetFiles lists drive file records visible to the caller
func (dc *DriveController) GetFiles(c *gin.Context) {
	opts, err := ParseQueryOptions(c, DriveFileFilters)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := dc.driveService.ListAs(c.Request.Context(), middleware.ActorFrom(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res, opts, "Files retrieved successfully")
}

// GetMyFiles lists the caller's uploads
func (dc *DriveController) GetMyFiles(c *gin.Context) {
	opts, err := ParseQueryOptions(c, DriveFileFilters)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := dc.driveService.ListMine(c.Request.Context(), middleware.ActorFrom(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res, opts, "Your files retrieved successfully")
}

// GetFileByID returns one record and counts the view
func (dc *DriveController) GetFileByID(c *gin.Context) {
	f, err := dc.driveService.ViewAs(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), true)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, f, "File retrieved successfully")
}

// DownloadFile streams the file content from the drive
func (dc *DriveController) DownloadFile(c *gin.Context) {
	rc, record, err := dc.driveService.Download(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()

	name := record.OriginalName
	if name == "" {
		name = record.Name
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, safeFileName(name)))
	c.Header("Content-Type", record.MimeType)
	if record.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(record.Size, 10))
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		// headers are gone already
		logger.Warn().Err(err).Str("id", record.ID.Hex()).Msg("Download interrupted")
	}
}

// UpdateFile changes the metadata of a file
func (dc *DriveController) UpdateFile(c *gin.Context) {
	var req dto.UpdateDriveFileRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	var name, description string
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}

	f, err := dc.driveService.UpdateMetadata(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), name, description,
		func(f *models.DriveFile) error {
			applyContentPatch(&f.ContentMeta, req.ContentPatch)
			if req.Category != nil {
				f.Category = *req.Category
			}
			return nil
		})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, f, "File updated successfully")
}

// DeleteFile removes the file from the drive and its record
func (dc *DriveController) DeleteFile(c *gin.Context) {
	driveDeleted, err := dc.driveService.DeleteCompletely(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"driveDeleted": driveDeleted}, "File deleted successfully")
}

// ShareFile grants an e-mail address access to the file
func (dc *DriveController) ShareFile(c *gin.Context) {
	var req dto.ShareFileRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	shared, err := dc.driveService.Share(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), req.Email, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"shared": shared, "email": req.Email}, "File shared successfully")
}

// SyncFile refreshes the record from the drive. A record whose drive object
// is gone is removed.
func (dc *DriveController) SyncFile(c *gin.Context) {
	f, err := dc.driveService.SyncRecord(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if f == nil {
		respondOK(c, gin.H{"removed": true}, "File no longer exists in the drive; record removed")
		return
	}
	respondOK(c, f, "File synchronized successfully")
}

// GetAnalytics returns upload statistics
func (dc *DriveController) GetAnalytics(c *gin.Context) {
	a, err := dc.driveService.Analytics(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, a, "Drive analytics retrieved successfully")
}
