package controllers

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models/dto"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/middleware"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._ -]+`)

// NoteController handles note operations
type NoteController struct {
	noteService *services.NoteService
}

// NewNoteController creates a new NoteController
func NewNoteController(noteService *services.NoteService) *NoteController {
	return &NoteController{noteService: noteService}
}

// GetNotes godoc
// @Summary List notes
// @Tags notes
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Page size (default: 10, max: 100)"
// @Param search query string false "Free text search"
// @Success 200 {object} dto.APIResponse
// @Router /notes [get]
func (nc *NoteController) GetNotes(c *gin.Context) {
	opts, err := ParseQueryOptions(c, NoteFilters)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := nc.noteService.ListAs(c.Request.Context(), middleware.ActorFrom(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res, opts, "Notes retrieved successfully")
}

// GetMyNotes lists the caller's notes, private ones included
func (nc *NoteController) GetMyNotes(c *gin.Context) {
	opts, err := ParseQueryOptions(c, NoteFilters)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := nc.noteService.ListMine(c.Request.Context(), middleware.ActorFrom(c), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res, opts, "Your notes retrieved successfully")
}

// GetNoteByID godoc
// @Summary Get a note by ID
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /notes/{id} [get]
func (nc *NoteController) GetNoteByID(c *gin.Context) {
	note, err := nc.noteService.ViewAs(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), true)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, note, "Note retrieved successfully")
}

// CreateNote godoc
// @Summary Create a note
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateNoteRequest true "Note"
// @Success 201 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /notes [post]
func (nc *NoteController) CreateNote(c *gin.Context) {
	var req dto.CreateNoteRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	note := &models.Note{Title: req.Title, Content: req.Content}
	applyContentFields(&note.ContentMeta, req.ContentFields)

	created, err := nc.noteService.CreateAs(c.Request.Context(), middleware.ActorFrom(c), note)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, created, "Note created successfully")
}

// UpdateNote applies a partial update; only the author or an admin may
func (nc *NoteController) UpdateNote(c *gin.Context) {
	var req dto.UpdateNoteRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	note, err := nc.noteService.UpdateAs(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"), func(n *models.Note) error {
		applyContentPatch(&n.ContentMeta, req.ContentPatch)
		if req.Title != nil {
			n.Title = *req.Title
		}
		if req.Content != nil {
			n.Content = *req.Content
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, note, "Note updated successfully")
}

// DeleteNote removes a note
func (nc *NoteController) DeleteNote(c *gin.Context) {
	if err := nc.noteService.DeleteAs(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, nil, "Note deleted successfully")
}

// DownloadNote sends the note content as a text attachment
func (nc *NoteController) DownloadNote(c *gin.Context) {
	note, err := nc.noteService.DownloadAs(c.Request.Context(), middleware.ActorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.txt"`, safeFileName(note.Title)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(note.Content))
}

func safeFileName(name string) string {
	name = unsafeFileChars.ReplaceAllString(name, "_")
	if name == "" {
		return "download"
	}
	return name
}
