package services

import (
	"github.com/rs/zerolog"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/events"
)

// NoteService manages notes
type NoteService struct {
	*ContentService[models.Note, *models.Note]
}

// NewNoteService creates a NoteService
func NewNoteService(store repositories.Store[models.Note], users UserDirectory, publisher events.Publisher, logger zerolog.Logger) *NoteService {
	return &NoteService{
		ContentService: NewContentService[models.Note, *models.Note](store, ContentConfig[models.Note]{
			Entity:     "note",
			Kind:       events.KindNote,
			OwnerField: "author",
			Body:       func(n *models.Note) string { return n.Content },
		}, users, publisher, logger),
	}
}
