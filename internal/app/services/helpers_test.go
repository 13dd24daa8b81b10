package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/auth"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/events"
)

var testLogger = zerolog.Nop()

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ContentCreated
}

func (p *recordingPublisher) Publish(_ context.Context, evt events.ContentCreated) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) Events() []events.ContentCreated {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.ContentCreated(nil), p.events...)
}

func newActor(role models.Role, name string) *auth.Actor {
	return &auth.Actor{ID: primitive.NewObjectID(), Role: role, Name: name}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func noteDraft(title string, public bool) *models.Note {
	return &models.Note{
		ContentMeta: models.ContentMeta{
			Subject:    "Mathematics",
			Course:     "MATH101",
			Department: "Science",
			Tags:       []string{" Algebra ", ""},
			IsPublic:   public,
		},
		Title:   title,
		Content: "Lecture notes about " + title,
	}
}
