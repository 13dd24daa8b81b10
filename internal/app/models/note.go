package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MaxTitleLength       = 200
	MaxNoteContentLength = 50000
	ExcerptLength        = 200
)

// Note is a text note shared by an instructor
type Note struct {
	ContentMeta
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Author     OwnerRef `json:"author"`
	AuthorName string   `json:"authorName"`
}

// OwnerID returns the author id
func (n Note) OwnerID() primitive.ObjectID { return n.Author.ID }

// OwnerName returns the denormalized author name
func (n Note) OwnerName() string { return n.AuthorName }

// AssignOwner sets the author
func (n *Note) AssignOwner(id primitive.ObjectID, name string) {
	n.Author = OwnerRef{ID: id}
	n.AuthorName = name
}

// PopulateOwner attaches the author's profile
func (n *Note) PopulateOwner(p *OwnerProfile) { n.Author.Profile = p }

// DisplayTitle returns the note title
func (n Note) DisplayTitle() string { return n.Title }

// Excerpt returns the beginning of the note content
func (n Note) Excerpt() string { return Excerpt(n.Content, ExcerptLength) }

// Validate normalizes and checks the note
func (n *Note) Validate() error {
	errs := fieldErrors{}
	n.Title = strings.TrimSpace(n.Title)

	errs.required("title", n.Title)
	errs.maxLen("title", n.Title, MaxTitleLength)
	errs.required("content", n.Content)
	errs.maxLen("content", n.Content, MaxNoteContentLength)
	n.ContentMeta.validate(errs, true)
	if n.Author.ID.IsZero() {
		errs.add("author", "author is required")
	}
	errs.required("authorName", n.AuthorName)

	return errs.err("Note")
}
