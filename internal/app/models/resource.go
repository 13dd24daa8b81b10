package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxResourceDescriptionLength = 5000

// ResourceType classifies a resource
type ResourceType string

const (
	ResourceTypeDocument     ResourceType = "document"
	ResourceTypeVideo        ResourceType = "video"
	ResourceTypeAudio        ResourceType = "audio"
	ResourceTypeLink         ResourceType = "link"
	ResourceTypePresentation ResourceType = "presentation"
	ResourceTypeSpreadsheet  ResourceType = "spreadsheet"
)

// ResourceTypes lists every valid resource type
var ResourceTypes = []ResourceType{
	ResourceTypeDocument,
	ResourceTypeVideo,
	ResourceTypeAudio,
	ResourceTypeLink,
	ResourceTypePresentation,
	ResourceTypeSpreadsheet,
}

// Valid reports whether t is a known resource type
func (t ResourceType) Valid() bool {
	for _, v := range ResourceTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Resource is a learning resource: an uploaded file or an external link
type Resource struct {
	ContentMeta
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        ResourceType `json:"type"`
	Category    string       `json:"category"`
	FileURL     string       `json:"fileUrl,omitempty"`
	ExternalURL string       `json:"externalUrl,omitempty"`
	Author      OwnerRef     `json:"author"`
	AuthorName  string       `json:"authorName"`
}

// OwnerID returns the author id
func (r Resource) OwnerID() primitive.ObjectID { return r.Author.ID }

func (r Resource) OwnerName() string { return r.AuthorName }

// AssignOwner sets the author
func (r *Resource) AssignOwner(id primitive.ObjectID, name string) {
	r.Author = OwnerRef{ID: id}
	r.AuthorName = name
}

// PopulateOwner attaches the author's profile
func (r *Resource) PopulateOwner(p *OwnerProfile) { r.Author.Profile = p }

// DisplayTitle returns the resource title
func (r Resource) DisplayTitle() string { return r.Title }

// URL is the external link for link resources and the file URL otherwise
func (r Resource) URL() string {
	if r.Type == ResourceTypeLink {
		return r.ExternalURL
	}
	return r.FileURL
}

// MarshalJSON adds the derived resourceUrl field
func (r Resource) MarshalJSON() ([]byte, error) {
	type plain Resource
	return marshalWith(plain(r), map[string]interface{}{"resourceUrl": r.URL()})
}

// Validate normalizes and checks the resource
func (r *Resource) Validate() error {
	errs := fieldErrors{}
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.FileURL = strings.TrimSpace(r.FileURL)
	r.ExternalURL = strings.TrimSpace(r.ExternalURL)

	errs.required("title", r.Title)
	errs.maxLen("title", r.Title, MaxTitleLength)
	errs.required("description", r.Description)
	errs.maxLen("description", r.Description, MaxResourceDescriptionLength)
	errs.required("category", r.Category)
	r.ContentMeta.validate(errs, true)

	if !r.Type.Valid() {
		errs.add("type", "type must be one of document, video, audio, link, presentation, spreadsheet")
	} else if r.Type == ResourceTypeLink {
		if r.ExternalURL == "" {
			errs.add("externalUrl", "external URL is required for link resources")
		} else {
			errs.url("externalUrl", r.ExternalURL)
		}
	} else if r.FileURL == "" {
		errs.add("fileUrl", "file URL is required for non-link resources")
	}

	if r.Author.ID.IsZero() {
		errs.add("author", "author is required")
	}
	errs.required("authorName", r.AuthorName)

	return errs.err("Resource")
}
