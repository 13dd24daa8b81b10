package controllers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/helpers"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

// ParamKind says how a query parameter turns into a filter condition
type ParamKind int

const (
	ParamString ParamKind = iota
	ParamObjectID
	ParamBool
	ParamTags
	ParamFileType
)

// FilterParam maps one recognized query parameter onto a store field
type FilterParam struct {
	Field string
	Kind  ParamKind
}

// FilterSpec lists the query parameters an entity's listings understand
type FilterSpec map[string]FilterParam

// Recognized filter parameters per entity. Anything else is ignored.
var (
	NoteFilters = FilterSpec{
		"department": {Field: "department"},
		"subject":    {Field: "subject"},
		"course":     {Field: "course"},
		"author":     {Field: "author", Kind: ParamObjectID},
		"isPublic":   {Field: "isPublic", Kind: ParamBool},
	}

	AssignmentFilters = FilterSpec{
		"department": {Field: "department"},
		"subject":    {Field: "subject"},
		"course":     {Field: "course"},
		"instructor": {Field: "instructor", Kind: ParamObjectID},
		"isActive":   {Field: "isActive", Kind: ParamBool},
		"isPublic":   {Field: "isPublic", Kind: ParamBool},
	}

	ResourceFilters = FilterSpec{
		"department": {Field: "department"},
		"subject":    {Field: "subject"},
		"course":     {Field: "course"},
		"author":     {Field: "author", Kind: ParamObjectID},
		"type":       {Field: "type"},
		"category":   {Field: "category"},
		"tags":       {Field: "tags", Kind: ParamTags},
		"isPublic":   {Field: "isPublic", Kind: ParamBool},
	}

	DriveFileFilters = FilterSpec{
		"department": {Field: "department"},
		"subject":    {Field: "subject"},
		"course":     {Field: "course"},
		"category":   {Field: "category"},
		"fileType":   {Field: "mimeType", Kind: ParamFileType},
		"uploadedBy": {Field: "uploadedBy", Kind: ParamObjectID},
		"isPublic":   {Field: "isPublic", Kind: ParamBool},
	}

	UserFilters = FilterSpec{
		"role":       {Field: "role"},
		"department": {Field: "department"},
		"isActive":   {Field: "isActive", Kind: ParamBool},
	}
)

// ParseQueryOptions reads pagination, sort, search, populate and the
// recognized filters of spec from the query string. Unparseable page or limit
// values fall back to the defaults; a malformed id filter is an error.
func ParseQueryOptions(c *gin.Context, spec FilterSpec) (query.Options, error) {
	page, limit := helpers.ParsePaginationParams(c)
	opts := query.Options{
		Page:     page,
		Limit:    limit,
		Sort:     query.ParseSort(c.Query("sort")),
		Search:   c.Query("search"),
		Populate: c.Query("populate") == "true",
	}

	for param, fp := range spec {
		raw := strings.TrimSpace(c.Query(param))
		if raw == "" {
			continue
		}
		switch fp.Kind {
		case ParamString:
			opts.Filter = opts.Filter.And(query.Eq(fp.Field, raw))
		case ParamObjectID:
			id, err := services.ParseID(raw)
			if err != nil {
				return query.Options{}, err
			}
			opts.Filter = opts.Filter.And(query.Eq(fp.Field, id))
		case ParamBool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				continue
			}
			opts.Filter = opts.Filter.And(query.Eq(fp.Field, b))
		case ParamTags:
			tags := models.NormalizeTags(strings.Split(raw, ","))
			if len(tags) > 0 {
				opts.Filter = opts.Filter.And(query.Overlaps(fp.Field, tags))
			}
		case ParamFileType:
			opts.Filter = opts.Filter.And(query.Match(fp.Field, models.FileTypePatternFor(raw)))
		}
	}
	return opts, nil
}

// intQuery reads a positive integer query parameter
func intQuery(c *gin.Context, name string, def int) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil || n < 1 {
		return def
	}
	return n
}
