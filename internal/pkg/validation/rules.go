// Package validation registers the custom validator tags used by request DTOs.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
)

// Validation rule patterns
var (
	// Password special characters
	PasswordSpecials = "@$!%*?&"

	// Password min length
	PasswordMinLength = 8
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Lower   *regexp.Regexp
	Upper   *regexp.Regexp
	Digit   *regexp.Regexp
	Special *regexp.Regexp
}{
	Lower:   regexp.MustCompile(`[a-z]`),
	Upper:   regexp.MustCompile(`[A-Z]`),
	Digit:   regexp.MustCompile(`\d`),
	Special: regexp.MustCompile(`[` + regexp.QuoteMeta(PasswordSpecials) + `]`),
}

// StrongPassword reports whether s has a lowercase letter, an uppercase
// letter, a digit and one of PasswordSpecials
func StrongPassword(s string) bool {
	return len(s) >= PasswordMinLength &&
		CompiledPatterns.Lower.MatchString(s) &&
		CompiledPatterns.Upper.MatchString(s) &&
		CompiledPatterns.Digit.MatchString(s) &&
		CompiledPatterns.Special.MatchString(s)
}

// rules maps each custom tag to its check
var rules = map[string]validator.Func{
	"objectid": func(fl validator.FieldLevel) bool {
		return primitive.IsValidObjectID(fl.Field().String())
	},
	"resourcetype": func(fl validator.FieldLevel) bool {
		return models.ResourceType(fl.Field().String()).Valid()
	},
	"submissionformat": func(fl validator.FieldLevel) bool {
		return models.IsSubmissionFormat(strings.ToLower(fl.Field().String()))
	},
	"drivecategory": func(fl validator.FieldLevel) bool {
		return models.IsDriveCategory(fl.Field().String())
	},
	"strongpassword": func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	},
}

// Register adds the custom tags to v
func Register(v *validator.Validate) error {
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validation: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin adds the custom tags to gin's binding validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}
