package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
)

// BindJSON binds and validates the request body into obj. On failure the
// error response is written and false returned.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		handleBindError(c, err)
		return false
	}
	return true
}

// BindQuery binds and validates query parameters into obj
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		handleBindError(c, err)
		return false
	}
	return true
}

// Bind binds form or multipart fields into obj
func Bind(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil {
		handleBindError(c, err)
		return false
	}
	return true
}

func handleBindError(c *gin.Context, err error) {
	// malformed JSON and type mismatches are not validator errors
	if _, ok := asValidation(err); !ok {
		err = apperrors.NewValidationError("Invalid request format", map[string]interface{}{
			"body": err.Error(),
		})
	}
	HandleAPIError(c, err)
	c.Abort()
}

func asValidation(err error) (validator.ValidationErrors, bool) {
	var verrs validator.ValidationErrors
	ok := errors.As(err, &verrs)
	return verrs, ok
}
