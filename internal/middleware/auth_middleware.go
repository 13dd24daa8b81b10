package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	appAuth "github.com/Kamal-Wagle/mucsitbackend/internal/app/auth"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/auth"
)

// Context keys set by the auth middleware
const (
	ContextKeyActor  = "actor"
	ContextKeyClaims = "claims"
	ContextKeyUserID = "userID"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	authService *services.AuthService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authService *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// tokenFrom reads the bearer token from the Authorization header. Websocket
// clients cannot set headers, so the token query parameter is accepted too.
func tokenFrom(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		if t := c.Query("token"); t != "" {
			return t, nil
		}
		return "", apperrors.ErrTokenNotFound
	}

	token, err := auth.ExtractBearerToken(header)
	if err != nil {
		// some clients wrap the header value in quotes
		header = strings.Trim(header, "\"'")
		if strings.HasPrefix(header, "Bearer ") {
			return strings.TrimPrefix(header, "Bearer "), nil
		}
		return "", apperrors.ErrTokenInvalid
	}
	return token, nil
}

func (m *AuthMiddleware) authenticate(c *gin.Context, token string) error {
	claims, user, err := m.authService.Authenticate(c.Request.Context(), token)
	if err != nil {
		return err
	}
	c.Set(ContextKeyClaims, claims)
	c.Set(ContextKeyUserID, user.ID.Hex())
	c.Set(ContextKeyActor, &appAuth.Actor{ID: user.ID, Role: user.Role, Name: user.FullName()})
	return nil
}

// JWTAuth requires a valid, unrevoked token of an active user
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := tokenFrom(c)
		if err == nil {
			err = m.authenticate(c, token)
		}
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches the actor when a valid token is present. A missing or
// bad token leaves the request anonymous.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := tokenFrom(c); err == nil {
			if err := m.authenticate(c, token); err != nil && !isAuthError(err) {
				HandleAPIError(c, err)
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

func isAuthError(err error) bool {
	return apperrors.Is(err, apperrors.ErrTokenInvalid,
		apperrors.ErrTokenExpired,
		apperrors.ErrTokenRevoked,
		apperrors.ErrTokenNotFound,
		apperrors.ErrAccountDisabled,
	)
}

// RoleRequired allows only the given roles. It must run after JWTAuth.
func RoleRequired(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil {
			HandleAPIError(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		HandleAPIError(c, apperrors.NewForbiddenError("insufficient permissions for this action"))
		c.Abort()
	}
}

// ActorFrom returns the authenticated caller, or nil for anonymous requests
func ActorFrom(c *gin.Context) *appAuth.Actor {
	v, ok := c.Get(ContextKeyActor)
	if !ok {
		return nil
	}
	actor, _ := v.(*appAuth.Actor)
	return actor
}

// ClaimsFrom returns the validated token claims
func ClaimsFrom(c *gin.Context) (*auth.Claims, error) {
	v, ok := c.Get(ContextKeyClaims)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	claims, ok := v.(*auth.Claims)
	if !ok {
		return nil, errors.New("invalid claims in context")
	}
	return claims, nil
}
