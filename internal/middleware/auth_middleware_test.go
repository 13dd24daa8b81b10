package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models/dto"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/auth"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/cache"
)

var _ = Describe("AuthMiddleware", func() {
	var (
		router      *gin.Engine
		authService *services.AuthService
		token       string
	)

	whoami := func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, string(actor.Role)+":"+actor.Name)
	}

	do := func(path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		repos := repositories.NewMemoryRepositories()
		jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", TokenExp: time.Hour, TokenIssuer: "test"})
		authService = services.NewAuthService(repos.Users, jwtService, cache.NewMemoryCache(0), zerolog.Nop())

		_, t, err := authService.Register(context.Background(), &dto.RegisterRequest{
			Email: "ada@example.com", Password: "Secret#123", FirstName: "Ada", LastName: "Lovelace",
			Role: string(models.RoleStudent), StudentID: "S-1", Department: "Computing",
		})
		Expect(err).To(BeNil())
		token = t.AccessToken

		m := NewAuthMiddleware(authService)
		router = gin.New()
		router.GET("/required", m.JWTAuth(), whoami)
		router.GET("/optional", m.OptionalAuth(), whoami)
		router.GET("/admin", m.JWTAuth(), RoleRequired(models.RoleAdmin), whoami)
	})

	Specify("JWTAuth attaches the actor", func() {
		rec := do("/required", "Bearer "+token)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal("student:Ada Lovelace"))
	})

	Specify("JWTAuth rejects missing and malformed tokens", func() {
		rec := do("/required", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(rec.Body.String()).To(ContainSubstring("AUTH_007"))

		rec = do("/required", "Bearer not.a.jwt")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(rec.Body.String()).To(ContainSubstring("AUTH_005"))
	})

	Specify("the token query parameter is accepted", func() {
		rec := do("/required?token="+token, "")
		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	Specify("OptionalAuth leaves bad tokens anonymous", func() {
		Expect(do("/optional", "").Body.String()).To(Equal("anonymous"))
		Expect(do("/optional", "Bearer garbage").Body.String()).To(Equal("anonymous"))
		Expect(do("/optional", "Bearer "+token).Body.String()).To(Equal("student:Ada Lovelace"))
	})

	Specify("RoleRequired forbids other roles", func() {
		rec := do("/admin", "Bearer "+token)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(rec.Body.String()).To(ContainSubstring("FORBIDDEN"))
	})
})
