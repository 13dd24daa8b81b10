package services_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models/dto"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/repositories"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/services"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/apperrors"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/auth"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/cache"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/query"
)

var _ = Describe("AuthService", func() {
	var (
		ctx         context.Context
		repos       *repositories.Repositories
		authService *services.AuthService
		users       *services.UserService
	)

	student := func(email, studentID string) *dto.RegisterRequest {
		return &dto.RegisterRequest{
			Email:      email,
			Password:   "Secret#123",
			FirstName:  "Katherine",
			LastName:   "Johnson",
			Role:       string(models.RoleStudent),
			StudentID:  studentID,
			Department: "Mathematics",
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		repos = repositories.NewMemoryRepositories()
		jwtService := auth.NewJWTService(auth.JWTConfig{
			SecretKey:   "test-secret",
			TokenExp:    time.Hour,
			TokenIssuer: "mucsit-test",
		})
		authService = services.NewAuthService(repos.Users, jwtService, cache.NewMemoryCache(0), testLogger)
		users = services.NewUserService(repos.Users, testLogger)
	})

	Describe("Register", func() {
		Specify("creates an active account with a hashed password", func() {
			u, token, err := authService.Register(ctx, student("Kat@Example.com", "S-1"))
			Expect(err).To(BeNil())
			Expect(u.Email).To(Equal("kat@example.com"))
			Expect(u.Password).NotTo(Equal("Secret#123"))
			Expect(auth.CheckPassword(u.Password, "Secret#123")).To(BeTrue())
			Expect(u.IsActive).To(BeTrue())
			Expect(token.AccessToken).NotTo(BeEmpty())
			Expect(token.ExpiresIn).To(BeEquivalentTo(3600))
		})

		Specify("duplicate emails and student ids conflict", func() {
			_, _, err := authService.Register(ctx, student("kat@example.com", "S-1"))
			Expect(err).To(BeNil())

			_, _, err = authService.Register(ctx, student("KAT@example.com", "S-2"))
			Expect(err).To(MatchAppError(apperrors.ErrConflict))

			_, _, err = authService.Register(ctx, student("other@example.com", "S-1"))
			Expect(err).To(MatchAppError(apperrors.ErrConflict))
		})
	})

	Describe("Login", func() {
		BeforeEach(func() {
			_, _, err := authService.Register(ctx, student("kat@example.com", "S-1"))
			Expect(err).To(BeNil())
		})

		Specify("valid credentials stamp the last login", func() {
			u, token, err := authService.Login(ctx, &dto.LoginRequest{Email: "kat@example.com", Password: "Secret#123"})
			Expect(err).To(BeNil())
			Expect(token).NotTo(BeNil())
			Expect(u.LastLogin).NotTo(BeNil())
		})

		Specify("wrong password and unknown email look the same", func() {
			_, _, err := authService.Login(ctx, &dto.LoginRequest{Email: "kat@example.com", Password: "nope"})
			Expect(err).To(MatchAppError(apperrors.ErrInvalidCredentials))

			_, _, err = authService.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "Secret#123"})
			Expect(err).To(MatchAppError(apperrors.ErrInvalidCredentials))
		})

		Specify("deactivated accounts cannot log in or authenticate", func() {
			u, token, err := authService.Login(ctx, &dto.LoginRequest{Email: "kat@example.com", Password: "Secret#123"})
			Expect(err).To(BeNil())

			admin := newActor(models.RoleAdmin, "Root")
			_, err = users.Deactivate(ctx, admin.ID.Hex(), u.ID.Hex())
			Expect(err).To(BeNil())

			_, _, err = authService.Login(ctx, &dto.LoginRequest{Email: "kat@example.com", Password: "Secret#123"})
			Expect(err).To(MatchAppError(apperrors.ErrAccountDisabled))

			_, _, err = authService.Authenticate(ctx, token.AccessToken)
			Expect(err).To(MatchAppError(apperrors.ErrAccountDisabled))
		})
	})

	Specify("Logout revokes the token", func() {
		_, token, err := authService.Register(ctx, student("kat@example.com", "S-1"))
		Expect(err).To(BeNil())

		claims, u, err := authService.Authenticate(ctx, token.AccessToken)
		Expect(err).To(BeNil())
		Expect(u.Email).To(Equal("kat@example.com"))

		Expect(authService.Logout(ctx, claims)).To(Succeed())
		revoked, err := authService.IsRevoked(ctx, claims.ID)
		Expect(err).To(BeNil())
		Expect(revoked).To(BeTrue())

		_, _, err = authService.Authenticate(ctx, token.AccessToken)
		Expect(err).To(MatchAppError(apperrors.ErrTokenRevoked))
	})

	Describe("profile", func() {
		var userID string

		BeforeEach(func() {
			u, _, err := authService.Register(ctx, student("kat@example.com", "S-1"))
			Expect(err).To(BeNil())
			userID = u.ID.Hex()
		})

		Specify("UpdateProfile changes only the given fields", func() {
			first := "  Kathy "
			u, err := authService.UpdateProfile(ctx, userID, &dto.UpdateProfileRequest{FirstName: &first})
			Expect(err).To(BeNil())
			Expect(u.FirstName).To(Equal("Kathy"))
			Expect(u.LastName).To(Equal("Johnson"))
		})

		Specify("ChangePassword requires the current password", func() {
			err := authService.ChangePassword(ctx, userID, &dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "Another#456"})
			Expect(err).To(MatchAppError(apperrors.ErrInvalidCredentials))

			err = authService.ChangePassword(ctx, userID, &dto.ChangePasswordRequest{CurrentPassword: "Secret#123", NewPassword: "Another#456"})
			Expect(err).To(BeNil())

			_, _, err = authService.Login(ctx, &dto.LoginRequest{Email: "kat@example.com", Password: "Another#456"})
			Expect(err).To(BeNil())
		})
	})
})

var _ = Describe("UserService", func() {
	var (
		ctx   context.Context
		repos *repositories.Repositories
		users *services.UserService
	)

	BeforeEach(func() {
		ctx = context.Background()
		repos = repositories.NewMemoryRepositories()
		users = services.NewUserService(repos.Users, testLogger)
	})

	Specify("admins cannot deactivate themselves", func() {
		id := newActor(models.RoleAdmin, "Root").ID.Hex()
		_, err := users.Deactivate(ctx, id, id)
		Expect(err).To(MatchAppError(apperrors.ErrBadRequest))
	})

	Specify("ListUsers filters by role", func() {
		for i, role := range []models.Role{models.RoleStudent, models.RoleStudent, models.RoleInstructor} {
			u := &models.User{
				Email: string(rune('a'+i)) + "@example.com", Password: "hash",
				FirstName: "F", LastName: "L", Role: role, Department: "D", IsActive: true,
			}
			_, err := users.Create(ctx, u)
			Expect(err).To(BeNil())
		}

		res, err := users.ListUsers(ctx, query.Options{Filter: query.Filter{query.Eq("role", models.RoleStudent)}})
		Expect(err).To(BeNil())
		Expect(res.Total).To(BeEquivalentTo(2))
	})
})
