package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Kamal-Wagle/mucsitbackend/internal/app/controllers"
	"github.com/Kamal-Wagle/mucsitbackend/internal/app/models"
	"github.com/Kamal-Wagle/mucsitbackend/internal/middleware"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/metrics"
	"github.com/Kamal-Wagle/mucsitbackend/internal/pkg/websocket"
)

// Controllers groups every handler the router mounts
type Controllers struct {
	Auth       *controllers.AuthController
	Notes      *controllers.NoteController
	Assignment *controllers.AssignmentController
	Resources  *controllers.ResourceController
	Drive      *controllers.DriveController
	Admin      *controllers.AdminController
	Health     *controllers.HealthController
	Feed       *websocket.Handler
}

// SetupRouter configures all application routes. authLimiter guards the
// auth endpoints on top of the global limiter.
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	authLimiter gin.HandlerFunc,
) {
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API version group
	v1 := router.Group("/api/v1")
	v1.GET("/health", ctrl.Health.Check)

	optional := authMiddleware.OptionalAuth()
	required := authMiddleware.JWTAuth()
	publishers := middleware.RoleRequired(models.RoleInstructor, models.RoleAdmin)
	adminOnly := middleware.RoleRequired(models.RoleAdmin)

	// --- Auth routes ---
	auth := v1.Group("/auth")
	auth.Use(authLimiter)
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)

		authProtected := auth.Group("")
		authProtected.Use(required)
		{
			authProtected.GET("/profile", ctrl.Auth.GetProfile)
			authProtected.PUT("/profile", ctrl.Auth.UpdateProfile)
			authProtected.POST("/change-password", ctrl.Auth.ChangePassword)
			authProtected.POST("/logout", ctrl.Auth.Logout)
		}
	}

	// --- Notes ---
	notes := v1.Group("/notes")
	{
		notes.GET("", optional, ctrl.Notes.GetNotes)
		notes.GET("/my/notes", required, ctrl.Notes.GetMyNotes)
		notes.GET("/:id", optional, ctrl.Notes.GetNoteByID)
		notes.GET("/:id/download", optional, ctrl.Notes.DownloadNote)
		notes.POST("", required, publishers, ctrl.Notes.CreateNote)
		notes.PUT("/:id", required, ctrl.Notes.UpdateNote)
		notes.DELETE("/:id", required, ctrl.Notes.DeleteNote)
	}

	// --- Assignments ---
	assignments := v1.Group("/assignments")
	{
		assignments.GET("", optional, ctrl.Assignment.GetAssignments)
		assignments.GET("/active", optional, ctrl.Assignment.GetActiveAssignments)
		assignments.GET("/expired", optional, ctrl.Assignment.GetExpiredAssignments)
		assignments.GET("/upcoming", optional, ctrl.Assignment.GetUpcomingAssignments)
		assignments.GET("/my/assignments", required, ctrl.Assignment.GetMyAssignments)
		assignments.GET("/:id", optional, ctrl.Assignment.GetAssignmentByID)
		assignments.POST("", required, publishers, ctrl.Assignment.CreateAssignment)
		assignments.PUT("/:id", required, ctrl.Assignment.UpdateAssignment)
		assignments.DELETE("/:id", required, ctrl.Assignment.DeleteAssignment)
	}

	// --- Resources ---
	resources := v1.Group("/resources")
	{
		resources.GET("", optional, ctrl.Resources.GetResources)
		resources.GET("/popular", ctrl.Resources.GetPopular)
		resources.GET("/most-viewed", ctrl.Resources.GetMostViewed)
		resources.GET("/recent", ctrl.Resources.GetRecent)
		resources.GET("/my/resources", required, ctrl.Resources.GetMyResources)
		resources.GET("/:id", optional, ctrl.Resources.GetResourceByID)
		resources.GET("/:id/download", optional, ctrl.Resources.DownloadResource)
		resources.POST("", required, publishers, ctrl.Resources.CreateResource)
		resources.PUT("/:id", required, ctrl.Resources.UpdateResource)
		resources.DELETE("/:id", required, ctrl.Resources.DeleteResource)
	}

	// --- Drive ---
	drive := v1.Group("/drive")
	drive.Use(required)
	{
		drive.POST("/upload", ctrl.Drive.UploadFile)
		drive.GET("/files", ctrl.Drive.GetFiles)
		drive.GET("/my/files", ctrl.Drive.GetMyFiles)
		drive.GET("/files/:id", ctrl.Drive.GetFileByID)
		drive.GET("/files/:id/download", ctrl.Drive.DownloadFile)
		drive.PUT("/files/:id", ctrl.Drive.UpdateFile)
		drive.DELETE("/files/:id", ctrl.Drive.DeleteFile)
		drive.POST("/files/:id/share", publishers, ctrl.Drive.ShareFile)
		drive.POST("/files/:id/sync", ctrl.Drive.SyncFile)
		drive.GET("/analytics", adminOnly, ctrl.Drive.GetAnalytics)
	}

	// --- Admin ---
	admin := v1.Group("/admin")
	admin.Use(required, adminOnly)
	{
		admin.GET("/dashboard", ctrl.Admin.GetDashboard)
		admin.GET("/users", ctrl.Admin.GetUsers)
		admin.PATCH("/users/:id/deactivate", ctrl.Admin.DeactivateUser)
		admin.GET("/health", ctrl.Admin.GetSystemHealth)
	}

	// --- Live feed ---
	v1.GET("/feed/ws", optional, ctrl.Feed.HandleConnection)
}
