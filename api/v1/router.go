package v1

import (
	"time"

	"github.com/bugpredictor/middleware"
	"github.com/bugpredictor/services"
	"github.com/gin-gonic/gin"
)

// Services bundles the business services the API exposes
type Services struct {
	Auth      *services.AuthService
	Members   *services.MemberService
	Bugs      *services.BugService
	Comments  *services.CommentService
	Media     *services.MediaService
	Dashboard *services.DashboardService
	Projects  *services.ProjectService
}

// Options tunes the session cookie
type Options struct {
	CookieSecure bool
	TokenTTL     time.Duration
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, svc Services, opts Options) {
	useJSONFieldNames()

	// Health check endpoint
	router.GET("/health", HealthCheck)

	requireAuth := middleware.AuthMiddleware(svc.Auth)
	NewAuthController(svc.Auth, opts.CookieSecure, opts.TokenTTL).RegisterRoutes(router, requireAuth)

	// Everything else is protected by AuthMiddleware
	authRouter := router.Group("")
	authRouter.Use(requireAuth)

	NewDashboardController(svc.Dashboard).RegisterRoutes(authRouter)
	NewProjectController(svc.Projects).RegisterRoutes(authRouter)
	NewMemberController(svc.Members).RegisterRoutes(authRouter)
	NewBugController(svc.Bugs).RegisterRoutes(authRouter)
	NewCommentController(svc.Comments).RegisterRoutes(authRouter)
	NewMediaController(svc.Media).RegisterRoutes(authRouter)
}
