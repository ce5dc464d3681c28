package v1

import (
	"net/http"
	"time"

	"github.com/bugpredictor/dto"
	"github.com/bugpredictor/logger"
	"github.com/bugpredictor/middleware"
	"github.com/bugpredictor/services"
	"github.com/gin-gonic/gin"
)

// AuthController handles registration, sessions and account endpoints
type AuthController struct {
	authService  *services.AuthService
	cookieSecure bool
	tokenTTL     time.Duration
}

func NewAuthController(authService *services.AuthService, cookieSecure bool, tokenTTL time.Duration) *AuthController {
	return &AuthController{authService: authService, cookieSecure: cookieSecure, tokenTTL: tokenTTL}
}

// RegisterRoutes registers auth routes. Routes after /me need requireAuth.
func (a *AuthController) RegisterRoutes(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", a.Register)
		auth.GET("/verify", a.Verify)
		auth.POST("/login", a.Login)
		auth.POST("/logout", a.Logout)
		auth.POST("/password-reset", a.RequestPasswordReset)
		auth.POST("/password-reset/confirm", a.ConfirmPasswordReset)

		auth.GET("/me", requireAuth, a.GetCurrentUser)
		auth.PUT("/me", requireAuth, a.UpdateCurrentUser)
		auth.POST("/change-password", requireAuth, a.ChangePassword)
	}
}

// Register handles project owner self-registration
func (a *AuthController) Register(c *gin.Context) {
	var req dto.RegisterOwnerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := a.authService.RegisterOwner(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Registration received, check your email to verify your address",
		"data":    dto.NewUserResponse(*user),
	})
}

// Verify confirms an email address from the mailed link
func (a *AuthController) Verify(c *gin.Context) {
	if err := a.authService.VerifyEmail(c.Query("token")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Email verified, you can now log in")
}

// Login handles user authentication
func (a *AuthController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := a.authService.Login(req)
	if err != nil {
		respondError(c, err)
		return
	}

	// Token goes into an HttpOnly cookie and the body for Bearer clients
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.AccessTokenCookie,
		authResponse.Token,
		int(a.tokenTTL.Seconds()),
		"/",
		"",
		a.cookieSecure,
		true,
	)

	respondOK(c, authResponse)
}

// GetCurrentUser returns the authenticated user
func (a *AuthController) GetCurrentUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	respondOK(c, dto.NewUserResponse(*user))
}

// UpdateCurrentUser changes the profile of the authenticated user
func (a *AuthController) UpdateCurrentUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := a.authService.UpdateProfile(user, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, dto.NewUserResponse(updated))
}

func (a *AuthController) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := a.authService.ChangePassword(user, req); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Password changed")
}

// RequestPasswordReset always answers success so accounts cannot be probed
func (a *AuthController) RequestPasswordReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := a.authService.RequestPasswordReset(req.Email); err != nil {
		logger.Error("Password reset request failed: %v", err)
	}
	respondMessage(c, "If the address belongs to an account, a reset link has been sent")
}

func (a *AuthController) ConfirmPasswordReset(c *gin.Context) {
	var req dto.PasswordResetConfirmRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := a.authService.ConfirmPasswordReset(req); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Password has been reset, you can now log in")
}
