package v1

import (
	"net/http"

	"github.com/bugpredictor/middleware"
	"github.com/gin-gonic/gin"
)

// Logout handles user logout
func (a *AuthController) Logout(c *gin.Context) {
	// Clear the cookie by setting max-age to -1 (expired)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.AccessTokenCookie,
		"",
		-1,
		"/",
		"",
		a.cookieSecure,
		true,
	)

	respondMessage(c, "Logged out successfully")
}
