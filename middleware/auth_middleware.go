package middleware

import (
	"strings"

	"github.com/bugpredictor/apperrors"
	"github.com/bugpredictor/models"
	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware
const (
	ContextUserID = "userId"
	ContextRole   = "role"
	ContextUser   = "currentUser"
)

// AccessTokenCookie is the cookie carrying the session JWT
const AccessTokenCookie = "access_token"

// Authenticator resolves a session token to a user
type Authenticator interface {
	Authenticate(token string) (*models.User, error)
}

// AuthMiddleware authenticates the request using the Bearer header or the access_token cookie
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
				token = cookie
			}
		}

		if token == "" {
			abortWith(c, apperrors.New(apperrors.ErrUnauthorized))
			return
		}

		user, err := auth.Authenticate(token)
		if err != nil {
			abortWith(c, apperrors.As(err))
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextRole, string(user.Role))
		c.Set(ContextUser, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware, or nil
func CurrentUser(c *gin.Context) *models.User {
	value, exists := c.Get(ContextUser)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abortWith(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus(), gin.H{
		"status":  "error",
		"code":    err.Code,
		"message": err.Message,
	})
}
