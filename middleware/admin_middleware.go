package middleware

import (
	"github.com/bugpredictor/apperrors"
	"github.com/gin-gonic/gin"
)

// SuperuserMiddleware ensures the user is a superuser.
// This middleware should be used after AuthMiddleware
func SuperuserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortWith(c, apperrors.New(apperrors.ErrUnauthorized))
			return
		}
		if !user.IsSuperuser {
			abortWith(c, apperrors.Newf(apperrors.ErrForbidden, "superuser privileges required"))
			return
		}
		c.Next()
	}
}

// ProjectOwnerMiddleware lets only project owners and superusers through
func ProjectOwnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortWith(c, apperrors.New(apperrors.ErrUnauthorized))
			return
		}
		if !user.IsProjectOwner() && !user.IsSuperuser {
			abortWith(c, apperrors.Newf(apperrors.ErrForbidden, "project owner privileges required"))
			return
		}
		c.Next()
	}
}
