package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/serverless-todo/todo-backend/internal/auth"
)

// PrincipalKey is the gin context key holding the authorized subject.
const PrincipalKey = "principalId"

// Authorizer is the minimal interface the middleware depends on
type Authorizer interface {
	Authorize(ctx context.Context, header string) auth.Decision
}

// Authorize admits a request only when the authorizer allows its bearer token.
// Denied requests never reach the handler.
func Authorize(a Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := a.Authorize(c.Request.Context(), c.GetHeader("Authorization"))
		if d.Effect != auth.Allow {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "User is not authorized to access this resource"})
			return
		}
		c.Set(PrincipalKey, d.PrincipalID)
		c.Next()
	}
}

// Principal returns the subject stored by Authorize, or "".
func Principal(c *gin.Context) string {
	return c.GetString(PrincipalKey)
}
