package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vela-games/lfsbatch/auth"
	"github.com/vela-games/lfsbatch/handlers"
)

type Authorizer interface {
	Authorize(ctx context.Context, header string) (*auth.Decision, error)
}

// AuthMiddleware runs the gateway before the batch handler and renders an
// allowed decision into the gin context. Every denial looks the same.
func AuthMiddleware(gateway Authorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision, err := gateway.Authorize(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil || !decision.Allows(c.Request.Method, c.FullPath()) {
			c.Header("LFS-Authenticate", `Basic realm="Git LFS"`)
			c.Header("Content-Type", handlers.ContentType)
			c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.ErrorResponse{Message: "Unauthorized"})
			return
		}

		user := decision.Context
		c.Set(handlers.UserContextKey, &user)
		c.Next()
	}
}
