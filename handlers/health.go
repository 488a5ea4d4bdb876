package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports ready once the runtime configuration can be loaded.
type HealthHandler struct {
	Config ConfigLoader
}

func (h HealthHandler) Get(c *gin.Context) {
	if h.Config != nil {
		if _, err := h.Config.Load(c.Request.Context()); err != nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"health": "config unavailable",
			})
			return
		}
	}

	c.AbortWithStatusJSON(http.StatusOK, gin.H{
		"health": "ok",
	})
}
