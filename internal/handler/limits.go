package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studytracker/api/internal/limiter"
)

// Limits lists the per-client write limits and whether they are enforced.
func Limits(l *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		limits := make(map[string]map[string]interface{})
		for action, config := range limiter.DefaultLimits {
			limits[action] = map[string]interface{}{
				"limit":          config.Limit,
				"window_seconds": int(config.Window.Seconds()),
			}
		}
		c.JSON(http.StatusOK, gin.H{"enforced": l != nil, "limits": limits})
	}
}
