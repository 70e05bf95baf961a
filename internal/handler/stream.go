package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studytracker/api/internal/middleware"
	"github.com/studytracker/api/internal/progress"
	"github.com/studytracker/api/internal/store"
)

// StreamHandler pushes a fresh report to the client whenever the course
// collection changes. Each client owns its subscription, which is closed
// when the client disconnects.
type StreamHandler struct {
	gateway       store.Gateway
	defaultTarget int
}

func NewStreamHandler(gateway store.Gateway, defaultTarget int) *StreamHandler {
	return &StreamHandler{gateway: gateway, defaultTarget: defaultTarget}
}

func (h *StreamHandler) Stream(c *gin.Context) {
	ctx := c.Request.Context()

	sub, err := h.gateway.Subscribe(ctx, store.CoursesPath)
	if err != nil {
		log.Printf("Failed to subscribe stream client: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open stream"})
		return
	}
	defer sub.Close()
	defer middleware.StreamOpened()()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snapshot, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", progress.BuildReport(snapshot, h.defaultTarget))
			return true
		}
	})
}
