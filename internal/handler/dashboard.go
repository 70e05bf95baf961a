package handler

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/studytracker/api/internal/progress"
	"github.com/studytracker/api/internal/tracker"
)

//go:embed templates/dashboard.html
var templatesFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templatesFS, "templates/dashboard.html"))

// DashboardHandler renders the course table as a plain HTML page.
type DashboardHandler struct {
	tracker       *tracker.Tracker
	defaultTarget int
}

func NewDashboardHandler(t *tracker.Tracker, defaultTarget int) *DashboardHandler {
	return &DashboardHandler{tracker: t, defaultTarget: defaultTarget}
}

func (h *DashboardHandler) Show(c *gin.Context) {
	c.Render(http.StatusOK, render.HTML{
		Template: dashboardTemplate,
		Name:     "dashboard.html",
		Data:     progress.BuildReport(h.tracker.Snapshot(), h.defaultTarget),
	})
}
