package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/studytracker/api/internal/limiter"
	"github.com/studytracker/api/internal/middleware"
	"github.com/studytracker/api/internal/store"
	"github.com/studytracker/api/internal/tracker"
)

// Deps are the components the HTTP layer is built from. DB and Limiter may
// be nil.
type Deps struct {
	Tracker       *tracker.Tracker
	Gateway       store.Gateway
	DB            *gorm.DB
	Limiter       *limiter.Limiter
	DefaultTarget int
	Status        gin.HandlerFunc
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.MetricsMiddleware())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	courseHandler := NewCourseHandler(deps.Tracker, deps.DefaultTarget)
	exportHandler := NewExportHandler(deps.Tracker, deps.DefaultTarget)
	streamHandler := NewStreamHandler(deps.Gateway, deps.DefaultTarget)
	dashboardHandler := NewDashboardHandler(deps.Tracker, deps.DefaultTarget)
	historyHandler := NewHistoryHandler(deps.DB)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "snapshotVersion": deps.Tracker.Version()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if deps.Status != nil {
		r.GET("/recorder/status", deps.Status)
	}

	r.GET("/", dashboardHandler.Show)

	limit := func(action string) gin.HandlerFunc {
		return middleware.RateLimit(deps.Limiter, action)
	}

	api := r.Group("/api")
	{
		// Courses
		api.GET("/courses", courseHandler.List)
		api.POST("/courses", limit("course.create"), courseHandler.Create)
		api.DELETE("/courses/:id", limit("course.delete"), courseHandler.Delete)
		api.POST("/courses/:id/sessions", limit("session.add"), courseHandler.AddSession)
		api.POST("/courses/:id/exams", limit("exam.add"), courseHandler.AddExam)
		api.PUT("/courses/:id/target", limit("course.target"), courseHandler.SetTarget)
		api.GET("/courses/:id/chart", courseHandler.Chart)
		api.GET("/courses/:id/export", exportHandler.Export)

		// Stats
		api.GET("/stats", courseHandler.Stats)
		api.GET("/stats/history", historyHandler.List)
		api.GET("/limits", Limits(deps.Limiter))

		// Live updates
		api.GET("/stream", streamHandler.Stream)
	}

	return r
}
