package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studytracker/api/internal/bootstrap"
	"github.com/studytracker/api/internal/config"
	"github.com/studytracker/api/internal/handler"
	"github.com/studytracker/api/internal/limiter"
	"github.com/studytracker/api/internal/middleware"
	"github.com/studytracker/api/internal/model"
	"github.com/studytracker/api/internal/scheduler"
	"github.com/studytracker/api/internal/tracker"
)

func main() {
	cfg := config.Load()

	env, err := bootstrap.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Follow the course collection
	courseTracker := tracker.New(env.Gateway, tracker.OnSnapshot(func(courses model.Collection) {
		middleware.RecordSnapshot(len(courses))
	}))
	go func() {
		if err := courseTracker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("[Tracker] Subscription failed: %v", err)
		}
	}()

	// Rate limiting needs redis; without it writes are not limited
	var writeLimiter *limiter.Limiter
	if cfg.RateLimitEnabled && env.Redis != nil {
		writeLimiter = limiter.NewLimiter(env.Redis)
		log.Println("Write rate limiting enabled")
	}

	// Initialize and start daily progress recorder if enabled
	var recorder *scheduler.ProgressRecorder
	if cfg.ProgressEnabled && env.DB != nil {
		recorder = scheduler.NewProgressRecorder(env.DB, courseTracker, scheduler.RecorderConfig{
			Interval:      cfg.ProgressInterval,
			DefaultTarget: cfg.DefaultSessionTarget,
		})
		go recorder.Start(ctx)
		log.Println("Daily progress recorder started")
	}

	r := handler.NewRouter(handler.Deps{
		Tracker:       courseTracker,
		Gateway:       env.Gateway,
		DB:            env.DB,
		Limiter:       writeLimiter,
		DefaultTarget: cfg.DefaultSessionTarget,
		Status: func(c *gin.Context) {
			if recorder != nil {
				c.JSON(200, recorder.GetStatus())
			} else {
				c.JSON(200, gin.H{"enabled": false, "message": "Progress recorder is disabled"})
			}
		},
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("API server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	if recorder != nil {
		recorder.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
