package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/studytracker/api/internal/bootstrap"
	"github.com/studytracker/api/internal/config"
	"github.com/studytracker/api/internal/model"
	"github.com/studytracker/api/internal/scheduler"
	"github.com/studytracker/api/internal/store"
)

type snapshot model.Collection

func (s snapshot) Snapshot() model.Collection { return model.Collection(s) }

func main() {
	// Parse command line flags
	dryRun := flag.Bool("dry-run", false, "Show what would be recorded without writing it")
	flag.Parse()

	startTime := time.Now()
	log.Println("Starting daily progress record...")

	cfg := config.Load()
	// The daily_progress table lives in postgres whatever the store driver
	cfg.ProgressEnabled = true

	env, err := bootstrap.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer env.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	courses, err := store.FirstSnapshot(ctx, env.Gateway)
	if err != nil {
		log.Fatalf("Failed to read courses: %v", err)
	}

	if *dryRun {
		row, err := scheduler.BuildDailyProgress(courses, time.Now(), cfg.DefaultSessionTarget)
		if err != nil {
			log.Fatalf("Failed to build progress row: %v", err)
		}
		log.Println("[DRY RUN] Would record:")
		log.Printf("  Date: %s", row.Date.Format(model.DateLayout))
		log.Printf("  Courses: %d", row.CourseCount)
		log.Printf("  Total study sessions: %d", row.TotalStudySessions)
		log.Printf("  Average QCM score: %.2f", row.AverageQCMScore)
		log.Printf("  Breakdown: %s", string(row.Courses))
		return
	}

	recorder := scheduler.NewProgressRecorder(env.DB, snapshot(courses), scheduler.RecorderConfig{
		DefaultTarget: cfg.DefaultSessionTarget,
	})
	if err := recorder.RecordOnce(ctx); err != nil {
		log.Fatalf("Failed to record progress: %v", err)
	}

	log.Printf("Daily progress recorded in %v", time.Since(startTime))
}
