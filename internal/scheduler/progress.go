package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studytracker/api/internal/model"
	"github.com/studytracker/api/internal/progress"
)

// Snapshotter hands out the current course collection.
type Snapshotter interface {
	Snapshot() model.Collection
}

// ProgressRecorder periodically writes the day's totals to daily_progress.
// Recording the same date twice overwrites the earlier row.
type ProgressRecorder struct {
	db            *gorm.DB
	source        Snapshotter
	interval      time.Duration
	defaultTarget int
	now           func() time.Time

	running      bool
	recordCount  int
	lastRecorded time.Time
	lastError    string
	mu           sync.Mutex
	stopChan     chan struct{}
}

type RecorderConfig struct {
	Interval      time.Duration
	DefaultTarget int
}

func NewProgressRecorder(db *gorm.DB, source Snapshotter, cfg RecorderConfig) *ProgressRecorder {
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}
	if cfg.DefaultTarget <= 0 {
		cfg.DefaultTarget = progress.DefaultSessionTarget
	}

	return &ProgressRecorder{
		db:            db,
		source:        source,
		interval:      cfg.Interval,
		defaultTarget: cfg.DefaultTarget,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
}

func (r *ProgressRecorder) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.mu.Unlock()

	log.Printf("[Recorder] Starting with interval %v", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[Recorder] Context cancelled, stopping")
			r.markStopped()
			return
		case <-r.stopChan:
			log.Println("[Recorder] Stop signal received")
			return
		case <-ticker.C:
			if err := r.RecordOnce(ctx); err != nil {
				log.Printf("[Recorder] Error recording progress: %v", err)
			}
		}
	}
}

func (r *ProgressRecorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		close(r.stopChan)
		r.running = false
		log.Println("[Recorder] Stopped")
	}
}

func (r *ProgressRecorder) markStopped() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

// RecordOnce upserts the row for the current UTC date from the current
// snapshot.
func (r *ProgressRecorder) RecordOnce(ctx context.Context) error {
	row, err := BuildDailyProgress(r.source.Snapshot(), r.now(), r.defaultTarget)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"course_count",
			"total_study_sessions",
			"average_qcm_score",
			"courses",
			"updated_at",
		}),
	}).Create(&row).Error

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.lastError = err.Error()
		return fmt.Errorf("upsert daily progress: %w", err)
	}
	r.recordCount++
	r.lastRecorded = r.now()
	r.lastError = ""

	log.Printf("[Recorder] Recorded %s: %d courses, %d sessions",
		row.Date.Format(model.DateLayout), row.CourseCount, row.TotalStudySessions)
	return nil
}

// BuildDailyProgress turns a snapshot into the row stored for the UTC date
// of at.
func BuildDailyProgress(courses model.Collection, at time.Time, defaultTarget int) (model.DailyProgress, error) {
	totals := progress.TotalsAcross(courses)

	breakdown := make([]model.CourseProgress, 0, len(courses))
	for _, course := range courses {
		summary := progress.Summarize(course, defaultTarget)
		breakdown = append(breakdown, model.CourseProgress{
			CourseID:      course.ID,
			Name:          course.Name,
			Sessions:      summary.Sessions,
			Target:        summary.Target,
			AverageScore:  summary.AverageScore,
			StudyMinutes:  summary.StudyMinutes,
			ExamsRecorded: len(course.QCMExams),
		})
	}

	coursesJSON, err := json.Marshal(breakdown)
	if err != nil {
		return model.DailyProgress{}, err
	}

	at = at.UTC()
	return model.DailyProgress{
		Date:               time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC),
		CourseCount:        len(courses),
		TotalStudySessions: totals.TotalStudySessions,
		AverageQCMScore:    totals.AverageQCMScore,
		Courses:            datatypes.JSON(coursesJSON),
		UpdatedAt:          at,
	}, nil
}

// GetStatus returns current recorder status
func (r *ProgressRecorder) GetStatus() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := map[string]interface{}{
		"running":     r.running,
		"interval":    r.interval.String(),
		"recordCount": r.recordCount,
	}
	if !r.lastRecorded.IsZero() {
		status["lastRecorded"] = r.lastRecorded.UTC().Format(time.RFC3339)
	}
	if r.lastError != "" {
		status["lastError"] = r.lastError
	}
	return status
}
