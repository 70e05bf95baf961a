package scheduler

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studytracker/api/internal/model"
)

type staticSnapshot model.Collection

func (s staticSnapshot) Snapshot() model.Collection { return model.Collection(s) }

func TestBuildDailyProgress(t *testing.T) {
	courses := model.Collection{
		{
			ID:            "a",
			Name:          "Algebra",
			StudySessions: model.StudySessions{{Date: "2024-05-01", Duration: 30}, {Date: "2024-05-02", Duration: 15}},
			QCMExams:      model.QCMExams{{Date: "2024-05-02", Score: 80}, {Date: "2024-05-03", Score: 90}},
		},
		{
			ID:            "b",
			Name:          "Botany",
			SessionTarget: 6,
			QCMExams:      model.QCMExams{{Date: "2024-05-03", Score: 50}},
		},
	}
	at := time.Date(2024, 5, 3, 22, 30, 0, 0, time.FixedZone("UTC-4", -4*3600))

	row, err := BuildDailyProgress(courses, at, 4)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC), row.Date)
	assert.Equal(t, 2, row.CourseCount)
	assert.Equal(t, 2, row.TotalStudySessions)
	assert.InDelta(t, 220.0/3, row.AverageQCMScore, 1e-9)

	var breakdown []model.CourseProgress
	require.NoError(t, json.Unmarshal(row.Courses, &breakdown))
	require.Len(t, breakdown, 2)
	assert.Equal(t, model.CourseProgress{
		CourseID: "a", Name: "Algebra", Sessions: 2, Target: 4,
		AverageScore: 85, StudyMinutes: 45, ExamsRecorded: 2,
	}, breakdown[0])
	assert.Equal(t, 6, breakdown[1].Target)
	assert.Equal(t, 0, breakdown[1].Sessions)
}

func TestBuildDailyProgressEmpty(t *testing.T) {
	row, err := BuildDailyProgress(nil, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 4)
	require.NoError(t, err)

	assert.Equal(t, 0, row.CourseCount)
	assert.Equal(t, 0, row.TotalStudySessions)
	assert.Equal(t, 0.0, row.AverageQCMScore)
	assert.JSONEq(t, `[]`, string(row.Courses))
}

func TestRecorderStartStop(t *testing.T) {
	r := NewProgressRecorder(nil, staticSnapshot{}, RecorderConfig{Interval: time.Hour})

	done := make(chan struct{})
	go func() {
		r.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool {
		return r.GetStatus()["running"] == true
	}, time.Second, 5*time.Millisecond)

	r.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("recorder did not stop")
	}

	status := r.GetStatus()
	assert.Equal(t, false, status["running"])
	assert.Equal(t, "1h0m0s", status["interval"])
	assert.Equal(t, 0, status["recordCount"])
	assert.NotContains(t, status, "lastRecorded")
}

func TestRecorderStopsWithContext(t *testing.T) {
	r := NewProgressRecorder(nil, staticSnapshot{}, RecorderConfig{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool {
		return r.GetStatus()["running"] == true
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("recorder ignored context")
	}
	assert.Equal(t, false, r.GetStatus()["running"])
}
