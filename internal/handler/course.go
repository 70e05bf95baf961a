package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studytracker/api/internal/middleware"
	"github.com/studytracker/api/internal/model"
	"github.com/studytracker/api/internal/progress"
	"github.com/studytracker/api/internal/tracker"
)

// settleTimeout bounds how long a write waits for its snapshot before the
// response is sent.
const settleTimeout = 2 * time.Second

type CourseHandler struct {
	tracker       *tracker.Tracker
	defaultTarget int
}

func NewCourseHandler(t *tracker.Tracker, defaultTarget int) *CourseHandler {
	return &CourseHandler{tracker: t, defaultTarget: defaultTarget}
}

type CreateCourseRequest struct {
	Name string `json:"name"`
}

type AddSessionRequest struct {
	Duration numberText `json:"duration"`
}

type AddExamRequest struct {
	Score numberText `json:"score"`
}

type SetTargetRequest struct {
	Target *int `json:"target" binding:"required"`
}

// numberText accepts a JSON number or string and keeps the raw text, so the
// tracker decides what counts as a number.
type numberText string

func (n *numberText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = numberText(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = numberText(num.String())
	return nil
}

func (h *CourseHandler) List(c *gin.Context) {
	report := progress.BuildReport(h.tracker.Snapshot(), h.defaultTarget)
	c.JSON(http.StatusOK, report)
}

func (h *CourseHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, progress.TotalsAcross(h.tracker.Snapshot()))
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	id, err := h.tracker.AddCourse(c.Request.Context(), req.Name)
	if err != nil {
		intentError(c, "course.create", err)
		return
	}
	middleware.RecordIntent("course.create", "ok")

	h.settle(c, func(courses model.Collection) bool {
		_, ok := courses.Find(id)
		return ok
	})
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *CourseHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.tracker.DeleteCourse(c.Request.Context(), id); err != nil {
		intentError(c, "course.delete", err)
		return
	}
	middleware.RecordIntent("course.delete", "ok")

	h.settle(c, func(courses model.Collection) bool {
		_, ok := courses.Find(id)
		return !ok
	})
	c.JSON(http.StatusOK, gin.H{"message": "Course deleted"})
}

func (h *CourseHandler) AddSession(c *gin.Context) {
	id := c.Param("id")

	var req AddSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	before := h.count(id, progress.SessionCount)
	session, err := h.tracker.AddStudySession(c.Request.Context(), id, string(req.Duration))
	if err != nil {
		intentError(c, "session.add", err)
		return
	}
	middleware.RecordIntent("session.add", "ok")

	h.settle(c, func(courses model.Collection) bool {
		course, ok := courses.Find(id)
		return !ok || progress.SessionCount(course) > before
	})
	c.JSON(http.StatusCreated, session)
}

func (h *CourseHandler) AddExam(c *gin.Context) {
	id := c.Param("id")

	var req AddExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	examCount := func(course model.Course) int { return len(course.QCMExams) }
	before := h.count(id, examCount)
	exam, err := h.tracker.AddExam(c.Request.Context(), id, string(req.Score))
	if err != nil {
		intentError(c, "exam.add", err)
		return
	}
	middleware.RecordIntent("exam.add", "ok")

	h.settle(c, func(courses model.Collection) bool {
		course, ok := courses.Find(id)
		return !ok || examCount(course) > before
	})
	c.JSON(http.StatusCreated, exam)
}

func (h *CourseHandler) SetTarget(c *gin.Context) {
	id := c.Param("id")

	var req SetTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target is required"})
		return
	}

	if err := h.tracker.SetSessionTarget(c.Request.Context(), id, *req.Target); err != nil {
		intentError(c, "course.target", err)
		return
	}
	middleware.RecordIntent("course.target", "ok")

	h.settle(c, func(courses model.Collection) bool {
		course, ok := courses.Find(id)
		return !ok || course.SessionTarget == *req.Target
	})
	c.JSON(http.StatusOK, gin.H{"id": id, "target": *req.Target})
}

func (h *CourseHandler) Chart(c *gin.Context) {
	course, ok := h.tracker.Snapshot().Find(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	series := progress.ChartSeries(course)
	c.JSON(http.StatusOK, gin.H{
		"id":        course.ID,
		"name":      course.Name,
		"studyData": series.Study,
		"examData":  series.Exam,
	})
}

func (h *CourseHandler) count(id string, fn func(model.Course) int) int {
	course, _ := h.tracker.Snapshot().Find(id)
	return fn(course)
}

// settle waits until the store has echoed the write back, so the next read
// from this client reflects it. Timing out is not an error: the write stands.
func (h *CourseHandler) settle(c *gin.Context, match func(model.Collection) bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), settleTimeout)
	defer cancel()

	if _, err := h.tracker.Await(ctx, match); err != nil {
		log.Printf("Warning: snapshot not settled after %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
}

func intentError(c *gin.Context, intent string, err error) {
	switch {
	case errors.Is(err, tracker.ErrInvalidInput):
		middleware.RecordIntent(intent, "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, tracker.ErrCourseNotFound):
		middleware.RecordIntent(intent, "not_found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
	default:
		middleware.RecordIntent(intent, "error")
		log.Printf("Failed to apply %s: %v", intent, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save changes"})
	}
}
