package tracker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/studytracker/api/internal/model"
	"github.com/studytracker/api/internal/store"
)

// AddCourse creates a course with empty session and exam lists and returns
// its store-assigned id.
func (t *Tracker) AddCourse(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: course name is required", ErrInvalidInput)
	}

	return t.gateway.AppendChild(ctx, store.CoursesPath, model.Course{
		Name:          name,
		StudySessions: model.StudySessions{},
		QCMExams:      model.QCMExams{},
	})
}

// AddStudySession logs a session dated today for a course of the current
// snapshot. duration is the raw user input in minutes.
func (t *Tracker) AddStudySession(ctx context.Context, courseID, duration string) (model.StudySession, error) {
	minutes, err := parseNumber("duration", duration)
	if err != nil {
		return model.StudySession{}, err
	}
	if minutes < 0 {
		return model.StudySession{}, fmt.Errorf("%w: duration must not be negative", ErrInvalidInput)
	}

	course, err := t.selectCourse(courseID)
	if err != nil {
		return model.StudySession{}, err
	}

	session := model.StudySession{Date: t.today(), Duration: minutes}
	sessions := append(append(model.StudySessions{}, course.StudySessions...), session)

	err = t.gateway.Update(ctx, store.CoursePath(course.ID), store.Patch{StudySessions: sessions})
	return session, storeError(err)
}

// AddExam records a score dated today for a course of the current snapshot.
func (t *Tracker) AddExam(ctx context.Context, courseID, score string) (model.QCMExam, error) {
	value, err := parseNumber("score", score)
	if err != nil {
		return model.QCMExam{}, err
	}

	course, err := t.selectCourse(courseID)
	if err != nil {
		return model.QCMExam{}, err
	}

	exam := model.QCMExam{Date: t.today(), Score: value}
	exams := append(append(model.QCMExams{}, course.QCMExams...), exam)

	err = t.gateway.Update(ctx, store.CoursePath(course.ID), store.Patch{QCMExams: exams})
	return exam, storeError(err)
}

// SetSessionTarget changes how many sessions a course aims for. Zero falls
// back to the default target.
func (t *Tracker) SetSessionTarget(ctx context.Context, courseID string, target int) error {
	if target < 0 {
		return fmt.Errorf("%w: target must not be negative", ErrInvalidInput)
	}
	if _, err := t.selectCourse(courseID); err != nil {
		return err
	}
	return storeError(t.gateway.Update(ctx, store.CoursePath(courseID), store.Patch{SessionTarget: &target}))
}

// DeleteCourse removes a course with all of its sessions and exams.
func (t *Tracker) DeleteCourse(ctx context.Context, courseID string) error {
	if strings.TrimSpace(courseID) == "" {
		return ErrCourseNotFound
	}
	return storeError(t.gateway.Remove(ctx, store.CoursePath(courseID)))
}

func (t *Tracker) selectCourse(id string) (model.Course, error) {
	course, ok := t.Snapshot().Find(id)
	if !ok {
		return model.Course{}, ErrCourseNotFound
	}
	return course, nil
}

func (t *Tracker) today() string {
	return t.now().UTC().Format(model.DateLayout)
}

func parseNumber(field, raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidInput, field)
	}
	return value, nil
}

func storeError(err error) error {
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidPath) {
		return ErrCourseNotFound
	}
	return err
}
