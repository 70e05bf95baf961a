// Package store is the gateway to the path-addressed course store. The
// collection lives at "courses" and each course at "courses/{id}".
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/studytracker/api/internal/model"
)

const CoursesPath = "courses"

var (
	ErrNotFound    = errors.New("store: node not found")
	ErrInvalidPath = errors.New("store: invalid path")
)

// Gateway is implemented by every store driver.
type Gateway interface {
	// Subscribe streams full-collection snapshots of path until ctx is done
	// or the subscription is closed.
	Subscribe(ctx context.Context, path string) (*Subscription, error)
	// AppendChild stores course under path with a store-assigned id.
	AppendChild(ctx context.Context, path string, course model.Course) (string, error)
	// Update merges the fields set in patch into the node at path.
	Update(ctx context.Context, path string, patch Patch) error
	// Remove deletes the node at path and everything below it.
	Remove(ctx context.Context, path string) error
	Close() error
}

// Patch lists the fields of a course to overwrite. Nil fields are left
// untouched; a non-nil sequence replaces the stored one entirely.
type Patch struct {
	Name          *string
	SessionTarget *int
	StudySessions model.StudySessions
	QCMExams      model.QCMExams
}

func (p Patch) apply(c *model.Course) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.SessionTarget != nil {
		c.SessionTarget = *p.SessionTarget
	}
	if p.StudySessions != nil {
		c.StudySessions = append(model.StudySessions{}, p.StudySessions...)
	}
	if p.QCMExams != nil {
		c.QCMExams = append(model.QCMExams{}, p.QCMExams...)
	}
}

func (p Patch) empty() bool {
	return p.Name == nil && p.SessionTarget == nil && p.StudySessions == nil && p.QCMExams == nil
}

// CoursePath returns the path of a single course.
func CoursePath(id string) string {
	return CoursesPath + "/" + id
}

// splitPath returns the course id addressed by path, or "" for the
// collection itself.
func splitPath(path string) (string, error) {
	path = strings.Trim(path, "/")
	if path == CoursesPath {
		return "", nil
	}
	id, ok := strings.CutPrefix(path, CoursesPath+"/")
	if !ok || id == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	return id, nil
}

func nodeID(path string) (string, error) {
	id, err := splitPath(path)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("%w: %q is not a course", ErrInvalidPath, path)
	}
	return id, nil
}

func collectionPath(path string) error {
	id, err := splitPath(path)
	if err != nil {
		return err
	}
	if id != "" {
		return fmt.Errorf("%w: %q is not a collection", ErrInvalidPath, path)
	}
	return nil
}

// newCourseID returns a time-ordered id so every driver iterates courses in
// creation order.
func newCourseID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func prepareNew(course model.Course, id string, now time.Time) model.Course {
	course.ID = id
	if course.StudySessions == nil {
		course.StudySessions = model.StudySessions{}
	}
	if course.QCMExams == nil {
		course.QCMExams = model.QCMExams{}
	}
	course.CreatedAt = now
	course.UpdatedAt = now
	return course
}
