package store

import (
	"context"
	"sync"
	"time"

	"github.com/studytracker/api/internal/model"
)

// MemoryGateway keeps courses in process memory.
type MemoryGateway struct {
	mu       sync.RWMutex
	courses  map[string]model.Course
	order    []string
	notifier Notifier
	now      func() time.Time
}

func NewMemoryGateway(notifier Notifier) *MemoryGateway {
	if notifier == nil {
		notifier = NewLocalNotifier()
	}
	return &MemoryGateway{
		courses:  make(map[string]model.Course),
		notifier: notifier,
		now:      time.Now,
	}
}

func (g *MemoryGateway) Subscribe(ctx context.Context, path string) (*Subscription, error) {
	return subscribe(ctx, g.notifier, path, g.load)
}

func (g *MemoryGateway) AppendChild(ctx context.Context, path string, course model.Course) (string, error) {
	if err := collectionPath(path); err != nil {
		return "", err
	}

	id := newCourseID()
	course = prepareNew(course, id, g.now())

	g.mu.Lock()
	g.courses[id] = cloneCourse(course)
	g.order = append(g.order, id)
	g.mu.Unlock()

	return id, g.notifier.Notify(ctx, CoursePath(id))
}

func (g *MemoryGateway) Update(ctx context.Context, path string, patch Patch) error {
	id, err := nodeID(path)
	if err != nil {
		return err
	}

	g.mu.Lock()
	course, ok := g.courses[id]
	if !ok {
		g.mu.Unlock()
		return ErrNotFound
	}
	patch.apply(&course)
	course.UpdatedAt = g.now()
	g.courses[id] = course
	g.mu.Unlock()

	return g.notifier.Notify(ctx, path)
}

func (g *MemoryGateway) Remove(ctx context.Context, path string) error {
	id, err := splitPath(path)
	if err != nil {
		return err
	}

	g.mu.Lock()
	if id == "" {
		g.courses = make(map[string]model.Course)
		g.order = nil
	} else {
		if _, ok := g.courses[id]; !ok {
			g.mu.Unlock()
			return ErrNotFound
		}
		delete(g.courses, id)
		for i, existing := range g.order {
			if existing == id {
				g.order = append(g.order[:i:i], g.order[i+1:]...)
				break
			}
		}
	}
	g.mu.Unlock()

	return g.notifier.Notify(ctx, path)
}

func (g *MemoryGateway) Close() error {
	return g.notifier.Close()
}

func (g *MemoryGateway) load(context.Context) (model.Collection, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	snapshot := make(model.Collection, 0, len(g.order))
	for _, id := range g.order {
		snapshot = append(snapshot, cloneCourse(g.courses[id]))
	}
	return snapshot, nil
}

// cloneCourse copies the sequences so snapshots never share backing arrays
// with the store.
func cloneCourse(c model.Course) model.Course {
	c.StudySessions = append(model.StudySessions{}, c.StudySessions...)
	c.QCMExams = append(model.QCMExams{}, c.QCMExams...)
	return c
}
