package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/studytracker/api/internal/model"
)

// GormGateway stores courses in the courses table, one row per course with
// the sequences held in JSONB columns.
type GormGateway struct {
	db       *gorm.DB
	notifier Notifier
}

func NewGormGateway(db *gorm.DB, notifier Notifier) *GormGateway {
	if notifier == nil {
		notifier = NewLocalNotifier()
	}
	return &GormGateway{db: db, notifier: notifier}
}

func (g *GormGateway) Subscribe(ctx context.Context, path string) (*Subscription, error) {
	return subscribe(ctx, g.notifier, path, g.load)
}

func (g *GormGateway) AppendChild(ctx context.Context, path string, course model.Course) (string, error) {
	if err := collectionPath(path); err != nil {
		return "", err
	}

	course = prepareNew(course, newCourseID(), time.Now())
	if err := g.db.WithContext(ctx).Create(&course).Error; err != nil {
		return "", err
	}

	return course.ID, g.notifier.Notify(ctx, CoursePath(course.ID))
}

func (g *GormGateway) Update(ctx context.Context, path string, patch Patch) error {
	id, err := nodeID(path)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.SessionTarget != nil {
		updates["session_target"] = *patch.SessionTarget
	}
	if patch.StudySessions != nil {
		updates["study_sessions"] = patch.StudySessions
	}
	if patch.QCMExams != nil {
		updates["qcm_exams"] = patch.QCMExams
	}

	result := g.db.WithContext(ctx).Model(&model.Course{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return g.notifier.Notify(ctx, path)
}

func (g *GormGateway) Remove(ctx context.Context, path string) error {
	id, err := splitPath(path)
	if err != nil {
		return err
	}

	if id == "" {
		err = g.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Course{}).Error
		if err != nil {
			return err
		}
		return g.notifier.Notify(ctx, path)
	}

	result := g.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Course{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return g.notifier.Notify(ctx, path)
}

func (g *GormGateway) Close() error {
	return g.notifier.Close()
}

func (g *GormGateway) load(ctx context.Context) (model.Collection, error) {
	var courses []model.Course
	if err := g.db.WithContext(ctx).Order("created_at, id").Find(&courses).Error; err != nil {
		return nil, err
	}
	return model.Collection(courses), nil
}
