package database

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/studytracker/api/internal/config"
	"github.com/studytracker/api/internal/model"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Course{},
		&model.DailyProgress{},
	)
	if err != nil {
		return err
	}

	// Snapshot loads order by creation
	db.Exec("CREATE INDEX IF NOT EXISTS idx_courses_created_at ON courses(created_at, id)")

	return nil
}
