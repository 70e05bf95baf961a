package model

import (
	"time"

	"gorm.io/datatypes"
)

// CourseProgress is a single course's figures inside a DailyProgress row
type CourseProgress struct {
	CourseID      string  `json:"courseId"`
	Name          string  `json:"name"`
	Sessions      int     `json:"sessions"`
	Target        int     `json:"target"`
	AverageScore  float64 `json:"averageScore"`
	StudyMinutes  float64 `json:"studyMinutes"`
	ExamsRecorded int     `json:"examsRecorded"`
}

// DailyProgress stores one snapshot of collection totals per date
// One row = one date + N courses (as JSONB array)
type DailyProgress struct {
	ID                 int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Date               time.Time      `gorm:"type:date;not null;uniqueIndex:idx_daily_progress_date" json:"date"`
	CourseCount        int            `gorm:"not null" json:"courseCount"`
	TotalStudySessions int            `gorm:"not null" json:"totalStudySessions"`
	AverageQCMScore    float64        `gorm:"not null" json:"averageQcmScore"`
	Courses            datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'" json:"courses"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (DailyProgress) TableName() string {
	return "daily_progress"
}
