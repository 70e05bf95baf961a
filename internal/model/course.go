package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// DateLayout is the calendar-date format used for session and exam dates.
const DateLayout = "2006-01-02"

// StudySession is one logged block of study time, in minutes.
type StudySession struct {
	Date     string  `json:"date"`
	Duration float64 `json:"duration"`
}

// QCMExam is one recorded quiz or exam score.
type QCMExam struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

// StudySessions implements SQL scanner/valuer for JSONB
type StudySessions []StudySession

// Value implements driver.Valuer for JSONB serialization
func (s StudySessions) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]StudySession{})
	}
	return json.Marshal([]StudySession(s))
}

// Scan implements sql.Scanner for JSONB deserialization
func (s *StudySessions) Scan(value interface{}) error {
	return scanJSON(value, s, "StudySessions")
}

// QCMExams implements SQL scanner/valuer for JSONB
type QCMExams []QCMExam

// Value implements driver.Valuer for JSONB serialization
func (q QCMExams) Value() (driver.Value, error) {
	if q == nil {
		return json.Marshal([]QCMExam{})
	}
	return json.Marshal([]QCMExam(q))
}

// Scan implements sql.Scanner for JSONB deserialization
func (q *QCMExams) Scan(value interface{}) error {
	return scanJSON(value, q, "QCMExams")
}

func scanJSON(value interface{}, dest interface{}, name string) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return errors.New("failed to unmarshal " + name + ": unsupported column type")
	}
}

// Course is a tracked course together with its append-only session and exam
// sequences. A missing sequence is treated the same as an empty one.
type Course struct {
	ID            string        `gorm:"primaryKey;size:36" json:"id"`
	Name          string        `gorm:"not null;size:255" json:"name"`
	SessionTarget int           `gorm:"not null;default:0" json:"sessionTarget"`
	StudySessions StudySessions `gorm:"type:jsonb;not null;default:'[]'" json:"studySessions"`
	QCMExams      QCMExams      `gorm:"column:qcm_exams;type:jsonb;not null;default:'[]'" json:"qcmExams"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func (Course) TableName() string {
	return "courses"
}

// Collection is a point-in-time copy of every course, in store iteration order.
type Collection []Course

// Find returns the course with the given id.
func (c Collection) Find(id string) (Course, bool) {
	for _, course := range c {
		if course.ID == id {
			return course, true
		}
	}
	return Course{}, false
}

// IDs returns the course ids in collection order.
func (c Collection) IDs() []string {
	ids := make([]string, 0, len(c))
	for _, course := range c {
		ids = append(ids, course.ID)
	}
	return ids
}
