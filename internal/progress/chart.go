package progress

import (
	"fmt"

	"github.com/studytracker/api/internal/model"
)

// StudyPoint is one bar of the study-duration chart.
type StudyPoint struct {
	Label    string  `json:"name"`
	Duration float64 `json:"duration"`
}

// ExamPoint is one bar of the exam-score chart.
type ExamPoint struct {
	Label string  `json:"name"`
	Score float64 `json:"score"`
}

// Series holds the two independent bar-chart series of a course.
type Series struct {
	Study []StudyPoint `json:"studyData"`
	Exam  []ExamPoint  `json:"examData"`
}

// ChartSeries labels sessions "Session 1", "Session 2", ... and exams
// "Exam 1", "Exam 2", ... in recorded order.
func ChartSeries(course model.Course) Series {
	series := Series{
		Study: make([]StudyPoint, 0, len(course.StudySessions)),
		Exam:  make([]ExamPoint, 0, len(course.QCMExams)),
	}
	for i, session := range course.StudySessions {
		series.Study = append(series.Study, StudyPoint{
			Label:    fmt.Sprintf("Session %d", i+1),
			Duration: session.Duration,
		})
	}
	for i, exam := range course.QCMExams {
		series.Exam = append(series.Exam, ExamPoint{
			Label: fmt.Sprintf("Exam %d", i+1),
			Score: exam.Score,
		})
	}
	return series
}
