// Package progress derives display-ready metrics and chart series from a
// snapshot of courses. Every function is pure and never fails: missing
// sequences count as empty and empty averages are reported as zero.
package progress

import (
	"fmt"

	"github.com/studytracker/api/internal/model"
)

// DefaultSessionTarget is the number of sessions a course aims for when it
// has no target of its own.
const DefaultSessionTarget = 4

// SessionCount returns the number of study sessions logged for the course.
func SessionCount(course model.Course) int {
	return len(course.StudySessions)
}

// AverageExamScore returns the mean exam score, or 0 when no exam is recorded.
func AverageExamScore(course model.Course) float64 {
	avg, _ := ExamAverage(course)
	return avg
}

// ExamAverage is AverageExamScore with an explicit flag telling a real zero
// average apart from "no exams yet".
func ExamAverage(course model.Course) (float64, bool) {
	if len(course.QCMExams) == 0 {
		return 0, false
	}
	var sum float64
	for _, exam := range course.QCMExams {
		sum += exam.Score
	}
	return sum / float64(len(course.QCMExams)), true
}

// StudyMinutes returns the total logged study time.
func StudyMinutes(course model.Course) float64 {
	var total float64
	for _, session := range course.StudySessions {
		total += session.Duration
	}
	return total
}

// Target returns the course's session target, falling back to fallback and
// then DefaultSessionTarget when unset.
func Target(course model.Course, fallback int) int {
	if course.SessionTarget > 0 {
		return course.SessionTarget
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultSessionTarget
}

// FormatProgress renders a session count against its target, e.g. "3/4".
func FormatProgress(count, target int) string {
	return fmt.Sprintf("%d/%d", count, target)
}

// FormatScore renders a score with two decimals, e.g. "85.00".
func FormatScore(score float64) string {
	return fmt.Sprintf("%.2f", score)
}
