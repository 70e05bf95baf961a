package progress

import "github.com/studytracker/api/internal/model"

// Summary is one row of the course table.
type Summary struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Sessions       int     `json:"sessions"`
	Target         int     `json:"target"`
	Progress       string  `json:"progress"`
	StudyMinutes   float64 `json:"studyMinutes"`
	AverageScore   float64 `json:"averageScore"`
	AverageDisplay string  `json:"averageDisplay"`
	HasExams       bool    `json:"hasExams"`
}

// Summarize builds the table row for a course. defaultTarget applies to
// courses without their own target.
func Summarize(course model.Course, defaultTarget int) Summary {
	count := SessionCount(course)
	target := Target(course, defaultTarget)
	avg, ok := ExamAverage(course)
	return Summary{
		ID:             course.ID,
		Name:           course.Name,
		Sessions:       count,
		Target:         target,
		Progress:       FormatProgress(count, target),
		StudyMinutes:   StudyMinutes(course),
		AverageScore:   avg,
		AverageDisplay: FormatScore(avg),
		HasExams:       ok,
	}
}

// SummarizeAll builds one row per course, keeping collection order.
func SummarizeAll(courses model.Collection, defaultTarget int) []Summary {
	rows := make([]Summary, 0, len(courses))
	for _, course := range courses {
		rows = append(rows, Summarize(course, defaultTarget))
	}
	return rows
}

// Report is the table plus collection totals, as served to views.
type Report struct {
	Courses []Summary `json:"courses"`
	Totals  Totals    `json:"totals"`
}

// BuildReport summarizes every course and the whole collection.
func BuildReport(courses model.Collection, defaultTarget int) Report {
	return Report{
		Courses: SummarizeAll(courses, defaultTarget),
		Totals:  TotalsAcross(courses),
	}
}
