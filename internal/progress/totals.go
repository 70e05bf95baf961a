package progress

import "github.com/studytracker/api/internal/model"

// Totals aggregates a whole collection. ExamCount and ScoreSum are kept so
// that totals of disjoint collections can be combined exactly.
type Totals struct {
	TotalStudySessions int     `json:"totalStudySessions"`
	AverageQCMScore    float64 `json:"averageQcmScore"`
	ExamCount          int     `json:"examCount"`
	ScoreSum           float64 `json:"-"`
}

// TotalsAcross sums session counts over every course and averages every exam
// score in the collection. The average is 0 when the collection has no exams.
func TotalsAcross(courses model.Collection) Totals {
	var t Totals
	for _, course := range courses {
		t.TotalStudySessions += SessionCount(course)
		for _, exam := range course.QCMExams {
			t.ScoreSum += exam.Score
		}
		t.ExamCount += len(course.QCMExams)
	}
	t.AverageQCMScore = average(t.ScoreSum, t.ExamCount)
	return t
}

// Combine merges totals of two disjoint collections. Averages are recombined
// through their weighted sums.
func Combine(a, b Totals) Totals {
	t := Totals{
		TotalStudySessions: a.TotalStudySessions + b.TotalStudySessions,
		ExamCount:          a.ExamCount + b.ExamCount,
		ScoreSum:           a.ScoreSum + b.ScoreSum,
	}
	t.AverageQCMScore = average(t.ScoreSum, t.ExamCount)
	return t
}

func average(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
