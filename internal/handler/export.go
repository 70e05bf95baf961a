package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/studytracker/api/internal/model"
	"github.com/studytracker/api/internal/progress"
	"github.com/studytracker/api/internal/tracker"
)

type ExportHandler struct {
	tracker       *tracker.Tracker
	defaultTarget int
}

func NewExportHandler(t *tracker.Tracker, defaultTarget int) *ExportHandler {
	return &ExportHandler{tracker: t, defaultTarget: defaultTarget}
}

func (h *ExportHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	course, ok := h.tracker.Snapshot().Find(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
		return
	}

	switch format {
	case "json":
		h.exportJSON(c, course)
	case "csv":
		h.exportCSV(c, course)
	case "md", "markdown":
		h.exportMarkdown(c, course)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format. Use json, csv, or md"})
	}
}

func (h *ExportHandler) exportJSON(c *gin.Context, course model.Course) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=course-%s.json", course.ID))
	c.JSON(http.StatusOK, gin.H{
		"course":  course,
		"summary": progress.Summarize(course, h.defaultTarget),
	})
}

func (h *ExportHandler) exportCSV(c *gin.Context, course model.Course) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	// Header
	writer.Write([]string{"Kind", "Label", "Date", "Value"})

	series := progress.ChartSeries(course)
	for i, point := range series.Study {
		writer.Write([]string{
			"session",
			point.Label,
			course.StudySessions[i].Date,
			formatNumber(point.Duration),
		})
	}
	for i, point := range series.Exam {
		writer.Write([]string{
			"exam",
			point.Label,
			course.QCMExams[i].Date,
			formatNumber(point.Score),
		})
	}

	writer.Flush()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=course-%s.csv", course.ID))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *ExportHandler) exportMarkdown(c *gin.Context, course model.Course) {
	var buf bytes.Buffer
	summary := progress.Summarize(course, h.defaultTarget)

	buf.WriteString(fmt.Sprintf("# %s\n\n", course.Name))
	buf.WriteString(fmt.Sprintf("**Study sessions:** %s\n\n", summary.Progress))
	buf.WriteString(fmt.Sprintf("**Study time:** %s min\n\n", formatNumber(summary.StudyMinutes)))
	buf.WriteString(fmt.Sprintf("**Avg. QCM score:** %s\n\n", summary.AverageDisplay))

	buf.WriteString("## Study sessions\n\n")
	if len(course.StudySessions) == 0 {
		buf.WriteString("_No sessions yet._\n\n")
	} else {
		buf.WriteString("| # | Date | Minutes |\n|---|---|---|\n")
		for i, s := range course.StudySessions {
			buf.WriteString(fmt.Sprintf("| %d | %s | %s |\n", i+1, s.Date, formatNumber(s.Duration)))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("## QCM exams\n\n")
	if len(course.QCMExams) == 0 {
		buf.WriteString("_No exams yet._\n")
	} else {
		buf.WriteString("| # | Date | Score |\n|---|---|---|\n")
		for i, e := range course.QCMExams {
			buf.WriteString(fmt.Sprintf("| %d | %s | %s |\n", i+1, e.Date, formatNumber(e.Score)))
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=course-%s.md", course.ID))
	c.Data(http.StatusOK, "text/markdown", buf.Bytes())
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}
