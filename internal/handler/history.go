package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studytracker/api/internal/model"
)

// HistoryHandler serves the recorded daily progress rows.
type HistoryHandler struct {
	db *gorm.DB
}

func NewHistoryHandler(db *gorm.DB) *HistoryHandler {
	return &HistoryHandler{db: db}
}

// List returns the most recent daily progress rows, newest first.
func (h *HistoryHandler) List(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Progress history requires a database"})
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days < 1 || days > 366 {
		days = 30
	}

	var rows []model.DailyProgress
	if err := h.db.WithContext(c.Request.Context()).Order("date DESC").Limit(days).Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load progress history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows, "days": days})
}
