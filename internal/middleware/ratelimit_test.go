package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/studytracker/api/internal/limiter"
)

type fixedCounter struct{ count int64 }

func (f *fixedCounter) Incr(context.Context, string, time.Duration) (int64, error) {
	f.count++
	return f.count, nil
}

func (f *fixedCounter) TTL(context.Context, string) (time.Duration, error) {
	return time.Minute, nil
}

func newRouter(l *limiter.Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/courses", RateLimit(l, "course.create"), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func TestRateLimitRejectsOverLimit(t *testing.T) {
	counter := &fixedCounter{count: limiter.DefaultLimits["course.create"].Limit - 1}
	r := newRouter(limiter.NewLimiter(counter))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/courses", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/courses", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestRateLimitWithoutLimiterPasses(t *testing.T) {
	r := newRouter(nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/courses", nil))
	assert.Equal(t, http.StatusCreated, rec.Code)
}
