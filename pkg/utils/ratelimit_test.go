package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIPRateLimiter_BurstThenRefill(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewIPRateLimiter(1, 2)
	l.now = func() time.Time { return now }

	if !l.Allow("1.1.1.1") || !l.Allow("1.1.1.1") {
		t.Fatalf("expected burst of 2 to pass")
	}
	if l.Allow("1.1.1.1") {
		t.Fatalf("expected third request to be limited")
	}
	if !l.Allow("2.2.2.2") {
		t.Fatalf("other IPs must have their own bucket")
	}

	now = now.Add(time.Second)
	if !l.Allow("1.1.1.1") {
		t.Fatalf("expected a token after one second")
	}
}

func TestIPRateLimiter_DropsIdleBuckets(t *testing.T) {
	now := time.Unix(1700000000, 0)
	l := NewIPRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.Allow("1.1.1.1")
	now = now.Add(time.Hour)
	l.Allow("2.2.2.2")
	if _, ok := l.buckets["1.1.1.1"]; ok {
		t.Fatalf("expected idle bucket to be dropped")
	}
}

func TestIPRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewIPRateLimiter(0.001, 1)
	r := gin.New()
	r.POST("/hook", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/hook", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes: %v", codes)
	}
}
