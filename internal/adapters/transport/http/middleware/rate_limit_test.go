package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khattakbelt/community-api/internal/adapters/transport/http/middleware"
)

func TestRateLimitPerIP_Basic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RateLimitPerIP(1, 1, 100, time.Hour))
	r.GET("/", func(c *gin.Context) { c.String(200, "ok") })

	req := func(addr string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		request := httptest.NewRequest("GET", "/", nil)
		request.RemoteAddr = addr
		r.ServeHTTP(w, request)
		return w
	}

	if w := req("1.2.3.4:12345"); w.Code != 200 {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if w := req("1.2.3.4:12345"); w.Code != 429 {
		t.Fatalf("want 429, got %d", w.Code)
	}
}

func TestRateLimitPerIP_DifferentHosts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RateLimitPerIP(1, 1, 100, time.Hour))
	r.GET("/", func(c *gin.Context) { c.Status(200) })

	w1 := httptest.NewRecorder()
	req1 := httptest.NewRequest("GET", "/", nil)
	req1.RemoteAddr = "10.0.0.1:1111"
	r.ServeHTTP(w1, req1)
	if w1.Code != 200 {
		t.Fatalf("host A first request must pass, got %d", w1.Code)
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest("GET", "/", nil)
	req2.RemoteAddr = "10.0.0.2:2222"
	r.ServeHTTP(w2, req2)
	if w2.Code != 200 {
		t.Fatalf("host B first request must pass independently, got %d", w2.Code)
	}
}

func TestRateLimitPerIP_TTLEvicts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ttl := 10 * time.Millisecond
	r := gin.New()
	r.Use(middleware.RateLimitPerIP(1, 1, 10, ttl))
	r.GET("/", func(c *gin.Context) { c.Status(200) })

	req := func() int {
		w := httptest.NewRecorder()
		request := httptest.NewRequest("GET", "/", nil)
		request.RemoteAddr = "127.0.0.1:5555"
		r.ServeHTTP(w, request)
		return w.Code
	}

	if code := req(); code != 200 {
		t.Fatalf("first req want 200 got %d", code)
	}
	if code := req(); code != 429 {
		t.Fatalf("second immediate req want 429 got %d", code)
	}
	time.Sleep(ttl + 5*time.Millisecond)
	if code := req(); code != 200 {
		t.Fatalf("after TTL want 200 got %d", code)
	}
}
