package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func middlewareRouter(mw gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(mw)
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	router := middlewareRouter(RequestIDMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDMiddlewareReusesCallerID(t *testing.T) {
	router := middlewareRouter(RequestIDMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "caller-id-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "caller-id-123", w.Header().Get(RequestIDHeader))
}

func TestCORSMiddlewareAllowedOrigin(t *testing.T) {
	router := middlewareRouter(CORSMiddleware([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddlewareWildcardOrigin(t *testing.T) {
	router := middlewareRouter(CORSMiddleware([]string{"https://preview-*"}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://preview-42.pricescope.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddlewareDisallowedOrigin(t *testing.T) {
	router := middlewareRouter(CORSMiddleware([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	// Request still succeeds; CORS enforcement is the browser's job.
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	router := middlewareRouter(CORSMiddleware([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	router := middlewareRouter(RateLimitMiddleware(2))

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
	assert.Equal(t, http.StatusTooManyRequests, codes[3])
}

func TestRateLimitMiddlewareBoundsTrackedClients(t *testing.T) {
	router := middlewareRouter(RateLimitMiddleware(1))

	exhausted := func() int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	exhausted()
	assert.Equal(t, http.StatusTooManyRequests, exhausted())

	// A scan of distinct source addresses must hit the tracked-client cap
	// and reset the map instead of growing it forever.
	for i := 0; i < maxTrackedClients; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = fmt.Sprintf("10.%d.%d.%d:1234", i/65536, (i/256)%256, i%256)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}

	// The previously throttled client gets a fresh bucket after the reset.
	assert.Equal(t, http.StatusOK, exhausted())
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	router := middlewareRouter(RateLimitMiddleware(0))

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestIsAllowedOrigin(t *testing.T) {
	allowed := []string{"http://localhost:3000", "https://app.pricescope.example", "https://preview-*"}

	assert.True(t, isAllowedOrigin("http://localhost:3000", allowed))
	assert.True(t, isAllowedOrigin("https://app.pricescope.example", allowed))
	assert.True(t, isAllowedOrigin("https://preview-42.example", allowed))
	assert.False(t, isAllowedOrigin("http://evil.example", allowed))
	assert.False(t, isAllowedOrigin("", allowed))
}
