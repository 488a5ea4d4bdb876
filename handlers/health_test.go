package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/vela-games/lfsbatch/config"
)

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		handler  HealthHandler
		code     int
		expected string
	}{
		{
			name:     "it should be ok once config loads",
			handler:  HealthHandler{Config: MockConfig{}},
			code:     200,
			expected: `{"health":"ok"}`,
		},
		{
			name:     "it should be unavailable when config fails",
			handler:  HealthHandler{Config: MockConfig{err: config.Error.New("empty")}},
			code:     503,
			expected: `{"health":"config unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			_, r := gin.CreateTestContext(w)
			r.GET("/health", tt.handler.Get)

			req, _ := http.NewRequest("GET", "/health", nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.expected, w.Body.String())
		})
	}
}
