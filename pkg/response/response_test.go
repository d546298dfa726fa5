package response

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorWithLogLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		status int
		level  string
	}{
		{"validation", http.StatusBadRequest, `"level":"DEBUG"`},
		{"not found", http.StatusNotFound, `"level":"DEBUG"`},
		{"backend", http.StatusInternalServerError, `"level":"ERROR"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			ErrorWithLog(logger, c, tc.status, "Failed to load", errors.New("row scan: boom"))

			if recorder.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, recorder.Code)
			}
			if strings.Contains(recorder.Body.String(), "boom") {
				t.Fatalf("cause leaked to client: %s", recorder.Body.String())
			}
			if !strings.Contains(buf.String(), tc.level) {
				t.Fatalf("expected %s, got %s", tc.level, buf.String())
			}
		})
	}
}

func TestErrorWithLogNilLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	ErrorWithLog(nil, c, http.StatusConflict, "Already exists", errors.New("duplicate"))
	if recorder.Code != http.StatusConflict || !strings.Contains(recorder.Body.String(), "Already exists") {
		t.Fatalf("unexpected response %d: %s", recorder.Code, recorder.Body.String())
	}
}
