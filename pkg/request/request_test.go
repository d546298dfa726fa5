package request

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursehub-server-go/pkg/logger"
)

func TestHandlerRendersAttachedErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"app error", apperrors.Forbidden("Admin access required", nil), http.StatusForbidden, "Admin access required"},
		{"not found", gorm.ErrRecordNotFound, http.StatusNotFound, "Resource not found"},
		{"unknown", errors.New("socket closed"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range cases {
		router := gin.New()
		router.Use(Handler(logger.Discard()))
		router.GET("/", func(c *gin.Context) { _ = c.Error(tc.err) })

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		if recorder.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.status, recorder.Code)
		}
		if !strings.Contains(recorder.Body.String(), tc.body) {
			t.Fatalf("%s: unexpected body %s", tc.name, recorder.Body.String())
		}
		if strings.Contains(recorder.Body.String(), "socket closed") {
			t.Fatalf("%s: internal detail leaked", tc.name)
		}
	}
}

func TestUUIDParam(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "lessonId", Value: "not-a-uuid"}}

	_, err := UUIDParam(c, "lessonId")
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Message() != "invalid lesson id" {
		t.Fatalf("unexpected error %v", err)
	}
}
