package debug

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/internal/features/course"
	"github.com/mo-amir99/coursehub-server-go/internal/services/courseduration"
	"github.com/mo-amir99/coursehub-server-go/pkg/database"
	"github.com/mo-amir99/coursehub-server-go/pkg/health"
	"github.com/mo-amir99/coursehub-server-go/pkg/request"
	"github.com/mo-amir99/coursehub-server-go/pkg/response"
)

const probeTimeout = 10 * time.Second

// Handler serves admin-only inspection endpoints. Responses may carry raw
// error detail and are not a stable contract.
type Handler struct {
	db     *gorm.DB
	client *http.Client
	logger *slog.Logger
}

// NewHandler constructs a debug handler. A nil client uses a default with a timeout.
func NewHandler(db *gorm.DB, client *http.Client, logger *slog.Logger) *Handler {
	if client == nil {
		client = &http.Client{Timeout: probeTimeout}
	}
	return &Handler{db: db, client: client, logger: logger}
}

// Course dumps a course row as stored, drafts included, with unsorted nested
// records and a comparison of stored and computed duration.
func (h *Handler) Course(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		response.ErrorWithDetails(h.logger, c, http.StatusBadRequest, "invalid course id", err)
		return
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		response.ErrorWithDetails(h.logger, c, http.StatusInternalServerError, "database unavailable", err)
		return
	}

	var row course.Course
	err = db.Preload("Category").Preload("Sections").Preload("Sections.Lessons").First(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.ErrorWithDetails(h.logger, c, http.StatusNotFound, "Course not found", err)
		return
	}
	if err != nil {
		response.ErrorWithDetails(h.logger, c, http.StatusInternalServerError, "failed to load course", err)
		return
	}

	var lessonCount int
	var totalSeconds int64
	for _, s := range row.Sections {
		for _, l := range s.Lessons {
			lessonCount++
			totalSeconds += int64(l.VideoDurationSeconds)
		}
	}

	var orphaned int64
	if err := db.Table("course_lessons").
		Where("course_id = ? AND section_id NOT IN (?)", id, db.Table("course_sections").Select("id").Where("course_id = ?", id)).
		Count(&orphaned).Error; err != nil {
		response.ErrorWithDetails(h.logger, c, http.StatusInternalServerError, "failed to count lessons", err)
		return
	}

	response.OKNoCache(c, gin.H{
		"course": row,
		"counts": gin.H{
			"sections":         len(row.Sections),
			"lessons":          lessonCount,
			"orphanedLessons":  orphaned,
			"totalSeconds":     totalSeconds,
			"storedMinutes":    row.DurationMinutes,
			"computedMinutes":  courseduration.Minutes(totalSeconds),
			"durationInSync":   row.DurationMinutes == courseduration.Minutes(totalSeconds),
			"publishedVisible": row.IsPublished,
		},
	})
}

// Media issues a HEAD request against an external media URL.
func (h *Handler) Media(c *gin.Context) {
	target, err := parseMediaURL(c.Query("url"))
	if err != nil {
		response.ErrorWithDetails(h.logger, c, http.StatusBadRequest, "invalid url", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target.String(), nil)
	if err != nil {
		response.ErrorWithDetails(h.logger, c, http.StatusBadRequest, "invalid url", err)
		return
	}

	started := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		response.ErrorWithDetails(h.logger, c, http.StatusBadGateway, "media probe failed", err)
		return
	}
	defer resp.Body.Close()

	response.OKNoCache(c, gin.H{
		"url":           target.String(),
		"status":        resp.StatusCode,
		"reachable":     resp.StatusCode < http.StatusBadRequest,
		"contentType":   resp.Header.Get("Content-Type"),
		"contentLength": resp.ContentLength,
		"acceptRanges":  resp.Header.Get("Accept-Ranges"),
		"elapsedMs":     time.Since(started).Milliseconds(),
	})
}

// DBStats reports connection pool statistics.
func (h *Handler) DBStats(c *gin.Context) {
	if h.db == nil {
		response.ErrorWithDetails(h.logger, c, http.StatusInternalServerError, "database unavailable", database.ErrNotConfigured)
		return
	}

	stats, err := health.PoolStats(h.db)
	if err != nil {
		response.ErrorWithDetails(h.logger, c, http.StatusInternalServerError, "failed to read pool stats", err)
		return
	}

	response.OKNoCache(c, gin.H{"pool": stats})
}

func parseMediaURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("url query parameter is required")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("url has no host")
	}
	return parsed, nil
}
