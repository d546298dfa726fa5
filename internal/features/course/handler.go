package course

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/internal/middleware"
	"github.com/mo-amir99/coursehub-server-go/internal/services/courseduration"
	"github.com/mo-amir99/coursehub-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursehub-server-go/pkg/cache"
	"github.com/mo-amir99/coursehub-server-go/pkg/config"
	"github.com/mo-amir99/coursehub-server-go/pkg/database"
	"github.com/mo-amir99/coursehub-server-go/pkg/pagination"
	"github.com/mo-amir99/coursehub-server-go/pkg/request"
	"github.com/mo-amir99/coursehub-server-go/pkg/response"
	"github.com/mo-amir99/coursehub-server-go/pkg/types"
)

// Handler processes course HTTP requests.
type Handler struct {
	db       *gorm.DB
	catalog  *cache.Catalog
	duration *courseduration.Service
	flags    config.Flags
	logger   *slog.Logger
}

// NewHandler constructs a course handler instance.
func NewHandler(db *gorm.DB, catalog *cache.Catalog, duration *courseduration.Service, flags config.Flags, logger *slog.Logger) *Handler {
	return &Handler{
		db:       db,
		catalog:  catalog,
		duration: duration,
		flags:    flags,
		logger:   logger,
	}
}

type createRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	CategoryID   *string `json:"category_id"`
	Level        *string `json:"level"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

type updateRequest struct {
	createRequest
	IsPublished *bool `json:"is_published"`
}

type listPayload struct {
	Courses []Course `json:"courses"`
}

type detailPayload struct {
	Course Detail `json:"course"`
}

// List returns published courses filtered by category, level and limit.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filters := ListFilters{
		Category: strings.TrimSpace(c.Query("category")),
		Limit:    pagination.Limit(c),
	}
	if raw := strings.TrimSpace(c.Query("level")); raw != "" {
		level, err := types.ParseLevel(raw)
		if err != nil {
			h.respondError(c, ErrLevelInvalid, "Failed to fetch courses")
			return
		}
		filters.Level = &level
	}

	key := listCacheKey(filters)
	var payload listPayload
	slot, hit := h.catalog.Fetch(ctx, key, &payload)
	if hit {
		response.OK(c, payload)
		return
	}

	db, err := database.Session(ctx, h.db)
	if err != nil {
		h.respondError(c, err, "Failed to fetch courses")
		return
	}

	courses, err := ListPublished(db, filters)
	if err != nil {
		h.respondError(c, err, "Failed to fetch courses")
		return
	}

	payload = listPayload{Courses: courses}
	h.catalog.Store(ctx, slot, payload)
	response.OK(c, payload)
}

// GetPublished returns a published course with nested, sorted sections and lessons.
func (h *Handler) GetPublished(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := request.UUIDParam(c, "id")
	if err != nil {
		h.respondError(c, err, "Failed to fetch course")
		return
	}

	key := "course:" + id.String()
	var payload detailPayload
	slot, hit := h.catalog.Fetch(ctx, key, &payload)
	if hit {
		response.OK(c, payload)
		return
	}

	db, err := database.Session(ctx, h.db)
	if err != nil {
		h.respondError(c, err, "Failed to fetch course")
		return
	}

	course, err := GetPublishedDetail(db, id)
	if err != nil {
		h.respondError(c, err, "Failed to fetch course")
		return
	}

	payload = detailPayload{Course: h.detail(c, course)}
	h.catalog.Store(ctx, slot, payload)
	response.OK(c, payload)
}

// Create inserts a draft course owned by the calling admin.
func (h *Handler) Create(c *gin.Context) {
	usr, ok := middleware.UserFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req createRequest
	if err := request.BindJSON(c, &req); err != nil {
		h.respondError(c, err, "Failed to create course")
		return
	}

	categoryID, _, err := parseCategoryID(req.CategoryID)
	if err != nil {
		h.respondError(c, err, "Failed to create course")
		return
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to create course")
		return
	}

	course, err := Create(db, CreateInput{
		Title:        req.Title,
		Description:  req.Description,
		CategoryID:   categoryID,
		InstructorID: usr.ID,
		Level:        req.Level,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		h.respondError(c, err, "Failed to create course")
		return
	}

	h.catalog.Invalidate(c.Request.Context())
	h.logger.InfoContext(c.Request.Context(), "course created",
		slog.String("course_id", course.ID.String()),
		slog.String("instructor_id", usr.ID.String()),
	)

	response.Created(c, gin.H{"course": course})
}

// AdminList returns every course, drafts included, with pagination metadata.
func (h *Handler) AdminList(c *gin.Context) {
	params := pagination.Extract(c)
	filters := AdminFilters{Keyword: c.Query("q")}
	if raw := strings.TrimSpace(c.Query("published")); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, "published must be true or false")
			return
		}
		filters.Published = &published
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to fetch courses")
		return
	}

	courses, total, err := ListAll(db, filters, params)
	if err != nil {
		h.respondError(c, err, "Failed to fetch courses")
		return
	}

	response.OK(c, gin.H{
		"courses":    courses,
		"pagination": pagination.MetadataFrom(total, params),
	})
}

// AdminGet returns any course, drafts included, with nested content.
func (h *Handler) AdminGet(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		h.respondError(c, err, "Failed to fetch course")
		return
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to fetch course")
		return
	}

	course, err := GetDetail(db, id)
	if err != nil {
		h.respondError(c, err, "Failed to fetch course")
		return
	}

	response.OKNoCache(c, detailPayload{Course: h.detail(c, course)})
}

// Update modifies a course.
func (h *Handler) Update(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		h.respondError(c, err, "Failed to update course")
		return
	}

	var req updateRequest
	if err := request.BindJSON(c, &req); err != nil {
		h.respondError(c, err, "Failed to update course")
		return
	}

	categoryID, categoryProvided, err := parseCategoryID(req.CategoryID)
	if err != nil {
		h.respondError(c, err, "Failed to update course")
		return
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to update course")
		return
	}

	course, err := Update(db, id, UpdateInput{
		Title:              req.Title,
		Description:        req.Description,
		CategoryIDProvided: categoryProvided,
		CategoryID:         categoryID,
		Level:              req.Level,
		ThumbnailURL:       req.ThumbnailURL,
		IsPublished:        req.IsPublished,
	})
	if err != nil {
		h.respondError(c, err, "Failed to update course")
		return
	}

	h.catalog.Invalidate(c.Request.Context())
	response.OK(c, gin.H{"course": course})
}

// Delete removes a course with all of its content.
func (h *Handler) Delete(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		h.respondError(c, err, "Failed to delete course")
		return
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to delete course")
		return
	}

	if err := Delete(db, id); err != nil {
		h.respondError(c, err, "Failed to delete course")
		return
	}

	h.catalog.Invalidate(c.Request.Context())
	response.Deleted(c)
}

// RecalculateDuration recomputes duration_minutes from the course's lessons.
func (h *Handler) RecalculateDuration(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		h.respondError(c, err, "Failed to recalculate duration")
		return
	}

	if h.db == nil {
		h.respondError(c, database.ErrNotConfigured, "Failed to recalculate duration")
		return
	}

	result, err := h.duration.Recalculate(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, courseduration.ErrCourseNotFound) {
			err = ErrCourseNotFound
		}
		h.respondError(c, err, "Failed to recalculate duration")
		return
	}

	h.catalog.Invalidate(c.Request.Context())
	response.OK(c, gin.H{"duration": result})
}

func (h *Handler) detail(c *gin.Context, course Course) Detail {
	detail, err := NewDetail(course)
	if err != nil {
		h.logger.WarnContext(c.Request.Context(), "course description render failed",
			slog.String("course_id", course.ID.String()),
			slog.String("error", err.Error()),
		)
	}
	return detail
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		status = appErr.StatusCode()
		message = appErr.Message()
	case errors.Is(err, ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found"
	case errors.Is(err, ErrLessonNotFound):
		status = http.StatusNotFound
		message = "Lesson not found"
	case errors.Is(err, ErrCategoryNotFound):
		status = http.StatusNotFound
		message = "Category not found"
	case errors.Is(err, ErrTitleRequired),
		errors.Is(err, ErrLevelInvalid),
		errors.Is(err, ErrCategoryInvalid):
		status = http.StatusBadRequest
		message = err.Error()
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}

// parseCategoryID reads an optional category id. An empty string clears it.
func parseCategoryID(raw *string) (*uuid.UUID, bool, error) {
	if raw == nil {
		return nil, false, nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil, true, nil
	}
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return nil, true, ErrCategoryInvalid
	}
	return &id, true, nil
}

func listCacheKey(filters ListFilters) string {
	level := ""
	if filters.Level != nil {
		level = string(*filters.Level)
	}
	return fmt.Sprintf("courses:%s:%s:%d", strings.ToLower(filters.Category), level, filters.Limit)
}
