package lesson

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursehub-server-go/pkg/cache"
	"github.com/mo-amir99/coursehub-server-go/pkg/database"
	"github.com/mo-amir99/coursehub-server-go/pkg/request"
	"github.com/mo-amir99/coursehub-server-go/pkg/response"
)

// Handler processes admin lesson requests.
type Handler struct {
	db      *gorm.DB
	catalog *cache.Catalog
	logger  *slog.Logger
}

// NewHandler constructs a lesson handler instance.
func NewHandler(db *gorm.DB, catalog *cache.Catalog, logger *slog.Logger) *Handler {
	return &Handler{db: db, catalog: catalog, logger: logger}
}

type lessonRequest struct {
	SectionID            *string     `json:"section_id"`
	Title                *string     `json:"title"`
	Description          *string     `json:"description"`
	VideoURL             *string     `json:"video_url"`
	ThumbnailURL         *string     `json:"thumbnail_url"`
	VideoDurationSeconds *int        `json:"video_duration_seconds"`
	SortOrder            *int        `json:"sort_order"`
	IsPreview            *bool       `json:"is_preview"`
	HasQuiz              *bool       `json:"has_quiz"`
	Resources            *[]Resource `json:"resources"`
}

// CreateForCourse inserts a lesson under a section that must belong to the
// course in the path.
func (h *Handler) CreateForCourse(c *gin.Context) {
	courseID, err := request.UUIDParam(c, "id")
	if err != nil {
		h.respondError(c, err, "Failed to create lesson")
		return
	}
	h.create(c, &courseID)
}

// Create inserts a lesson under the section named in the body.
func (h *Handler) Create(c *gin.Context) {
	h.create(c, nil)
}

func (h *Handler) create(c *gin.Context, courseID *uuid.UUID) {
	var req lessonRequest
	if err := request.BindJSON(c, &req); err != nil {
		h.respondError(c, err, "Failed to create lesson")
		return
	}

	sectionID := uuid.Nil
	if req.SectionID != nil && strings.TrimSpace(*req.SectionID) != "" {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.SectionID))
		if err != nil {
			h.respondError(c, ErrSectionIDInvalid, "Failed to create lesson")
			return
		}
		sectionID = parsed
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to create lesson")
		return
	}

	input := CreateInput{
		SectionID:            sectionID,
		CourseID:             courseID,
		Title:                req.Title,
		Description:          req.Description,
		VideoURL:             req.VideoURL,
		ThumbnailURL:         req.ThumbnailURL,
		VideoDurationSeconds: req.VideoDurationSeconds,
		SortOrder:            req.SortOrder,
		IsPreview:            req.IsPreview,
		HasQuiz:              req.HasQuiz,
	}
	if req.Resources != nil {
		input.Resources = *req.Resources
	}

	lesson, err := Create(db, input)
	if err != nil {
		h.respondError(c, err, "Failed to create lesson")
		return
	}

	h.catalog.Invalidate(c.Request.Context())
	h.logger.InfoContext(c.Request.Context(), "lesson created",
		slog.String("lesson_id", lesson.ID.String()),
		slog.String("course_id", lesson.CourseID.String()),
	)

	response.Created(c, gin.H{"lesson": lesson})
}

// Update modifies a lesson.
func (h *Handler) Update(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		h.respondError(c, err, "Failed to update lesson")
		return
	}

	var req lessonRequest
	if err := request.BindJSON(c, &req); err != nil {
		h.respondError(c, err, "Failed to update lesson")
		return
	}

	input := UpdateInput{
		Title:                req.Title,
		Description:          req.Description,
		VideoURL:             req.VideoURL,
		ThumbnailURL:         req.ThumbnailURL,
		VideoDurationSeconds: req.VideoDurationSeconds,
		SortOrder:            req.SortOrder,
		IsPreview:            req.IsPreview,
		HasQuiz:              req.HasQuiz,
		Resources:            req.Resources,
	}
	if req.SectionID != nil {
		parsed, err := uuid.Parse(strings.TrimSpace(*req.SectionID))
		if err != nil {
			h.respondError(c, ErrSectionIDInvalid, "Failed to update lesson")
			return
		}
		input.SectionID = &parsed
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to update lesson")
		return
	}

	lesson, err := Update(db, id, input)
	if err != nil {
		h.respondError(c, err, "Failed to update lesson")
		return
	}

	h.catalog.Invalidate(c.Request.Context())
	response.OK(c, gin.H{"lesson": lesson})
}

// Delete removes a lesson.
func (h *Handler) Delete(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		h.respondError(c, err, "Failed to delete lesson")
		return
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to delete lesson")
		return
	}

	if err := Delete(db, id); err != nil {
		h.respondError(c, err, "Failed to delete lesson")
		return
	}

	h.catalog.Invalidate(c.Request.Context())
	response.Deleted(c)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		status = appErr.StatusCode()
		message = appErr.Message()
	case errors.Is(err, ErrLessonNotFound):
		status = http.StatusNotFound
		message = "Lesson not found"
	case errors.Is(err, ErrSectionNotFound):
		status = http.StatusNotFound
		message = "Section not found"
	case errors.Is(err, ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found"
	case errors.Is(err, ErrTitleRequired),
		errors.Is(err, ErrVideoURLRequired),
		errors.Is(err, ErrSectionRequired),
		errors.Is(err, ErrSectionIDInvalid),
		errors.Is(err, ErrDurationInvalid),
		errors.Is(err, ErrOrderInvalid),
		errors.Is(err, ErrResourceURLNeeded):
		status = http.StatusBadRequest
		message = err.Error()
	case database.IsDuplicate(err):
		status = http.StatusConflict
		message = "Lesson already exists"
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
