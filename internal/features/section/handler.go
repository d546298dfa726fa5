package section

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/pkg/apperrors"
	"github.com/mo-amir99/coursehub-server-go/pkg/cache"
	"github.com/mo-amir99/coursehub-server-go/pkg/database"
	"github.com/mo-amir99/coursehub-server-go/pkg/request"
	"github.com/mo-amir99/coursehub-server-go/pkg/response"
)

// Handler processes admin section requests.
type Handler struct {
	db      *gorm.DB
	catalog *cache.Catalog
	logger  *slog.Logger
}

// NewHandler constructs a section handler instance.
func NewHandler(db *gorm.DB, catalog *cache.Catalog, logger *slog.Logger) *Handler {
	return &Handler{db: db, catalog: catalog, logger: logger}
}

type sectionRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
}

// Create adds a section to the course in the path.
func (h *Handler) Create(c *gin.Context) {
	courseID, err := request.UUIDParam(c, "id")
	if err != nil {
		h.respondError(c, err, "Failed to create section")
		return
	}

	var req sectionRequest
	if err := request.BindJSON(c, &req); err != nil {
		h.respondError(c, err, "Failed to create section")
		return
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to create section")
		return
	}

	section, err := Create(db, CreateInput{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		h.respondError(c, err, "Failed to create section")
		return
	}

	h.catalog.Invalidate(c.Request.Context())
	response.Created(c, gin.H{"section": section})
}

// Update modifies a section.
func (h *Handler) Update(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		h.respondError(c, err, "Failed to update section")
		return
	}

	var req sectionRequest
	if err := request.BindJSON(c, &req); err != nil {
		h.respondError(c, err, "Failed to update section")
		return
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to update section")
		return
	}

	section, err := Update(db, id, UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		h.respondError(c, err, "Failed to update section")
		return
	}

	h.catalog.Invalidate(c.Request.Context())
	response.OK(c, gin.H{"section": section})
}

// Delete removes a section and its lessons.
func (h *Handler) Delete(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		h.respondError(c, err, "Failed to delete section")
		return
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to delete section")
		return
	}

	removed, err := Delete(db, id)
	if err != nil {
		h.respondError(c, err, "Failed to delete section")
		return
	}

	h.catalog.Invalidate(c.Request.Context())
	h.logger.InfoContext(c.Request.Context(), "section deleted",
		slog.String("section_id", id.String()),
		slog.Int64("lessons_removed", removed),
	)
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
	case errors.Is(err, ErrSectionNotFound):
		status = http.StatusNotFound
		message = "Section not found"
	case errors.Is(err, ErrCourseNotFound):
		status = http.StatusNotFound
		message = "Course not found"
	case errors.Is(err, ErrTitleRequired), errors.Is(err, ErrOrderInvalid):
		status = http.StatusBadRequest
		message = err.Error()
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
