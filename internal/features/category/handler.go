package category

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

const listCacheKey = "categories"

// Handler processes category requests.
type Handler struct {
	db      *gorm.DB
	catalog *cache.Catalog
	logger  *slog.Logger
}

// NewHandler constructs a category handler instance.
func NewHandler(db *gorm.DB, catalog *cache.Catalog, logger *slog.Logger) *Handler {
	return &Handler{db: db, catalog: catalog, logger: logger}
}

type categoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Slug        *string `json:"slug"`
}

type listPayload struct {
	Categories []Category `json:"categories"`
}

// List returns all categories.
func (h *Handler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var payload listPayload
	slot, hit := h.catalog.Fetch(ctx, listCacheKey, &payload)
	if hit {
		response.OK(c, payload)
		return
	}

	db, err := database.Session(ctx, h.db)
	if err != nil {
		h.respondError(c, err, "Failed to fetch categories")
		return
	}

	categories, err := List(db)
	if err != nil {
		h.respondError(c, err, "Failed to fetch categories")
		return
	}

	payload = listPayload{Categories: categories}
	h.catalog.Store(ctx, slot, payload)
	response.OK(c, payload)
}

// Create inserts a category.
func (h *Handler) Create(c *gin.Context) {
	var req categoryRequest
	if err := request.BindJSON(c, &req); err != nil {
		h.respondError(c, err, "Failed to create category")
		return
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to create category")
		return
	}

	category, err := Create(db, CreateInput{Name: req.Name, Description: req.Description, Slug: req.Slug})
	if err != nil {
		h.respondError(c, err, "Failed to create category")
		return
	}

	h.catalog.Invalidate(c.Request.Context())
	response.Created(c, gin.H{"category": category})
}

// Update modifies a category.
func (h *Handler) Update(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		h.respondError(c, err, "Failed to update category")
		return
	}

	var req categoryRequest
	if err := request.BindJSON(c, &req); err != nil {
		h.respondError(c, err, "Failed to update category")
		return
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to update category")
		return
	}

	category, err := Update(db, id, UpdateInput{Name: req.Name, Description: req.Description, Slug: req.Slug})
	if err != nil {
		h.respondError(c, err, "Failed to update category")
		return
	}

	h.catalog.Invalidate(c.Request.Context())
	response.OK(c, gin.H{"category": category})
}

// Delete removes a category.
func (h *Handler) Delete(c *gin.Context) {
	id, err := request.UUIDParam(c, "id")
	if err != nil {
		h.respondError(c, err, "Failed to delete category")
		return
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to delete category")
		return
	}

	if err := Delete(db, id); err != nil {
		h.respondError(c, err, "Failed to delete category")
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
	case errors.Is(err, ErrCategoryNotFound):
		status = http.StatusNotFound
		message = "Category not found"
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrNameTooLong), errors.Is(err, ErrSlugInvalid):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, ErrSlugTaken):
		status = http.StatusConflict
		message = err.Error()
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
