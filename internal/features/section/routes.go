package section

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches admin section endpoints. admin is already gated.
func RegisterRoutes(admin *gin.RouterGroup, handler *Handler) {
	admin.POST("/courses/:id/sections", handler.Create)
	admin.PUT("/sections/:id", handler.Update)
	admin.DELETE("/sections/:id", handler.Delete)
}
