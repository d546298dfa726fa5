package lesson

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches admin lesson endpoints. admin is already gated.
func RegisterRoutes(admin *gin.RouterGroup, handler *Handler) {
	admin.POST("/courses/:id/lessons", handler.CreateForCourse)
	admin.POST("/lessons", handler.Create)
	admin.PUT("/lessons/:id", handler.Update)
	admin.DELETE("/lessons/:id", handler.Delete)
}
