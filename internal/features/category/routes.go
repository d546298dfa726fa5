package category

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches the public listing and the admin category endpoints.
func RegisterRoutes(public, admin *gin.RouterGroup, handler *Handler) {
	public.GET("/categories", handler.List)

	admin.GET("/categories", handler.List)
	admin.POST("/categories", handler.Create)
	admin.PUT("/categories/:id", handler.Update)
	admin.DELETE("/categories/:id", handler.Delete)
}
