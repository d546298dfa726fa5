package debug

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the debug endpoints behind requireAdmin.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, requireAdmin gin.HandlerFunc) {
	debug := router.Group("/debug", requireAdmin)
	debug.GET("/courses/:id", handler.Course)
	debug.GET("/media", handler.Media)
	debug.GET("/db-stats", handler.DBStats)
}
