package featureflags

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches the flags endpoint.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	router.GET("/config/flags", handler.Get)
}
