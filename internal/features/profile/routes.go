package profile

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches profile endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, requireUser gin.HandlerFunc) {
	router.GET("/profile", requireUser, handler.Me)
}
