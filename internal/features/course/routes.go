package course

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches public catalog routes and the admin course endpoints.
// optionalUser attaches the caller on the lesson viewer; requireAdmin gates
// course creation on the public path. admin is already gated.
func RegisterRoutes(public, admin *gin.RouterGroup, handler *Handler, optionalUser, requireAdmin gin.HandlerFunc) {
	public.GET("/courses", handler.List)
	public.POST("/courses", requireAdmin, handler.Create)
	public.GET("/courses/:id", handler.GetPublished)
	public.GET("/courses/:id/lessons/:lessonId", optionalUser, handler.ViewLesson)

	admin.GET("/courses", handler.AdminList)
	admin.GET("/courses/:id", handler.AdminGet)
	admin.PUT("/courses/:id", handler.Update)
	admin.DELETE("/courses/:id", handler.Delete)
	admin.POST("/courses/:id/recalculate-duration", handler.RecalculateDuration)
}
