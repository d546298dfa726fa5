package checkout

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches the Stripe endpoints. The webhook is authenticated by
// its signature, not by a user token.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, requireUser gin.HandlerFunc) {
	stripe := router.Group("/stripe")
	stripe.GET("/plans", handler.Plans)
	stripe.POST("/create-checkout-session", requireUser, handler.CreateSession)
	stripe.POST("/webhook", handler.Webhook)
}
