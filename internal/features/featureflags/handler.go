package featureflags

import (
	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/coursehub-server-go/pkg/config"
	"github.com/mo-amir99/coursehub-server-go/pkg/response"
)

// Handler exposes the derived feature flags to clients.
type Handler struct {
	flags config.Flags
}

// NewHandler constructs a feature flag handler.
func NewHandler(flags config.Flags) *Handler {
	return &Handler{flags: flags}
}

// Get returns the flags the UI needs to decide on paywalls and previews.
func (h *Handler) Get(c *gin.Context) {
	response.OKWithCache(c, gin.H{
		"testMode":          h.flags.IsTestMode(),
		"hasFullAccess":     h.flags.HasFullAccess(),
		"isPaymentRequired": h.flags.IsPaymentRequired(),
		"features": gin.H{
			"previewLessons": h.flags.Features.PreviewLessons,
		},
	}, 60)
}
