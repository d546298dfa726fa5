package profile

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mo-amir99/coursehub-server-go/pkg/config"
	"github.com/mo-amir99/coursehub-server-go/pkg/response"
)

// Handler serves the caller's own profile.
type Handler struct {
	flags  config.Flags
	logger *slog.Logger
}

// NewHandler constructs a profile handler instance.
func NewHandler(flags config.Flags, logger *slog.Logger) *Handler {
	return &Handler{flags: flags, logger: logger}
}

// Me returns the caller's profile plus derived access flags.
func (h *Handler) Me(c *gin.Context) {
	p, ok := FromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	response.OK(c, gin.H{
		"profile":             p,
		"hasFullAccess":       h.flags.HasFullAccess() || p.IsAdmin || p.HasActiveMembership(),
		"hasActiveMembership": p.HasActiveMembership(),
		"isPaymentRequired":   h.flags.IsPaymentRequired(),
	})
}
