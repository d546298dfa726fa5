package response

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// OKWithCache sends a 200 JSON response with public cache headers.
func OKWithCache(c *gin.Context, payload interface{}, maxAge int) {
	c.Header("Cache-Control", formatCacheControl(maxAge))
	OK(c, payload)
}

// OKNoCache sends a 200 JSON response with no-cache headers.
func OKNoCache(c *gin.Context, payload interface{}) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	OK(c, payload)
}

func formatCacheControl(maxAge int) string {
	if maxAge <= 0 {
		return "no-cache"
	}
	return "public, max-age=" + strconv.Itoa(maxAge)
}
