package middleware

import (
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

var staticExtensions = map[string]struct{}{
	".css": {}, ".js": {}, ".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".svg": {},
	".ico": {}, ".webp": {}, ".woff": {}, ".woff2": {}, ".ttf": {},
}

// CacheControl sets default cache headers. API responses are not cacheable unless
// a handler overrides the header (public catalog reads do).
func CacheControl() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestPath := c.Request.URL.Path

		switch {
		case strings.HasPrefix(requestPath, "/api/"):
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		case isStaticAsset(requestPath):
			c.Header("Cache-Control", "public, max-age=31536000")
		}

		c.Next()
	}
}

func isStaticAsset(requestPath string) bool {
	_, ok := staticExtensions[strings.ToLower(path.Ext(requestPath))]
	return ok
}
