package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// Compression levels
const (
	DefaultCompression = gzip.DefaultCompression
	BestSpeed          = gzip.BestSpeed
	BestCompression    = gzip.BestCompression
)

// Paths that must not be wrapped: /metrics negotiates its own encoding and
// the Stripe webhook reads the raw body and answers tiny payloads.
var compressionSkipPrefixes = []string{"/metrics", "/api/stripe/webhook"}

type gzipWriter struct {
	gin.ResponseWriter
	writer *gzip.Writer
	wrote  bool
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

func (g *gzipWriter) Write(data []byte) (int, error) {
	g.wrote = true
	return g.writer.Write(data)
}

func (g *gzipWriter) WriteHeader(code int) {
	g.Header().Del("Content-Length")
	g.ResponseWriter.WriteHeader(code)
}

// Compression returns a middleware that gzips responses for clients that accept it.
func Compression(level int) gin.HandlerFunc {
	pool := sync.Pool{
		New: func() interface{} {
			gz, err := gzip.NewWriterLevel(io.Discard, level)
			if err != nil {
				gz, _ = gzip.NewWriterLevel(io.Discard, DefaultCompression)
			}
			return gz
		},
	}

	return func(c *gin.Context) {
		if !shouldCompress(c.Request) {
			c.Next()
			return
		}

		gz := pool.Get().(*gzip.Writer)
		gz.Reset(c.Writer)
		wrapped := &gzipWriter{ResponseWriter: c.Writer, writer: gz}
		defer func() {
			// Bodyless responses (204, redirects) must not get a gzip trailer.
			if !wrapped.wrote {
				gz.Reset(io.Discard)
				wrapped.ResponseWriter.Header().Del("Content-Encoding")
			}
			_ = gz.Close()
			pool.Put(gz)
		}()

		c.Header("Content-Encoding", "gzip")
		c.Header("Vary", "Accept-Encoding")

		c.Writer = wrapped

		c.Next()
	}
}

func shouldCompress(req *http.Request) bool {
	if req.Method == http.MethodHead || req.Method == http.MethodOptions {
		return false
	}
	if !strings.Contains(req.Header.Get("Accept-Encoding"), "gzip") {
		return false
	}
	if strings.Contains(strings.ToLower(req.Header.Get("Connection")), "upgrade") {
		return false
	}
	for _, prefix := range compressionSkipPrefixes {
		if strings.HasPrefix(req.URL.Path, prefix) {
			return false
		}
	}
	return true
}
