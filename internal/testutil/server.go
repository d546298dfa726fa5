package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/internal/features/checkout"
	"github.com/mo-amir99/coursehub-server-go/internal/http/routes"
	"github.com/mo-amir99/coursehub-server-go/internal/middleware"
	"github.com/mo-amir99/coursehub-server-go/pkg/cache"
	"github.com/mo-amir99/coursehub-server-go/pkg/config"
	"github.com/mo-amir99/coursehub-server-go/pkg/email"
)

// Server is a fully routed engine over a private database.
type Server struct {
	Engine  *gin.Engine
	DB      *gorm.DB
	Config  *config.Config
	Catalog *cache.Catalog
	Sender  *email.NoopSender
}

type serverOptions struct {
	flags       config.Flags
	provider    checkout.Provider
	mediaClient *http.Client
}

// Option customizes NewServer.
type Option func(*serverOptions)

func WithFlags(flags config.Flags) Option {
	return func(o *serverOptions) { o.flags = flags }
}

func WithProvider(provider checkout.Provider) Option {
	return func(o *serverOptions) { o.provider = provider }
}

func WithMediaClient(client *http.Client) Option {
	return func(o *serverOptions) { o.mediaClient = client }
}

// NewServer wires every route the way cmd/app does, minus the network-facing middleware.
func NewServer(tb testing.TB, opts ...Option) *Server {
	tb.Helper()
	gin.SetMode(gin.TestMode)

	options := serverOptions{flags: config.TestDefaults()}
	for _, opt := range opts {
		opt(&options)
	}

	db := DB(tb)
	cfg := Config(options.flags)
	log := Logger()
	memory := cache.NewMemoryCache()
	tb.Cleanup(func() { _ = memory.Close() })
	catalog := cache.NewCatalog(memory, time.Minute, log)
	sender := email.NewNoopSender()

	engine := gin.New()
	routes.Register(engine, routes.Dependencies{
		Config:      cfg,
		DB:          db,
		Logger:      log,
		Cache:       memory,
		Catalog:     catalog,
		Provider:    options.provider,
		Sender:      sender,
		Guard:       middleware.NewGuard(db, cfg.Auth, log),
		MediaClient: options.mediaClient,
	})

	return &Server{Engine: engine, DB: db, Config: cfg, Catalog: catalog, Sender: sender}
}

// Do sends a JSON request. A non-empty token goes in the Authorization header.
func (s *Server) Do(tb testing.TB, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	tb.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(v)
	case string:
		reader = bytes.NewBufferString(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			tb.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	s.Engine.ServeHTTP(recorder, req)
	return recorder
}

// Decode unmarshals a recorded JSON body into dest.
func Decode(tb testing.TB, recorder *httptest.ResponseRecorder, dest interface{}) {
	tb.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), dest); err != nil {
		tb.Fatalf("decode body %q: %v", recorder.Body.String(), err)
	}
}

// AdminToken seeds an admin profile and returns its token.
func (s *Server) AdminToken(tb testing.TB) string {
	tb.Helper()
	p := SeedProfile(tb, s.DB, AdminEmail, true)
	return Token(tb, p.ID, p.Email)
}

// UserToken seeds a regular profile and returns its token.
func (s *Server) UserToken(tb testing.TB, email string) string {
	tb.Helper()
	p := SeedProfile(tb, s.DB, email, false)
	return Token(tb, p.ID, p.Email)
}
