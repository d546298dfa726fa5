package database

import (
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/pkg/metrics"
)

var connectionErrorPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"connection timed out",
	"eof",
	"bad connection",
	"invalid connection",
	"closed network connection",
	"server closed",
}

// ReconnectPlugin pings the pool before each statement and retries when the connection dropped.
type ReconnectPlugin struct {
	logger         *slog.Logger
	maxRetries     int
	retryDelay     time.Duration
	reconnectCount atomic.Int64
}

// NewReconnectPlugin creates a new reconnect plugin.
func NewReconnectPlugin(logger *slog.Logger) *ReconnectPlugin {
	return &ReconnectPlugin{
		logger:     logger,
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
	}
}

// Name returns the plugin name.
func (p *ReconnectPlugin) Name() string {
	return "reconnect_plugin"
}

// Initialize registers the health check ahead of every statement kind.
func (p *ReconnectPlugin) Initialize(db *gorm.DB) error {
	callbacks := db.Callback()
	registrations := []struct {
		name     string
		register func() error
	}{
		{"query", func() error { return callbacks.Query().Before("gorm:query").Register("reconnect:before_query", p.beforeStatement) }},
		{"create", func() error { return callbacks.Create().Before("gorm:create").Register("reconnect:before_create", p.beforeStatement) }},
		{"update", func() error { return callbacks.Update().Before("gorm:update").Register("reconnect:before_update", p.beforeStatement) }},
		{"delete", func() error { return callbacks.Delete().Before("gorm:delete").Register("reconnect:before_delete", p.beforeStatement) }},
		{"row", func() error { return callbacks.Row().Before("gorm:row").Register("reconnect:before_row", p.beforeStatement) }},
		{"raw", func() error { return callbacks.Raw().Before("gorm:raw").Register("reconnect:before_raw", p.beforeStatement) }},
	}

	for _, registration := range registrations {
		if err := registration.register(); err != nil {
			return err
		}
	}
	return nil
}

func (p *ReconnectPlugin) beforeStatement(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	if err := sqlDB.Ping(); err != nil && isConnectionError(err) {
		p.logger.Warn("database connection lost, attempting to reconnect", slog.String("error", err.Error()))
		if !p.reconnect(sqlDB) {
			p.logger.Error("database reconnection failed after retries")
		}
	}
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return true
	}

	message := strings.ToLower(err.Error())
	for _, pattern := range connectionErrorPatterns {
		if strings.Contains(message, pattern) {
			return true
		}
	}
	return false
}

func (p *ReconnectPlugin) reconnect(sqlDB *sql.DB) bool {
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		time.Sleep(p.retryDelay * time.Duration(attempt))

		if err := sqlDB.Ping(); err == nil {
			total := p.reconnectCount.Add(1)
			metrics.RecordDBReconnect()
			p.logger.Info("database reconnection successful",
				slog.Int("attempt", attempt),
				slog.Int64("total_reconnects", total),
			)
			return true
		}

		p.logger.Warn("reconnection attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", p.maxRetries),
		)
	}
	return false
}

// ReconnectCount returns the total number of successful reconnections.
func (p *ReconnectPlugin) ReconnectCount() int64 {
	return p.reconnectCount.Load()
}
