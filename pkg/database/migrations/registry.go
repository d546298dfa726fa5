package migrations

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"
)

type namedMigration struct {
	name string
	fn   func(*gorm.DB) error
}

// Applied records a migration that already ran.
type Applied struct {
	Name      string    `gorm:"primaryKey;size:200"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName overrides the default table name.
func (Applied) TableName() string {
	return "schema_migrations"
}

var (
	registryMu sync.RWMutex
	registry   []namedMigration
)

// Register adds a migration function to the registry in FIFO order.
// Registering the same name twice is a programming error and panics.
func Register(name string, fn func(*gorm.DB) error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, existing := range registry {
		if existing.name == name {
			panic(fmt.Sprintf("migration %q registered twice", name))
		}
	}
	registry = append(registry, namedMigration{name: name, fn: fn})
}

// Reset clears the registry. Tests only.
func Reset() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = nil
}

// Run executes registered migrations that have not been applied yet.
// Each migration runs in its own transaction together with its bookkeeping row.
func Run(db *gorm.DB, log *slog.Logger) error {
	registryMu.RLock()
	pending := make([]namedMigration, len(registry))
	copy(pending, registry)
	registryMu.RUnlock()

	if len(pending) == 0 {
		if log != nil {
			log.Info("no database migrations registered")
		}
		return nil
	}

	if err := db.AutoMigrate(&Applied{}); err != nil {
		return fmt.Errorf("prepare schema_migrations: %w", err)
	}

	for _, migration := range pending {
		var applied Applied
		err := db.Where("name = ?", migration.name).First(&applied).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check migration %s: %w", migration.name, err)
		}

		if log != nil {
			log.Info("running migration", slog.String("name", migration.name))
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := migration.fn(tx); err != nil {
				return err
			}
			return tx.Create(&Applied{Name: migration.name, AppliedAt: time.Now().UTC()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %s failed: %w", migration.name, err)
		}

		if log != nil {
			log.Info("migration completed", slog.String("name", migration.name))
		}
	}

	return nil
}
