package migrations

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestRunAppliesEachMigrationOnce(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	calls := 0
	Register("create_notes", func(tx *gorm.DB) error {
		calls++
		return tx.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY)").Error
	})

	if err := Run(db, nil); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := Run(db, nil); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected migration to run once, ran %d times", calls)
	}

	var count int64
	db.Model(&Applied{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 applied row, got %d", count)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	Register("dup", func(*gorm.DB) error { return nil })

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate name")
		}
	}()
	Register("dup", func(*gorm.DB) error { return nil })
}
