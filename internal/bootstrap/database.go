package bootstrap

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/internal/services/courseduration"
	"github.com/mo-amir99/coursehub-server-go/pkg/config"
	"github.com/mo-amir99/coursehub-server-go/pkg/database/migrations"
)

var registerOnce sync.Once

// RegisterMigrations adds the data migrations to the registry. Safe to call repeatedly.
func RegisterMigrations() {
	registerOnce.Do(func() {
		migrations.Register("0001_sync_lesson_course_ids", syncLessonCourseIDs)
		migrations.Register("0002_recompute_course_durations", recomputeCourseDurations)
	})
}

// ApplyDatabaseMigrations runs registered migrations when enabled via configuration.
func ApplyDatabaseMigrations(db *gorm.DB, cfg *config.Config, logger *slog.Logger) error {
	if !cfg.Database.RunMigrations {
		logger.Info("database migrations skipped", slog.String("env_var", "COURSEHUB_DB_RUN_MIGRATIONS=false"))
		return nil
	}

	RegisterMigrations()
	if err := migrations.Run(db, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("database migrations applied successfully")
	return nil
}

// syncLessonCourseIDs copies each section's course_id onto its lessons.
func syncLessonCourseIDs(tx *gorm.DB) error {
	return tx.Exec(`
		UPDATE course_lessons
		SET course_id = (
			SELECT course_sections.course_id FROM course_sections
			WHERE course_sections.id = course_lessons.section_id
		)
		WHERE EXISTS (
			SELECT 1 FROM course_sections
			WHERE course_sections.id = course_lessons.section_id
			AND course_sections.course_id <> course_lessons.course_id
		)`).Error
}

// recomputeCourseDurations rebuilds duration_minutes for every course.
func recomputeCourseDurations(tx *gorm.DB) error {
	var ids []uuid.UUID
	if err := tx.Table("courses").Pluck("id", &ids).Error; err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := courseduration.Recalculate(tx, id); err != nil {
			return fmt.Errorf("course %s: %w", id, err)
		}
	}
	return nil
}
