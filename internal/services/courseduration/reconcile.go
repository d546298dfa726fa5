package courseduration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/pkg/metrics"
)

// Drift is a course whose stored duration disagrees with its lessons.
type Drift struct {
	CourseID        uuid.UUID
	StoredMinutes   int
	ComputedMinutes int
}

type durationRow struct {
	ID              uuid.UUID
	DurationMinutes int
	TotalSeconds    int64
}

// FindDrift lists courses whose duration_minutes no longer matches the sum of
// their lessons.
func FindDrift(db *gorm.DB) ([]Drift, error) {
	var rows []durationRow
	err := db.Table("courses AS c").
		Select("c.id AS id, c.duration_minutes AS duration_minutes, COALESCE(SUM(l.video_duration_seconds), 0) AS total_seconds").
		Joins("LEFT JOIN course_lessons l ON l.course_id = c.id").
		Group("c.id, c.duration_minutes").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var drift []Drift
	for _, row := range rows {
		if computed := Minutes(row.TotalSeconds); computed != row.DurationMinutes {
			drift = append(drift, Drift{CourseID: row.ID, StoredMinutes: row.DurationMinutes, ComputedMinutes: computed})
		}
	}
	return drift, nil
}

// ReconcileJob repairs drifted course durations. It implements jobs.Job.
type ReconcileJob struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewReconcileJob creates the periodic duration repair job.
func NewReconcileJob(db *gorm.DB, logger *slog.Logger) *ReconcileJob {
	return &ReconcileJob{db: db, logger: logger}
}

// Name returns the job name.
func (j *ReconcileJob) Name() string {
	return "course_duration_reconcile"
}

// Execute recomputes every drifted course, each in its own transaction.
func (j *ReconcileJob) Execute(ctx context.Context) error {
	db := j.db.WithContext(ctx)

	drift, err := FindDrift(db)
	if err != nil {
		return fmt.Errorf("find drifted courses: %w", err)
	}

	repaired := 0
	for _, d := range drift {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := Recalculate(tx, d.CourseID)
			return err
		})
		if errors.Is(err, ErrCourseNotFound) {
			continue
		}
		if err != nil {
			j.logger.ErrorContext(ctx, "course duration repair failed",
				slog.String("course_id", d.CourseID.String()),
				slog.String("error", err.Error()),
			)
			continue
		}
		repaired++
		j.logger.WarnContext(ctx, "course duration repaired",
			slog.String("course_id", d.CourseID.String()),
			slog.Int("stored_minutes", d.StoredMinutes),
			slog.Int("computed_minutes", d.ComputedMinutes),
		)
	}

	metrics.RecordDurationRepairs(repaired)
	return nil
}
