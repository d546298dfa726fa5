package courseduration

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrCourseNotFound is returned when the course row does not exist.
var ErrCourseNotFound = errors.New("course not found")

// Result describes a recomputed course duration.
type Result struct {
	CourseID        uuid.UUID `json:"course_id"`
	LessonCount     int64     `json:"lesson_count"`
	TotalSeconds    int64     `json:"total_seconds"`
	DurationMinutes int       `json:"duration_minutes"`
}

// Minutes converts a lesson total to whole minutes, rounding half up.
func Minutes(totalSeconds int64) int {
	if totalSeconds <= 0 {
		return 0
	}
	return int(math.Round(float64(totalSeconds) / 60))
}

// Recalculate sums the course's lesson durations and stores duration_minutes.
// Callers pass a transaction so the write lands with the lesson mutation.
func Recalculate(tx *gorm.DB, courseID uuid.UUID) (Result, error) {
	result := Result{CourseID: courseID}

	row := tx.Table("course_lessons").
		Select("COUNT(*), COALESCE(SUM(video_duration_seconds), 0)").
		Where("course_id = ?", courseID).
		Row()
	if err := row.Scan(&result.LessonCount, &result.TotalSeconds); err != nil {
		return result, err
	}

	result.DurationMinutes = Minutes(result.TotalSeconds)

	update := tx.Table("courses").
		Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"duration_minutes": result.DurationMinutes,
			"updated_at":       time.Now().UTC(),
		})
	if update.Error != nil {
		return result, update.Error
	}
	if update.RowsAffected == 0 {
		return result, ErrCourseNotFound
	}

	return result, nil
}

// Service exposes on-demand recalculation for the admin API.
type Service struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewService builds a course duration service instance.
func NewService(db *gorm.DB, logger *slog.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Recalculate recomputes one course inside its own transaction.
func (s *Service) Recalculate(ctx context.Context, courseID uuid.UUID) (Result, error) {
	var result Result
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = Recalculate(tx, courseID)
		return err
	})
	if err != nil {
		return result, err
	}

	s.logger.InfoContext(ctx, "course duration recalculated",
		slog.String("course_id", courseID.String()),
		slog.Int64("lessons", result.LessonCount),
		slog.Int("duration_minutes", result.DurationMinutes),
	)
	return result, nil
}
