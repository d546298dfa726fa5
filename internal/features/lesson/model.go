package lesson

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/internal/services/courseduration"
	"github.com/mo-amir99/coursehub-server-go/pkg/database"
	"github.com/mo-amir99/coursehub-server-go/pkg/types"
)

// Resource is a downloadable or linked item shown next to a lesson.
type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Type  string `json:"type,omitempty"`
}

// Lesson is a single video inside a course section.
type Lesson struct {
	types.BaseModel

	SectionID            uuid.UUID                     `gorm:"type:uuid;not null;index;column:section_id" json:"section_id"`
	CourseID             uuid.UUID                     `gorm:"type:uuid;not null;index;column:course_id" json:"course_id"`
	Title                string                        `gorm:"type:varchar(200);not null" json:"title"`
	Description          *string                       `gorm:"type:text" json:"description"`
	VideoURL             *string                       `gorm:"type:text;column:video_url" json:"video_url"`
	ThumbnailURL         *string                       `gorm:"type:text;column:thumbnail_url" json:"thumbnail_url"`
	VideoDurationSeconds int                           `gorm:"type:int;not null;default:0;column:video_duration_seconds" json:"video_duration_seconds"`
	SortOrder            int                           `gorm:"type:int;not null;default:0;column:sort_order" json:"sort_order"`
	IsPreview            bool                          `gorm:"type:boolean;not null;default:false;column:is_preview" json:"is_preview"`
	HasQuiz              bool                          `gorm:"type:boolean;not null;default:false;column:has_quiz" json:"has_quiz"`
	Resources            datatypes.JSONSlice[Resource] `gorm:"column:resources" json:"resources"`
}

// TableName overrides the default table name.
func (Lesson) TableName() string { return "course_lessons" }

// sectionRef is the slice of a section row needed to place a lesson.
type sectionRef struct {
	ID       uuid.UUID
	CourseID uuid.UUID
}

func (sectionRef) TableName() string { return "course_sections" }

// CreateInput carries data for creating a new lesson.
type CreateInput struct {
	SectionID uuid.UUID
	// CourseID, when set, must own the section.
	CourseID             *uuid.UUID
	Title                *string
	Description          *string
	VideoURL             *string
	ThumbnailURL         *string
	VideoDurationSeconds *int
	SortOrder            *int
	IsPreview            *bool
	HasQuiz              *bool
	Resources            []Resource
}

// UpdateInput captures mutable lesson fields. Nil means unchanged.
type UpdateInput struct {
	SectionID            *uuid.UUID
	Title                *string
	Description          *string
	VideoURL             *string
	ThumbnailURL         *string
	VideoDurationSeconds *int
	SortOrder            *int
	IsPreview            *bool
	HasQuiz              *bool
	Resources            *[]Resource
}

// Get retrieves a lesson by ID.
func Get(db *gorm.DB, id uuid.UUID) (Lesson, error) {
	var lesson Lesson
	if err := db.First(&lesson, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return lesson, ErrLessonNotFound
		}
		return lesson, err
	}
	return lesson, nil
}

// Create validates input, inserts the lesson under its section and recomputes
// the course duration in the same transaction.
func Create(db *gorm.DB, input CreateInput) (Lesson, error) {
	title, videoURL, err := validateRequired(input.Title, input.VideoURL)
	if err != nil {
		return Lesson{}, err
	}
	if input.SectionID == uuid.Nil {
		return Lesson{}, ErrSectionRequired
	}
	if input.VideoDurationSeconds != nil && *input.VideoDurationSeconds < 0 {
		return Lesson{}, ErrDurationInvalid
	}
	if input.SortOrder != nil && *input.SortOrder < 0 {
		return Lesson{}, ErrOrderInvalid
	}
	resources, err := normalizeResources(input.Resources)
	if err != nil {
		return Lesson{}, err
	}

	lesson := Lesson{
		SectionID:    input.SectionID,
		Title:        title,
		Description:  types.TrimmedPtr(input.Description),
		VideoURL:     &videoURL,
		ThumbnailURL: types.TrimmedPtr(input.ThumbnailURL),
		Resources:    resources,
	}
	if input.VideoDurationSeconds != nil {
		lesson.VideoDurationSeconds = *input.VideoDurationSeconds
	}
	if input.IsPreview != nil {
		lesson.IsPreview = *input.IsPreview
	}
	if input.HasQuiz != nil {
		lesson.HasQuiz = *input.HasQuiz
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if input.CourseID != nil {
			if err := ensureCourse(tx, *input.CourseID); err != nil {
				return err
			}
		}

		section, err := findSection(tx, input.SectionID)
		if err != nil {
			return err
		}
		if input.CourseID != nil && section.CourseID != *input.CourseID {
			return ErrSectionNotFound
		}
		lesson.CourseID = section.CourseID

		if input.SortOrder != nil {
			lesson.SortOrder = *input.SortOrder
		} else {
			next, err := database.NextSortOrder(tx, "course_lessons", "section_id", section.ID)
			if err != nil {
				return err
			}
			lesson.SortOrder = next
		}

		if err := tx.Create(&lesson).Error; err != nil {
			return err
		}

		_, err = courseduration.Recalculate(tx, lesson.CourseID)
		return err
	})
	if err != nil {
		return Lesson{}, mapCourseErr(err)
	}

	return lesson, nil
}

// Update modifies an existing lesson. Moving it to another section moves its
// course_id with it and recomputes both courses.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Lesson, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return Lesson{}, ErrTitleRequired
	}
	if input.VideoURL != nil && strings.TrimSpace(*input.VideoURL) == "" {
		return Lesson{}, ErrVideoURLRequired
	}
	if input.SectionID != nil && *input.SectionID == uuid.Nil {
		return Lesson{}, ErrSectionRequired
	}
	if input.VideoDurationSeconds != nil && *input.VideoDurationSeconds < 0 {
		return Lesson{}, ErrDurationInvalid
	}
	if input.SortOrder != nil && *input.SortOrder < 0 {
		return Lesson{}, ErrOrderInvalid
	}
	var resources datatypes.JSONSlice[Resource]
	if input.Resources != nil {
		normalized, err := normalizeResources(*input.Resources)
		if err != nil {
			return Lesson{}, err
		}
		resources = normalized
	}

	var lesson Lesson
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		lesson, err = Get(tx, id)
		if err != nil {
			return err
		}
		previousCourse := lesson.CourseID

		if input.SectionID != nil && *input.SectionID != lesson.SectionID {
			section, err := findSection(tx, *input.SectionID)
			if err != nil {
				return err
			}
			lesson.SectionID = section.ID
			lesson.CourseID = section.CourseID
		}
		if input.Title != nil {
			lesson.Title = strings.TrimSpace(*input.Title)
		}
		if input.Description != nil {
			lesson.Description = types.TrimmedPtr(input.Description)
		}
		if input.VideoURL != nil {
			lesson.VideoURL = types.TrimmedPtr(input.VideoURL)
		}
		if input.ThumbnailURL != nil {
			lesson.ThumbnailURL = types.TrimmedPtr(input.ThumbnailURL)
		}
		if input.VideoDurationSeconds != nil {
			lesson.VideoDurationSeconds = *input.VideoDurationSeconds
		}
		if input.SortOrder != nil {
			lesson.SortOrder = *input.SortOrder
		}
		if input.IsPreview != nil {
			lesson.IsPreview = *input.IsPreview
		}
		if input.HasQuiz != nil {
			lesson.HasQuiz = *input.HasQuiz
		}
		if input.Resources != nil {
			lesson.Resources = resources
		}

		if err := tx.Save(&lesson).Error; err != nil {
			return err
		}

		if _, err := courseduration.Recalculate(tx, lesson.CourseID); err != nil {
			return err
		}
		if previousCourse != lesson.CourseID {
			if _, err := courseduration.Recalculate(tx, previousCourse); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Lesson{}, mapCourseErr(err)
	}

	return lesson, nil
}

// Delete removes a lesson and recomputes its course duration.
func Delete(db *gorm.DB, id uuid.UUID) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		lesson, err := Get(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&Lesson{}, "id = ?", id).Error; err != nil {
			return err
		}
		_, err = courseduration.Recalculate(tx, lesson.CourseID)
		return err
	})
	return mapCourseErr(err)
}

// DeleteBySection removes every lesson of a section. Callers own the
// transaction and the duration recompute.
func DeleteBySection(tx *gorm.DB, sectionID uuid.UUID) (int64, error) {
	result := tx.Where("section_id = ?", sectionID).Delete(&Lesson{})
	return result.RowsAffected, result.Error
}

// DeleteByCourse removes every lesson of a course.
func DeleteByCourse(tx *gorm.DB, courseID uuid.UUID) (int64, error) {
	result := tx.Where("course_id = ?", courseID).Delete(&Lesson{})
	return result.RowsAffected, result.Error
}

// SortByOrder orders lessons by sort_order, keeping insertion order on ties.
func SortByOrder(lessons []Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].SortOrder < lessons[j].SortOrder
	})
}

func validateRequired(title, videoURL *string) (string, string, error) {
	if title == nil || strings.TrimSpace(*title) == "" {
		return "", "", ErrTitleRequired
	}
	if videoURL == nil || strings.TrimSpace(*videoURL) == "" {
		return "", "", ErrVideoURLRequired
	}
	return strings.TrimSpace(*title), strings.TrimSpace(*videoURL), nil
}

func normalizeResources(items []Resource) (datatypes.JSONSlice[Resource], error) {
	out := make(datatypes.JSONSlice[Resource], 0, len(items))
	for _, item := range items {
		item.URL = strings.TrimSpace(item.URL)
		item.Title = strings.TrimSpace(item.Title)
		item.Type = strings.TrimSpace(item.Type)
		if item.URL == "" {
			return nil, ErrResourceURLNeeded
		}
		if item.Title == "" {
			item.Title = item.URL
		}
		out = append(out, item)
	}
	return out, nil
}

func findSection(tx *gorm.DB, id uuid.UUID) (sectionRef, error) {
	var ref sectionRef
	if err := tx.Select("id", "course_id").First(&ref, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ref, ErrSectionNotFound
		}
		return ref, err
	}
	return ref, nil
}

func ensureCourse(tx *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := tx.Table("courses").Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func mapCourseErr(err error) error {
	if errors.Is(err, courseduration.ErrCourseNotFound) {
		return ErrCourseNotFound
	}
	return err
}
