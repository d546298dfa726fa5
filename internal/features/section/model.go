package section

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursehub-server-go/internal/services/courseduration"
	"github.com/mo-amir99/coursehub-server-go/pkg/database"
	"github.com/mo-amir99/coursehub-server-go/pkg/types"
)

// Section groups lessons inside a course.
type Section struct {
	types.BaseModel

	CourseID    uuid.UUID `gorm:"type:uuid;not null;index;column:course_id" json:"course_id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description *string   `gorm:"type:text" json:"description"`
	SortOrder   int       `gorm:"type:int;not null;default:0;column:sort_order" json:"sort_order"`

	Lessons []lesson.Lesson `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

// TableName overrides the default table name.
func (Section) TableName() string { return "course_sections" }

// CreateInput carries data for creating a new section.
type CreateInput struct {
	CourseID    uuid.UUID
	Title       *string
	Description *string
	SortOrder   *int
}

// UpdateInput captures mutable section fields.
type UpdateInput struct {
	Title       *string
	Description *string
	SortOrder   *int
}

// Get retrieves a section by ID.
func Get(db *gorm.DB, id uuid.UUID) (Section, error) {
	var section Section
	if err := db.First(&section, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return section, ErrSectionNotFound
		}
		return section, err
	}
	return section, nil
}

// Create inserts a section at the end of the course unless an order is given.
func Create(db *gorm.DB, input CreateInput) (Section, error) {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return Section{}, ErrTitleRequired
	}
	if input.SortOrder != nil && *input.SortOrder < 0 {
		return Section{}, ErrOrderInvalid
	}

	section := Section{
		CourseID:    input.CourseID,
		Title:       strings.TrimSpace(*input.Title),
		Description: types.TrimmedPtr(input.Description),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Table("courses").Where("id = ?", input.CourseID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrCourseNotFound
		}

		if input.SortOrder != nil {
			section.SortOrder = *input.SortOrder
		} else {
			next, err := database.NextSortOrder(tx, "course_sections", "course_id", input.CourseID)
			if err != nil {
				return err
			}
			section.SortOrder = next
		}

		return tx.Create(&section).Error
	})
	if err != nil {
		return Section{}, err
	}

	return section, nil
}

// Update modifies an existing section.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Section, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return Section{}, ErrTitleRequired
	}
	if input.SortOrder != nil && *input.SortOrder < 0 {
		return Section{}, ErrOrderInvalid
	}

	section, err := Get(db, id)
	if err != nil {
		return section, err
	}

	if input.Title != nil {
		section.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		section.Description = types.TrimmedPtr(input.Description)
	}
	if input.SortOrder != nil {
		section.SortOrder = *input.SortOrder
	}

	if err := db.Save(&section).Error; err != nil {
		return section, err
	}

	return section, nil
}

// Delete removes a section with its lessons and recomputes the course duration.
func Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	var removed int64
	err := db.Transaction(func(tx *gorm.DB) error {
		section, err := Get(tx, id)
		if err != nil {
			return err
		}

		removed, err = lesson.DeleteBySection(tx, section.ID)
		if err != nil {
			return err
		}

		if err := tx.Delete(&Section{}, "id = ?", section.ID).Error; err != nil {
			return err
		}

		if _, err := courseduration.Recalculate(tx, section.CourseID); err != nil && !errors.Is(err, courseduration.ErrCourseNotFound) {
			return err
		}
		return nil
	})
	return removed, err
}

// DeleteByCourse removes every section of a course. Lessons are removed by the caller.
func DeleteByCourse(tx *gorm.DB, courseID uuid.UUID) error {
	return tx.Where("course_id = ?", courseID).Delete(&Section{}).Error
}

// SortNested orders sections by sort_order, then each section's lessons.
func SortNested(sections []Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].SortOrder < sections[j].SortOrder
	})
	for i := range sections {
		lesson.SortByOrder(sections[i].Lessons)
	}
}

// Nested is a section as shown inside a course detail. Lessons is always
// present, so a section without lessons renders as [].
type Nested struct {
	Section
	Lessons []lesson.Lesson `json:"lessons"`
}

// NestedView converts loaded sections for a detail response.
func NestedView(sections []Section) []Nested {
	nested := make([]Nested, 0, len(sections))
	for _, s := range sections {
		lessons := s.Lessons
		if lessons == nil {
			lessons = []lesson.Lesson{}
		}
		nested = append(nested, Nested{Section: s, Lessons: lessons})
	}
	return nested
}

// FlattenLessons returns the lessons of already sorted sections in reading order.
func FlattenLessons(sections []Section) []lesson.Lesson {
	var total int
	for _, s := range sections {
		total += len(s.Lessons)
	}

	flat := make([]lesson.Lesson, 0, total)
	for _, s := range sections {
		flat = append(flat, s.Lessons...)
	}
	return flat
}
