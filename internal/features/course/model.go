package course

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/internal/features/category"
	"github.com/mo-amir99/coursehub-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursehub-server-go/internal/features/section"
	"github.com/mo-amir99/coursehub-server-go/pkg/markdown"
	"github.com/mo-amir99/coursehub-server-go/pkg/pagination"
	"github.com/mo-amir99/coursehub-server-go/pkg/types"
)

// Course represents a course in the catalog.
type Course struct {
	types.BaseModel

	Title           string      `gorm:"type:varchar(200);not null" json:"title"`
	Description     *string     `gorm:"type:text" json:"description"`
	CategoryID      *uuid.UUID  `gorm:"type:uuid;index;column:category_id" json:"category_id"`
	InstructorID    uuid.UUID   `gorm:"type:uuid;not null;index;column:instructor_id" json:"instructor_id"`
	Level           types.Level `gorm:"type:varchar(20);not null;default:'beginner'" json:"level"`
	DurationMinutes int         `gorm:"type:int;not null;default:0;column:duration_minutes" json:"duration_minutes"`
	IsPublished     bool        `gorm:"type:boolean;not null;default:false;index;column:is_published" json:"is_published"`
	ThumbnailURL    *string     `gorm:"type:text;column:thumbnail_url" json:"thumbnail_url"`

	Category *category.Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Sections []section.Section  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`
}

// TableName overrides the default table name.
func (Course) TableName() string { return "courses" }

// Detail is a course with its sections nested and its description rendered for display.
type Detail struct {
	Course
	Sections        []section.Nested `json:"sections"`
	DescriptionHTML string           `json:"descriptionHtml"`
}

// ListFilters narrows the public catalog.
type ListFilters struct {
	// Category is a category id or slug.
	Category string
	Level    *types.Level
	Limit    int
}

// AdminFilters narrows the admin listing.
type AdminFilters struct {
	Keyword   string
	Published *bool
}

// CreateInput carries data for creating a new course.
type CreateInput struct {
	Title        *string
	Description  *string
	CategoryID   *uuid.UUID
	InstructorID uuid.UUID
	Level        *string
	ThumbnailURL *string
}

// UpdateInput captures mutable course fields.
type UpdateInput struct {
	Title              *string
	Description        *string
	CategoryIDProvided bool
	CategoryID         *uuid.UUID
	Level              *string
	ThumbnailURL       *string
	IsPublished        *bool
}

// ListPublished returns published courses, newest first.
func ListPublished(db *gorm.DB, filters ListFilters) ([]Course, error) {
	query := db.Model(&Course{}).Preload("Category").Where("is_published = ?", true)

	if raw := strings.TrimSpace(filters.Category); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			query = query.Where("category_id = ?", id)
		} else {
			query = query.Where("category_id IN (?)",
				db.Table("course_categories").Select("id").Where("slug = ?", strings.ToLower(raw)))
		}
	}

	if filters.Level != nil {
		query = query.Where("level = ?", *filters.Level)
	}

	limit := filters.Limit
	if limit <= 0 || limit > pagination.MaxLimit {
		limit = pagination.DefaultLimit
	}

	courses := make([]Course, 0)
	err := query.Order("created_at DESC").Limit(limit).Find(&courses).Error
	return courses, err
}

// ListAll returns every course, drafts included, for the admin area.
func ListAll(db *gorm.DB, filters AdminFilters, params pagination.Params) ([]Course, int64, error) {
	query := db.Model(&Course{})

	if keyword := strings.TrimSpace(filters.Keyword); keyword != "" {
		like := "%" + strings.ToLower(keyword) + "%"
		query = query.Where("LOWER(title) LIKE ?", like)
	}
	if filters.Published != nil {
		query = query.Where("is_published = ?", *filters.Published)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	courses := make([]Course, 0)
	err := query.Preload("Category").
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&courses).Error
	return courses, total, err
}

// Get retrieves a course row without associations.
func Get(db *gorm.DB, id uuid.UUID) (Course, error) {
	var course Course
	if err := db.First(&course, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return course, ErrCourseNotFound
		}
		return course, err
	}
	return course, nil
}

// GetPublishedDetail loads a published course with sorted sections and lessons.
// Drafts are reported as not found regardless of the caller.
func GetPublishedDetail(db *gorm.DB, id uuid.UUID) (Course, error) {
	return loadNested(db.Where("is_published = ?", true), id)
}

// GetDetail loads any course with sorted sections and lessons.
func GetDetail(db *gorm.DB, id uuid.UUID) (Course, error) {
	return loadNested(db, id)
}

func loadNested(query *gorm.DB, id uuid.UUID) (Course, error) {
	var course Course
	err := query.
		Preload("Category").
		Preload("Sections").
		Preload("Sections.Lessons").
		First(&course, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return course, ErrCourseNotFound
		}
		return course, err
	}

	section.SortNested(course.Sections)
	return course, nil
}

// Create inserts a draft course owned by the instructor.
func Create(db *gorm.DB, input CreateInput) (Course, error) {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return Course{}, ErrTitleRequired
	}

	level := types.LevelBeginner
	if input.Level != nil && strings.TrimSpace(*input.Level) != "" {
		parsed, err := types.ParseLevel(*input.Level)
		if err != nil {
			return Course{}, ErrLevelInvalid
		}
		level = parsed
	}

	course := Course{
		Title:        strings.TrimSpace(*input.Title),
		Description:  types.TrimmedPtr(input.Description),
		CategoryID:   input.CategoryID,
		InstructorID: input.InstructorID,
		Level:        level,
		IsPublished:  false,
		ThumbnailURL: types.TrimmedPtr(input.ThumbnailURL),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if course.CategoryID != nil {
			if _, err := category.Get(tx, *course.CategoryID); err != nil {
				if errors.Is(err, category.ErrCategoryNotFound) {
					return ErrCategoryNotFound
				}
				return err
			}
		}
		return tx.Create(&course).Error
	})
	if err != nil {
		return Course{}, err
	}

	return course, nil
}

// Update modifies a course. Publishing is an explicit field.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Course, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return Course{}, ErrTitleRequired
	}

	var level types.Level
	if input.Level != nil {
		parsed, err := types.ParseLevel(*input.Level)
		if err != nil {
			return Course{}, ErrLevelInvalid
		}
		level = parsed
	}

	course, err := Get(db, id)
	if err != nil {
		return course, err
	}

	if input.CategoryIDProvided && input.CategoryID != nil {
		if _, err := category.Get(db, *input.CategoryID); err != nil {
			if errors.Is(err, category.ErrCategoryNotFound) {
				return course, ErrCategoryNotFound
			}
			return course, err
		}
	}

	if input.Title != nil {
		course.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		course.Description = types.TrimmedPtr(input.Description)
	}
	if input.CategoryIDProvided {
		course.CategoryID = input.CategoryID
	}
	if input.Level != nil {
		course.Level = level
	}
	if input.ThumbnailURL != nil {
		course.ThumbnailURL = types.TrimmedPtr(input.ThumbnailURL)
	}
	if input.IsPublished != nil {
		course.IsPublished = *input.IsPublished
	}

	if err := db.Save(&course).Error; err != nil {
		return course, err
	}

	return course, nil
}

// Delete removes a course with its sections and lessons.
func Delete(db *gorm.DB, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}
		if _, err := lesson.DeleteByCourse(tx, id); err != nil {
			return err
		}
		if err := section.DeleteByCourse(tx, id); err != nil {
			return err
		}
		return tx.Delete(&Course{}, "id = ?", id).Error
	})
}

// NewDetail renders the course description. A render failure leaves the HTML empty.
func NewDetail(course Course) (Detail, error) {
	html, err := markdown.RenderPtr(course.Description)
	return Detail{
		Course:          course,
		Sections:        section.NestedView(course.Sections),
		DescriptionHTML: html,
	}, err
}
