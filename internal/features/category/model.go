package category

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/pkg/database"
	"github.com/mo-amir99/coursehub-server-go/pkg/types"
	"github.com/mo-amir99/coursehub-server-go/pkg/validation"
)

const maxNameLength = 120

// Category groups courses by topic.
type Category struct {
	types.BaseModel

	Name        string  `gorm:"type:varchar(120);not null" json:"name"`
	Description *string `gorm:"type:text" json:"description"`
	Slug        *string `gorm:"type:varchar(100);uniqueIndex" json:"slug"`
}

// TableName overrides the default table name.
func (Category) TableName() string { return "course_categories" }

// CreateInput carries data for creating a category.
type CreateInput struct {
	Name        *string
	Description *string
	Slug        *string
}

// UpdateInput captures mutable category fields.
type UpdateInput struct {
	Name        *string
	Description *string
	Slug        *string
}

// List returns every category ordered by name.
func List(db *gorm.DB) ([]Category, error) {
	categories := make([]Category, 0)
	err := db.Order("name ASC").Find(&categories).Error
	return categories, err
}

// Get retrieves a category by ID.
func Get(db *gorm.DB, id uuid.UUID) (Category, error) {
	var category Category
	if err := db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return category, ErrCategoryNotFound
		}
		return category, err
	}
	return category, nil
}

// Create inserts a category. The slug is derived from the name when omitted.
func Create(db *gorm.DB, input CreateInput) (Category, error) {
	if input.Name == nil {
		return Category{}, ErrNameRequired
	}
	name, err := validateName(*input.Name)
	if err != nil {
		return Category{}, err
	}

	slug, err := resolveSlug(input.Slug, name)
	if err != nil {
		return Category{}, err
	}

	category := Category{
		Name:        name,
		Description: types.TrimmedPtr(input.Description),
		Slug:        slug,
	}

	if err := db.Create(&category).Error; err != nil {
		if database.IsDuplicate(err) {
			return Category{}, ErrSlugTaken
		}
		return Category{}, err
	}

	return category, nil
}

// Update modifies a category. An empty slug clears it.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Category, error) {
	var name string
	if input.Name != nil {
		validated, err := validateName(*input.Name)
		if err != nil {
			return Category{}, err
		}
		name = validated
	}

	var slug *string
	if input.Slug != nil && strings.TrimSpace(*input.Slug) != "" {
		normalized, err := validation.NormalizeSlug(*input.Slug)
		if err != nil {
			return Category{}, ErrSlugInvalid
		}
		slug = &normalized
	}

	category, err := Get(db, id)
	if err != nil {
		return category, err
	}

	if input.Name != nil {
		category.Name = name
	}
	if input.Description != nil {
		category.Description = types.TrimmedPtr(input.Description)
	}
	if input.Slug != nil {
		category.Slug = slug
	}

	if err := db.Save(&category).Error; err != nil {
		if database.IsDuplicate(err) {
			return category, ErrSlugTaken
		}
		return category, err
	}

	return category, nil
}

// Delete removes a category and detaches its courses.
func Delete(db *gorm.DB, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Table("courses").
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&Category{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return nil
	})
}

func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrNameRequired
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", ErrNameTooLong
	}
	return name, nil
}

func resolveSlug(explicit *string, name string) (*string, error) {
	if explicit != nil && strings.TrimSpace(*explicit) != "" {
		normalized, err := validation.NormalizeSlug(*explicit)
		if err != nil {
			return nil, ErrSlugInvalid
		}
		return &normalized, nil
	}

	derived := validation.Slugify(name)
	if derived == "" {
		return nil, nil
	}
	return &derived, nil
}
