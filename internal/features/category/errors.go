package category

import "errors"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrNameRequired     = errors.New("name is required")
	ErrNameTooLong      = errors.New("name must be at most 120 characters")
	ErrSlugInvalid      = errors.New("slug may only contain lowercase letters, numbers and single hyphens")
	ErrSlugTaken        = errors.New("a category with this slug already exists")
)
