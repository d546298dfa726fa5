package section

import "errors"

var (
	ErrSectionNotFound = errors.New("section not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrTitleRequired   = errors.New("title is required")
	ErrOrderInvalid    = errors.New("sort_order cannot be negative")
)
