package course

import "errors"

var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrTitleRequired    = errors.New("title is required")
	ErrLevelInvalid     = errors.New("level must be beginner, intermediate or advanced")
	ErrCategoryInvalid  = errors.New("category_id must be a valid id")
)
