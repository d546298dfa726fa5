package lesson

import "errors"

var (
	ErrLessonNotFound    = errors.New("lesson not found")
	ErrSectionNotFound   = errors.New("section not found")
	ErrCourseNotFound    = errors.New("course not found")
	ErrTitleRequired     = errors.New("title is required")
	ErrVideoURLRequired  = errors.New("video_url is required")
	ErrSectionRequired   = errors.New("section_id is required")
	ErrSectionIDInvalid  = errors.New("section_id must be a valid id")
	ErrDurationInvalid   = errors.New("video_duration_seconds cannot be negative")
	ErrOrderInvalid      = errors.New("sort_order cannot be negative")
	ErrResourceURLNeeded = errors.New("every resource needs a url")
)
