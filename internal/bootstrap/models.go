package bootstrap

import (
	"github.com/mo-amir99/coursehub-server-go/internal/features/category"
	"github.com/mo-amir99/coursehub-server-go/internal/features/course"
	"github.com/mo-amir99/coursehub-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursehub-server-go/internal/features/profile"
	"github.com/mo-amir99/coursehub-server-go/internal/features/section"
)

// Models lists every table owned by the service, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&profile.Profile{},
		&category.Category{},
		&course.Course{},
		&section.Section{},
		&lesson.Lesson{},
	}
}

// TableNames lists the owned tables, children first, for resets.
func TableNames() []string {
	return []string{
		lesson.Lesson{}.TableName(),
		section.Section{}.TableName(),
		course.Course{}.TableName(),
		category.Category{}.TableName(),
		profile.Profile{}.TableName(),
	}
}
