package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mo-amir99/coursehub-server-go/internal/features/category"
	"github.com/mo-amir99/coursehub-server-go/internal/features/course"
	"github.com/mo-amir99/coursehub-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursehub-server-go/internal/features/profile"
	"github.com/mo-amir99/coursehub-server-go/internal/features/section"
	"github.com/mo-amir99/coursehub-server-go/pkg/types"
)

func SeedProfile(tb testing.TB, db *gorm.DB, email string, admin bool) profile.Profile {
	tb.Helper()
	p := profile.Profile{ID: uuid.New(), Email: email, IsAdmin: admin}
	if err := db.Create(&p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedCategory(tb testing.TB, db *gorm.DB, name, slug string) category.Category {
	tb.Helper()
	cat := category.Category{Name: name, Slug: types.StringPtr(slug)}
	if err := db.Create(&cat).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return cat
}

func SeedCourse(tb testing.TB, db *gorm.DB, title string, published bool) course.Course {
	tb.Helper()
	c := course.Course{
		Title:        title,
		Description:  types.StringPtr("# " + title),
		InstructorID: uuid.New(),
		Level:        types.LevelBeginner,
		IsPublished:  published,
	}
	if err := db.Create(&c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedSection(tb testing.TB, db *gorm.DB, courseID uuid.UUID, title string, order int) section.Section {
	tb.Helper()
	s := section.Section{CourseID: courseID, Title: title, SortOrder: order}
	if err := db.Create(&s).Error; err != nil {
		tb.Fatalf("seed section: %v", err)
	}
	return s
}

// SeedLesson inserts a lesson row directly; course duration is not recomputed.
func SeedLesson(tb testing.TB, db *gorm.DB, sec section.Section, title string, order, seconds int, preview bool) lesson.Lesson {
	tb.Helper()
	l := lesson.Lesson{
		SectionID:            sec.ID,
		CourseID:             sec.CourseID,
		Title:                title,
		VideoURL:             types.StringPtr("https://cdn.example.com/" + title + ".m3u8"),
		VideoDurationSeconds: seconds,
		SortOrder:            order,
		IsPreview:            preview,
	}
	if err := db.Create(&l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

// CountRows counts every row in table.
func CountRows(tb testing.TB, db *gorm.DB, table string) int64 {
	tb.Helper()
	var n int64
	if err := db.Table(table).Count(&n).Error; err != nil {
		tb.Fatalf("count %s: %v", table, err)
	}
	return n
}
