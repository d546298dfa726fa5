package course

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mo-amir99/coursehub-server-go/internal/features/lesson"
	"github.com/mo-amir99/coursehub-server-go/internal/features/section"
	"github.com/mo-amir99/coursehub-server-go/internal/middleware"
	"github.com/mo-amir99/coursehub-server-go/pkg/database"
	"github.com/mo-amir99/coursehub-server-go/pkg/request"
	"github.com/mo-amir99/coursehub-server-go/pkg/response"
)

type viewerPayload struct {
	Course           Detail          `json:"course"`
	Lessons          []lesson.Lesson `json:"lessons"`
	Lesson           lesson.Lesson   `json:"lesson"`
	PreviousLessonID *uuid.UUID      `json:"previousLessonId"`
	NextLessonID     *uuid.UUID      `json:"nextLessonId"`
	HasAccess        bool            `json:"hasAccess"`
}

// ViewLesson returns a published course, its lessons in reading order, the
// requested lesson and whether the caller may watch it.
func (h *Handler) ViewLesson(c *gin.Context) {
	courseID, err := request.UUIDParam(c, "id")
	if err != nil {
		h.respondError(c, err, "Failed to fetch lesson")
		return
	}
	lessonID, err := request.UUIDParam(c, "lessonId")
	if err != nil {
		h.respondError(c, err, "Failed to fetch lesson")
		return
	}

	db, err := database.Session(c.Request.Context(), h.db)
	if err != nil {
		h.respondError(c, err, "Failed to fetch lesson")
		return
	}

	course, err := GetPublishedDetail(db, courseID)
	if err != nil {
		h.respondError(c, err, "Failed to fetch lesson")
		return
	}

	lessons := section.FlattenLessons(course.Sections)
	index := -1
	for i := range lessons {
		if lessons[i].ID == lessonID {
			index = i
			break
		}
	}
	if index < 0 {
		h.respondError(c, ErrLessonNotFound, "Failed to fetch lesson")
		return
	}

	fullAccess := h.callerHasFullAccess(c)
	for i := range lessons {
		if !fullAccess && !h.previewable(lessons[i]) {
			lessons[i].VideoURL = nil
		}
	}

	payload := viewerPayload{
		Lessons:   lessons,
		Lesson:    lessons[index],
		HasAccess: fullAccess || h.previewable(lessons[index]),
	}
	if index > 0 {
		payload.PreviousLessonID = &lessons[index-1].ID
	}
	if index < len(lessons)-1 {
		payload.NextLessonID = &lessons[index+1].ID
	}

	course.Sections = nil
	payload.Course = h.detail(c, course)

	response.OKNoCache(c, payload)
}

// callerHasFullAccess applies the flags first, then the caller's profile.
func (h *Handler) callerHasFullAccess(c *gin.Context) bool {
	if h.flags.HasFullAccess() {
		return true
	}
	p, ok := middleware.ProfileFromContext(c)
	if !ok {
		return false
	}
	return p.IsAdmin || p.HasActiveMembership()
}

func (h *Handler) previewable(l lesson.Lesson) bool {
	return h.flags.Features.PreviewLessons && l.IsPreview
}
