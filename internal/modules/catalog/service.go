package catalog

import (
	"context"
	"log/slog"

	"github.com/communityhq/membergate/internal/entitlement"
	"github.com/communityhq/membergate/internal/modules/identity"
)

// CourseSummary is a course plus whether its premium content is open to the
// caller.
type CourseSummary struct {
	Course     *Course
	Accessible bool
}

// LessonSummary annotates a lesson with the caller's access and completion.
type LessonSummary struct {
	Lesson     *Lesson
	Accessible bool
	Completed  bool
}

// ModuleDetail is a module with its annotated lessons.
type ModuleDetail struct {
	Module  *CourseModule
	Lessons []LessonSummary
}

// Progress counts completion over the lessons the caller can actually
// access; locked lessons are excluded from both numbers.
type Progress struct {
	Completed int
	Total     int
}

// CourseDetail is the full course page payload.
type CourseDetail struct {
	Course   *Course
	Modules  []ModuleDetail
	Progress Progress
}

// LessonView is the outcome of a lesson access attempt.
type LessonView struct {
	Course   *Course
	Lesson   *Lesson
	Decision entitlement.Decision
	Redirect string
}

// ContentView is a content item with locked bodies stripped.
type ContentView struct {
	Item       *ContentItem
	Accessible bool
}

// StreamView is a stream with the video id stripped when locked.
type StreamView struct {
	Stream     *Stream
	Accessible bool
}

// Service defines the catalog module's business logic: entitlement-annotated
// reads for members and CRUD for admins.
type Service interface {
	ListCourses(ctx context.Context, user *identity.UnifiedUser) ([]CourseSummary, error)
	GetCourse(ctx context.Context, user *identity.UnifiedUser, slug string) (*CourseDetail, error)
	GetLesson(ctx context.Context, user *identity.UnifiedUser, courseSlug, lessonSlug, requestedPath string) (*LessonView, error)
	SetProgress(ctx context.Context, user *identity.UnifiedUser, lessonID string, completed bool) error
	ListContent(ctx context.Context, user *identity.UnifiedUser, tool string) ([]ContentView, error)
	ListStreams(ctx context.Context, user *identity.UnifiedUser) ([]StreamView, error)

	AdminService
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new catalog service.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{repo: repo, logger: logger}
}

func courseResource(c *Course) entitlement.Resource {
	return entitlement.Resource{
		Kind:      entitlement.KindCourse,
		ID:        c.ID,
		Slug:      c.Slug,
		IsFree:    !c.IsPremium,
		IsPremium: c.IsPremium,
	}
}

// lessonResource builds the lesson's access descriptor: the premium flag
// comes from the course, the free flag from the lesson itself.
func lessonResource(course *Course, l *Lesson) entitlement.Resource {
	return entitlement.Resource{
		Kind:      entitlement.KindLesson,
		ID:        l.ID,
		Slug:      l.Slug,
		IsFree:    l.IsFree || !course.IsPremium,
		IsPremium: course.IsPremium,
	}
}

func (s *service) ListCourses(ctx context.Context, user *identity.UnifiedUser) ([]CourseSummary, error) {
	courses, err := s.repo.ListCourses(ctx, true)
	if err != nil {
		return nil, err
	}

	out := make([]CourseSummary, 0, len(courses))
	for _, c := range courses {
		d := entitlement.CanAccess(user, courseResource(c), entitlement.Proof{})
		out = append(out, CourseSummary{Course: c, Accessible: d.Allowed})
	}
	return out, nil
}

// GetCourse assembles the course page: modules, lessons annotated with
// access and completion, and progress counted only over accessible lessons.
func (s *service) GetCourse(ctx context.Context, user *identity.UnifiedUser, slug string) (*CourseDetail, error) {
	course, err := s.repo.GetCourseBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !course.Published && !user.IsAdmin() {
		return nil, ErrCourseNotFound
	}

	modules, err := s.repo.ListModules(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	lessons, err := s.repo.ListLessonsByCourse(ctx, course.ID, !user.IsAdmin())
	if err != nil {
		return nil, err
	}

	done := map[string]bool{}
	if user.HasTelegram() {
		done, err = s.repo.CompletedLessons(ctx, user.TelegramID, course.ID)
		if err != nil {
			// Progress is decoration; the course page still renders.
			s.logger.Error("failed to load lesson progress", "error", err, "course_id", course.ID)
			done = map[string]bool{}
		}
	}

	detail := &CourseDetail{Course: course}
	byModule := make(map[string][]LessonSummary)
	for _, l := range lessons {
		d := entitlement.CanAccess(user, lessonResource(course, l), entitlement.Proof{})
		summary := LessonSummary{
			Lesson:     l,
			Accessible: d.Allowed,
			Completed:  done[l.ID],
		}
		byModule[l.ModuleID] = append(byModule[l.ModuleID], summary)

		if d.Allowed {
			detail.Progress.Total++
			if summary.Completed {
				detail.Progress.Completed++
			}
		}
	}

	for _, m := range modules {
		detail.Modules = append(detail.Modules, ModuleDetail{Module: m, Lessons: byModule[m.ID]})
	}
	return detail, nil
}

// GetLesson gates a single lesson. A free lesson inside a premium course is
// open to everyone.
func (s *service) GetLesson(ctx context.Context, user *identity.UnifiedUser, courseSlug, lessonSlug, requestedPath string) (*LessonView, error) {
	course, err := s.repo.GetCourseBySlug(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	lesson, err := s.repo.GetLessonBySlug(ctx, course.ID, lessonSlug)
	if err != nil {
		return nil, err
	}
	if (!course.Published || !lesson.Published) && !user.IsAdmin() {
		return nil, ErrLessonNotFound
	}

	res := lessonResource(course, lesson)
	decision := entitlement.CanAccess(user, res, entitlement.Proof{})

	view := &LessonView{Course: course, Lesson: lesson, Decision: decision}
	if !decision.Allowed {
		view.Redirect = entitlement.DenyRedirect(user, res, requestedPath)
	}
	return view, nil
}

// SetProgress records lesson completion for the caller's Telegram identity.
func (s *service) SetProgress(ctx context.Context, user *identity.UnifiedUser, lessonID string, completed bool) error {
	if !user.HasTelegram() {
		return ErrUnauthenticated
	}
	return s.repo.UpsertProgress(ctx, user.TelegramID, lessonID, completed)
}

func (s *service) ListContent(ctx context.Context, user *identity.UnifiedUser, tool string) ([]ContentView, error) {
	items, err := s.repo.ListContentItems(ctx, true, tool)
	if err != nil {
		return nil, err
	}

	out := make([]ContentView, 0, len(items))
	for _, item := range items {
		res := entitlement.Resource{
			Kind:      entitlement.KindContent,
			ID:        item.ID,
			Slug:      item.Slug,
			IsFree:    !item.IsPremium,
			IsPremium: item.IsPremium,
		}
		d := entitlement.CanAccess(user, res, entitlement.Proof{})
		out = append(out, ContentView{Item: item, Accessible: d.Allowed})
	}
	return out, nil
}

func (s *service) ListStreams(ctx context.Context, user *identity.UnifiedUser) ([]StreamView, error) {
	streams, err := s.repo.ListStreams(ctx, true)
	if err != nil {
		return nil, err
	}

	out := make([]StreamView, 0, len(streams))
	for _, st := range streams {
		res := entitlement.Resource{
			Kind:      entitlement.KindStream,
			ID:        st.ID,
			IsFree:    !st.IsPremium,
			IsPremium: st.IsPremium,
		}
		d := entitlement.CanAccess(user, res, entitlement.Proof{})
		out = append(out, StreamView{Stream: st, Accessible: d.Allowed})
	}
	return out, nil
}
