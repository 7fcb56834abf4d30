package catalog

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/communityhq/membergate/internal/database"
)

// Repository defines the database operations for the catalog module.
type Repository interface {
	// Courses
	ListCourses(ctx context.Context, publishedOnly bool) ([]*Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (*Course, error)
	GetCourse(ctx context.Context, id string) (*Course, error)
	CreateCourse(ctx context.Context, c *Course) error
	UpdateCourse(ctx context.Context, c *Course) error
	DeleteCourse(ctx context.Context, id string) error

	// Modules
	ListModules(ctx context.Context, courseID string) ([]*CourseModule, error)
	CreateModule(ctx context.Context, m *CourseModule) error
	UpdateModule(ctx context.Context, m *CourseModule) error
	DeleteModule(ctx context.Context, id string) error

	// Lessons
	ListLessonsByCourse(ctx context.Context, courseID string, publishedOnly bool) ([]*Lesson, error)
	GetLessonBySlug(ctx context.Context, courseID, slug string) (*Lesson, error)
	CreateLesson(ctx context.Context, l *Lesson) error
	UpdateLesson(ctx context.Context, l *Lesson) error
	DeleteLesson(ctx context.Context, id string) error

	// Content items
	ListContentItems(ctx context.Context, publishedOnly bool, tool string) ([]*ContentItem, error)
	CreateContentItem(ctx context.Context, item *ContentItem) error
	UpdateContentItem(ctx context.Context, item *ContentItem) error
	DeleteContentItem(ctx context.Context, id string) error

	// Streams
	ListStreams(ctx context.Context, publishedOnly bool) ([]*Stream, error)
	CreateStream(ctx context.Context, s *Stream) error
	UpdateStream(ctx context.Context, s *Stream) error
	DeleteStream(ctx context.Context, id string) error

	// Lesson progress
	UpsertProgress(ctx context.Context, telegramID int64, lessonID string, completed bool) error
	CompletedLessons(ctx context.Context, telegramID int64, courseID string) (map[string]bool, error)
}

type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new catalog repository with the given database connection.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}
