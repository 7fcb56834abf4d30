package catalog

import (
	"time"
)

// Course is a published sequence of modules and lessons. A course may be
// non-premium while still containing locked lessons, and vice versa a
// premium course may contain free preview lessons.
type Course struct {
	ID          string    `db:"id"`
	Slug        string    `db:"slug"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	CoverURL    *string   `db:"cover_url"`
	IsPremium   bool      `db:"is_premium"`
	SortOrder   int       `db:"sort_order"`
	Published   bool      `db:"published"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// CourseModule groups lessons inside a course.
type CourseModule struct {
	ID        string    `db:"id"`
	CourseID  string    `db:"course_id"`
	Title     string    `db:"title"`
	SortOrder int       `db:"sort_order"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Lesson is a single unit of course content. IsFree opens the lesson to
// everyone regardless of the course's premium flag.
type Lesson struct {
	ID              string    `db:"id"`
	ModuleID        string    `db:"module_id"`
	Slug            string    `db:"slug"`
	Title           string    `db:"title"`
	YoutubeID       *string   `db:"youtube_id"`
	Content         *string   `db:"content"`
	DurationMinutes *int      `db:"duration_minutes"`
	IsFree          bool      `db:"is_free"`
	SortOrder       int       `db:"sort_order"`
	Published       bool      `db:"published"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// ContentItem is a standalone piece of member content (tool template,
// article, resource link).
type ContentItem struct {
	ID        string    `db:"id"`
	Slug      string    `db:"slug"`
	Title     string    `db:"title"`
	Type      string    `db:"type"`
	Tool      *string   `db:"tool"`
	Body      *string   `db:"body"`
	URL       *string   `db:"url"`
	Tags      []string  `db:"tags"`
	IsPremium bool      `db:"is_premium"`
	SortOrder int       `db:"sort_order"`
	Published bool      `db:"published"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Stream is a recorded community stream.
type Stream struct {
	ID         string    `db:"id"`
	Title      string    `db:"title"`
	YoutubeID  string    `db:"youtube_id"`
	RecordedAt time.Time `db:"recorded_at"`
	IsPremium  bool      `db:"is_premium"`
	Published  bool      `db:"published"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// LessonProgress marks a lesson completed by a Telegram identity. Keyed by
// (telegram_id, lesson_id).
type LessonProgress struct {
	TelegramID int64     `db:"telegram_id"`
	LessonID   string    `db:"lesson_id"`
	Completed  bool      `db:"completed"`
	UpdatedAt  time.Time `db:"updated_at"`
}
