package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

func (r *repository) ListCourses(ctx context.Context, publishedOnly bool) ([]*Course, error) {
	q := r.psql.Select("*").From("comm_courses").OrderBy("sort_order ASC", "created_at ASC")
	if publishedOnly {
		q = q.Where(squirrel.Eq{"published": true})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var courses []*Course
	if err := pgxscan.Select(ctx, r.db, &courses, query, args...); err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *repository) GetCourseBySlug(ctx context.Context, slug string) (*Course, error) {
	return r.getCourse(ctx, squirrel.Eq{"slug": slug})
}

func (r *repository) GetCourse(ctx context.Context, id string) (*Course, error) {
	return r.getCourse(ctx, squirrel.Eq{"id": id})
}

func (r *repository) getCourse(ctx context.Context, pred squirrel.Eq) (*Course, error) {
	query, args, err := r.psql.Select("*").From("comm_courses").Where(pred).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}

	var c Course
	err = pgxscan.Get(ctx, r.db, &c, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound.WithCause(err)
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) CreateCourse(ctx context.Context, c *Course) error {
	now := time.Now()
	query, args, err := r.psql.Insert("comm_courses").
		Columns("id", "slug", "title", "description", "cover_url", "is_premium", "sort_order", "published", "created_at", "updated_at").
		Values(c.ID, c.Slug, c.Title, c.Description, c.CoverURL, c.IsPremium, c.SortOrder, c.Published, now, now).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) UpdateCourse(ctx context.Context, c *Course) error {
	query, args, err := r.psql.Update("comm_courses").
		Set("slug", c.Slug).
		Set("title", c.Title).
		Set("description", c.Description).
		Set("cover_url", c.CoverURL).
		Set("is_premium", c.IsPremium).
		Set("sort_order", c.SortOrder).
		Set("published", c.Published).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *repository) DeleteCourse(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "comm_courses", id, ErrCourseNotFound)
}

func (r *repository) ListModules(ctx context.Context, courseID string) ([]*CourseModule, error) {
	query, args, err := r.psql.Select("*").
		From("comm_course_modules").
		Where(squirrel.Eq{"course_id": courseID}).
		OrderBy("sort_order ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var modules []*CourseModule
	if err := pgxscan.Select(ctx, r.db, &modules, query, args...); err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *repository) CreateModule(ctx context.Context, m *CourseModule) error {
	now := time.Now()
	query, args, err := r.psql.Insert("comm_course_modules").
		Columns("id", "course_id", "title", "sort_order", "created_at", "updated_at").
		Values(m.ID, m.CourseID, m.Title, m.SortOrder, now, now).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) UpdateModule(ctx context.Context, m *CourseModule) error {
	query, args, err := r.psql.Update("comm_course_modules").
		Set("title", m.Title).
		Set("sort_order", m.SortOrder).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": m.ID}).
		ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteModule(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "comm_course_modules", id, ErrNotFound)
}

func (r *repository) ListLessonsByCourse(ctx context.Context, courseID string, publishedOnly bool) ([]*Lesson, error) {
	q := r.psql.Select("l.*").
		From("comm_lessons l").
		Join("comm_course_modules m ON m.id = l.module_id").
		Where(squirrel.Eq{"m.course_id": courseID}).
		OrderBy("l.sort_order ASC", "l.created_at ASC")
	if publishedOnly {
		q = q.Where(squirrel.Eq{"l.published": true})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var lessons []*Lesson
	if err := pgxscan.Select(ctx, r.db, &lessons, query, args...); err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *repository) GetLessonBySlug(ctx context.Context, courseID, slug string) (*Lesson, error) {
	query, args, err := r.psql.Select("l.*").
		From("comm_lessons l").
		Join("comm_course_modules m ON m.id = l.module_id").
		Where(squirrel.Eq{"m.course_id": courseID, "l.slug": slug}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var l Lesson
	err = pgxscan.Get(ctx, r.db, &l, query, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLessonNotFound.WithCause(err)
		}
		return nil, err
	}
	return &l, nil
}

func (r *repository) CreateLesson(ctx context.Context, l *Lesson) error {
	now := time.Now()
	query, args, err := r.psql.Insert("comm_lessons").
		Columns("id", "module_id", "slug", "title", "youtube_id", "content", "duration_minutes", "is_free", "sort_order", "published", "created_at", "updated_at").
		Values(l.ID, l.ModuleID, l.Slug, l.Title, l.YoutubeID, l.Content, l.DurationMinutes, l.IsFree, l.SortOrder, l.Published, now, now).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) UpdateLesson(ctx context.Context, l *Lesson) error {
	query, args, err := r.psql.Update("comm_lessons").
		Set("module_id", l.ModuleID).
		Set("slug", l.Slug).
		Set("title", l.Title).
		Set("youtube_id", l.YoutubeID).
		Set("content", l.Content).
		Set("duration_minutes", l.DurationMinutes).
		Set("is_free", l.IsFree).
		Set("sort_order", l.SortOrder).
		Set("published", l.Published).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": l.ID}).
		ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrLessonNotFound
	}
	return nil
}

func (r *repository) DeleteLesson(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "comm_lessons", id, ErrLessonNotFound)
}

func (r *repository) deleteByID(ctx context.Context, table, id string, notFound error) error {
	query, args, err := r.psql.Delete(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}

	ct, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
