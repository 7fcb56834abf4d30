package catalog

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
)

// UpsertProgress records completion keyed by (telegram_id, lesson_id), so
// repeat submissions update the same row.
func (r *repository) UpsertProgress(ctx context.Context, telegramID int64, lessonID string, completed bool) error {
	query, args, err := r.psql.Insert("comm_lesson_progress").
		Columns("telegram_id", "lesson_id", "completed", "updated_at").
		Values(telegramID, lessonID, completed, time.Now()).
		Suffix(`ON CONFLICT (telegram_id, lesson_id) DO UPDATE SET
			completed = EXCLUDED.completed,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return err
}

// CompletedLessons returns the set of lesson ids in a course the user has
// completed.
func (r *repository) CompletedLessons(ctx context.Context, telegramID int64, courseID string) (map[string]bool, error) {
	const query = `
		SELECT p.lesson_id
		FROM comm_lesson_progress p
		JOIN comm_lessons l ON l.id = p.lesson_id
		JOIN comm_course_modules m ON m.id = l.module_id
		WHERE p.telegram_id = $1 AND m.course_id = $2 AND p.completed`

	var ids []string
	if err := pgxscan.Select(ctx, r.db, &ids, query, telegramID, courseID); err != nil {
		return nil, err
	}

	done := make(map[string]bool, len(ids))
	for _, id := range ids {
		done[id] = true
	}
	return done, nil
}
