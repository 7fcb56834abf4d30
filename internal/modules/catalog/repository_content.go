package catalog

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
)

func (r *repository) ListContentItems(ctx context.Context, publishedOnly bool, tool string) ([]*ContentItem, error) {
	q := r.psql.Select("*").From("comm_content_items").OrderBy("sort_order ASC", "created_at DESC")
	if publishedOnly {
		q = q.Where(squirrel.Eq{"published": true})
	}
	if tool != "" {
		q = q.Where(squirrel.Eq{"tool": tool})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var items []*ContentItem
	if err := pgxscan.Select(ctx, r.db, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CreateContentItem(ctx context.Context, item *ContentItem) error {
	now := time.Now()
	query, args, err := r.psql.Insert("comm_content_items").
		Columns("id", "slug", "title", "type", "tool", "body", "url", "tags", "is_premium", "sort_order", "published", "created_at", "updated_at").
		Values(item.ID, item.Slug, item.Title, item.Type, item.Tool, item.Body, item.URL, item.Tags, item.IsPremium, item.SortOrder, item.Published, now, now).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) UpdateContentItem(ctx context.Context, item *ContentItem) error {
	query, args, err := r.psql.Update("comm_content_items").
		Set("slug", item.Slug).
		Set("title", item.Title).
		Set("type", item.Type).
		Set("tool", item.Tool).
		Set("body", item.Body).
		Set("url", item.URL).
		Set("tags", item.Tags).
		Set("is_premium", item.IsPremium).
		Set("sort_order", item.SortOrder).
		Set("published", item.Published).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": item.ID}).
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

func (r *repository) DeleteContentItem(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "comm_content_items", id, ErrNotFound)
}

func (r *repository) ListStreams(ctx context.Context, publishedOnly bool) ([]*Stream, error) {
	q := r.psql.Select("*").From("comm_streams").OrderBy("recorded_at DESC")
	if publishedOnly {
		q = q.Where(squirrel.Eq{"published": true})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var streams []*Stream
	if err := pgxscan.Select(ctx, r.db, &streams, query, args...); err != nil {
		return nil, err
	}
	return streams, nil
}

func (r *repository) CreateStream(ctx context.Context, s *Stream) error {
	now := time.Now()
	query, args, err := r.psql.Insert("comm_streams").
		Columns("id", "title", "youtube_id", "recorded_at", "is_premium", "published", "created_at", "updated_at").
		Values(s.ID, s.Title, s.YoutubeID, s.RecordedAt, s.IsPremium, s.Published, now, now).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) UpdateStream(ctx context.Context, s *Stream) error {
	query, args, err := r.psql.Update("comm_streams").
		Set("title", s.Title).
		Set("youtube_id", s.YoutubeID).
		Set("recorded_at", s.RecordedAt).
		Set("is_premium", s.IsPremium).
		Set("published", s.Published).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": s.ID}).
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

func (r *repository) DeleteStream(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "comm_streams", id, ErrNotFound)
}
