package catalog

import (
	"context"

	"github.com/google/uuid"
)

// AdminService is the CRUD surface behind the admin routes. Authorization
// (role=admin on the unified user) is enforced by the handlers.
type AdminService interface {
	AdminListCourses(ctx context.Context) ([]*Course, error)
	CreateCourse(ctx context.Context, c *Course) error
	UpdateCourse(ctx context.Context, c *Course) error
	DeleteCourse(ctx context.Context, id string) error

	ListModules(ctx context.Context, courseID string) ([]*CourseModule, error)
	CreateModule(ctx context.Context, m *CourseModule) error
	UpdateModule(ctx context.Context, m *CourseModule) error
	DeleteModule(ctx context.Context, id string) error

	CreateLesson(ctx context.Context, l *Lesson) error
	UpdateLesson(ctx context.Context, l *Lesson) error
	DeleteLesson(ctx context.Context, id string) error

	AdminListContent(ctx context.Context) ([]*ContentItem, error)
	CreateContentItem(ctx context.Context, item *ContentItem) error
	UpdateContentItem(ctx context.Context, item *ContentItem) error
	DeleteContentItem(ctx context.Context, id string) error

	AdminListStreams(ctx context.Context) ([]*Stream, error)
	CreateStream(ctx context.Context, st *Stream) error
	UpdateStream(ctx context.Context, st *Stream) error
	DeleteStream(ctx context.Context, id string) error
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *service) AdminListCourses(ctx context.Context) ([]*Course, error) {
	return s.repo.ListCourses(ctx, false)
}

func (s *service) CreateCourse(ctx context.Context, c *Course) error {
	id, err := newID()
	if err != nil {
		return err
	}
	c.ID = id
	return s.repo.CreateCourse(ctx, c)
}

func (s *service) UpdateCourse(ctx context.Context, c *Course) error {
	return s.repo.UpdateCourse(ctx, c)
}

func (s *service) DeleteCourse(ctx context.Context, id string) error {
	return s.repo.DeleteCourse(ctx, id)
}

func (s *service) ListModules(ctx context.Context, courseID string) ([]*CourseModule, error) {
	return s.repo.ListModules(ctx, courseID)
}

func (s *service) CreateModule(ctx context.Context, m *CourseModule) error {
	// The parent course must exist; surfaces a 404 instead of an FK error.
	if _, err := s.repo.GetCourse(ctx, m.CourseID); err != nil {
		return err
	}
	id, err := newID()
	if err != nil {
		return err
	}
	m.ID = id
	return s.repo.CreateModule(ctx, m)
}

func (s *service) UpdateModule(ctx context.Context, m *CourseModule) error {
	return s.repo.UpdateModule(ctx, m)
}

func (s *service) DeleteModule(ctx context.Context, id string) error {
	return s.repo.DeleteModule(ctx, id)
}

func (s *service) CreateLesson(ctx context.Context, l *Lesson) error {
	id, err := newID()
	if err != nil {
		return err
	}
	l.ID = id
	return s.repo.CreateLesson(ctx, l)
}

func (s *service) UpdateLesson(ctx context.Context, l *Lesson) error {
	return s.repo.UpdateLesson(ctx, l)
}

func (s *service) DeleteLesson(ctx context.Context, id string) error {
	return s.repo.DeleteLesson(ctx, id)
}

func (s *service) AdminListContent(ctx context.Context) ([]*ContentItem, error) {
	return s.repo.ListContentItems(ctx, false, "")
}

func (s *service) CreateContentItem(ctx context.Context, item *ContentItem) error {
	id, err := newID()
	if err != nil {
		return err
	}
	item.ID = id
	return s.repo.CreateContentItem(ctx, item)
}

func (s *service) UpdateContentItem(ctx context.Context, item *ContentItem) error {
	return s.repo.UpdateContentItem(ctx, item)
}

func (s *service) DeleteContentItem(ctx context.Context, id string) error {
	return s.repo.DeleteContentItem(ctx, id)
}

func (s *service) AdminListStreams(ctx context.Context) ([]*Stream, error) {
	return s.repo.ListStreams(ctx, false)
}

func (s *service) CreateStream(ctx context.Context, st *Stream) error {
	id, err := newID()
	if err != nil {
		return err
	}
	st.ID = id
	return s.repo.CreateStream(ctx, st)
}

func (s *service) UpdateStream(ctx context.Context, st *Stream) error {
	return s.repo.UpdateStream(ctx, st)
}

func (s *service) DeleteStream(ctx context.Context, id string) error {
	return s.repo.DeleteStream(ctx, id)
}
