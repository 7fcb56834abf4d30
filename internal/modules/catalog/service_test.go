package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityhq/membergate/internal/entitlement"
	"github.com/communityhq/membergate/internal/modules/identity"
)

type fakeRepository struct {
	courses  map[string]*Course
	modules  map[string]*CourseModule
	lessons  map[string]*Lesson
	content  map[string]*ContentItem
	streams  map[string]*Stream
	progress map[int64]map[string]bool

	progressErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		courses:  map[string]*Course{},
		modules:  map[string]*CourseModule{},
		lessons:  map[string]*Lesson{},
		content:  map[string]*ContentItem{},
		streams:  map[string]*Stream{},
		progress: map[int64]map[string]bool{},
	}
}

func (r *fakeRepository) ListCourses(_ context.Context, publishedOnly bool) ([]*Course, error) {
	var out []*Course
	for _, c := range r.courses {
		if publishedOnly && !c.Published {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeRepository) GetCourseBySlug(_ context.Context, slug string) (*Course, error) {
	for _, c := range r.courses {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, ErrCourseNotFound
}

func (r *fakeRepository) GetCourse(_ context.Context, id string) (*Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, ErrCourseNotFound
	}
	return c, nil
}

func (r *fakeRepository) CreateCourse(_ context.Context, c *Course) error {
	r.courses[c.ID] = c
	return nil
}

func (r *fakeRepository) UpdateCourse(_ context.Context, c *Course) error {
	if _, ok := r.courses[c.ID]; !ok {
		return ErrCourseNotFound
	}
	r.courses[c.ID] = c
	return nil
}

func (r *fakeRepository) DeleteCourse(_ context.Context, id string) error {
	if _, ok := r.courses[id]; !ok {
		return ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *fakeRepository) ListModules(_ context.Context, courseID string) ([]*CourseModule, error) {
	var out []*CourseModule
	for _, m := range r.modules {
		if m.CourseID == courseID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeRepository) CreateModule(_ context.Context, m *CourseModule) error {
	r.modules[m.ID] = m
	return nil
}

func (r *fakeRepository) UpdateModule(_ context.Context, m *CourseModule) error {
	if _, ok := r.modules[m.ID]; !ok {
		return ErrNotFound
	}
	r.modules[m.ID] = m
	return nil
}

func (r *fakeRepository) DeleteModule(_ context.Context, id string) error {
	if _, ok := r.modules[id]; !ok {
		return ErrNotFound
	}
	delete(r.modules, id)
	return nil
}

func (r *fakeRepository) lessonsOf(courseID string, publishedOnly bool) []*Lesson {
	var out []*Lesson
	for _, l := range r.lessons {
		m, ok := r.modules[l.ModuleID]
		if !ok || m.CourseID != courseID {
			continue
		}
		if publishedOnly && !l.Published {
			continue
		}
		out = append(out, l)
	}
	return out
}

func (r *fakeRepository) ListLessonsByCourse(_ context.Context, courseID string, publishedOnly bool) ([]*Lesson, error) {
	return r.lessonsOf(courseID, publishedOnly), nil
}

func (r *fakeRepository) GetLessonBySlug(_ context.Context, courseID, slug string) (*Lesson, error) {
	for _, l := range r.lessonsOf(courseID, false) {
		if l.Slug == slug {
			return l, nil
		}
	}
	return nil, ErrLessonNotFound
}

func (r *fakeRepository) CreateLesson(_ context.Context, l *Lesson) error {
	r.lessons[l.ID] = l
	return nil
}

func (r *fakeRepository) UpdateLesson(_ context.Context, l *Lesson) error {
	if _, ok := r.lessons[l.ID]; !ok {
		return ErrLessonNotFound
	}
	r.lessons[l.ID] = l
	return nil
}

func (r *fakeRepository) DeleteLesson(_ context.Context, id string) error {
	if _, ok := r.lessons[id]; !ok {
		return ErrLessonNotFound
	}
	delete(r.lessons, id)
	return nil
}

func (r *fakeRepository) ListContentItems(_ context.Context, publishedOnly bool, tool string) ([]*ContentItem, error) {
	var out []*ContentItem
	for _, item := range r.content {
		if publishedOnly && !item.Published {
			continue
		}
		if tool != "" && (item.Tool == nil || *item.Tool != tool) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *fakeRepository) CreateContentItem(_ context.Context, item *ContentItem) error {
	r.content[item.ID] = item
	return nil
}

func (r *fakeRepository) UpdateContentItem(_ context.Context, item *ContentItem) error {
	if _, ok := r.content[item.ID]; !ok {
		return ErrNotFound
	}
	r.content[item.ID] = item
	return nil
}

func (r *fakeRepository) DeleteContentItem(_ context.Context, id string) error {
	if _, ok := r.content[id]; !ok {
		return ErrNotFound
	}
	delete(r.content, id)
	return nil
}

func (r *fakeRepository) ListStreams(_ context.Context, publishedOnly bool) ([]*Stream, error) {
	var out []*Stream
	for _, st := range r.streams {
		if publishedOnly && !st.Published {
			continue
		}
		out = append(out, st)
	}
	return out, nil
}

func (r *fakeRepository) CreateStream(_ context.Context, st *Stream) error {
	r.streams[st.ID] = st
	return nil
}

func (r *fakeRepository) UpdateStream(_ context.Context, st *Stream) error {
	if _, ok := r.streams[st.ID]; !ok {
		return ErrNotFound
	}
	r.streams[st.ID] = st
	return nil
}

func (r *fakeRepository) DeleteStream(_ context.Context, id string) error {
	if _, ok := r.streams[id]; !ok {
		return ErrNotFound
	}
	delete(r.streams, id)
	return nil
}

func (r *fakeRepository) UpsertProgress(_ context.Context, telegramID int64, lessonID string, completed bool) error {
	if r.progress[telegramID] == nil {
		r.progress[telegramID] = map[string]bool{}
	}
	r.progress[telegramID][lessonID] = completed
	return nil
}

func (r *fakeRepository) CompletedLessons(_ context.Context, telegramID int64, courseID string) (map[string]bool, error) {
	if r.progressErr != nil {
		return nil, r.progressErr
	}
	out := map[string]bool{}
	for _, l := range r.lessonsOf(courseID, false) {
		if r.progress[telegramID][l.ID] {
			out[l.ID] = true
		}
	}
	return out, nil
}

func newTestService(t *testing.T) (Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger), repo
}

// seedCourse builds a premium course with one module and three lessons: a
// free preview, a paid lesson, and an unpublished draft.
func seedCourse(repo *fakeRepository) {
	repo.courses["c1"] = &Course{ID: "c1", Slug: "go-pro", Title: "Go in Production", IsPremium: true, Published: true}
	repo.modules["m1"] = &CourseModule{ID: "m1", CourseID: "c1", Title: "Basics", SortOrder: 1}
	repo.lessons["l1"] = &Lesson{ID: "l1", ModuleID: "m1", Slug: "intro", Title: "Intro", IsFree: true, SortOrder: 1, Published: true}
	repo.lessons["l2"] = &Lesson{ID: "l2", ModuleID: "m1", Slug: "deploy", Title: "Deploy", SortOrder: 2, Published: true}
	repo.lessons["l3"] = &Lesson{ID: "l3", ModuleID: "m1", Slug: "draft", Title: "Draft", SortOrder: 3, Published: false}
}

func member() *identity.UnifiedUser {
	return &identity.UnifiedUser{TelegramID: 100, Role: identity.RoleMember}
}

func freeUser() *identity.UnifiedUser {
	return &identity.UnifiedUser{TelegramID: 200, Role: identity.RoleFree}
}

func admin() *identity.UnifiedUser {
	return &identity.UnifiedUser{TelegramID: 300, Role: identity.RoleAdmin}
}

func TestListCourses_AccessAnnotation(t *testing.T) {
	svc, repo := newTestService(t)
	seedCourse(repo)
	repo.courses["c2"] = &Course{ID: "c2", Slug: "open", Title: "Open Course", IsPremium: false, Published: true}
	repo.courses["c3"] = &Course{ID: "c3", Slug: "hidden", Title: "Hidden", Published: false}

	out, err := svc.ListCourses(context.Background(), freeUser())
	require.NoError(t, err)
	require.Len(t, out, 2, "unpublished courses stay hidden")

	access := map[string]bool{}
	for _, s := range out {
		access[s.Course.Slug] = s.Accessible
	}
	assert.False(t, access["go-pro"], "premium course locked for free user")
	assert.True(t, access["open"])

	out, err = svc.ListCourses(context.Background(), member())
	require.NoError(t, err)
	for _, s := range out {
		assert.True(t, s.Accessible)
	}
}

func TestGetCourse_ProgressCountsAccessibleOnly(t *testing.T) {
	svc, repo := newTestService(t)
	seedCourse(repo)
	repo.progress[200] = map[string]bool{"l1": true, "l2": true}

	detail, err := svc.GetCourse(context.Background(), freeUser(), "go-pro")
	require.NoError(t, err)

	// Only the free preview is accessible to a free user, so the paid
	// lesson's completion never inflates the stats.
	assert.Equal(t, 1, detail.Progress.Total)
	assert.Equal(t, 1, detail.Progress.Completed)

	require.Len(t, detail.Modules, 1)
	lessons := detail.Modules[0].Lessons
	require.Len(t, lessons, 2, "draft lesson hidden from non-admins")

	bySlug := map[string]LessonSummary{}
	for _, l := range lessons {
		bySlug[l.Lesson.Slug] = l
	}
	assert.True(t, bySlug["intro"].Accessible, "free lesson in premium course is open")
	assert.False(t, bySlug["deploy"].Accessible)
}

func TestGetCourse_MemberProgress(t *testing.T) {
	svc, repo := newTestService(t)
	seedCourse(repo)
	repo.progress[100] = map[string]bool{"l1": true}

	detail, err := svc.GetCourse(context.Background(), member(), "go-pro")
	require.NoError(t, err)
	assert.Equal(t, 2, detail.Progress.Total)
	assert.Equal(t, 1, detail.Progress.Completed)
}

func TestGetCourse_ProgressFailureDegrades(t *testing.T) {
	svc, repo := newTestService(t)
	seedCourse(repo)
	repo.progress[100] = map[string]bool{"l1": true}
	repo.progressErr = errors.New("store down")

	detail, err := svc.GetCourse(context.Background(), member(), "go-pro")
	require.NoError(t, err, "course page renders without progress")
	assert.Equal(t, 0, detail.Progress.Completed)
}

func TestGetCourse_AdminSeesDrafts(t *testing.T) {
	svc, repo := newTestService(t)
	seedCourse(repo)
	repo.courses["c1"].Published = false

	_, err := svc.GetCourse(context.Background(), member(), "go-pro")
	assert.True(t, ErrCourseNotFound.Is(err))

	detail, err := svc.GetCourse(context.Background(), admin(), "go-pro")
	require.NoError(t, err)
	require.Len(t, detail.Modules, 1)
	assert.Len(t, detail.Modules[0].Lessons, 3, "admin sees unpublished lessons")
}

func TestGetLesson(t *testing.T) {
	svc, repo := newTestService(t)
	seedCourse(repo)

	t.Run("free preview open to anonymous", func(t *testing.T) {
		view, err := svc.GetLesson(context.Background(), nil, "go-pro", "intro", "/courses/go-pro/lessons/intro")
		require.NoError(t, err)
		assert.True(t, view.Decision.Allowed)
		assert.Equal(t, entitlement.RuleFree, view.Decision.Rule)
	})

	t.Run("paid lesson denied for anonymous with login redirect", func(t *testing.T) {
		view, err := svc.GetLesson(context.Background(), nil, "go-pro", "deploy", "/courses/go-pro/lessons/deploy")
		require.NoError(t, err)
		assert.False(t, view.Decision.Allowed)
		assert.Equal(t, "/login?redirect=%2Fcourses%2Fgo-pro%2Flessons%2Fdeploy", view.Redirect)
	})

	t.Run("paid lesson denied for free user with join redirect", func(t *testing.T) {
		view, err := svc.GetLesson(context.Background(), freeUser(), "go-pro", "deploy", "/courses/go-pro/lessons/deploy")
		require.NoError(t, err)
		assert.False(t, view.Decision.Allowed)
		assert.Equal(t, "/join", view.Redirect)
	})

	t.Run("member gets premium lesson", func(t *testing.T) {
		view, err := svc.GetLesson(context.Background(), member(), "go-pro", "deploy", "/courses/go-pro/lessons/deploy")
		require.NoError(t, err)
		assert.True(t, view.Decision.Allowed)
		assert.Equal(t, entitlement.RuleMemberPremium, view.Decision.Rule)
	})

	t.Run("draft hidden except for admins", func(t *testing.T) {
		_, err := svc.GetLesson(context.Background(), member(), "go-pro", "draft", "/x")
		assert.True(t, ErrLessonNotFound.Is(err))

		view, err := svc.GetLesson(context.Background(), admin(), "go-pro", "draft", "/x")
		require.NoError(t, err)
		assert.True(t, view.Decision.Allowed)
	})
}

func TestSetProgress(t *testing.T) {
	svc, repo := newTestService(t)
	seedCourse(repo)

	err := svc.SetProgress(context.Background(), &identity.UnifiedUser{SupabaseUID: "uid-1", Role: identity.RoleMember}, "l1", true)
	assert.True(t, ErrUnauthenticated.Is(err), "progress needs a Telegram identity")

	require.NoError(t, svc.SetProgress(context.Background(), member(), "l1", true))
	assert.True(t, repo.progress[100]["l1"])

	require.NoError(t, svc.SetProgress(context.Background(), member(), "l1", false))
	assert.False(t, repo.progress[100]["l1"])
}

func TestListContent(t *testing.T) {
	svc, repo := newTestService(t)
	tool := "notion"
	repo.content["t1"] = &ContentItem{ID: "t1", Slug: "crm", Title: "CRM Template", Type: "template", Tool: &tool, IsPremium: true, Published: true}
	repo.content["t2"] = &ContentItem{ID: "t2", Slug: "guide", Title: "Starter Guide", Type: "article", Published: true}
	repo.content["t3"] = &ContentItem{ID: "t3", Slug: "draft", Title: "Draft", Type: "article", Published: false}

	out, err := svc.ListContent(context.Background(), freeUser(), "")
	require.NoError(t, err)
	require.Len(t, out, 2)

	access := map[string]bool{}
	for _, v := range out {
		access[v.Item.Slug] = v.Accessible
	}
	assert.False(t, access["crm"])
	assert.True(t, access["guide"])

	out, err = svc.ListContent(context.Background(), member(), "notion")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "crm", out[0].Item.Slug)
	assert.True(t, out[0].Accessible)
}

func TestListStreams(t *testing.T) {
	svc, repo := newTestService(t)
	repo.streams["s1"] = &Stream{ID: "s1", Title: "Q&A", YoutubeID: "yt1", IsPremium: true, Published: true}
	repo.streams["s2"] = &Stream{ID: "s2", Title: "Launch", YoutubeID: "yt2", Published: true}

	out, err := svc.ListStreams(context.Background(), freeUser())
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, v := range out {
		if v.Stream.IsPremium {
			assert.False(t, v.Accessible)
		} else {
			assert.True(t, v.Accessible)
		}
	}
}

func TestAdminCRUD(t *testing.T) {
	svc, repo := newTestService(t)

	course := &Course{Slug: "new", Title: "New Course", Published: false}
	require.NoError(t, svc.CreateCourse(context.Background(), course))
	require.NotEmpty(t, course.ID)

	m := &CourseModule{CourseID: course.ID, Title: "Module 1"}
	require.NoError(t, svc.CreateModule(context.Background(), m))
	require.NotEmpty(t, m.ID)

	err := svc.CreateModule(context.Background(), &CourseModule{CourseID: "missing", Title: "Orphan"})
	assert.True(t, ErrCourseNotFound.Is(err), "module creation checks the parent course")

	courses, err := svc.AdminListCourses(context.Background())
	require.NoError(t, err)
	assert.Len(t, courses, 1, "admin listing includes drafts")

	course.Title = "Renamed"
	require.NoError(t, svc.UpdateCourse(context.Background(), course))
	assert.Equal(t, "Renamed", repo.courses[course.ID].Title)

	require.NoError(t, svc.DeleteCourse(context.Background(), course.ID))
	assert.Empty(t, repo.courses)
}
