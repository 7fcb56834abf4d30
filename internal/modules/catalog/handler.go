package catalog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/communityhq/membergate/internal/modules/identity"
	"github.com/communityhq/membergate/internal/validation"
)

// Handler holds the dependencies for the catalog module's HTTP handlers.
type Handler struct {
	service Service
	gateway *identity.Gateway
	logger  *slog.Logger
}

// NewHandler creates a new handler for the catalog module.
func NewHandler(service Service, gateway *identity.Gateway, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		gateway: gateway,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routing for the catalog module.
func (h *Handler) RegisterRoutes(api huma.API) {
	// --- Member routes ---
	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/courses",
		Summary: "List published courses",
	}, h.ListCoursesHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/courses/{slug}",
		Summary: "Get a course with modules, lessons, and progress",
	}, h.GetCourseHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/courses/{slug}/lessons/{lesson}",
		Summary: "View a lesson",
	}, h.GetLessonHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/lessons/progress",
		Summary: "Mark a lesson completed or not",
	}, h.SetProgressHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/tools",
		Summary: "List tool templates and resources",
	}, h.ListContentHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/streams",
		Summary: "List recorded streams",
	}, h.ListStreamsHandler)

	h.registerAdminRoutes(api)
}

// identityCookies carries the two identity cookies every gated read needs.
type identityCookies struct {
	Session     string `cookie:"comm_session"`
	AccessToken string `cookie:"sb-access-token"`
}

func (c identityCookies) resolve(ctx context.Context, g *identity.Gateway) *identity.UnifiedUser {
	return g.Resolve(ctx, c.Session, c.AccessToken)
}

// --- DTOs (Data Transfer Objects) ---

type courseDTO struct {
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	CoverURL    *string `json:"coverUrl,omitempty"`
	IsPremium   bool    `json:"isPremium"`
	Accessible  bool    `json:"accessible"`
}

// ListCoursesRequest carries identity cookies only.
type ListCoursesRequest struct {
	identityCookies
}

type ListCoursesResponse struct {
	Body struct {
		Courses []courseDTO `json:"courses"`
	}
}

type GetCourseRequest struct {
	identityCookies
	Slug string `path:"slug"`
}

type lessonDTO struct {
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	DurationMinutes *int   `json:"durationMinutes,omitempty"`
	IsFree          bool   `json:"isFree"`
	Accessible      bool   `json:"accessible"`
	Completed       bool   `json:"completed"`
}

type moduleDTO struct {
	Title   string      `json:"title"`
	Lessons []lessonDTO `json:"lessons"`
}

type GetCourseResponse struct {
	Body struct {
		courseDTO
		Modules  []moduleDTO `json:"modules"`
		Progress struct {
			Completed int `json:"completed"`
			Total     int `json:"total"`
		} `json:"progress"`
	}
}

type GetLessonRequest struct {
	identityCookies
	Slug   string `path:"slug"`
	Lesson string `path:"lesson"`
}

type GetLessonResponse struct {
	Status   int
	Location string `header:"Location"`
	Body     struct {
		Slug      string  `json:"slug,omitempty"`
		Title     string  `json:"title,omitempty"`
		YoutubeID *string `json:"youtubeId,omitempty"`
		Content   *string `json:"content,omitempty"`
		IsFree    bool    `json:"isFree,omitempty"`
	}
}

type SetProgressRequest struct {
	identityCookies
	Body struct {
		LessonID  string `json:"lessonId" validate:"required,uuid"`
		Completed bool   `json:"completed"`
	}
}

type SetProgressResponse struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

type ListContentRequest struct {
	identityCookies
	Tool string `query:"tool"`
}

type contentDTO struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Type       string   `json:"type"`
	Tool       *string  `json:"tool,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	IsPremium  bool     `json:"isPremium"`
	Accessible bool     `json:"accessible"`
	Body       *string  `json:"body,omitempty"`
	URL        *string  `json:"url,omitempty"`
}

type ListContentResponse struct {
	Body struct {
		Items []contentDTO `json:"items"`
	}
}

type ListStreamsRequest struct {
	identityCookies
}

type streamDTO struct {
	Title      string `json:"title"`
	RecordedAt string `json:"recordedAt"`
	IsPremium  bool   `json:"isPremium"`
	Accessible bool   `json:"accessible"`
	YoutubeID  string `json:"youtubeId,omitempty"`
}

type ListStreamsResponse struct {
	Body struct {
		Streams []streamDTO `json:"streams"`
	}
}

// --- Handlers ---

func (h *Handler) ListCoursesHandler(ctx context.Context, input *ListCoursesRequest) (*ListCoursesResponse, error) {
	user := input.resolve(ctx, h.gateway)
	summaries, err := h.service.ListCourses(ctx, user)
	if err != nil {
		h.logger.Error("failed to list courses", "error", err)
		return nil, huma.Error500InternalServerError("failed to list courses", err)
	}

	resp := &ListCoursesResponse{}
	resp.Body.Courses = make([]courseDTO, 0, len(summaries))
	for _, s := range summaries {
		resp.Body.Courses = append(resp.Body.Courses, courseDTO{
			Slug:        s.Course.Slug,
			Title:       s.Course.Title,
			Description: s.Course.Description,
			CoverURL:    s.Course.CoverURL,
			IsPremium:   s.Course.IsPremium,
			Accessible:  s.Accessible,
		})
	}
	return resp, nil
}

func (h *Handler) GetCourseHandler(ctx context.Context, input *GetCourseRequest) (*GetCourseResponse, error) {
	user := input.resolve(ctx, h.gateway)
	detail, err := h.service.GetCourse(ctx, user, input.Slug)
	if err != nil {
		if ErrCourseNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("failed to load course", "error", err, "slug", input.Slug)
		return nil, huma.Error500InternalServerError("failed to load course", err)
	}

	resp := &GetCourseResponse{}
	resp.Body.courseDTO = courseDTO{
		Slug:        detail.Course.Slug,
		Title:       detail.Course.Title,
		Description: detail.Course.Description,
		CoverURL:    detail.Course.CoverURL,
		IsPremium:   detail.Course.IsPremium,
		Accessible:  true,
	}
	resp.Body.Progress.Completed = detail.Progress.Completed
	resp.Body.Progress.Total = detail.Progress.Total

	for _, m := range detail.Modules {
		md := moduleDTO{Title: m.Module.Title, Lessons: make([]lessonDTO, 0, len(m.Lessons))}
		for _, l := range m.Lessons {
			md.Lessons = append(md.Lessons, lessonDTO{
				Slug:            l.Lesson.Slug,
				Title:           l.Lesson.Title,
				DurationMinutes: l.Lesson.DurationMinutes,
				IsFree:          l.Lesson.IsFree,
				Accessible:      l.Accessible,
				Completed:       l.Completed,
			})
		}
		resp.Body.Modules = append(resp.Body.Modules, md)
	}
	return resp, nil
}

// GetLessonHandler gates lesson content. Denied callers get a 303 to the
// login or join flow.
func (h *Handler) GetLessonHandler(ctx context.Context, input *GetLessonRequest) (*GetLessonResponse, error) {
	user := input.resolve(ctx, h.gateway)
	path := "/courses/" + input.Slug + "/lessons/" + input.Lesson

	view, err := h.service.GetLesson(ctx, user, input.Slug, input.Lesson, path)
	if err != nil {
		if ErrCourseNotFound.Is(err) || ErrLessonNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("failed to load lesson", "error", err, "slug", input.Lesson)
		return nil, huma.Error500InternalServerError("failed to load lesson", err)
	}

	resp := &GetLessonResponse{}
	if !view.Decision.Allowed {
		resp.Status = http.StatusSeeOther
		resp.Location = view.Redirect
		return resp, nil
	}

	resp.Status = http.StatusOK
	resp.Body.Slug = view.Lesson.Slug
	resp.Body.Title = view.Lesson.Title
	resp.Body.YoutubeID = view.Lesson.YoutubeID
	resp.Body.Content = view.Lesson.Content
	resp.Body.IsFree = view.Lesson.IsFree
	return resp, nil
}

func (h *Handler) SetProgressHandler(ctx context.Context, input *SetProgressRequest) (*SetProgressResponse, error) {
	user := input.resolve(ctx, h.gateway)
	if !user.HasTelegram() {
		return nil, ErrUnauthenticated
	}
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, err
	}

	if err := h.service.SetProgress(ctx, user, input.Body.LessonID, input.Body.Completed); err != nil {
		h.logger.Error("failed to save progress", "error", err, "lesson_id", input.Body.LessonID)
		return nil, huma.Error500InternalServerError("failed to save progress", err)
	}

	resp := &SetProgressResponse{}
	resp.Body.OK = true
	return resp, nil
}

func (h *Handler) ListContentHandler(ctx context.Context, input *ListContentRequest) (*ListContentResponse, error) {
	user := input.resolve(ctx, h.gateway)
	views, err := h.service.ListContent(ctx, user, input.Tool)
	if err != nil {
		h.logger.Error("failed to list content", "error", err)
		return nil, huma.Error500InternalServerError("failed to list content", err)
	}

	resp := &ListContentResponse{}
	resp.Body.Items = make([]contentDTO, 0, len(views))
	for _, v := range views {
		dto := contentDTO{
			Slug:       v.Item.Slug,
			Title:      v.Item.Title,
			Type:       v.Item.Type,
			Tool:       v.Item.Tool,
			Tags:       v.Item.Tags,
			IsPremium:  v.Item.IsPremium,
			Accessible: v.Accessible,
		}
		// Locked items keep their teaser metadata but lose the payload.
		if v.Accessible {
			dto.Body = v.Item.Body
			dto.URL = v.Item.URL
		}
		resp.Body.Items = append(resp.Body.Items, dto)
	}
	return resp, nil
}

func (h *Handler) ListStreamsHandler(ctx context.Context, input *ListStreamsRequest) (*ListStreamsResponse, error) {
	user := input.resolve(ctx, h.gateway)
	views, err := h.service.ListStreams(ctx, user)
	if err != nil {
		h.logger.Error("failed to list streams", "error", err)
		return nil, huma.Error500InternalServerError("failed to list streams", err)
	}

	resp := &ListStreamsResponse{}
	resp.Body.Streams = make([]streamDTO, 0, len(views))
	for _, v := range views {
		dto := streamDTO{
			Title:      v.Stream.Title,
			RecordedAt: v.Stream.RecordedAt.Format("2006-01-02"),
			IsPremium:  v.Stream.IsPremium,
			Accessible: v.Accessible,
		}
		if v.Accessible {
			dto.YoutubeID = v.Stream.YoutubeID
		}
		resp.Body.Streams = append(resp.Body.Streams, dto)
	}
	return resp, nil
}
