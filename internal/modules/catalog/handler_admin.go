package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/communityhq/membergate/internal/modules/identity"
	"github.com/communityhq/membergate/internal/validation"
)

func (h *Handler) registerAdminRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/admin/courses",
		Summary: "List all courses including drafts",
	}, h.AdminListCoursesHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/admin/courses",
		Summary: "Create a course",
	}, h.CreateCourseHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPut,
		Path:    "/admin/courses/{id}",
		Summary: "Update a course",
	}, h.UpdateCourseHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodDelete,
		Path:    "/admin/courses/{id}",
		Summary: "Delete a course",
	}, h.DeleteCourseHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/admin/courses/{id}/modules",
		Summary: "List a course's modules",
	}, h.AdminListModulesHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/admin/modules",
		Summary: "Create a module",
	}, h.CreateModuleHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPut,
		Path:    "/admin/modules/{id}",
		Summary: "Update a module",
	}, h.UpdateModuleHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodDelete,
		Path:    "/admin/modules/{id}",
		Summary: "Delete a module",
	}, h.DeleteModuleHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/admin/lessons",
		Summary: "Create a lesson",
	}, h.CreateLessonHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPut,
		Path:    "/admin/lessons/{id}",
		Summary: "Update a lesson",
	}, h.UpdateLessonHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodDelete,
		Path:    "/admin/lessons/{id}",
		Summary: "Delete a lesson",
	}, h.DeleteLessonHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/admin/content",
		Summary: "List all content items including drafts",
	}, h.AdminListContentHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/admin/content",
		Summary: "Create a content item",
	}, h.CreateContentItemHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPut,
		Path:    "/admin/content/{id}",
		Summary: "Update a content item",
	}, h.UpdateContentItemHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodDelete,
		Path:    "/admin/content/{id}",
		Summary: "Delete a content item",
	}, h.DeleteContentItemHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/admin/streams",
		Summary: "List all streams including drafts",
	}, h.AdminListStreamsHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/admin/streams",
		Summary: "Create a stream",
	}, h.CreateStreamHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPut,
		Path:    "/admin/streams/{id}",
		Summary: "Update a stream",
	}, h.UpdateStreamHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodDelete,
		Path:    "/admin/streams/{id}",
		Summary: "Delete a stream",
	}, h.DeleteStreamHandler)
}

// requireAdmin resolves the unified user and enforces role=admin.
func (h *Handler) requireAdmin(ctx context.Context, cookies identityCookies) (*identity.UnifiedUser, error) {
	user := cookies.resolve(ctx, h.gateway)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	if !user.IsAdmin() {
		return nil, ErrForbidden
	}
	return user, nil
}

// --- DTOs (Data Transfer Objects) ---

// CourseInput is the admin create/update payload for a course.
type CourseInput struct {
	Slug        string  `json:"slug" validate:"required,min=1,max=120"`
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description,omitempty"`
	CoverURL    *string `json:"coverUrl,omitempty" validate:"omitempty,url"`
	IsPremium   bool    `json:"isPremium"`
	SortOrder   int     `json:"sortOrder"`
	Published   bool    `json:"published"`
}

func (in *CourseInput) toCourse(id string) *Course {
	return &Course{
		ID:          id,
		Slug:        in.Slug,
		Title:       in.Title,
		Description: in.Description,
		CoverURL:    in.CoverURL,
		IsPremium:   in.IsPremium,
		SortOrder:   in.SortOrder,
		Published:   in.Published,
	}
}

// ModuleInput is the admin create/update payload for a module.
type ModuleInput struct {
	CourseID  string `json:"courseId" validate:"required,uuid"`
	Title     string `json:"title" validate:"required,min=1,max=200"`
	SortOrder int    `json:"sortOrder"`
}

// LessonInput is the admin create/update payload for a lesson. Content
// arrives already prepared; this API does no rich-text processing.
type LessonInput struct {
	ModuleID        string  `json:"moduleId" validate:"required,uuid"`
	Slug            string  `json:"slug" validate:"required,min=1,max=120"`
	Title           string  `json:"title" validate:"required,min=1,max=200"`
	YoutubeID       *string `json:"youtubeId,omitempty"`
	Content         *string `json:"content,omitempty"`
	DurationMinutes *int    `json:"durationMinutes,omitempty" validate:"omitempty,min=0"`
	IsFree          bool    `json:"isFree"`
	SortOrder       int     `json:"sortOrder"`
	Published       bool    `json:"published"`
}

func (in *LessonInput) toLesson(id string) *Lesson {
	return &Lesson{
		ID:              id,
		ModuleID:        in.ModuleID,
		Slug:            in.Slug,
		Title:           in.Title,
		YoutubeID:       in.YoutubeID,
		Content:         in.Content,
		DurationMinutes: in.DurationMinutes,
		IsFree:          in.IsFree,
		SortOrder:       in.SortOrder,
		Published:       in.Published,
	}
}

// ContentItemInput is the admin create/update payload for a content item.
type ContentItemInput struct {
	Slug      string   `json:"slug" validate:"required,min=1,max=120"`
	Title     string   `json:"title" validate:"required,min=1,max=200"`
	Type      string   `json:"type" validate:"required,oneof=template article link"`
	Tool      *string  `json:"tool,omitempty"`
	Body      *string  `json:"body,omitempty"`
	URL       *string  `json:"url,omitempty" validate:"omitempty,url"`
	Tags      []string `json:"tags,omitempty"`
	IsPremium bool     `json:"isPremium"`
	SortOrder int      `json:"sortOrder"`
	Published bool     `json:"published"`
}

func (in *ContentItemInput) toItem(id string) *ContentItem {
	return &ContentItem{
		ID:        id,
		Slug:      in.Slug,
		Title:     in.Title,
		Type:      in.Type,
		Tool:      in.Tool,
		Body:      in.Body,
		URL:       in.URL,
		Tags:      in.Tags,
		IsPremium: in.IsPremium,
		SortOrder: in.SortOrder,
		Published: in.Published,
	}
}

// StreamInput is the admin create/update payload for a stream.
type StreamInput struct {
	Title      string    `json:"title" validate:"required,min=1,max=200"`
	YoutubeID  string    `json:"youtubeId" validate:"required"`
	RecordedAt time.Time `json:"recordedAt" validate:"required"`
	IsPremium  bool      `json:"isPremium"`
	Published  bool      `json:"published"`
}

func (in *StreamInput) toStream(id string) *Stream {
	return &Stream{
		ID:         id,
		Title:      in.Title,
		YoutubeID:  in.YoutubeID,
		RecordedAt: in.RecordedAt,
		IsPremium:  in.IsPremium,
		Published:  in.Published,
	}
}

// Generic admin request/response shapes.

type adminIDRequest struct {
	identityCookies
	ID string `path:"id"`
}

type adminOKResponse struct {
	Body struct {
		OK bool `json:"ok"`
	}
}

func adminOK() *adminOKResponse {
	resp := &adminOKResponse{}
	resp.Body.OK = true
	return resp
}

type adminIDResponse struct {
	Body struct {
		ID string `json:"id"`
	}
}

// --- Course handlers ---

type adminCourseDTO struct {
	ID          string  `json:"id"`
	Slug        string  `json:"slug"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	CoverURL    *string `json:"coverUrl,omitempty"`
	IsPremium   bool    `json:"isPremium"`
	SortOrder   int     `json:"sortOrder"`
	Published   bool    `json:"published"`
}

type AdminListCoursesRequest struct {
	identityCookies
}

type AdminListCoursesResponse struct {
	Body struct {
		Courses []adminCourseDTO `json:"courses"`
	}
}

func (h *Handler) AdminListCoursesHandler(ctx context.Context, input *AdminListCoursesRequest) (*AdminListCoursesResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}

	courses, err := h.service.AdminListCourses(ctx)
	if err != nil {
		h.logger.Error("failed to list courses", "error", err)
		return nil, huma.Error500InternalServerError("failed to list courses", err)
	}

	resp := &AdminListCoursesResponse{}
	resp.Body.Courses = make([]adminCourseDTO, 0, len(courses))
	for _, c := range courses {
		resp.Body.Courses = append(resp.Body.Courses, adminCourseDTO{
			ID:          c.ID,
			Slug:        c.Slug,
			Title:       c.Title,
			Description: c.Description,
			CoverURL:    c.CoverURL,
			IsPremium:   c.IsPremium,
			SortOrder:   c.SortOrder,
			Published:   c.Published,
		})
	}
	return resp, nil
}

type CreateCourseRequest struct {
	identityCookies
	Body CourseInput
}

func (h *Handler) CreateCourseHandler(ctx context.Context, input *CreateCourseRequest) (*adminIDResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, err
	}

	course := input.Body.toCourse("")
	if err := h.service.CreateCourse(ctx, course); err != nil {
		h.logger.Error("failed to create course", "error", err)
		return nil, huma.Error500InternalServerError("failed to create course", err)
	}

	resp := &adminIDResponse{}
	resp.Body.ID = course.ID
	return resp, nil
}

type UpdateCourseRequest struct {
	identityCookies
	ID   string `path:"id"`
	Body CourseInput
}

func (h *Handler) UpdateCourseHandler(ctx context.Context, input *UpdateCourseRequest) (*adminOKResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, err
	}

	if err := h.service.UpdateCourse(ctx, input.Body.toCourse(input.ID)); err != nil {
		if ErrCourseNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("failed to update course", "error", err, "id", input.ID)
		return nil, huma.Error500InternalServerError("failed to update course", err)
	}
	return adminOK(), nil
}

func (h *Handler) DeleteCourseHandler(ctx context.Context, input *adminIDRequest) (*adminOKResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}

	if err := h.service.DeleteCourse(ctx, input.ID); err != nil {
		if ErrCourseNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("failed to delete course", "error", err, "id", input.ID)
		return nil, huma.Error500InternalServerError("failed to delete course", err)
	}
	return adminOK(), nil
}

// --- Module handlers ---

type adminModuleDTO struct {
	ID        string `json:"id"`
	CourseID  string `json:"courseId"`
	Title     string `json:"title"`
	SortOrder int    `json:"sortOrder"`
}

type AdminListModulesResponse struct {
	Body struct {
		Modules []adminModuleDTO `json:"modules"`
	}
}

func (h *Handler) AdminListModulesHandler(ctx context.Context, input *adminIDRequest) (*AdminListModulesResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}

	modules, err := h.service.ListModules(ctx, input.ID)
	if err != nil {
		h.logger.Error("failed to list modules", "error", err, "course_id", input.ID)
		return nil, huma.Error500InternalServerError("failed to list modules", err)
	}

	resp := &AdminListModulesResponse{}
	resp.Body.Modules = make([]adminModuleDTO, 0, len(modules))
	for _, m := range modules {
		resp.Body.Modules = append(resp.Body.Modules, adminModuleDTO{
			ID:        m.ID,
			CourseID:  m.CourseID,
			Title:     m.Title,
			SortOrder: m.SortOrder,
		})
	}
	return resp, nil
}

type CreateModuleRequest struct {
	identityCookies
	Body ModuleInput
}

func (h *Handler) CreateModuleHandler(ctx context.Context, input *CreateModuleRequest) (*adminIDResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, err
	}

	m := &CourseModule{CourseID: input.Body.CourseID, Title: input.Body.Title, SortOrder: input.Body.SortOrder}
	if err := h.service.CreateModule(ctx, m); err != nil {
		if ErrCourseNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("failed to create module", "error", err)
		return nil, huma.Error500InternalServerError("failed to create module", err)
	}

	resp := &adminIDResponse{}
	resp.Body.ID = m.ID
	return resp, nil
}

type UpdateModuleRequest struct {
	identityCookies
	ID   string `path:"id"`
	Body ModuleInput
}

func (h *Handler) UpdateModuleHandler(ctx context.Context, input *UpdateModuleRequest) (*adminOKResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, err
	}

	m := &CourseModule{ID: input.ID, CourseID: input.Body.CourseID, Title: input.Body.Title, SortOrder: input.Body.SortOrder}
	if err := h.service.UpdateModule(ctx, m); err != nil {
		if ErrNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("failed to update module", "error", err, "id", input.ID)
		return nil, huma.Error500InternalServerError("failed to update module", err)
	}
	return adminOK(), nil
}

func (h *Handler) DeleteModuleHandler(ctx context.Context, input *adminIDRequest) (*adminOKResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}

	if err := h.service.DeleteModule(ctx, input.ID); err != nil {
		if ErrNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("failed to delete module", "error", err, "id", input.ID)
		return nil, huma.Error500InternalServerError("failed to delete module", err)
	}
	return adminOK(), nil
}

// --- Lesson handlers ---

type CreateLessonRequest struct {
	identityCookies
	Body LessonInput
}

func (h *Handler) CreateLessonHandler(ctx context.Context, input *CreateLessonRequest) (*adminIDResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, err
	}

	lesson := input.Body.toLesson("")
	if err := h.service.CreateLesson(ctx, lesson); err != nil {
		h.logger.Error("failed to create lesson", "error", err)
		return nil, huma.Error500InternalServerError("failed to create lesson", err)
	}

	resp := &adminIDResponse{}
	resp.Body.ID = lesson.ID
	return resp, nil
}

type UpdateLessonRequest struct {
	identityCookies
	ID   string `path:"id"`
	Body LessonInput
}

func (h *Handler) UpdateLessonHandler(ctx context.Context, input *UpdateLessonRequest) (*adminOKResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, err
	}

	if err := h.service.UpdateLesson(ctx, input.Body.toLesson(input.ID)); err != nil {
		if ErrLessonNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("failed to update lesson", "error", err, "id", input.ID)
		return nil, huma.Error500InternalServerError("failed to update lesson", err)
	}
	return adminOK(), nil
}

func (h *Handler) DeleteLessonHandler(ctx context.Context, input *adminIDRequest) (*adminOKResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}

	if err := h.service.DeleteLesson(ctx, input.ID); err != nil {
		if ErrLessonNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("failed to delete lesson", "error", err, "id", input.ID)
		return nil, huma.Error500InternalServerError("failed to delete lesson", err)
	}
	return adminOK(), nil
}

// --- Content handlers ---

type AdminListContentRequest struct {
	identityCookies
}

type adminContentDTO struct {
	ID        string   `json:"id"`
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	Type      string   `json:"type"`
	Tool      *string  `json:"tool,omitempty"`
	Body      *string  `json:"body,omitempty"`
	URL       *string  `json:"url,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	IsPremium bool     `json:"isPremium"`
	SortOrder int      `json:"sortOrder"`
	Published bool     `json:"published"`
}

type AdminListContentResponse struct {
	Body struct {
		Items []adminContentDTO `json:"items"`
	}
}

func (h *Handler) AdminListContentHandler(ctx context.Context, input *AdminListContentRequest) (*AdminListContentResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}

	items, err := h.service.AdminListContent(ctx)
	if err != nil {
		h.logger.Error("failed to list content", "error", err)
		return nil, huma.Error500InternalServerError("failed to list content", err)
	}

	resp := &AdminListContentResponse{}
	resp.Body.Items = make([]adminContentDTO, 0, len(items))
	for _, item := range items {
		resp.Body.Items = append(resp.Body.Items, adminContentDTO{
			ID:        item.ID,
			Slug:      item.Slug,
			Title:     item.Title,
			Type:      item.Type,
			Tool:      item.Tool,
			Body:      item.Body,
			URL:       item.URL,
			Tags:      item.Tags,
			IsPremium: item.IsPremium,
			SortOrder: item.SortOrder,
			Published: item.Published,
		})
	}
	return resp, nil
}

type CreateContentItemRequest struct {
	identityCookies
	Body ContentItemInput
}

func (h *Handler) CreateContentItemHandler(ctx context.Context, input *CreateContentItemRequest) (*adminIDResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, err
	}

	item := input.Body.toItem("")
	if err := h.service.CreateContentItem(ctx, item); err != nil {
		h.logger.Error("failed to create content item", "error", err)
		return nil, huma.Error500InternalServerError("failed to create content item", err)
	}

	resp := &adminIDResponse{}
	resp.Body.ID = item.ID
	return resp, nil
}

type UpdateContentItemRequest struct {
	identityCookies
	ID   string `path:"id"`
	Body ContentItemInput
}

func (h *Handler) UpdateContentItemHandler(ctx context.Context, input *UpdateContentItemRequest) (*adminOKResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, err
	}

	if err := h.service.UpdateContentItem(ctx, input.Body.toItem(input.ID)); err != nil {
		if ErrNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("failed to update content item", "error", err, "id", input.ID)
		return nil, huma.Error500InternalServerError("failed to update content item", err)
	}
	return adminOK(), nil
}

func (h *Handler) DeleteContentItemHandler(ctx context.Context, input *adminIDRequest) (*adminOKResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}

	if err := h.service.DeleteContentItem(ctx, input.ID); err != nil {
		if ErrNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("failed to delete content item", "error", err, "id", input.ID)
		return nil, huma.Error500InternalServerError("failed to delete content item", err)
	}
	return adminOK(), nil
}

// --- Stream handlers ---

type AdminListStreamsRequest struct {
	identityCookies
}

type adminStreamDTO struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	YoutubeID  string    `json:"youtubeId"`
	RecordedAt time.Time `json:"recordedAt"`
	IsPremium  bool      `json:"isPremium"`
	Published  bool      `json:"published"`
}

type AdminListStreamsResponse struct {
	Body struct {
		Streams []adminStreamDTO `json:"streams"`
	}
}

func (h *Handler) AdminListStreamsHandler(ctx context.Context, input *AdminListStreamsRequest) (*AdminListStreamsResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}

	streams, err := h.service.AdminListStreams(ctx)
	if err != nil {
		h.logger.Error("failed to list streams", "error", err)
		return nil, huma.Error500InternalServerError("failed to list streams", err)
	}

	resp := &AdminListStreamsResponse{}
	resp.Body.Streams = make([]adminStreamDTO, 0, len(streams))
	for _, st := range streams {
		resp.Body.Streams = append(resp.Body.Streams, adminStreamDTO{
			ID:         st.ID,
			Title:      st.Title,
			YoutubeID:  st.YoutubeID,
			RecordedAt: st.RecordedAt,
			IsPremium:  st.IsPremium,
			Published:  st.Published,
		})
	}
	return resp, nil
}

type CreateStreamRequest struct {
	identityCookies
	Body StreamInput
}

func (h *Handler) CreateStreamHandler(ctx context.Context, input *CreateStreamRequest) (*adminIDResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, err
	}

	st := input.Body.toStream("")
	if err := h.service.CreateStream(ctx, st); err != nil {
		h.logger.Error("failed to create stream", "error", err)
		return nil, huma.Error500InternalServerError("failed to create stream", err)
	}

	resp := &adminIDResponse{}
	resp.Body.ID = st.ID
	return resp, nil
}

type UpdateStreamRequest struct {
	identityCookies
	ID   string `path:"id"`
	Body StreamInput
}

func (h *Handler) UpdateStreamHandler(ctx context.Context, input *UpdateStreamRequest) (*adminOKResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&input.Body); err != nil {
		return nil, err
	}

	if err := h.service.UpdateStream(ctx, input.Body.toStream(input.ID)); err != nil {
		if ErrNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("failed to update stream", "error", err, "id", input.ID)
		return nil, huma.Error500InternalServerError("failed to update stream", err)
	}
	return adminOK(), nil
}

func (h *Handler) DeleteStreamHandler(ctx context.Context, input *adminIDRequest) (*adminOKResponse, error) {
	if _, err := h.requireAdmin(ctx, input.identityCookies); err != nil {
		return nil, err
	}

	if err := h.service.DeleteStream(ctx, input.ID); err != nil {
		if ErrNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("failed to delete stream", "error", err, "id", input.ID)
		return nil, huma.Error500InternalServerError("failed to delete stream", err)
	}
	return adminOK(), nil
}
