package identity

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-telegram/bot/models"

	"github.com/communityhq/membergate/internal/session"
)

// --- DTOs (Data Transfer Objects) ---

// StartLoginResponse carries the handoff token and the bot deep link the
// browser should open.
type StartLoginResponse struct {
	Body struct {
		Token   string `json:"token"`
		BotLink string `json:"botLink"`
	}
}

// PollLoginRequest identifies the handoff token being polled.
type PollLoginRequest struct {
	Token string `query:"token" required:"true" doc:"Login handoff token"`
}

// PollLoginResponse reports the token state and, once confirmed, sets the
// session cookie alongside the user payload.
type PollLoginResponse struct {
	SetCookie string `header:"Set-Cookie"`
	Body      struct {
		Status string        `json:"status" enum:"pending,ok,expired,invalid"`
		Role   string        `json:"role,omitempty"`
		User   *session.User `json:"user,omitempty"`
	}
}

// LinkTelegramRequest carries the handoff token plus the email-auth access
// token of the account to link to.
type LinkTelegramRequest struct {
	Token       string `query:"token" required:"true" doc:"Login handoff token"`
	AccessToken string `cookie:"sb-access-token"`
}

// LinkTelegramResponse reports the link outcome.
type LinkTelegramResponse struct {
	Body struct {
		Status string `json:"status" enum:"ok,pending,expired,invalid,unauthenticated"`
	}
}

// RefreshRoleRequest carries the current session cookie.
type RefreshRoleRequest struct {
	Session string `cookie:"comm_session"`
}

// RefreshRoleResponse rewrites the session cookie with the re-resolved role.
type RefreshRoleResponse struct {
	SetCookie string `header:"Set-Cookie"`
	Body      struct {
		OK   bool   `json:"ok"`
		Role string `json:"role"`
	}
}

// LogoutResponse clears the session cookie.
type LogoutResponse struct {
	SetCookie string `header:"Set-Cookie"`
	Body      struct {
		Status string `json:"status"`
	}
}

// MeRequest carries both identity cookies.
type MeRequest struct {
	Session     string `cookie:"comm_session"`
	AccessToken string `cookie:"sb-access-token"`
}

// MeResponse is the unified current user.
type MeResponse struct {
	Body UnifiedUser
}

// --- Handlers ---

// StartLoginHandler opens a Telegram login flow.
func (h *Handler) StartLoginHandler(ctx context.Context, _ *struct{}) (*StartLoginResponse, error) {
	start, err := h.service.StartLogin(ctx)
	if err != nil {
		h.logger.Error("failed to start telegram login", "error", err)
		return nil, huma.Error500InternalServerError("failed to start login", err)
	}

	resp := &StartLoginResponse{}
	resp.Body.Token = start.Token
	resp.Body.BotLink = start.BotLink
	return resp, nil
}

// PollLoginHandler reports the state of a handoff token and, once the bot has
// confirmed it, signs the session cookie for the browser.
func (h *Handler) PollLoginHandler(ctx context.Context, input *PollLoginRequest) (*PollLoginResponse, error) {
	res, err := h.service.PollLogin(ctx, input.Token)
	if err != nil {
		h.logger.Error("failed to poll login token", "error", err)
		return nil, huma.Error500InternalServerError("failed to poll login", err)
	}

	resp := &PollLoginResponse{}
	resp.Body.Status = res.Status
	if res.Status == StatusOK {
		resp.Body.Role = res.User.Role
		resp.Body.User = res.User
		cookie, err := h.sessions.Encode(*res.User)
		if err != nil {
			h.logger.Error("failed to sign session cookie", "error", err)
			return nil, huma.Error500InternalServerError("failed to sign session", err)
		}
		resp.SetCookie = cookie.String()
	}
	return resp, nil
}

// LinkTelegramHandler attaches a confirmed Telegram identity to the signed-in
// email account. The caller must present a valid access token cookie.
func (h *Handler) LinkTelegramHandler(ctx context.Context, input *LinkTelegramRequest) (*LinkTelegramResponse, error) {
	resp := &LinkTelegramResponse{}

	uid, _, ok := h.gateway.VerifyEmail(input.AccessToken)
	if !ok {
		resp.Body.Status = StatusUnauthenticated
		return resp, nil
	}

	status, err := h.service.LinkTelegram(ctx, uid, input.Token)
	if err != nil {
		h.logger.Error("failed to link identities", "error", err)
		return nil, huma.Error500InternalServerError("failed to link identities", err)
	}
	resp.Body.Status = status
	return resp, nil
}

// RefreshRoleHandler re-resolves the caller's role and rewrites the session
// cookie. It requires a valid Telegram session.
func (h *Handler) RefreshRoleHandler(ctx context.Context, input *RefreshRoleRequest) (*RefreshRoleResponse, error) {
	sess, ok := h.gateway.Session(input.Session)
	if !ok {
		return nil, huma.Error401Unauthorized("not authenticated")
	}

	updated, err := h.service.RefreshRole(ctx, sess)
	if err != nil {
		h.logger.Error("failed to refresh role", "error", err, "telegram_id", sess.TelegramID)
		return nil, huma.Error500InternalServerError("failed to refresh role", err)
	}

	cookie, err := h.sessions.Encode(*updated)
	if err != nil {
		h.logger.Error("failed to sign session cookie", "error", err)
		return nil, huma.Error500InternalServerError("failed to sign session", err)
	}

	resp := &RefreshRoleResponse{}
	resp.Body.OK = true
	resp.Body.Role = updated.Role
	resp.SetCookie = cookie.String()
	return resp, nil
}

// LogoutHandler clears the Telegram session cookie.
func (h *Handler) LogoutHandler(_ context.Context, _ *struct{}) (*LogoutResponse, error) {
	resp := &LogoutResponse{}
	resp.Body.Status = "ok"
	resp.SetCookie = h.sessions.Clear().String()
	return resp, nil
}

// MeHandler returns the unified current user, merging whichever identity
// cookies are present.
func (h *Handler) MeHandler(ctx context.Context, input *MeRequest) (*MeResponse, error) {
	user := h.gateway.Resolve(ctx, input.Session, input.AccessToken)
	if user == nil {
		return nil, huma.Error401Unauthorized("not authenticated")
	}
	return &MeResponse{Body: *user}, nil
}

// loginFromUpdate extracts the Telegram identity and handoff token from a
// "/start <token>" bot command, if the update carries one.
func loginFromUpdate(update *models.Update) (TelegramLogin, string, bool) {
	if update.Message == nil || update.Message.From == nil {
		return TelegramLogin{}, "", false
	}
	fields := strings.Fields(update.Message.Text)
	if len(fields) != 2 || fields[0] != "/start" {
		return TelegramLogin{}, "", false
	}

	from := update.Message.From
	login := TelegramLogin{
		ID:        from.ID,
		FirstName: from.FirstName,
		LastName:  from.LastName,
		Username:  from.Username,
	}
	return login, fields[1], true
}
