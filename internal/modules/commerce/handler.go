package commerce

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/communityhq/membergate/internal/modules/identity"
	"github.com/communityhq/membergate/internal/session"
)

// Handler holds the dependencies for the commerce module's HTTP handlers.
type Handler struct {
	service        Service
	gateway        *identity.Gateway
	sessions       *session.Codec
	prices         PriceResolver
	endpointSecret string
	logger         *slog.Logger
}

// HandlerConfig holds the dependencies for NewHandler.
type HandlerConfig struct {
	Service        Service
	Gateway        *identity.Gateway
	Sessions       *session.Codec
	Prices         PriceResolver
	EndpointSecret string
	Logger         *slog.Logger
}

// NewHandler creates a new handler for the commerce module.
func NewHandler(cfg *HandlerConfig) *Handler {
	return &Handler{
		service:        cfg.Service,
		gateway:        cfg.Gateway,
		sessions:       cfg.Sessions,
		prices:         cfg.Prices,
		endpointSecret: cfg.EndpointSecret,
		logger:         cfg.Logger,
	}
}

// RegisterRoutes sets up the routing for the commerce module.
func (h *Handler) RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/p",
		Summary: "List published products",
	}, h.ListProductsHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/p/{slug}",
		Summary: "Get a product offer page",
	}, h.GetProductHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodGet,
		Path:    "/p/{slug}/view",
		Summary: "Access a purchased product",
	}, h.ViewProductHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/products/activate",
		Summary: "Activate a license key",
	}, h.ActivateLicenseHandler)

	huma.Register(api, huma.Operation{
		Method:  http.MethodPost,
		Path:    "/webhooks/stripe",
		Summary: "Receive payment platform events",
	}, h.StripeWebhookHandler)
}

// --- DTOs (Data Transfer Objects) ---

// ProductSummary is the public shape of a product.
type ProductSummary struct {
	Slug               string  `json:"slug"`
	Title              string  `json:"title"`
	Tagline            *string `json:"tagline,omitempty"`
	LSURL              *string `json:"purchaseUrl,omitempty"`
	MembershipIncluded bool    `json:"membershipIncluded"`
}

// ListProductsResponse is the storefront listing.
type ListProductsResponse struct {
	Body struct {
		Products []ProductSummary `json:"products"`
	}
}

// GetProductRequest identifies a product by slug.
type GetProductRequest struct {
	Slug string `path:"slug"`
}

// GetProductResponse is the offer page payload.
type GetProductResponse struct {
	Body struct {
		ProductSummary
		ContentHTML *string `json:"contentHtml,omitempty"`
	}
}

// ViewProductRequest carries the slug plus every credential that can prove
// access. The license cookie's name depends on the slug, so the raw Cookie
// header is parsed in the handler.
type ViewProductRequest struct {
	Slug         string `path:"slug"`
	Session      string `cookie:"comm_session"`
	AccessToken  string `cookie:"sb-access-token"`
	CookieHeader string `header:"Cookie"`
}

// ViewProductResponse either grants access or redirects to the offer page.
type ViewProductResponse struct {
	Status   int
	Location string `header:"Location"`
	Body     struct {
		HasAccess   bool    `json:"hasAccess"`
		Rule        string  `json:"rule,omitempty"`
		Slug        string  `json:"slug,omitempty"`
		Title       string  `json:"title,omitempty"`
		ContentHTML *string `json:"contentHtml,omitempty"`
	}
}

// ActivateLicenseRequest is the license activation payload.
type ActivateLicenseRequest struct {
	Session     string `cookie:"comm_session"`
	AccessToken string `cookie:"sb-access-token"`
	Body        struct {
		Key  string `json:"key"`
		Slug string `json:"slug"`
	}
}

// ActivateLicenseResponse reports the activation outcome and, on success,
// sets the product-scoped license cookie.
type ActivateLicenseResponse struct {
	SetCookie string `header:"Set-Cookie"`
	Body      struct {
		OK             bool   `json:"ok"`
		Reason         string `json:"reason,omitempty"`
		SavedToAccount bool   `json:"savedToAccount,omitempty"`
	}
}

// --- Handlers ---

func toSummary(p *Product) ProductSummary {
	return ProductSummary{
		Slug:               p.Slug,
		Title:              p.Title,
		Tagline:            p.Tagline,
		LSURL:              p.LSURL,
		MembershipIncluded: p.MembershipIncluded,
	}
}

// ListProductsHandler lists published products for the storefront.
func (h *Handler) ListProductsHandler(ctx context.Context, _ *struct{}) (*ListProductsResponse, error) {
	products, err := h.service.ListProducts(ctx)
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		return nil, huma.Error500InternalServerError("failed to list products", err)
	}

	resp := &ListProductsResponse{}
	resp.Body.Products = make([]ProductSummary, 0, len(products))
	for _, p := range products {
		resp.Body.Products = append(resp.Body.Products, toSummary(p))
	}
	return resp, nil
}

// GetProductHandler returns a product offer page.
func (h *Handler) GetProductHandler(ctx context.Context, input *GetProductRequest) (*GetProductResponse, error) {
	product, err := h.service.GetProduct(ctx, input.Slug)
	if err != nil {
		if ErrProductNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("failed to load product", "error", err, "slug", input.Slug)
		return nil, huma.Error500InternalServerError("failed to load product", err)
	}

	resp := &GetProductResponse{}
	resp.Body.ProductSummary = toSummary(product)
	resp.Body.ContentHTML = product.ContentHTML
	return resp, nil
}

// ViewProductHandler gates the purchased content behind the entitlement
// ladder. Denied callers get a 303 to wherever they can fix that.
func (h *Handler) ViewProductHandler(ctx context.Context, input *ViewProductRequest) (*ViewProductResponse, error) {
	user := h.gateway.Resolve(ctx, input.Session, input.AccessToken)
	hasLicense := hasCookie(input.CookieHeader, session.LicenseCookieName(input.Slug))

	view, err := h.service.CheckAccess(ctx, user, input.Slug, "/p/"+input.Slug+"/view", hasLicense)
	if err != nil {
		if ErrProductNotFound.Is(err) {
			return nil, err
		}
		h.logger.Error("product access check failed", "error", err, "slug", input.Slug)
		return nil, huma.Error500InternalServerError("access check failed", err)
	}

	resp := &ViewProductResponse{}
	if !view.Decision.Allowed {
		resp.Status = http.StatusSeeOther
		resp.Location = view.Redirect
		return resp, nil
	}

	resp.Status = http.StatusOK
	resp.Body.HasAccess = true
	resp.Body.Rule = view.Decision.Rule
	resp.Body.Slug = view.Product.Slug
	resp.Body.Title = view.Product.Title
	resp.Body.ContentHTML = view.Product.ContentHTML
	return resp, nil
}

// ActivateLicenseHandler activates a license key against a product slug.
func (h *Handler) ActivateLicenseHandler(ctx context.Context, input *ActivateLicenseRequest) (*ActivateLicenseResponse, error) {
	user := h.gateway.Resolve(ctx, input.Session, input.AccessToken)

	result, err := h.service.ActivateLicense(ctx, user, input.Body.Key, input.Body.Slug)
	if err != nil {
		h.logger.Error("license activation failed", "error", err)
		return nil, huma.Error500InternalServerError("activation failed", err)
	}

	resp := &ActivateLicenseResponse{}
	resp.Body.OK = result.OK
	resp.Body.Reason = result.Reason
	resp.Body.SavedToAccount = result.SavedToAccount
	if result.OK {
		resp.SetCookie = h.sessions.LicenseCookie(result.Slug, input.Body.Key).String()
	}
	return resp, nil
}

// hasCookie reports whether the raw Cookie header carries the named cookie.
func hasCookie(header, name string) bool {
	if header == "" {
		return false
	}
	req := http.Request{Header: http.Header{"Cookie": {header}}}
	c, err := req.Cookie(name)
	return err == nil && c.Value != ""
}
