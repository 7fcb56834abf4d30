package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/communityhq/membergate/internal/config"
	"github.com/communityhq/membergate/internal/httpx"
	"github.com/communityhq/membergate/internal/modules/catalog"
	"github.com/communityhq/membergate/internal/modules/commerce"
	"github.com/communityhq/membergate/internal/modules/identity"
	"github.com/communityhq/membergate/internal/platform/supabase"
)

// Handlers collects the per-module HTTP handlers registered on the API.
type Handlers struct {
	Identity *identity.Handler
	Catalog  *catalog.Handler
	Commerce *commerce.Handler
}

// SupabaseTokenAdapter narrows the provider client to the identity module's
// verifier interface.
type SupabaseTokenAdapter struct {
	Client *supabase.Client
}

func (a SupabaseTokenAdapter) VerifyAccessToken(token string) (uid, email string, ok bool) {
	id, ok := a.Client.VerifyAccessToken(token)
	if !ok {
		return "", "", false
	}
	return id.UID, id.Email, true
}

// New creates and configures a new server instance.
func New(cfg *config.Config, log *slog.Logger, handlers Handlers) chi.Router {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	apiConfig := huma.DefaultConfig("Membergate API", "1.0.0")
	apiConfig.Transformers = append(apiConfig.Transformers, httpx.ProblemTransformer)
	api := humachi.New(router, apiConfig)

	handlers.Identity.RegisterRoutes(api)
	handlers.Catalog.RegisterRoutes(api)
	handlers.Commerce.RegisterRoutes(api)

	// Register a simple health check endpoint.
	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health Check",
		Description: "Responds with the server's health status.",
	}, func(ctx context.Context, input *struct{}) (*struct {
		Body struct {
			Status string `json:"status"`
		}
	}, error) {
		resp := &struct {
			Body struct {
				Status string `json:"status"`
			}
		}{}
		resp.Body.Status = "ok"
		return resp, nil
	})

	router.Handle("/metrics", promhttp.Handler())

	return router
}
