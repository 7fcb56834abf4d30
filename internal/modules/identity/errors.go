package identity

import (
	"net/http"

	"github.com/communityhq/membergate/internal/httpx"
)

// --- Pre-defined Domain Errors ---
// These variables represent specific, known error conditions in the identity domain.

var (
	ErrNotFound = &httpx.DomainError{
		Code:       "ErrNotFound",
		HTTPStatus: http.StatusNotFound,
		Title:      "Not Found",
		Message:    "profile not found",
		TypeURI:    "urn:problem:identity/err-not-found",
	}

	ErrUnauthenticated = &httpx.DomainError{
		Code:       "ErrUnauthenticated",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Unauthorized",
		Message:    "not authenticated",
		TypeURI:    "urn:problem:identity/err-unauthenticated",
	}

	ErrInvalidSignature = &httpx.DomainError{
		Code:       "ErrInvalidSignature",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Unauthorized",
		Message:    "invalid webhook signature",
		TypeURI:    "urn:problem:identity/err-invalid-signature",
	}

	ErrMalformedPayload = &httpx.DomainError{
		Code:       "ErrMalformedPayload",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "malformed webhook payload",
		TypeURI:    "urn:problem:identity/err-malformed-payload",
	}

	// ErrServerMisconfigured is an operator error, not a user error: a webhook
	// secret or API key the deployment requires is missing.
	ErrServerMisconfigured = &httpx.DomainError{
		Code:       "ErrServerMisconfigured",
		HTTPStatus: http.StatusInternalServerError,
		Title:      "Internal Server Error",
		Message:    "server misconfigured",
		Detail:     "Server misconfigured",
		TypeURI:    "urn:problem:identity/err-server-misconfigured",
	}

	ErrInternal = &httpx.DomainError{
		Code:       "ErrInternal",
		HTTPStatus: http.StatusInternalServerError,
		Title:      "Internal Server Error",
		Message:    "internal server error",
		TypeURI:    "urn:problem:identity/err-internal",
	}
)
