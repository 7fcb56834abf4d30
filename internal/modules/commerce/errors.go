package commerce

import (
	"net/http"

	"github.com/communityhq/membergate/internal/httpx"
)

var (
	ErrProductNotFound = &httpx.DomainError{
		Code:       "ErrProductNotFound",
		HTTPStatus: http.StatusNotFound,
		Title:      "Not Found",
		Message:    "product not found",
		TypeURI:    "urn:problem:commerce/err-product-not-found",
	}

	ErrPurchaseNotFound = &httpx.DomainError{
		Code:       "ErrPurchaseNotFound",
		HTTPStatus: http.StatusNotFound,
		Title:      "Not Found",
		Message:    "purchase not found",
		TypeURI:    "urn:problem:commerce/err-purchase-not-found",
	}

	ErrInvalidWebhook = &httpx.DomainError{
		Code:       "ErrInvalidWebhook",
		HTTPStatus: http.StatusBadRequest,
		Title:      "Bad Request",
		Message:    "webhook verification failed",
		TypeURI:    "urn:problem:commerce/err-invalid-webhook",
	}

	ErrInternal = &httpx.DomainError{
		Code:       "ErrInternal",
		HTTPStatus: http.StatusInternalServerError,
		Title:      "Internal Server Error",
		Message:    "internal server error",
		TypeURI:    "urn:problem:commerce/err-internal",
	}
)
