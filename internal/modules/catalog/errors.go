package catalog

import (
	"net/http"

	"github.com/communityhq/membergate/internal/httpx"
)

var (
	ErrCourseNotFound = &httpx.DomainError{
		Code:       "ErrCourseNotFound",
		HTTPStatus: http.StatusNotFound,
		Title:      "Not Found",
		Message:    "course not found",
		TypeURI:    "urn:problem:catalog/err-course-not-found",
	}

	ErrLessonNotFound = &httpx.DomainError{
		Code:       "ErrLessonNotFound",
		HTTPStatus: http.StatusNotFound,
		Title:      "Not Found",
		Message:    "lesson not found",
		TypeURI:    "urn:problem:catalog/err-lesson-not-found",
	}

	ErrNotFound = &httpx.DomainError{
		Code:       "ErrNotFound",
		HTTPStatus: http.StatusNotFound,
		Title:      "Not Found",
		Message:    "record not found",
		TypeURI:    "urn:problem:catalog/err-not-found",
	}

	ErrForbidden = &httpx.DomainError{
		Code:       "ErrForbidden",
		HTTPStatus: http.StatusForbidden,
		Title:      "Forbidden",
		Message:    "admin role required",
		TypeURI:    "urn:problem:catalog/err-forbidden",
	}

	ErrUnauthenticated = &httpx.DomainError{
		Code:       "ErrUnauthenticated",
		HTTPStatus: http.StatusUnauthorized,
		Title:      "Unauthorized",
		Message:    "not authenticated",
		TypeURI:    "urn:problem:catalog/err-unauthenticated",
	}
)
