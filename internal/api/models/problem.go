package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 error body, served as application/problem+json.
type Problem struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError is a validation error on one request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

const problemBase = "https://api.tashuroute.kr/problems/"

// Problem types.
const (
	ProblemTypeValidation          = problemBase + "validation-error"
	ProblemTypeLocationUnavailable = problemBase + "location-unavailable"
	ProblemTypeUnauthorized        = problemBase + "unauthorized"
	ProblemTypeTLSRequired         = problemBase + "tls-required"
	ProblemTypeNotFound            = problemBase + "not-found"
	ProblemTypeConflict            = problemBase + "conflict"
	ProblemTypeUnsupportedMedia    = problemBase + "unsupported-media-type"
	ProblemTypeTooManyRequests     = problemBase + "too-many-requests"
	ProblemTypeInternal            = problemBase + "internal-error"
	ProblemTypeBadGateway          = problemBase + "upstream-malformed"
	ProblemTypeUnavailable         = problemBase + "service-unavailable"
)

var problemTitles = map[string]string{
	ProblemTypeValidation:          "Validation error",
	ProblemTypeLocationUnavailable: "Location unavailable",
	ProblemTypeUnauthorized:        "Unauthorized",
	ProblemTypeTLSRequired:         "TLS required",
	ProblemTypeNotFound:            "Not found",
	ProblemTypeConflict:            "Conflict",
	ProblemTypeUnsupportedMedia:    "Unsupported media type",
	ProblemTypeTooManyRequests:     "Too many requests",
	ProblemTypeInternal:            "Internal server error",
	ProblemTypeBadGateway:          "Bad gateway",
	ProblemTypeUnavailable:         "Service unavailable",
}

// NewProblem creates a Problem. An empty title is filled in for known types.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	if title == "" {
		title = problemTitles[problemType]
	}
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

func newDetailed(problemType string, status int, traceID, detail string) *Problem {
	p := NewProblem(problemType, "", status, traceID)
	p.Detail = detail
	return p
}

// WithDetail sets the detail message.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance sets the instance URI.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors sets the field errors.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write writes the problem with its status and the trace ID as X-Request-Id.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 validation problem.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	return newDetailed(ProblemTypeValidation, http.StatusBadRequest, traceID, detail).WithErrors(errors)
}

// NewLocationUnavailable creates a 400 problem for requests that need the
// caller's position but did not supply one.
func NewLocationUnavailable(traceID, detail string) *Problem {
	return newDetailed(ProblemTypeLocationUnavailable, http.StatusBadRequest, traceID, detail)
}

// NewUnauthorized creates a 401 problem.
func NewUnauthorized(traceID, detail string) *Problem {
	return newDetailed(ProblemTypeUnauthorized, http.StatusUnauthorized, traceID, detail)
}

// NewTLSRequired creates a 403 problem for plain-HTTP requests.
func NewTLSRequired(traceID string) *Problem {
	return newDetailed(ProblemTypeTLSRequired, http.StatusForbidden, traceID, "This endpoint requires HTTPS")
}

// NewNotFound creates a 404 problem.
func NewNotFound(traceID, detail string) *Problem {
	return newDetailed(ProblemTypeNotFound, http.StatusNotFound, traceID, detail)
}

// NewConflict creates a 409 problem.
func NewConflict(traceID, detail string) *Problem {
	return newDetailed(ProblemTypeConflict, http.StatusConflict, traceID, detail)
}

// NewUnsupportedMediaType creates a 415 problem for non-JSON request bodies.
func NewUnsupportedMediaType(traceID, contentType string) *Problem {
	return newDetailed(ProblemTypeUnsupportedMedia, http.StatusUnsupportedMediaType, traceID,
		"Content-Type must be application/json, got "+contentType)
}

// NewTooManyRequests creates a 429 problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	return newDetailed(ProblemTypeTooManyRequests, http.StatusTooManyRequests, traceID, detail)
}

// NewInternalError creates a 500 problem.
func NewInternalError(traceID, detail string) *Problem {
	return newDetailed(ProblemTypeInternal, http.StatusInternalServerError, traceID, detail)
}

// NewBadGateway creates a 502 problem for an upstream that answered with
// data we could not use.
func NewBadGateway(traceID, detail string) *Problem {
	return newDetailed(ProblemTypeBadGateway, http.StatusBadGateway, traceID, detail)
}

// NewServiceUnavailable creates a 503 problem.
func NewServiceUnavailable(traceID, detail string) *Problem {
	return newDetailed(ProblemTypeUnavailable, http.StatusServiceUnavailable, traceID, detail)
}
