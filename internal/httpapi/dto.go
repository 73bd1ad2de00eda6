package httpapi

import (
	"time"

	"courserag/internal/domain"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	ErrorCodeResourceNotFound     ErrorCode = "RES_001"
	ErrorCodeValidationFailed     ErrorCode = "VAL_001"
	ErrorCodeBadRequest           ErrorCode = "BAD_REQUEST"
	ErrorCodeInternalServer       ErrorCode = "SRV_001"
	ErrorCodeExternalServiceError ErrorCode = "SRV_003"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	ErrorSeverityWarning ErrorSeverity = "WARNING"
	ErrorSeverityError   ErrorSeverity = "ERROR"
)

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code     ErrorCode     `json:"code"`
	Message  string        `json:"message"`
	Field    string        `json:"field,omitempty"`
	Severity ErrorSeverity `json:"severity"`
	Details  any           `json:"details,omitempty"`
}

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success   bool         `json:"success"`
	Error     *ErrorDetail `json:"error"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{Code: code, Message: message, Severity: ErrorSeverityError}
}

func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

func (e *ErrorDetail) WithDetails(details any) *ErrorDetail {
	e.Details = details
	return e
}

func (e *ErrorDetail) WithSeverity(s ErrorSeverity) *ErrorDetail {
	e.Severity = s
	return e
}

func NewErrorResponse(detail *ErrorDetail) ErrorResponse {
	return ErrorResponse{Success: false, Error: detail, Timestamp: time.Now().UTC()}
}

// Requests

type AddDocumentRequest struct {
	Document string `json:"document" validate:"required"`
}

type AddDocumentsRequest struct {
	Documents []string `json:"documents" validate:"required,min=1,dive,required"`
}

type QueryRequest struct {
	Query    string `json:"query" validate:"required"`
	NResults int    `json:"n_results" validate:"omitempty,min=1,max=50"`
}

type LLMRequest struct {
	Message      string `json:"message" validate:"required"`
	SystemPrompt string `json:"system_prompt"`
}

type RAGRequest struct {
	Message string `json:"message" validate:"required"`
}

// Responses

type HealthResponse struct {
	Status    string `json:"status"`
	LiteLLM   bool   `json:"lite_llm"`
	Courses   int    `json:"courses"`
	Documents int    `json:"documents"`
}

type CoursesResponse struct {
	Count   int             `json:"count"`
	Courses []domain.Course `json:"courses"`
}

type AddDocumentsResponse struct {
	IDs []string `json:"ids"`
}

type QueryHit struct {
	ID    string  `json:"id"`
	Kind  string  `json:"kind"`
	Key   string  `json:"key,omitempty"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

type QueryResponse struct {
	Results []QueryHit `json:"results"`
}

type LLMResponse struct {
	Reply string `json:"reply"`
}

type ReloadResponse struct {
	Courses   int `json:"courses"`
	Documents int `json:"documents"`
}
