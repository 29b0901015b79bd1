package models

// APIError represents a standardized error response format for the API.
// @Description APIError carries an application-specific error code, a human-readable message and optional details.
type APIError struct {
	Code    string      `json:"code"`              // Application-specific error code (e.g., "NOT_FOUND", "VALIDATION_ERROR")
	Message string      `json:"message"`           // Human-readable message describing the error
	Details interface{} `json:"details,omitempty"` // Optional field for additional error details
}

// ImportError is the body returned by the import endpoints when a request
// cannot be processed at all.
// @Description ImportError is the failure body of the import endpoints.
type ImportError struct {
	Success          bool   `json:"success"`
	Error            string `json:"error"`
	FallbackRequired bool   `json:"fallbackRequired,omitempty"`
}

// Predefined application-specific error codes
const (
	// Generic Errors
	ErrorCodeInternalServerError = "INTERNAL_SERVER_ERROR"
	ErrorCodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
	ErrorCodeUnauthorized        = "UNAUTHORIZED"

	// Input Validation & Data Errors
	ErrorCodeValidation      = "VALIDATION_ERROR"
	ErrorCodeInvalidIDFormat = "INVALID_ID_FORMAT" // e.g., UUID format error
	ErrorCodeEmptyInput      = "EMPTY_INPUT"       // CSV with no header or no data rows

	// Resource Specific Errors
	ErrorCodeNotFound           = "NOT_FOUND"
	ErrorCodeCompanyNotFound    = "COMPANY_NOT_FOUND"
	ErrorCodeLeadNotFound       = "LEAD_NOT_FOUND"
	ErrorCodePromptNotFound     = "PROMPT_NOT_FOUND"
	ErrorCodeSequenceNotFound   = "SEQUENCE_NOT_FOUND"
	ErrorCodeEnrollmentNotFound = "ENROLLMENT_NOT_FOUND"

	// Business Logic / State Errors
	ErrorCodeConflict       = "CONFLICT_ERROR"
	ErrorCodeDuplicateEmail = "DUPLICATE_EMAIL" // lead email already present for the company
	ErrorCodeDuplicateName  = "DUPLICATE_NAME"
	ErrorCodeLLMUnavailable = "LLM_UNAVAILABLE"
)
