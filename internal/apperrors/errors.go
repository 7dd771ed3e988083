package apperrors

// =============================================================================
// Error Codes
// =============================================================================

type ErrorCode string

const (
	ErrorCodeInternalError        ErrorCode = "INTERNAL_ERROR"
	ErrorCodeValidationError      ErrorCode = "VALIDATION_ERROR"
	ErrorCodeNotFound             ErrorCode = "NOT_FOUND"
	ErrorCodeUnauthorized         ErrorCode = "UNAUTHORIZED"
	ErrorCodeForbidden            ErrorCode = "FORBIDDEN"
	ErrorCodeConflict             ErrorCode = "CONFLICT"
	ErrorCodeDescriptorInvalid    ErrorCode = "DESCRIPTOR_INVALID"
	ErrorCodeReceiverRejected     ErrorCode = "RECEIVER_REJECTED"
	ErrorCodeReceiverTimeout      ErrorCode = "RECEIVER_TIMEOUT"
	ErrorCodeReceiverUnreachable  ErrorCode = "RECEIVER_UNREACHABLE"
	ErrorCodeUnsupportedOperation ErrorCode = "UNSUPPORTED_OPERATION"
	ErrorCodeMenuTraversalFailed  ErrorCode = "MENU_TRAVERSAL_FAILED"
	ErrorCodeReceiverNotFound     ErrorCode = "RECEIVER_NOT_FOUND"
	ErrorCodeRoutineNotFound      ErrorCode = "ROUTINE_NOT_FOUND"
	ErrorCodeInvalidSchedule      ErrorCode = "INVALID_SCHEDULE"
	ErrorCodeAuthPairingExpired   ErrorCode = "AUTH_PAIRING_EXPIRED"
	ErrorCodeAuthPairingInvalid   ErrorCode = "AUTH_PAIRING_INVALID"
	ErrorCodeAuthTokenExpired     ErrorCode = "AUTH_TOKEN_EXPIRED"
	ErrorCodeAuthTokenInvalid     ErrorCode = "AUTH_TOKEN_INVALID"
)

// ErrorBody is the serialized error payload.
type ErrorBody struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// AppError is the base error type for HTTP responses.
type AppError struct {
	Code       ErrorCode
	Message    string
	StatusCode int
	Details    map[string]any
	Err        error
}

func (err *AppError) Error() string {
	return err.Message
}

func (err *AppError) Unwrap() error {
	return err.Err
}

func (err *AppError) ErrorBody() ErrorBody {
	body := ErrorBody{
		Code:    err.Code,
		Message: err.Message,
	}
	if err.Details != nil {
		body.Details = err.Details
	}
	return body
}

func NewAppError(code ErrorCode, message string, statusCode int, details map[string]any) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

func NewValidationError(message string, details map[string]any) *AppError {
	return NewAppError(ErrorCodeValidationError, message, 400, details)
}

func NewUnauthorizedError(message string, code ...ErrorCode) *AppError {
	errCode := ErrorCodeUnauthorized
	if len(code) > 0 {
		errCode = code[0]
	}
	return NewAppError(errCode, message, 401, nil)
}

func NewForbiddenError(message string) *AppError {
	return NewAppError(ErrorCodeForbidden, message, 403, nil)
}

func NewNotFoundError(message string, details map[string]any) *AppError {
	return NewAppError(ErrorCodeNotFound, message, 404, details)
}

func NewNotFoundResource(resource, id string) *AppError {
	message := resource + " not found"
	details := map[string]any{
		"resource": resource,
	}
	if id != "" {
		message = resource + " not found: " + id
		details["id"] = id
	}
	return NewAppError(ErrorCodeNotFound, message, 404, details)
}

func NewConflictError(message string, details map[string]any) *AppError {
	return NewAppError(ErrorCodeConflict, message, 409, details)
}

func NewInternalError(message string) *AppError {
	return NewAppError(ErrorCodeInternalError, message, 500, nil)
}

// NewUnsupportedOperationError reports a structurally valid request for a
// capability the addressed source or zone does not expose.
func NewUnsupportedOperationError(message string, details map[string]any) *AppError {
	return NewAppError(ErrorCodeUnsupportedOperation, message, 409, details)
}

// EnsureAppError converts an arbitrary error into an AppError.
func EnsureAppError(err error) *AppError {
	if err == nil {
		return NewInternalError("Unknown error")
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	wrapped := NewInternalError(err.Error())
	wrapped.Err = err
	return wrapped
}
