// Package apperrors provides sentinel and custom error types for the application.
package apperrors

// ErrConfiguration represents a startup configuration failure.
// Fatal: the process cannot serve requests without a working schema/connection.
var ErrConfiguration = &ConfigurationError{}

// ConfigurationError is a sentinel error for schema or connection setup failures.
type ConfigurationError struct {
	Message string
}

// NewConfigurationError creates a new ConfigurationError with a custom message.
func NewConfigurationError(message string) *ConfigurationError {
	return &ConfigurationError{Message: message}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	return "configuration error"
}

// Is implements the error interface for error comparison.
func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)

	return ok
}

// ErrExternalService represents a failure of a collaborator service
// (media resolver or an embedding generator). Jobs hitting it may be
// re-enqueued by the caller; this core never retries on its own.
var ErrExternalService = &ExternalServiceError{}

// ExternalServiceError is a sentinel error for collaborator call failures.
type ExternalServiceError struct {
	Service string
	Message string
}

// NewExternalServiceError creates a new ExternalServiceError with a custom message.
func NewExternalServiceError(service, message string) *ExternalServiceError {
	return &ExternalServiceError{Service: service, Message: message}
}

// Error implements the error interface.
func (e *ExternalServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Service != "" {
		return e.Service + " call failed"
	}

	return "external service error"
}

// Is implements the error interface for error comparison.
func (e *ExternalServiceError) Is(target error) bool {
	_, ok := target.(*ExternalServiceError)

	return ok
}

// ErrUnsupportedRecordType represents an ingest request for a media record
// type no generator exists for. Terminates the job without inserting anything.
var ErrUnsupportedRecordType = &UnsupportedRecordTypeError{}

// UnsupportedRecordTypeError is a sentinel error for unknown media record types.
type UnsupportedRecordTypeError struct {
	RecordType string
}

// NewUnsupportedRecordTypeError creates a new UnsupportedRecordTypeError for the given type.
func NewUnsupportedRecordTypeError(recordType string) *UnsupportedRecordTypeError {
	return &UnsupportedRecordTypeError{RecordType: recordType}
}

// Error implements the error interface.
func (e *UnsupportedRecordTypeError) Error() string {
	if e.RecordType != "" {
		return "unsupported media record type: " + e.RecordType
	}

	return "unsupported media record type"
}

// Is implements the error interface for error comparison.
func (e *UnsupportedRecordTypeError) Is(target error) bool {
	_, ok := target.(*UnsupportedRecordTypeError)

	return ok
}

// ErrUniquenessViolation represents a duplicate primary key on insert.
// Not retried; re-ingestion requires an explicit delete first.
var ErrUniquenessViolation = &UniquenessViolationError{}

// UniquenessViolationError is a sentinel error for primary key conflicts.
type UniquenessViolationError struct {
	Table   string
	Message string
}

// NewUniquenessViolationError creates a new UniquenessViolationError with a custom message.
func NewUniquenessViolationError(table, message string) *UniquenessViolationError {
	return &UniquenessViolationError{Table: table, Message: message}
}

// Error implements the error interface.
func (e *UniquenessViolationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Table != "" {
		return "duplicate key in table " + e.Table
	}

	return "uniqueness violation"
}

// Is implements the error interface for error comparison.
func (e *UniquenessViolationError) Is(target error) bool {
	_, ok := target.(*UniquenessViolationError)

	return ok
}

// ErrValidation represents malformed caller input, e.g. a negative search count
// or an embedding of the wrong dimension.
var ErrValidation = &ValidationError{}

// ValidationError is a sentinel error for validation failures.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a new ValidationError with a custom message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return "validation failed for field: " + e.Field
	}

	return "validation error"
}

// Is implements the error interface for error comparison.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)

	return ok
}
