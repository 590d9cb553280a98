package domain

// ValidationKind classifies a rejected analytics request.
type ValidationKind int

const (
	MissingParameter ValidationKind = iota + 1
	MalformedDate
	InvalidRange
	NotFound
)

func (k ValidationKind) String() string {
	switch k {
	case MissingParameter:
		return "missing_parameter"
	case MalformedDate:
		return "malformed_date"
	case InvalidRange:
		return "invalid_range"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// ValidationError is a client error. Message is shown to the caller as is.
type ValidationError struct {
	Kind    ValidationKind
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(kind ValidationKind, message string) *ValidationError {
	return &ValidationError{Kind: kind, Message: message}
}
