package errors

import stderrors "errors"

// Engine error taxonomy. Callers match with errors.Is; producers wrap with %w
// so the offending column, file or node stays in the message.
var (
	ErrDatasetNotFound = stderrors.New("dataset not found")
	ErrSchema          = stderrors.New("schema error")
	ErrUnknownColumn   = stderrors.New("unknown column")
	ErrTypeMismatch    = stderrors.New("type mismatch")
	ErrShapeMismatch   = stderrors.New("shape mismatch")
	ErrComputeFailure  = stderrors.New("compute failure")
)

const (
	HttpInternalError       = "internal_error"
	HttpInvalidRequestError = "invalid_request"
	HttpUnknownQueryError   = "unknown_query"
	HttpDatasetNotFound     = "dataset_not_found"
	HttpSchemaError         = "schema_error"
	HttpNotFoundError       = "not_found"
)

// ErrorResponse is the error response body of the HTTP API.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// HTTPErrorType maps an engine error onto the stable error_type string of the API.
func HTTPErrorType(err error) string {
	switch {
	case stderrors.Is(err, ErrDatasetNotFound):
		return HttpDatasetNotFound
	case stderrors.Is(err, ErrSchema), stderrors.Is(err, ErrUnknownColumn), stderrors.Is(err, ErrTypeMismatch):
		return HttpSchemaError
	default:
		return HttpInternalError
	}
}
