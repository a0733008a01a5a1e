package errors

import "errors"

// Response is the JSON error body returned by the HTTP API
type Response struct {
	// Error is the qualified code ("<domain>.<code>")
	Error string `json:"error"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details carries optional extra context
	Details map[string]interface{} `json:"details,omitempty"`
}

// ToResponse converts an Error to an HTTP response body
func (e *Error) ToResponse() Response {
	return Response{
		Error:   e.Qualified(),
		Message: e.Message,
	}
}

// ToResponseWithDetails converts an Error to an HTTP response body with details
func (e *Error) ToResponseWithDetails(details map[string]interface{}) Response {
	r := e.ToResponse()
	r.Details = details
	return r
}

// NewResponse builds a response from any error. Errors that do not wrap an
// *Error become a generic internal error so causes never leak to clients.
func NewResponse(err error) Response {
	var e *Error
	if errors.As(err, &e) {
		r := e.ToResponse()
		if e.cause != nil {
			r.Details = map[string]interface{}{"cause": e.cause.Error()}
		}
		return r
	}

	return Response{
		Error:   string(DomainInternal) + "." + string(CodeInternal),
		Message: "Internal server error",
	}
}
