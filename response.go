package envelope

import "net/http"

// Response is the outgoing response a Stage produces: a status code, a
// case-insensitive header collection, and a body. The status code is fixed
// by whichever stage produced the response; decoration only ever touches
// the header collection and the body.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte

	synthesized bool
}

// NewResponse creates an empty response with the given status code.
func NewResponse(statusCode int) *Response {
	return &Response{
		StatusCode: statusCode,
		Header:     make(http.Header),
	}
}

// Synthesized reports whether the body was replaced with a serialized
// ErrorMessage during decoration. A response holds exactly one body shape;
// the original body is discarded the moment an envelope is synthesized.
func (r *Response) Synthesized() bool {
	return r.synthesized
}
