package envelope

import "net/http"

// fallbackMessage is used for status codes without a canonical reason phrase.
const fallbackMessage = "error"

// ErrorMessage is the body substituted for any response whose status code
// is above 299.
type ErrorMessage struct {
	Error   uint16 `json:"error"`
	Message string `json:"message"`
}

// NewErrorMessage builds the envelope for a status code. The message is the
// status's canonical reason phrase; codes without one fall back to a fixed
// literal so the message is never empty.
func NewErrorMessage(statusCode int) ErrorMessage {
	message := http.StatusText(statusCode)
	if message == "" {
		message = fallbackMessage
	}
	return ErrorMessage{
		Error:   uint16(statusCode),
		Message: message,
	}
}
