package response

// Response is the envelope every API endpoint returns. Exactly one of Data
// and Error is populated depending on the outcome.
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // mirrors the HTTP status
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success wraps a payload in a success envelope.
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error wraps a user-facing message in an error envelope.
func Error(statusCode int, msg string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      msg,
	}
}
