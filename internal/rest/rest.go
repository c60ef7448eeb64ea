package rest

// ErrorResponse is the JSON envelope for all error replies. Details stays
// user-presentable; raw upstream payloads are never copied into it.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
