package dto

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UnauthorizedResponse tells the client where to send a user without a session.
type UnauthorizedResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

// MessageResponse carries a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}
