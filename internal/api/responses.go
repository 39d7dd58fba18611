// Package api holds the JSON envelopes shared by handlers and the API
// documentation annotations.
package api

// ErrorResponse is the envelope for non-2xx replies.
type ErrorResponse struct {
	Error string `json:"error" example:"pass has expired"`
}

// MessageResponse acknowledges an operation that returns no payload of its
// own, such as a webhook delivery.
type MessageResponse struct {
	Message string `json:"message" example:"payment processed"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
