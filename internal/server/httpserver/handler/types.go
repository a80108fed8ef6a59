package handler

import "github.com/yndnr/linkauth-go/internal/infra/buildinfo"

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse is the body of login and logout.
type MessageResponse struct {
	Message string `json:"message"`
}

// LinkResponse is the body of GET /generate-link.
type LinkResponse struct {
	SafeURL string `json:"safe_url"`
}

// UserData identifies the authenticated user.
type UserData struct {
	UserID int64 `json:"user_id"`
}

// ProtectedResponse is the body of a successful link check.
type ProtectedResponse struct {
	Message string   `json:"message"`
	Data    UserData `json:"data"`
}

// DashboardResponse is the body of GET /dashboard.
type DashboardResponse struct {
	Message string   `json:"message"`
	User    UserData `json:"user"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}
