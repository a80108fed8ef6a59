package handler

import (
	"net/http"
	"time"
)

// handleLogin handles POST /login.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Login(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	cookie := h.sessionCookie(session.ID)
	if ttl := h.svc.Config().SessionTTL; ttl > 0 {
		cookie.MaxAge = cookieMaxAge(ttl)
	}
	http.SetCookie(w, cookie)

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged in"})
}

// handleDashboard handles GET /dashboard.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Dashboard(r.Context(), h.sessionID(r))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DashboardResponse{
		Message: "Welcome to dashboard",
		User:    UserData{UserID: session.UserID},
	})
}

// handleLogout handles POST /logout. It succeeds with or without a session.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), h.sessionID(r)); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	cookie := h.sessionCookie("")
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

func (h *Handler) sessionID(r *http.Request) string {
	c, err := r.Cookie(h.cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *Handler) sessionCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// cookieMaxAge converts ttl to whole seconds, rounding up so a live session
// never gets a zero Max-Age.
func cookieMaxAge(ttl time.Duration) int {
	return int((ttl + time.Second - 1) / time.Second)
}
