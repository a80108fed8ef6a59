package handler

import "net/http"

// handleGenerateLink handles GET /generate-link.
func (h *Handler) handleGenerateLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.GenerateLink(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LinkResponse{SafeURL: link})
}

// handleProtected handles GET <protected path>?token=. A missing token is
// treated like an invalid one.
func (h *Handler) handleProtected(w http.ResponseWriter, r *http.Request) {
	claims, err := h.svc.VerifyLink(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ProtectedResponse{
		Message: "Token valid",
		Data:    UserData{UserID: claims.UserID},
	})
}
