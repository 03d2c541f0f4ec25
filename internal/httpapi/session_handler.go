package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/abdallahh166/luli-beads/internal/auth"
)

// Sessions is the slice of auth.Broker the session endpoints drive and the
// token middleware resolves against.
type Sessions interface {
	Current() *auth.Session
	SignIn(s auth.Session) string
	SignOut()
	Resolve(token string) *auth.Session
}

type SessionHandler struct {
	sessions Sessions
}

func NewSessionHandler(sessions Sessions) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type SignInRequestDTO struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type SignInResponseDTO struct {
	Session auth.Session `json:"session"`
	Token   string       `json:"token"`
}

func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "invalid_user_id", "user_id is required")
		return
	}

	session := auth.Session{UserID: req.UserID, Email: strings.TrimSpace(req.Email)}
	token := h.sessions.SignIn(session)
	respondJSON(w, http.StatusCreated, SignInResponseDTO{Session: session, Token: token})
}

func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut()
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	if session == nil {
		session = h.sessions.Current()
	}
	if session == nil {
		respondError(w, http.StatusNotFound, "no_session", "no active session")
		return
	}
	respondJSON(w, http.StatusOK, session)
}
