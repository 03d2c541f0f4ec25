package httpapi

import (
	"encoding/json"
	"net/http"
)

// Connectivity is the monitor surface the explicit offline toggle drives.
type Connectivity interface {
	Online() bool
	SetOnline(online bool)
}

type SyncHandler struct {
	cart Cart
	conn Connectivity
}

func NewSyncHandler(cart Cart, conn Connectivity) *SyncHandler {
	return &SyncHandler{cart: cart, conn: conn}
}

type SetOnlineRequestDTO struct {
	Online bool `json:"online"`
}

func (h *SyncHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.cart.Status())
}

// SetOnline forces the connectivity state, the server-side equivalent of
// the browser's offline mode. The next probe pass may flip it back.
func (h *SyncHandler) SetOnline(w http.ResponseWriter, r *http.Request) {
	var req SetOnlineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	h.conn.SetOnline(req.Online)
	respondJSON(w, http.StatusOK, h.cart.Status())
}
