package httpapi

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abdallahh166/luli-beads/internal/domain"
	"github.com/abdallahh166/luli-beads/internal/store"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsSendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsMessage is one frame on the stream: either a cart snapshot or a sync
// status update.
type wsMessage struct {
	Type   string             `json:"type"`
	Cart   *cartResponse      `json:"cart,omitempty"`
	Status *domain.SyncStatus `json:"status,omitempty"`
}

type WSHandler struct {
	cart Cart
}

func NewWSHandler(cart Cart) *WSHandler {
	return &WSHandler{cart: cart}
}

// Stream upgrades the connection and pushes cart and sync-status snapshots as
// they change. Slow consumers are disconnected rather than allowed to stall
// the notifier callbacks.
func (h *WSHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	send := make(chan wsMessage, wsSendBuffer)

	enqueue := func(msg wsMessage) bool {
		select {
		case send <- msg:
			return true
		default:
			return false
		}
	}

	unsubCart := h.cart.OnCart(func(state store.CartState) {
		status := h.cart.Status()
		enqueue(wsMessage{Type: "cart", Cart: &cartResponse{Items: state.Items, Summary: state.Summary, Sync: status}})
	})
	unsubStatus := h.cart.OnStatus(func(status domain.SyncStatus) {
		enqueue(wsMessage{Type: "status", Status: &status})
	})

	// initial snapshot so clients do not have to poll before the first change
	state := h.cart.CartState()
	status := h.cart.Status()
	enqueue(wsMessage{Type: "cart", Cart: &cartResponse{Items: state.Items, Summary: state.Summary, Sync: status}})

	done := make(chan struct{})

	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		unsubCart()
		unsubStatus()
		conn.Close()
	}()

	for {
		select {
		case msg := <-send:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
