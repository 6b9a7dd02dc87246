package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"focuslog/internal/models"
	"focuslog/internal/reporter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     sameHostOrigin,
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StreamMessage is pushed to /api/stream clients after every tick
type StreamMessage struct {
	Type      string              `json:"type"`
	Current   string              `json:"current"`
	Since     time.Time           `json:"since"`
	Segments  int                 `json:"segments"`
	Summary   []models.SummaryRow `json:"summary"`
	Timestamp time.Time           `json:"timestamp"`
}

// Hub fans tracker ticks out to websocket clients. Only the run loop writes
// to registered connections.
type Hub struct {
	source  Source
	clients map[*websocket.Conn]bool
	mutex   sync.Mutex
}

func newHub(source Source) *Hub {
	return &Hub{
		source:  source,
		clients: make(map[*websocket.Conn]bool),
	}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mutex.Lock()
	h.clients[conn] = true
	n := len(h.clients)
	h.mutex.Unlock()
	log.Printf("Stream client registered. Total: %d", n)
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	n := len(h.clients)
	h.mutex.Unlock()
	log.Printf("Stream client unregistered. Total: %d", n)
}

// run broadcasts a fresh message on every tick until ctx is done, then
// closes all clients.
func (h *Hub) run(ctx context.Context) {
	ticks, cancel := h.source.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticks:
			h.broadcast(h.message())
		}
	}
}

// message builds the stream payload from one consistent read of the session
func (h *Hub) message() StreamMessage {
	segments, current, since := h.source.State()
	return StreamMessage{
		Type:      "summary",
		Current:   current,
		Since:     since,
		Segments:  len(segments),
		Summary:   reporter.Summarize(segments),
		Timestamp: time.Now(),
	}
}

func (h *Hub) broadcast(msg StreamMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Broadcast encode error: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		client.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("Broadcast error: %v", err)
			client.Close()
			delete(h.clients, client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		client.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(time.Second))
		client.Close()
		delete(h.clients, client)
	}
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Stream WebSocket upgrade error:", err)
		return
	}

	clientIP := r.RemoteAddr
	log.Printf("Stream client connected: %s", clientIP)

	// First message goes out before registering so the run loop is the
	// only writer afterwards.
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := conn.WriteJSON(h.hub.message()); err != nil {
		log.Printf("Stream initial write error: %v", err)
		conn.Close()
		return
	}

	h.hub.register(conn)
	defer func() {
		h.hub.unregister(conn)
		log.Printf("Stream client disconnected: %s", clientIP)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Stream read error: %v", err)
			}
			return
		}
	}
}

// sameHostOrigin accepts requests without an Origin header (non-browser
// clients) and browser requests from the dashboard's own host.
func sameHostOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host || origin == "https://"+r.Host
}
