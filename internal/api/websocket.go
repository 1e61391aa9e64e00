package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ringside/internal/combat"
)

const (
	// MaxWSConnectionsTotal caps concurrent WebSocket connections.
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP caps WebSocket connections per IP.
	MaxWSConnectionsPerIP = 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if IsAllowedOrigin(origin) {
			return true
		}
		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// wsClient tracks a WebSocket connection with its source IP.
type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// WebSocketHub fans combat events and state snapshots out to spectator and
// input clients, with per-IP and total connection limits.
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	wsLimiter *WebSocketRateLimiter

	// engine receives input messages pushed over the socket.
	engine EngineInterface
}

// NewWebSocketHub creates a hub bound to the engine for inbound input.
func NewWebSocketHub(engine EngineInterface) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
		engine:     engine,
	}
}

// Run pumps registration and broadcast. Call in its own goroutine.
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			h.mu.Unlock()

			count := h.ClientCount()
			log.Printf("📱 Client connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.wsLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

			count := h.ClientCount()
			log.Printf("📱 Client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for conn, client := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.wsLimiter.Release(client.ip)
					delete(h.clients, conn)
					conn.Close()
				}
			}
			h.mu.Unlock()
			IncrementWSMessages()
		}
	}
}

// Broadcast sends one named message to all clients. Drops under backpressure;
// the simulation never waits on spectators.
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	msg := map[string]interface{}{
		"event": event,
		"data":  data,
	}
	jsonBytes, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
	}
}

// BroadcastEvents relays a drained combat event batch, one message per event.
func (h *WebSocketHub) BroadcastEvents(events []combat.Event) {
	if h.ClientCount() == 0 {
		return
	}
	for _, ev := range events {
		h.Broadcast(ev.Type.String(), map[string]interface{}{
			"tick":    ev.Tick,
			"payload": ev.Payload,
		})
	}
}

// ClientCount returns the number of connected clients.
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes the match snapshot at 10 Hz. Spectator HUDs
// interpolate between these; frame-accurate data rides the event stream.
func (h *WebSocketHub) StartBroadcastLoop() {
	ticker := time.NewTicker(100 * time.Millisecond)

	go func() {
		for range ticker.C {
			if h.ClientCount() == 0 {
				continue
			}
			snap := h.engine.Snapshot()
			h.Broadcast("match:state", snap)
			ObserveSnapshot(snap)
		}
	}()
}

// wsInputMessage is the inbound input frame pushed by play clients.
type wsInputMessage struct {
	Fighter string        `json:"fighter"`
	Device  string        `json:"device"`
	State   devicePayload `json:"state"`
}

// HandleWebSocket upgrades a connection and runs its read loop.
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	if h.ClientCount() >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached")
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	h.register <- &wsClient{conn: conn, ip: ip}

	go func() {
		defer func() {
			h.unregister <- conn
		}()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				break
			}

			var msg wsInputMessage
			if err := json.Unmarshal(message, &msg); err != nil || msg.Fighter == "" {
				continue
			}
			dev, ok := parseDeviceKind(msg.Device)
			if !ok {
				continue
			}
			// Unknown fighters are a silent no-op, same as the HTTP path.
			h.engine.SetDeviceState(msg.Fighter, dev, decodeDeviceState(msg.State))
		}
	}()
}
