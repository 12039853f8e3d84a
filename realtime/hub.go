package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Client is one websocket connection. A client can sit in several rooms at
// once: its society room, any open conversations, groups it joined, and the
// security panel.
type Client struct {
	Conn      *websocket.Conn
	Send      chan []byte
	UserID    string
	SocietyID string
	rooms     map[string]bool
}

type subscription struct {
	client *Client
	room   string
}

type broadcastMsg struct {
	Room string
	Data []byte
}

type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	join       chan subscription
	leave      chan subscription
	broadcast  chan broadcastMsg
	quit       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan subscription),
		leave:      make(chan subscription),
		broadcast:  make(chan broadcastMsg),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			for room := range c.rooms {
				h.addLocked(c, room)
			}
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			for room := range c.rooms {
				if conns := h.rooms[room]; conns != nil {
					delete(conns, c)
					if len(conns) == 0 {
						delete(h.rooms, room)
					}
				}
			}
			close(c.Send)
			h.mu.Unlock()

		case s := <-h.join:
			h.mu.Lock()
			s.client.rooms[s.room] = true
			h.addLocked(s.client, s.room)
			h.mu.Unlock()

		case s := <-h.leave:
			h.mu.Lock()
			delete(s.client.rooms, s.room)
			if conns := h.rooms[s.room]; conns != nil {
				delete(conns, s.client)
				if len(conns) == 0 {
					delete(h.rooms, s.room)
				}
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					delete(h.rooms[m.Room], c)
					close(c.Send)
				}
			}
			h.mu.Unlock()

		case <-h.quit:
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.quit)
}

func (h *Hub) addLocked(c *Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
}

// Join subscribes the client to a room outside the read loop.
func (h *Hub) Join(c *Client, room string) {
	h.join <- subscription{client: c, room: room}
}

func (h *Hub) Leave(c *Client, room string) {
	h.leave <- subscription{client: c, room: room}
}

// Emit sends an event envelope to every client in a room.
func (h *Hub) Emit(room, event string, payload interface{}) {
	data, err := json.Marshal(envelope{Event: event, Payload: mustRaw(payload)})
	if err != nil {
		log.Println("emit marshal:", err)
		return
	}
	h.broadcast <- broadcastMsg{Room: room, Data: data}
}

// envelope is the wire format in both directions.
type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func mustRaw(v interface{}) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		log.Println("payload marshal:", err)
		return nil
	}
	return data
}

// send delivers an event to this client only.
func (c *Client) send(event string, payload interface{}) {
	data, err := json.Marshal(envelope{Event: event, Payload: mustRaw(payload)})
	if err != nil {
		log.Println("send marshal:", err)
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Client) sendError(event, message string) {
	c.send(event, map[string]interface{}{"success": false, "message": message})
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

func societyRoom(societyID string) string  { return "society:" + societyID }
func securityRoom(societyID string) string { return "security:" + societyID }

// WebSocketHandler upgrades /ws/:societyId connections. The user id rides on
// the query string the way the browser client sends it; every connection
// starts in its society room.
func WebSocketHandler(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		societyID := ps.ByName("societyId")
		userID := r.URL.Query().Get("userId")

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}

		client := &Client{
			Conn:      conn,
			Send:      make(chan []byte, 256),
			UserID:    userID,
			SocietyID: societyID,
			rooms:     map[string]bool{societyRoom(societyID): true},
		}

		hub.register <- client
		go writePump(client)
		go readPump(client, hub)
	}
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

func readPump(c *Client, hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var in envelope
		if err := json.Unmarshal(raw, &in); err != nil {
			log.Println("invalid payload:", err)
			continue
		}
		dispatch(hub, c, in)
	}
}
