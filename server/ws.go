package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// sendBuffer is how many pushes a slow client may fall behind by before
// board updates to it are dropped.
const sendBuffer = 64

// wsClient is one connected WebSocket client.
type wsClient struct {
	conn    *websocket.Conn
	send    chan WSResponse
	lastSeq uint64 // newest board queued to this client; guarded by Server.mu
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		level.Warn(s.logger).Log("msg", "websocket upgrade failed", "err", err)
		return
	}
	c := &wsClient{conn: conn, send: make(chan WSResponse, sendBuffer)}
	go c.writePump()

	if err := s.register(c); err != nil {
		close(c.send)
		return
	}
	s.readPump(c)
}

func (c *wsClient) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// readPump serves one client's requests until it disconnects. Replies are
// queued from this goroutine only; broadcasts stop before send is closed.
func (s *Server) readPump(c *wsClient) {
	defer func() {
		s.unregister(c)
		close(c.send)
	}()
	for {
		var msg WSMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		s.queue(c, s.handleMessage(msg))
	}
}

func (s *Server) handleMessage(msg WSMessage) WSResponse {
	switch msg.Type {
	case "command":
		var req CommandRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return WSResponse{Type: "error", ID: msg.ID, Error: "invalid payload"}
		}
		res, err := s.Command(req.Input)
		if err != nil {
			return WSResponse{Type: "error", ID: msg.ID, Error: err.Error()}
		}
		return WSResponse{Type: "result", ID: msg.ID, Payload: res}
	case "board":
		snap, err := s.Board()
		if err != nil {
			return WSResponse{Type: "error", ID: msg.ID, Error: err.Error()}
		}
		return WSResponse{Type: "board", ID: msg.ID, Payload: snap}
	case "ping":
		return WSResponse{Type: "pong", ID: msg.ID}
	default:
		return WSResponse{Type: "error", ID: msg.ID, Error: "unknown message type"}
	}
}

// register adds c to the broadcast set and queues its welcome. Holding the
// lock throughout means no push can reach c ahead of the welcome or be
// missing from its snapshot.
func (s *Server) register(c *wsClient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, err := s.Board()
	if err != nil {
		return err
	}
	c.send <- WSResponse{Type: "welcome", Payload: Welcome{Title: s.title, Opening: s.opening, Board: snap}}
	c.lastSeq = snap.Seq
	s.clients[c] = struct{}{}
	level.Info(s.logger).Log("msg", "client connected", "clients", len(s.clients))
	return nil
}

func (s *Server) unregister(c *wsClient) {
	s.mu.Lock()
	delete(s.clients, c)
	n := len(s.clients)
	s.mu.Unlock()
	level.Info(s.logger).Log("msg", "client disconnected", "clients", n)
}

// queue hands a reply to the client's writer without blocking.
func (s *Server) queue(c *wsClient, resp WSResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case c.send <- resp:
	default:
		level.Warn(s.logger).Log("msg", "client send buffer full, reply dropped")
	}
}

// pushBoard queues snap to every client that has not already been sent a
// newer board. Commands finish on the actor in order but reach here
// concurrently, so a late older snapshot is dropped.
func (s *Server) pushBoard(snap BoardSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if snap.Seq <= c.lastSeq {
			continue
		}
		select {
		case c.send <- WSResponse{Type: "board", Payload: snap}:
			c.lastSeq = snap.Seq
		default:
			level.Warn(s.logger).Log("msg", "client send buffer full, push dropped")
		}
	}
}
