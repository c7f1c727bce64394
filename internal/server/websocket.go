package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/canon/internal/dom"
	"github.com/conneroisu/canon/internal/registry"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	sendBuffer = 256
)

// Client is one websocket subscriber.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// UpdateMessage is sent to websocket clients. Type is "hello", "result", or
// a registry event type ("attached", "disposed", "emitted", ...).
type UpdateMessage struct {
	Type      string         `json:"type"`
	Target    string         `json:"target,omitempty"`
	Marker    string         `json:"marker,omitempty"`
	Event     string         `json:"event,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
	Roots     int            `json:"roots,omitempty"`
	Error     string         `json:"error,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func newUpdateMessage(ev registry.Event) UpdateMessage {
	msg := UpdateMessage{
		Type:      ev.Type.String(),
		Target:    ev.RootID,
		Marker:    string(ev.Marker),
		Event:     ev.Name,
		Detail:    ev.Detail,
		Timestamp: ev.Timestamp,
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	return msg
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(s.allowedOrigins()),
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket upgrade failed", "remote", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	client := &Client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		server: s,
	}

	s.clientsMutex.Lock()
	s.clients[conn] = client
	count := len(s.clients)
	s.clientsMutex.Unlock()
	s.logger.Debug(r.Context(), "client connected", "clients", count)

	roots := 0
	_ = s.do(r.Context(), func(_ *dom.Document) { roots = s.registry.ActiveRoots() })
	client.queue(UpdateMessage{Type: "hello", Roots: roots, Timestamp: time.Now()})

	go client.writePump()
	client.readPump()
}

// originPatterns converts allowed origins into the host patterns the
// websocket handshake matches against.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		if _, host, ok := strings.Cut(origin, "://"); ok {
			origin = host
		}
		origin = strings.TrimSuffix(origin, "/")
		if origin != "" {
			patterns = append(patterns, origin)
		}
	}
	return patterns
}

// broadcast queues msg for every client. Clients whose buffer is full are
// dropped.
func (s *Server) broadcast(msg UpdateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Warn(context.Background(), err, "encode update", "type", msg.Type)
		return
	}

	s.clientsMutex.RLock()
	var failed []*websocket.Conn
	for conn, client := range s.clients {
		select {
		case client.send <- data:
		default:
			failed = append(failed, conn)
		}
	}
	s.clientsMutex.RUnlock()

	for _, conn := range failed {
		s.unregister(conn)
	}
}

func (s *Server) unregister(conn *websocket.Conn) {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()
	if client, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		close(client.send)
	}
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()
	return len(s.clients)
}

func (c *Client) queue(msg UpdateMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.server.clientsMutex.RLock()
	defer c.server.clientsMutex.RUnlock()
	if _, ok := c.server.clients[c.conn]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// readPump reads actions from the peer and replays them on the document.
func (c *Client) readPump() {
	defer func() {
		c.server.unregister(c.conn)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := context.Background()
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && status != -1 {
				c.server.logger.Debug(ctx, "websocket read failed", "error", err)
			}
			return
		}

		var action Action
		if err := json.Unmarshal(data, &action); err != nil {
			c.queue(UpdateMessage{Type: "result", Error: "malformed action", Timestamp: time.Now()})
			continue
		}
		reply := UpdateMessage{Type: "result", Event: action.Type, Target: action.Selector, Timestamp: time.Now()}
		if err := c.server.apply(ctx, action); err != nil {
			reply.Error = err.Error()
		}
		c.queue(reply)
	}
}

// writePump writes queued messages and keeps the connection alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	ctx := context.Background()
	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
