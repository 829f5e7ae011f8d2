package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"wormhole-arena/internal/arena"
	"wormhole-arena/internal/proto"
)

type Server struct {
	registry *arena.Registry
	upgrader websocket.Upgrader
	limiter  *IPRateLimiter
}

func NewServer(registry *arena.Registry, limiter *IPRateLimiter) *Server {
	return &Server{
		registry: registry,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		limiter:  limiter,
	}
}

// Client wraps one socket with a buffered outbound channel. Send never blocks
// a room: when the buffer is full the frame is dropped, the next broadcast
// supersedes it anyway.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once

	room    *arena.Room
	session *arena.ClientSession
}

func (c *Client) Send(msg []byte) {
	defer func() { _ = recover() }()
	select {
	case c.send <- msg:
		metricMessagesOut.Inc()
	default:
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// HandleWS upgrades the socket and, when a room query parameter is present,
// joins immediately; otherwise the client is expected to send an explicit
// join message.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow(clientIP(r)) {
		metricConnectionsRejected.WithLabelValues("rate_limit").Inc()
		w.Header().Set("Retry-After", "1")
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{conn: conn, send: make(chan []byte, 32)}
	metricConnectionsActive.Inc()

	go client.writeLoop()

	q := r.URL.Query()
	if q.Has("room") || q.Has("key") || q.Has("name") {
		if !s.join(client, q.Get("room"), q.Get("key"), q.Get("name")) {
			// Refusal already sent; let the write pump flush it.
			metricConnectionsActive.Dec()
			return
		}
	}
	s.readLoop(client)
}

func (c *Client) writeLoop() {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
	_ = c.conn.Close()
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		if c.room != nil {
			c.room.Leave(c.session)
		}
		c.Close()
		metricConnectionsActive.Dec()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		metricMessagesIn.Inc()
		decoded, err := proto.DecodeClient(msg)
		if err != nil {
			// Malformed messages are answered and dropped; the socket stays
			// open.
			sendError(c, "bad message: "+err.Error())
			continue
		}
		switch m := decoded.(type) {
		case proto.Hello:
			if m.ProtocolVersion != proto.ProtocolVersion {
				metricConnectionsRejected.WithLabelValues("version_mismatch").Inc()
				sendError(c, "protocol version mismatch")
				return
			}
		case proto.Join:
			if c.session != nil {
				c.room.Welcome(c.session)
				continue
			}
			if !s.join(c, m.RoomID, m.Key, m.Name) {
				return
			}
		case proto.Input:
			if c.room != nil {
				c.room.HandleInput(c.session, m.X, m.Y)
			}
		case proto.Restart:
			if c.room != nil {
				c.room.HandleRestart(c.session)
			}
		case proto.PauseRequest:
			if c.room != nil {
				c.room.HandlePauseRequest(c.session, m.Action)
			}
		case proto.PauseVote:
			if c.room != nil {
				c.room.HandlePauseVote(c.session, m.RequestID, m.Vote)
			}
		}
	}
}

func (s *Server) join(c *Client, roomID, key, name string) bool {
	room, err := s.registry.ResolveOrCreate(roomID, key)
	if err != nil {
		metricConnectionsRejected.WithLabelValues("key_mismatch").Inc()
		log.Warn().Str("room_id", arena.SanitizeRoomID(roomID)).Msg("join refused: key mismatch")
		sendError(c, "room/key mismatch")
		c.Close()
		return false
	}
	c.room = room
	c.session = room.Join(c, name)
	return true
}

func sendError(c *Client, message string) {
	msg, err := json.Marshal(proto.ErrorMessage{Type: proto.TypeError, ProtocolVersion: proto.ProtocolVersion, Message: message})
	if err != nil {
		return
	}
	c.Send(msg)
}
