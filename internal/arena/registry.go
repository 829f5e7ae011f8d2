package arena

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultRoomID is where connections without a usable room id land.
const DefaultRoomID = "lobby"

const (
	maxRoomIDLen = 24
	maxKeyLen    = 64
)

var ErrKeyMismatch = errors.New("room_key_mismatch")

// Registry owns the process-wide room table. Rooms are created lazily on
// first reference and garbage-collected once they have been empty for longer
// than the GC window.
type Registry struct {
	cfg Config

	mu    sync.Mutex
	rooms map[string]*Room

	now func() time.Time
	ctx context.Context
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:   cfg.withDefaults(),
		rooms: map[string]*Room{},
		now:   time.Now,
	}
}

// StartSweeper launches the per-room tick/broadcast loops for rooms created
// from now on and the registry GC sweep, all torn down when ctx is canceled.
// The sweep runs at the simulation tick interval.
func (g *Registry) StartSweeper(ctx context.Context) {
	g.mu.Lock()
	g.ctx = ctx
	g.mu.Unlock()
	ticker := time.NewTicker(g.cfg.TickInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				g.shutdownAll()
				return
			case now := <-ticker.C:
				g.Sweep(now)
			}
		}
	}()
}

// ResolveOrCreate routes a connecting client to its room. A wrong key against
// a locked room is refused without creating or touching anything, so a bad
// guess can never squat a room id. Keys supplied against a public room are
// ignored.
func (g *Registry) ResolveOrCreate(roomID, key string) (*Room, error) {
	id := SanitizeRoomID(roomID)
	key = sanitizeKey(key)

	g.mu.Lock()
	defer g.mu.Unlock()
	if room, ok := g.rooms[id]; ok {
		if room.locked() && room.key != key {
			return nil, ErrKeyMismatch
		}
		return room, nil
	}
	room := newRoom(id, key, g.cfg, g.now)
	g.rooms[id] = room
	if g.ctx != nil {
		room.start(g.ctx)
	}
	metricRoomsActive.Set(float64(len(g.rooms)))
	log.Info().Str("room_id", id).Bool("locked", room.locked()).Msg("room created")
	return room, nil
}

// Sweep stamps empty rooms on first observation and removes those empty for
// longer than the GC window. A room regaining a member before the window
// elapses has its stamp cleared on join.
func (g *Registry) Sweep(now time.Time) {
	g.mu.Lock()
	var expired []*Room
	for _, room := range g.rooms {
		room.mu.Lock()
		switch {
		case len(room.sessions) > 0:
			room.emptySince = time.Time{}
		case room.emptySince.IsZero():
			room.emptySince = now
		case now.Sub(room.emptySince) > g.cfg.GCWindow:
			expired = append(expired, room)
		}
		room.mu.Unlock()
	}
	for _, room := range expired {
		delete(g.rooms, room.ID)
	}
	metricRoomsActive.Set(float64(len(g.rooms)))
	g.mu.Unlock()

	for _, room := range expired {
		room.shutdown()
		log.Info().Str("room_id", room.ID).Msg("room garbage-collected")
	}
}

func (g *Registry) shutdownAll() {
	g.mu.Lock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.mu.Unlock()
	for _, room := range rooms {
		room.shutdown()
	}
}

// Lookup returns the room without creating it.
func (g *Registry) Lookup(roomID string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.rooms[SanitizeRoomID(roomID)]
	return room, ok
}

type RoomSummary struct {
	ID      string `json:"id"`
	Clients int    `json:"clients"`
	Locked  bool   `json:"locked"`
	Running bool   `json:"running"`
	Paused  bool   `json:"paused"`
}

// Summaries lists every live room for the discovery endpoint.
func (g *Registry) Summaries() []RoomSummary {
	g.mu.Lock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, room := range g.rooms {
		rooms = append(rooms, room)
	}
	g.mu.Unlock()

	out := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		room.mu.Lock()
		out = append(out, RoomSummary{
			ID:      room.ID,
			Clients: len(room.sessions),
			Locked:  room.locked(),
			Running: room.world.Running,
			Paused:  room.world.Paused,
		})
		room.mu.Unlock()
	}
	return out
}

// SanitizeRoomID trims, bounds, and restricts the charset of a caller-supplied
// room id. Anything unusable collapses to the public default id.
func SanitizeRoomID(id string) string {
	id = strings.TrimSpace(id)
	var b strings.Builder
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteRune(c)
		}
		if b.Len() == maxRoomIDLen {
			break
		}
	}
	if b.Len() == 0 {
		return DefaultRoomID
	}
	return b.String()
}

func sanitizeKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) > maxKeyLen {
		key = key[:maxKeyLen]
	}
	return key
}
