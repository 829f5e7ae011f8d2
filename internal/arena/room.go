package arena

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"wormhole-arena/internal/game"
	"wormhole-arena/internal/ids"
	"wormhole-arena/internal/proto"
)

const maxNameLen = 24

// Room is one isolated game session. Every mutation of a room, whether from
// the simulation timer, the broadcast timer, or an inbound message handler,
// runs under mu, so there is exactly one writer at a time.
type Room struct {
	ID  string
	key string

	mu           sync.Mutex
	world        *game.World
	sessions     map[string]*ClientSession
	names        map[string]string
	nextPlayer   int
	proposal     *proposal
	roundEndedAt time.Time
	emptySince   time.Time
	lastTick     time.Time

	cfg      Config
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func newRoom(id, key string, cfg Config, now func() time.Time) *Room {
	return &Room{
		ID:       id,
		key:      key,
		world:    game.NewWorld(game.Viewport{Width: cfg.WorldWidth, Height: cfg.WorldHeight}, cfg.BaselineBots),
		sessions: map[string]*ClientSession{},
		names:    map[string]string{},
		cfg:      cfg,
		now:      now,
		stop:     make(chan struct{}),
	}
}

func (r *Room) start(ctx context.Context) {
	go r.run(ctx)
}

// run drives the two independent cadences: the simulation timer advances the
// authoritative world, the slower broadcast timer fans snapshots out. Neither
// waits on the other.
func (r *Room) run(ctx context.Context) {
	simTicker := time.NewTicker(r.cfg.TickInterval)
	broadcastTicker := time.NewTicker(r.cfg.BroadcastInterval)
	defer simTicker.Stop()
	defer broadcastTicker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stop:
			return
		case <-simTicker.C:
			r.Tick(r.now())
		case <-broadcastTicker.C:
			r.Broadcast()
		}
	}
}

func (r *Room) shutdown() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Join registers the connection, assigns a display name, and binds a fresh
// simulation entity. The welcome snapshot is sent before returning so the
// client never sees a state message first.
func (r *Room) Join(conn Conn, desiredName string) *ClientSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	clientID := ids.NewID()
	name := strings.TrimSpace(desiredName)
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	if name == "" {
		r.nextPlayer++
		name = fmt.Sprintf("player%d", r.nextPlayer)
	}
	r.names[clientID] = name

	sess := &ClientSession{ID: clientID, Name: name, Conn: conn}
	sess.EntityID = r.world.BindClientEntity(clientID, name)
	r.sessions[clientID] = sess
	r.emptySince = time.Time{}

	log.Info().Str("room_id", r.ID).Str("client_id", clientID).Str("name", name).Int("entity_id", sess.EntityID).Msg("client joined")
	r.sendWelcomeLocked(sess)
	r.broadcastInfoLocked(name + " joined")
	metricClientsConnected.Inc()
	return sess
}

// Leave releases the session's entity and drops the session. The display name
// mapping survives so a respawn within the same room reuses it. A vote the
// client was eligible for is re-evaluated immediately.
func (r *Room) Leave(sess *ClientSession) {
	if sess == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sess.ID]; !ok {
		return
	}
	r.world.ReleaseClient(sess.ID)
	delete(r.sessions, sess.ID)
	sess.EntityID = 0
	log.Info().Str("room_id", r.ID).Str("client_id", sess.ID).Str("name", sess.Name).Msg("client left")
	r.broadcastInfoLocked(sess.Name + " left")
	r.evaluateProposalLocked(r.now())
	metricClientsConnected.Dec()
}

// HandleInput forwards the intent to the engine for the caller's bound entity
// only. Input from an unbound session is an expected race, not an error.
func (r *Room) HandleInput(sess *ClientSession, x, y float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sess == nil || sess.EntityID == 0 {
		return
	}
	r.world.SetEntityIntent(sess.EntityID, game.Vec2{X: x, Y: y})
}

// HandleRestart reinitializes the world immediately and rebinds every
// connected client to a fresh entity.
func (r *Room) HandleRestart(sess *ClientSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.proposal != nil {
		r.resolveProposalLocked(false, "round restarted")
	}
	r.restartLocked()
}

// Tick advances the world by the clamped wall-clock delta and runs room
// housekeeping: round-end grace countdown, desired-population re-assertion,
// and consensus re-evaluation.
func (r *Room) Tick(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	started := time.Now()

	dt := r.cfg.TickInterval
	if !r.lastTick.IsZero() {
		dt = now.Sub(r.lastTick)
	}
	if dt > r.cfg.MaxTickDelta {
		dt = r.cfg.MaxTickDelta
	}
	r.lastTick = now

	if !r.world.Running {
		if r.roundEndedAt.IsZero() {
			r.roundEndedAt = now
			r.broadcastInfoLocked("round over")
		} else if now.Sub(r.roundEndedAt) >= r.cfg.RoundGrace {
			r.restartLocked()
		}
	} else if !r.world.Paused {
		r.world.Advance(float64(dt) / float64(time.Millisecond))
	}

	r.world.SetDesiredPopulation(r.cfg.BaselineBots + len(r.sessions))
	r.evaluateProposalLocked(now)
	metricTickDuration.Observe(time.Since(started).Seconds())
}

// Broadcast builds one projected snapshot per connected client and sends it.
// Pure read of the world; nothing here mutates simulation state.
func (r *Room) Broadcast() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastStateLocked()
}

func (r *Room) broadcastStateLocked() {
	if len(r.sessions) == 0 {
		return
	}
	for _, sess := range r.sessions {
		msg, err := json.Marshal(proto.State{
			Type:            proto.TypeState,
			ProtocolVersion: proto.ProtocolVersion,
			Snapshot:        r.projectLocked(sess),
		})
		if err != nil {
			continue
		}
		metricBroadcastBytes.Add(float64(len(msg)))
		sess.Conn.Send(msg)
	}
}

func (r *Room) restartLocked() {
	r.world = game.NewWorld(game.Viewport{Width: r.cfg.WorldWidth, Height: r.cfg.WorldHeight}, r.cfg.BaselineBots)
	r.world.SetDesiredPopulation(r.cfg.BaselineBots + len(r.sessions))
	for _, sess := range r.sessions {
		sess.EntityID = r.world.BindClientEntity(sess.ID, r.names[sess.ID])
	}
	r.roundEndedAt = time.Time{}
	log.Info().Str("room_id", r.ID).Int("clients", len(r.sessions)).Msg("round started")
	r.broadcastInfoLocked("round started")
	r.broadcastStateLocked()
}

func (r *Room) sendWelcomeLocked(sess *ClientSession) {
	msg, err := json.Marshal(proto.Welcome{
		Type:            proto.TypeWelcome,
		ProtocolVersion: proto.ProtocolVersion,
		ClientID:        sess.ID,
		RoomID:          r.ID,
		EntityID:        sess.EntityID,
		Snapshot:        r.projectLocked(sess),
	})
	if err != nil {
		return
	}
	sess.Conn.Send(msg)
}

// Welcome re-sends the welcome message, making an explicit join on an
// already-joined socket idempotent.
func (r *Room) Welcome(sess *ClientSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sess.ID]; !ok {
		return
	}
	r.sendWelcomeLocked(sess)
}

func (r *Room) broadcastInfoLocked(message string) {
	if len(r.sessions) == 0 {
		return
	}
	msg, err := json.Marshal(proto.Info{Type: proto.TypeInfo, ProtocolVersion: proto.ProtocolVersion, Message: message})
	if err != nil {
		return
	}
	for _, sess := range r.sessions {
		sess.Conn.Send(msg)
	}
}

func (r *Room) broadcastRawLocked(msg []byte) {
	for _, sess := range r.sessions {
		sess.Conn.Send(msg)
	}
}

func sendError(conn Conn, message string) {
	msg, err := json.Marshal(proto.ErrorMessage{Type: proto.TypeError, ProtocolVersion: proto.ProtocolVersion, Message: message})
	if err != nil {
		return
	}
	conn.Send(msg)
}

// ClientCount reports the number of connected sessions.
func (r *Room) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Room) locked() bool {
	return r.key != ""
}
