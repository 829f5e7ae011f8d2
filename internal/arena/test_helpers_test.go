package arena

import (
	"encoding/json"
	"sync"
	"testing"
	"time"
)

type fakeConn struct {
	mu     sync.Mutex
	msgs   [][]byte
	closed bool
}

func (c *fakeConn) Send(msg []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]byte, len(msg))
	copy(cp, msg)
	c.msgs = append(c.msgs, cp)
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// decoded returns every message sent so far as generic JSON objects, in order.
func (c *fakeConn) decoded(t *testing.T) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.msgs))
	for _, raw := range c.msgs {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatalf("unmarshal sent message: %v", err)
		}
		out = append(out, m)
	}
	return out
}

func (c *fakeConn) lastOfType(t *testing.T, typ string) map[string]any {
	t.Helper()
	var last map[string]any
	for _, m := range c.decoded(t) {
		if m["type"] == typ {
			last = m
		}
	}
	return last
}

func (c *fakeConn) countOfType(t *testing.T, typ string) int {
	t.Helper()
	n := 0
	for _, m := range c.decoded(t) {
		if m["type"] == typ {
			n++
		}
	}
	return n
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.BaselineBots = 0
	cfg.WorldWidth = 2000
	cfg.WorldHeight = 2000
	return cfg
}

// newTestRegistry builds a registry on a fake clock. No sweeper or room loops
// run; tests drive Tick and Sweep by hand.
func newTestRegistry(t *testing.T) (*Registry, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	g := NewRegistry(testConfig())
	g.now = clock.Now
	return g, clock
}

func joinTestClient(t *testing.T, room *Room, name string) (*ClientSession, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	sess := room.Join(conn, name)
	if sess == nil {
		t.Fatalf("join returned nil session")
	}
	return sess, conn
}
