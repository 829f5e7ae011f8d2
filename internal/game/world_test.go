package game

import (
	"math"
	"testing"
)

func newTestWorld(baseline int) *World {
	return NewWorld(Viewport{Width: 2000, Height: 2000}, baseline)
}

func TestNewWorldSpawnsBaseline(t *testing.T) {
	w := newTestWorld(3)
	if got := len(w.Snakes); got != 3 {
		t.Fatalf("snakes = %d, want 3", got)
	}
	for _, s := range w.Snakes {
		if s.ClientID != "" {
			t.Fatalf("baseline snake %d has a controlling client", s.ID)
		}
		if !s.Alive {
			t.Fatalf("baseline snake %d not alive", s.ID)
		}
	}
	if len(w.Foods) == 0 {
		t.Fatal("no food seeded")
	}
	if !w.Running {
		t.Fatal("fresh world not running")
	}
}

func TestBindClientEntityExclusive(t *testing.T) {
	w := newTestWorld(0)

	first := w.BindClientEntity("c1", "one")
	if first == 0 {
		t.Fatal("bind returned zero entity id")
	}
	if got := w.EntityByID(first).ClientID; got != "c1" {
		t.Fatalf("entity client = %q, want c1", got)
	}

	// Rebinding implicitly releases the old entity first.
	second := w.BindClientEntity("c1", "one")
	if second == first {
		t.Fatal("rebind returned the same entity")
	}
	if got := w.EntityByID(first).ClientID; got != "" {
		t.Fatalf("old entity still controlled by %q", got)
	}
	controlled := 0
	for _, s := range w.Snakes {
		if s.ClientID == "c1" {
			controlled++
		}
	}
	if controlled != 1 {
		t.Fatalf("client controls %d entities, want exactly 1", controlled)
	}
}

func TestReleaseClientRevertsToAI(t *testing.T) {
	w := newTestWorld(0)
	id := w.BindClientEntity("c1", "one")
	w.ReleaseClient("c1")

	s := w.EntityByID(id)
	if s == nil {
		t.Fatal("released entity removed outright")
	}
	if s.ClientID != "" {
		t.Fatalf("released entity still bound to %q", s.ClientID)
	}
}

func TestAdvanceMovesSnakes(t *testing.T) {
	w := newTestWorld(0)
	id := w.BindClientEntity("c1", "one")
	before := w.EntityByID(id).Head()

	w.Advance(100)

	after := w.EntityByID(id).Head()
	if before == after {
		t.Fatal("head did not move")
	}
	moved := w.Dist(before, after)
	want := baseSpeed * 0.1
	if math.Abs(moved-want) > 1e-6 {
		t.Fatalf("moved %f units, want %f", moved, want)
	}
}

func TestAdvanceNoopWhenPausedOrStopped(t *testing.T) {
	w := newTestWorld(0)
	id := w.BindClientEntity("c1", "one")

	w.Paused = true
	before := w.EntityByID(id).Head()
	w.Advance(100)
	if w.EntityByID(id).Head() != before {
		t.Fatal("paused world moved")
	}

	w.Paused = false
	w.Running = false
	w.Advance(100)
	if w.EntityByID(id).Head() != before {
		t.Fatal("stopped world moved")
	}
}

func TestIntentSteersSnake(t *testing.T) {
	w := newTestWorld(0)
	id := w.BindClientEntity("c1", "one")
	s := w.EntityByID(id)
	s.Dir = 0

	w.SetEntityIntent(id, Vec2{X: 0, Y: 1})
	w.Advance(100)

	if s.Dir <= 0 {
		t.Fatalf("dir = %f, want turned toward +y", s.Dir)
	}
	if s.Dir > turnRate*0.1+1e-9 {
		t.Fatalf("dir = %f, exceeded one tick's turn budget %f", s.Dir, turnRate*0.1)
	}
}

func TestEatingGrowsScore(t *testing.T) {
	w := newTestWorld(0)
	id := w.BindClientEntity("c1", "one")
	s := w.EntityByID(id)

	w.Foods = []*Food{{ID: 1, Pos: s.Head()}}
	w.Advance(33)

	if s.Score != 1 {
		t.Fatalf("score = %d, want 1 after eating", s.Score)
	}
	for _, f := range w.Foods {
		if f.ID == 1 {
			t.Fatal("eaten food still present")
		}
	}
}

func TestReconcileTowardDesiredPopulation(t *testing.T) {
	w := newTestWorld(0)
	w.BindClientEntity("c1", "one")
	w.SetDesiredPopulation(4)

	for i := 0; i < 10; i++ {
		w.Advance(33)
	}
	if got := w.AliveCount(); got != 4 {
		t.Fatalf("alive = %d, want 4 after reconciliation", got)
	}

	w.SetDesiredPopulation(1)
	for i := 0; i < 10; i++ {
		w.Advance(33)
	}
	if got := w.AliveCount(); got != 1 {
		t.Fatalf("alive = %d, want AI backed off to 1", got)
	}
	// The human snake is never the one despawned.
	found := false
	for _, s := range w.Snakes {
		if s.ClientID == "c1" && s.Alive {
			found = true
		}
	}
	if !found {
		t.Fatal("client-controlled snake despawned by reconciliation")
	}
}

func TestTrailBoundedByScore(t *testing.T) {
	w := newTestWorld(0)
	id := w.BindClientEntity("c1", "one")
	s := w.EntityByID(id)

	for i := 0; i < 200; i++ {
		w.Advance(33)
	}
	if len(s.Points) > s.trailCap() {
		t.Fatalf("trail = %d points, cap %d", len(s.Points), s.trailCap())
	}
	if s.Head() != s.Points[0] {
		t.Fatal("head is not the first trail point")
	}
}

func TestWrapKeepsPositionsInBounds(t *testing.T) {
	w := newTestWorld(0)
	p := w.wrap(Vec2{X: -10, Y: w.Height + 5})
	if p.X < 0 || p.X >= w.Width || p.Y < 0 || p.Y >= w.Height {
		t.Fatalf("wrapped point %+v out of bounds", p)
	}
	if got := w.Dist(Vec2{X: 1, Y: 0}, Vec2{X: w.Width - 1, Y: 0}); got != 2 {
		t.Fatalf("torus distance = %f, want 2 across the seam", got)
	}
}
