package game

import (
	"math"
	"math/rand"
	"time"
)

const (
	baseSpeed      = 120.0 // units per second
	turnRate       = 3.5   // radians per second
	eatRadius      = 12.0
	collideRadius  = 9.0
	baseTrailLen   = 10
	growthPerFood  = 3
	foodDropStride = 4
)

type Vec2 struct {
	X float64
	Y float64
}

type Viewport struct {
	Width  float64
	Height float64
}

type Food struct {
	ID  int
	Pos Vec2
}

type Snake struct {
	ID       int
	Name     string
	ClientID string // empty while AI-controlled
	Points   []Vec2 // head first
	Dir      float64
	Speed    float64
	Alive    bool
	Score    int
	intent   Vec2
}

func (s *Snake) Head() Vec2 { return s.Points[0] }

func (s *Snake) trailCap() int {
	return baseTrailLen + s.Score*growthPerFood
}

type World struct {
	Width  float64
	Height float64

	Snakes []*Snake
	Foods  []*Food

	Running bool
	Paused  bool

	// DesiredPopulation is re-asserted by the room layer after every tick;
	// AI snakes are spawned or despawned toward it during Advance.
	DesiredPopulation int

	foodTarget   int
	nextEntityID int
	nextFoodID   int
	rng          *rand.Rand
}

func NewWorld(vp Viewport, baselineCount int) *World {
	w := &World{
		Width:             vp.Width,
		Height:            vp.Height,
		Running:           true,
		DesiredPopulation: baselineCount,
		foodTarget:        300,
		rng:               rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if w.Width <= 0 {
		w.Width = 4000
	}
	if w.Height <= 0 {
		w.Height = 4000
	}
	if w.foodTarget > int(w.Width*w.Height/40000) {
		w.foodTarget = int(w.Width * w.Height / 40000)
	}
	for i := 0; i < baselineCount; i++ {
		w.spawnSnake("", "")
	}
	w.replenishFood()
	return w
}

// BindClientEntity spawns a fresh snake controlled by clientID and returns
// its entity id. Any snake the client already controls is released first, so
// a client never controls two entities.
func (w *World) BindClientEntity(clientID, name string) int {
	w.ReleaseClient(clientID)
	s := w.spawnSnake(clientID, name)
	return s.ID
}

// ReleaseClient hands the client's snake back to AI control. The snake keeps
// living; population reconciliation decides whether it stays.
func (w *World) ReleaseClient(clientID string) {
	if clientID == "" {
		return
	}
	for _, s := range w.Snakes {
		if s.ClientID == clientID {
			s.ClientID = ""
			s.intent = Vec2{}
		}
	}
}

func (w *World) SetEntityIntent(entityID int, intent Vec2) {
	for _, s := range w.Snakes {
		if s.ID == entityID {
			s.intent = intent
			return
		}
	}
}

func (w *World) SetDesiredPopulation(n int) {
	if n < 0 {
		n = 0
	}
	w.DesiredPopulation = n
}

func (w *World) EntityByID(id int) *Snake {
	for _, s := range w.Snakes {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (w *World) AliveCount() int {
	n := 0
	for _, s := range w.Snakes {
		if s.Alive {
			n++
		}
	}
	return n
}

func (w *World) spawnSnake(clientID, name string) *Snake {
	w.nextEntityID++
	head := w.randomPos()
	dir := w.rng.Float64() * 2 * math.Pi
	points := make([]Vec2, 0, baseTrailLen)
	for i := 0; i < baseTrailLen; i++ {
		points = append(points, head)
	}
	s := &Snake{
		ID:       w.nextEntityID,
		Name:     name,
		ClientID: clientID,
		Points:   points,
		Dir:      dir,
		Speed:    baseSpeed,
		Alive:    true,
	}
	w.Snakes = append(w.Snakes, s)
	return s
}

func (w *World) spawnFood(pos Vec2) {
	w.nextFoodID++
	w.Foods = append(w.Foods, &Food{ID: w.nextFoodID, Pos: w.wrap(pos)})
}

func (w *World) replenishFood() {
	for len(w.Foods) < w.foodTarget {
		w.spawnFood(w.randomPos())
	}
}

func (w *World) randomPos() Vec2 {
	return Vec2{X: w.rng.Float64() * w.Width, Y: w.rng.Float64() * w.Height}
}

func (w *World) wrap(p Vec2) Vec2 {
	p.X = math.Mod(p.X, w.Width)
	if p.X < 0 {
		p.X += w.Width
	}
	p.Y = math.Mod(p.Y, w.Height)
	if p.Y < 0 {
		p.Y += w.Height
	}
	return p
}

// Dist is torus distance: the arena wraps on both axes.
func (w *World) Dist(a, b Vec2) float64 {
	dx := math.Abs(a.X - b.X)
	if dx > w.Width/2 {
		dx = w.Width - dx
	}
	dy := math.Abs(a.Y - b.Y)
	if dy > w.Height/2 {
		dy = w.Height - dy
	}
	return math.Hypot(dx, dy)
}
