package game

import "math"

// Advance moves the world forward by deltaMs of wall-clock time. The caller
// clamps deltaMs; a paused or finished world does not move.
func (w *World) Advance(deltaMs float64) {
	if !w.Running || w.Paused || deltaMs <= 0 {
		return
	}
	dt := deltaMs / 1000

	for _, s := range w.Snakes {
		if !s.Alive {
			continue
		}
		w.steer(s, dt)
		w.move(s, dt)
	}
	w.consumeFood()
	w.resolveCollisions()
	w.reconcilePopulation()
	w.replenishFood()

	// Round over once the arena is down to a single survivor. A solo world
	// (one snake total) keeps running so a lone player is never stalled.
	if len(w.Snakes) >= 2 && w.AliveCount() <= 1 {
		w.Running = false
	}
}

func (w *World) steer(s *Snake, dt float64) {
	var target float64
	switch {
	case s.ClientID != "" && (s.intent.X != 0 || s.intent.Y != 0):
		target = math.Atan2(s.intent.Y, s.intent.X)
	case s.ClientID == "":
		food := w.nearestFood(s.Head())
		if food == nil {
			return
		}
		target = math.Atan2(food.Pos.Y-s.Head().Y, food.Pos.X-s.Head().X)
	default:
		return
	}
	diff := math.Mod(target-s.Dir+3*math.Pi, 2*math.Pi) - math.Pi
	limit := turnRate * dt
	if diff > limit {
		diff = limit
	}
	if diff < -limit {
		diff = -limit
	}
	s.Dir += diff
}

func (w *World) move(s *Snake, dt float64) {
	head := s.Head()
	head.X += math.Cos(s.Dir) * s.Speed * dt
	head.Y += math.Sin(s.Dir) * s.Speed * dt
	head = w.wrap(head)

	s.Points = append(s.Points, Vec2{})
	copy(s.Points[1:], s.Points)
	s.Points[0] = head
	if limit := s.trailCap(); len(s.Points) > limit {
		s.Points = s.Points[:limit]
	}
}

func (w *World) consumeFood() {
	for _, s := range w.Snakes {
		if !s.Alive {
			continue
		}
		head := s.Head()
		kept := w.Foods[:0]
		for _, f := range w.Foods {
			if w.Dist(head, f.Pos) <= eatRadius {
				s.Score++
				continue
			}
			kept = append(kept, f)
		}
		w.Foods = kept
	}
}

func (w *World) resolveCollisions() {
	var dead []*Snake
	for _, s := range w.Snakes {
		if !s.Alive {
			continue
		}
		head := s.Head()
		hit := false
		for _, o := range w.Snakes {
			if o == s || !o.Alive {
				continue
			}
			for _, p := range o.Points {
				if w.Dist(head, p) <= collideRadius {
					hit = true
					break
				}
			}
			if hit {
				break
			}
		}
		if hit {
			dead = append(dead, s)
		}
	}
	for _, s := range dead {
		w.kill(s)
	}
}

// kill marks the snake dead and scatters part of its body as food, so mass
// stays in the arena.
func (w *World) kill(s *Snake) {
	s.Alive = false
	for i := 0; i < len(s.Points); i += foodDropStride {
		w.spawnFood(s.Points[i])
	}
}

// reconcilePopulation nudges the AI head count toward DesiredPopulation, one
// snake per tick. Client-controlled snakes are never despawned here.
func (w *World) reconcilePopulation() {
	alive := w.AliveCount()
	if alive < w.DesiredPopulation {
		w.spawnSnake("", "")
		return
	}
	if alive > w.DesiredPopulation {
		for i, s := range w.Snakes {
			if s.Alive && s.ClientID == "" {
				w.kill(s)
				w.Snakes = append(w.Snakes[:i], w.Snakes[i+1:]...)
				return
			}
		}
	}
}

func (w *World) nearestFood(from Vec2) *Food {
	var best *Food
	bestDist := math.MaxFloat64
	for _, f := range w.Foods {
		if d := w.Dist(from, f.Pos); d < bestDist {
			best = f
			bestDist = d
		}
	}
	return best
}
