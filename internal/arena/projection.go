package arena

import (
	"wormhole-arena/internal/game"
	"wormhole-arena/internal/proto"
)

// projectLocked builds the per-client view of the world: every entity (the
// leaderboard and camera need them all) with a compressed trail, plus only
// the food near the client's own snake, capped so payload size stays flat as
// the world grows.
func (r *Room) projectLocked(sess *ClientSession) proto.Snapshot {
	w := r.world
	origin := game.Vec2{X: w.Width / 2, Y: w.Height / 2}
	if sess.EntityID != 0 {
		if s := w.EntityByID(sess.EntityID); s != nil && s.Alive {
			origin = s.Head()
		}
	}

	entities := make([]proto.EntityView, 0, len(w.Snakes))
	for _, s := range w.Snakes {
		entities = append(entities, proto.EntityView{
			ID:       s.ID,
			Name:     s.Name,
			ClientID: s.ClientID,
			Alive:    s.Alive,
			Score:    s.Score,
			Points:   compressTrail(s.Points, r.cfg.MaxTrailPoints),
		})
	}

	foods := make([]proto.FoodView, 0, r.cfg.MaxFoodPerSnapshot)
	for _, f := range w.Foods {
		if w.Dist(origin, f.Pos) > r.cfg.ViewRadius {
			continue
		}
		foods = append(foods, proto.FoodView{ID: f.ID, X: f.Pos.X, Y: f.Pos.Y})
		if len(foods) == r.cfg.MaxFoodPerSnapshot {
			break
		}
	}

	return proto.Snapshot{
		Entities:     entities,
		Foods:        foods,
		IsRunning:    w.Running,
		IsPaused:     w.Paused,
		YourEntityID: sess.EntityID,
	}
}

// compressTrail samples a long trail down to at most max points with a
// uniform stride. The first and last point are always kept exactly: head and
// tail are load-bearing for rendering, interior smoothness is not.
func compressTrail(points []game.Vec2, max int) []proto.Point {
	if max < 2 {
		max = 2
	}
	out := make([]proto.Point, 0, max)
	if len(points) <= max {
		for _, p := range points {
			out = append(out, proto.Point{X: p.X, Y: p.Y})
		}
		return out
	}
	stride := float64(len(points)-1) / float64(max-1)
	for i := 0; i < max-1; i++ {
		p := points[int(float64(i)*stride+0.5)]
		out = append(out, proto.Point{X: p.X, Y: p.Y})
	}
	last := points[len(points)-1]
	out = append(out, proto.Point{X: last.X, Y: last.Y})
	return out
}
