package arena

import "time"

type Config struct {
	TickInterval      time.Duration
	BroadcastInterval time.Duration
	// MaxTickDelta clamps the advance delta after a stall so the world never
	// catches up in one burst.
	MaxTickDelta time.Duration
	GCWindow     time.Duration
	RoundGrace   time.Duration
	VoteExpiry   time.Duration

	BaselineBots       int
	ViewRadius         float64
	MaxFoodPerSnapshot int
	MaxTrailPoints     int
	WorldWidth         float64
	WorldHeight        float64
}

func DefaultConfig() Config {
	return Config{
		TickInterval:       33 * time.Millisecond,
		BroadcastInterval:  50 * time.Millisecond,
		MaxTickDelta:       250 * time.Millisecond,
		GCWindow:           10 * time.Minute,
		RoundGrace:         5 * time.Second,
		VoteExpiry:         15 * time.Second,
		BaselineBots:       5,
		ViewRadius:         800,
		MaxFoodPerSnapshot: 120,
		MaxTrailPoints:     60,
		WorldWidth:         4000,
		WorldHeight:        4000,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.TickInterval <= 0 {
		c.TickInterval = def.TickInterval
	}
	if c.BroadcastInterval <= 0 {
		c.BroadcastInterval = def.BroadcastInterval
	}
	if c.MaxTickDelta <= 0 {
		c.MaxTickDelta = def.MaxTickDelta
	}
	if c.GCWindow <= 0 {
		c.GCWindow = def.GCWindow
	}
	if c.RoundGrace <= 0 {
		c.RoundGrace = def.RoundGrace
	}
	if c.VoteExpiry <= 0 {
		c.VoteExpiry = def.VoteExpiry
	}
	if c.BaselineBots < 0 {
		c.BaselineBots = 0
	}
	if c.ViewRadius <= 0 {
		c.ViewRadius = def.ViewRadius
	}
	if c.MaxFoodPerSnapshot <= 0 {
		c.MaxFoodPerSnapshot = def.MaxFoodPerSnapshot
	}
	if c.MaxTrailPoints <= 0 {
		c.MaxTrailPoints = def.MaxTrailPoints
	}
	if c.WorldWidth <= 0 {
		c.WorldWidth = def.WorldWidth
	}
	if c.WorldHeight <= 0 {
		c.WorldHeight = def.WorldHeight
	}
	return c
}
