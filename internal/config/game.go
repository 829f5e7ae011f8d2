package config

import "github.com/caarlos0/env/v11"

type GameConfig struct {
	TickMS         int `env:"TICK_MS" envDefault:"33"`
	BroadcastMS    int `env:"BROADCAST_MS" envDefault:"50"`
	MaxTickDeltaMS int `env:"MAX_TICK_DELTA_MS" envDefault:"250"`

	GCWindowMins   int `env:"ROOM_GC_WINDOW_MINUTES" envDefault:"10"`
	RoundGraceSecs int `env:"ROUND_GRACE_SECONDS" envDefault:"5"`
	VoteExpirySecs int `env:"VOTE_EXPIRY_SECONDS" envDefault:"15"`

	BaselineBots       int     `env:"BASELINE_BOTS" envDefault:"5"`
	ViewRadius         float64 `env:"VIEW_RADIUS" envDefault:"800"`
	MaxFoodPerSnapshot int     `env:"MAX_FOOD_PER_SNAPSHOT" envDefault:"120"`
	MaxTrailPoints     int     `env:"MAX_TRAIL_POINTS" envDefault:"60"`
	WorldWidth         float64 `env:"WORLD_WIDTH" envDefault:"4000"`
	WorldHeight        float64 `env:"WORLD_HEIGHT" envDefault:"4000"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}
