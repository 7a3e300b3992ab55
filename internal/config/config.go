package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/apex/log"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Addr                string
	AllowedOrigin       string
	LogLevel            log.Level
	SuggestURL          string
	SuggestAPIKey       string
	SuggestModel        string
	SuggestTimeout      time.Duration
	MatchmakingInterval time.Duration
}

// UseRemoteSuggester reports whether computer moves should be requested from
// the chat-completion endpoint rather than picked locally.
func (c Config) UseRemoteSuggester() bool {
	return c.SuggestAPIKey != ""
}

func Load() (Config, error) {
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		Addr:          get("CHESS_ADDR", ":3000"),
		AllowedOrigin: get("CHESS_ALLOWED_ORIGIN", "http://localhost:5173"),
		SuggestURL:    get("CHESS_SUGGEST_URL", "https://openrouter.ai/api/v1/chat/completions"),
		SuggestAPIKey: get("CHESS_SUGGEST_API_KEY", ""),
		SuggestModel:  get("CHESS_SUGGEST_MODEL", "openchat/openchat-7b:free"),
	}

	level, err := log.ParseLevel(get("CHESS_LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, fmt.Errorf("%w: CHESS_LOG_LEVEL: %v", ErrInvalidConfig, err)
	}
	cfg.LogLevel = level

	if cfg.SuggestTimeout, err = duration(get, "CHESS_SUGGEST_TIMEOUT", "10s"); err != nil {
		return Config{}, err
	}
	if cfg.MatchmakingInterval, err = duration(get, "CHESS_MATCHMAKING_INTERVAL", "1s"); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func duration(get func(string, string) string, key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(get(key, def))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidConfig, key)
	}
	return d, nil
}
