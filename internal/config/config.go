package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	DBPath             string
	LogLevel           string
	SpeechLanguage     string
	SpeechPitch        float64
	SpeechRate         float64
	SpeechDebounce     time.Duration
	AdvanceDelay       time.Duration
	WrongRecoveryDelay time.Duration
	CountingPause      time.Duration
	HapticsWorkerCount int
	HapticsQueueSize   int
	CORSAllowedOrigins []string
	ScreenIdleTimeout  time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:sayilar.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		SpeechLanguage:     envOr("SPEECH_LANGUAGE", "tr-TR"),
		SpeechPitch:        envFloatOr("SPEECH_PITCH", 1.4),
		SpeechRate:         envFloatOr("SPEECH_RATE", 1.25),
		SpeechDebounce:     envDurationOr("SPEECH_DEBOUNCE", 100*time.Millisecond),
		AdvanceDelay:       envDurationOr("ADVANCE_DELAY", 800*time.Millisecond),
		WrongRecoveryDelay: envDurationOr("WRONG_RECOVERY_DELAY", 2*time.Second),
		CountingPause:      envDurationOr("COUNTING_PAUSE", 300*time.Millisecond),
		HapticsWorkerCount: envIntOr("HAPTICS_WORKER_COUNT", 1),
		HapticsQueueSize:   envIntOr("HAPTICS_QUEUE_SIZE", 16),
		CORSAllowedOrigins: envListOr("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ScreenIdleTimeout:  envDurationOr("SCREEN_IDLE_TIMEOUT", 30*time.Minute),
	}
}

// Validate checks that the configuration can drive a screen.
func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SpeechLanguage == "" {
		return fmt.Errorf("SPEECH_LANGUAGE cannot be empty")
	}
	if c.SpeechPitch < 0.5 || c.SpeechPitch > 2.0 {
		return fmt.Errorf("SPEECH_PITCH must be between 0.5 and 2.0, got %.2f", c.SpeechPitch)
	}
	if c.SpeechRate < 0.1 || c.SpeechRate > 2.0 {
		return fmt.Errorf("SPEECH_RATE must be between 0.1 and 2.0, got %.2f", c.SpeechRate)
	}
	if c.SpeechDebounce < 0 {
		return fmt.Errorf("SPEECH_DEBOUNCE cannot be negative")
	}
	if c.AdvanceDelay <= 0 {
		return fmt.Errorf("ADVANCE_DELAY must be positive")
	}
	if c.WrongRecoveryDelay <= 0 {
		return fmt.Errorf("WRONG_RECOVERY_DELAY must be positive")
	}
	if c.CountingPause < 0 {
		return fmt.Errorf("COUNTING_PAUSE cannot be negative")
	}
	if c.HapticsWorkerCount < 1 {
		return fmt.Errorf("HAPTICS_WORKER_COUNT must be at least 1, got %d", c.HapticsWorkerCount)
	}
	if c.HapticsQueueSize < 1 {
		return fmt.Errorf("HAPTICS_QUEUE_SIZE must be at least 1, got %d", c.HapticsQueueSize)
	}
	if c.ScreenIdleTimeout <= 0 {
		return fmt.Errorf("SCREEN_IDLE_TIMEOUT must be positive")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envFloatOr(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("invalid value for %s=%q, using default %.2f", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}

func envListOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
