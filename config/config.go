package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port        string
	DatabaseURL string

	// Session engine tunables
	CallInterval  time.Duration
	CardPoolSize  int
	MaxPlayers    int
	ClaimPolicy   string // "manual" | "auto"
	PoolExclusive bool
	WinAward      float64
}

const (
	ClaimPolicyManual = "manual"
	ClaimPolicyAuto   = "auto"
)

// Load reads .env (if present) and builds the config. DATABASE_URL is
// required; everything else has defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, reading environment variables")
	}

	cfg := Config{
		Port:          getEnv("PORT", "4000"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		CallInterval:  time.Duration(getEnvInt("CALL_INTERVAL_MS", 3000)) * time.Millisecond,
		CardPoolSize:  getEnvInt("CARD_POOL_SIZE", 20),
		MaxPlayers:    getEnvInt("MAX_PLAYERS", 8),
		ClaimPolicy:   getEnv("CLAIM_POLICY", ClaimPolicyManual),
		PoolExclusive: getEnvBool("POOL_EXCLUSIVE", false),
		WinAward:      getEnvFloat("WIN_AWARD", 100),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("[FATAL] DATABASE_URL is required in .env or environment")
	}
	if cfg.ClaimPolicy != ClaimPolicyManual && cfg.ClaimPolicy != ClaimPolicyAuto {
		log.Fatalf("[FATAL] CLAIM_POLICY must be %q or %q, got %q",
			ClaimPolicyManual, ClaimPolicyAuto, cfg.ClaimPolicy)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("[FATAL] %s must be an integer, got %q", key, v)
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Fatalf("[FATAL] %s must be a number, got %q", key, v)
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("[FATAL] %s must be a boolean, got %q", key, v)
	}
	return b
}
