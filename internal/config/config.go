// Package config loads application configuration from environment
// variables. Required variables abort startup with a fatal log so a
// misconfigured deployment fails fast instead of limping along.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ardiansyahnr/event-ticketing/internal/model"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable.
type Config struct {
	Env            string // application environment (dev, test, prod)
	Port           string // HTTP port to listen on
	DBUser         string
	DBPass         string // optional
	DBHost         string
	DBPort         string
	DBName         string
	JWTSecret      string // secret used to sign access tokens
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	// CouponExhaustion controls what status an organizer coupon takes
	// when its quota runs out: USED (default) or EXPIRED.
	CouponExhaustion model.ExhaustionPolicy
}

// Load reads configuration from the environment. Missing required
// variables terminate the process.
func Load() Config {
	return Config{
		Env:              must("APP_ENV"),
		Port:             must("APP_PORT"),
		DBUser:           must("DB_USER"),
		DBPass:           os.Getenv("DB_PASS"),
		DBHost:           must("DB_HOST"),
		DBPort:           must("DB_PORT"),
		DBName:           must("DB_NAME"),
		JWTSecret:        must("JWT_SECRET"),
		AccessTTLMin:     mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:   mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:       mustInt("BCRYPT_COST"),
		CouponExhaustion: exhaustionPolicy(os.Getenv("COUPON_EXHAUSTION")),
	}
}

func exhaustionPolicy(raw string) model.ExhaustionPolicy {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "EXPIRED":
		return model.ExhaustToExpired
	default:
		return model.ExhaustToUsed
	}
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must but converts the value to an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
