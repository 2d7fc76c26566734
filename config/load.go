package config

import (
	"log/slog"
	"os"
	"strconv"
)

func Load() App {
	cfg := App{
		Port:             getenv("APP_PORT", "8080"),
		DatabaseURL:      must("DATABASE_URL"),
		BearerToken:      must("API_BEARER_TOKEN"),
		BorrowRatePerMin: getint("BORROW_RATE_LIMIT", 100),
		Env:              getenv("APP_ENV", "dev"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		slog.Warn("invalid int env, using default", "key", k, "value", v, "default", def)
		return def
	}
	return n
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
