package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr  string
	PublicURL string

	DBDriver string
	DBDSN    string

	JWTSecret string

	BlobDriver   string // fs|oss
	BlobBasePath string // for fs

	OSSEndpoint   string
	OSSAccessKey  string
	OSSSecretKey  string
	OSSBucket     string
	OSSPublicBase string // optional CDN/base URL override

	RedisAddr      string // empty disables the leaderboard cache
	RedisPassword  string
	RedisDB        int
	LeaderboardTTL time.Duration

	CORSOrigins []string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:  addr,
		PublicURL: os.Getenv("PUBLIC_URL"),

		DBDriver: envOr("DB_DRIVER", "sqlite"),
		DBDSN:    envOr("DB_DSN", ""),

		JWTSecret: envOr("JWT_SECRET", "supersecret-dev-key"),

		BlobDriver:   envOr("BLOB_DRIVER", "fs"),
		BlobBasePath: envOr("BLOB_BASE_PATH", "./data"),

		OSSEndpoint:   os.Getenv("OSS_ENDPOINT"),
		OSSAccessKey:  os.Getenv("OSS_ACCESS_KEY"),
		OSSSecretKey:  os.Getenv("OSS_SECRET_KEY"),
		OSSBucket:     os.Getenv("OSS_BUCKET"),
		OSSPublicBase: os.Getenv("OSS_PUBLIC_BASE"),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),
		LeaderboardTTL: envDuration("LEADERBOARD_TTL", time.Minute),

		CORSOrigins: csvOr("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
