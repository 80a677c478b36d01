package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("COURSEHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("COURSEHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "coursehub"
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: time.Duration(envInt("COURSEHUB_JWT_TTL_HOURS", 24)) * time.Hour,
	}
}

type ServerConfig struct {
	HTTPAddr    string
	TCPAddr     string
	UDPAddr     string
	ContentPath string
	Watch       bool // hot reload the content path

	// AllowedOrigins restricts websocket upgrades; empty allows any origin.
	AllowedOrigins []string
}

func LoadServerConfig() ServerConfig {
	return ServerConfig{
		HTTPAddr:    envString("COURSEHUB_HTTP_ADDR", ":8080"),
		TCPAddr:     envString("COURSEHUB_TCP_ADDR", ":7070"),
		UDPAddr:     envString("COURSEHUB_UDP_ADDR", ":7071"),
		ContentPath: envString("COURSEHUB_CONTENT_PATH", "content"),
		Watch:       envBool("COURSEHUB_WATCH", false),

		AllowedOrigins: envList("COURSEHUB_ALLOWED_ORIGINS"),
	}
}

type GrpcConfig struct {
	Addr        string
	ContentPath string
	Watch       bool
}

func LoadGrpcConfig() GrpcConfig {
	return GrpcConfig{
		Addr:        envString("COURSEHUB_GRPC_ADDR", ":9090"),
		ContentPath: envString("COURSEHUB_CONTENT_PATH", "content"),
		Watch:       envBool("COURSEHUB_WATCH", false),
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// envInt falls back to def when the value is missing, malformed or not positive.
func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// envList splits a comma separated value, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
