package utils

import (
	"testing"
	"time"
)

func TestLoadAuthConfig_Defaults(t *testing.T) {
	t.Setenv("COURSEHUB_JWT_SECRET", "")
	t.Setenv("COURSEHUB_JWT_ISSUER", "")
	t.Setenv("COURSEHUB_JWT_TTL_HOURS", "")

	cfg := LoadAuthConfig()
	if cfg.JWTSecret == "" || cfg.JWTIssuer != "coursehub" || cfg.JWTDuration != 24*time.Hour {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadAuthConfig_TTL(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"2", 2 * time.Hour},
		{"abc", 24 * time.Hour},
		{"-5", 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Setenv("COURSEHUB_JWT_TTL_HOURS", tt.raw)
		if got := LoadAuthConfig().JWTDuration; got != tt.want {
			t.Errorf("TTL %q = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestLoadServerConfig(t *testing.T) {
	t.Setenv("COURSEHUB_HTTP_ADDR", "127.0.0.1:9999")
	t.Setenv("COURSEHUB_CONTENT_PATH", "/srv/content")
	t.Setenv("COURSEHUB_WATCH", "true")
	t.Setenv("COURSEHUB_TCP_ADDR", "")

	cfg := LoadServerConfig()
	if cfg.HTTPAddr != "127.0.0.1:9999" || cfg.ContentPath != "/srv/content" || !cfg.Watch {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.TCPAddr != ":7070" {
		t.Fatalf("TCPAddr = %q", cfg.TCPAddr)
	}
}

func TestLoadServerConfig_AllowedOrigins(t *testing.T) {
	t.Setenv("COURSEHUB_ALLOWED_ORIGINS", " https://learn.example.com, ,http://localhost:3000 ")

	got := LoadServerConfig().AllowedOrigins
	if len(got) != 2 || got[0] != "https://learn.example.com" || got[1] != "http://localhost:3000" {
		t.Fatalf("AllowedOrigins = %q", got)
	}
}

func TestLoadGrpcConfig_Watch(t *testing.T) {
	t.Setenv("COURSEHUB_WATCH", "1")
	if !LoadGrpcConfig().Watch {
		t.Fatal("Watch = false, want true")
	}
}
