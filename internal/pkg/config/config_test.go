package config

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "15m", want: 15 * time.Minute},
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: " 1d ", want: 24 * time.Hour},
		{in: "0s", want: 0},
		{in: "xd", wantErr: true},
		{in: "soon", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDuration(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDuration(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	t.Setenv("ACCESS_TOKEN_EXPIRY", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Auth.AccessTTL.Std() != 5*time.Minute {
		t.Errorf("access ttl = %v, want 5m", cfg.Auth.AccessTTL.Std())
	}
	if cfg.Auth.RefreshTTL.Std() != 7*24*time.Hour {
		t.Errorf("refresh ttl = %v, want 168h", cfg.Auth.RefreshTTL.Std())
	}
	if cfg.Mongo.Timeout.Std() != 5*time.Second {
		t.Errorf("mongo timeout = %v, want 5s", cfg.Mongo.Timeout.Std())
	}
	if cfg.IsProduction() {
		t.Errorf("default env must not be production")
	}
	if cfg.StoreDriver != StoreMongo {
		t.Errorf("store driver = %q, want mongo", cfg.StoreDriver)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "http://localhost:5173" {
		t.Errorf("cors origins = %v, want the local frontend", cfg.CORSOrigins)
	}
}

func TestLoad_CORSOriginsList(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	t.Setenv("CORS_ORIGINS", "https://app.example.com,https://admin.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://admin.example.com" {
		t.Errorf("cors origins = %v", cfg.CORSOrigins)
	}
}

func TestLoad_RejectsUnknownStoreDriver(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "access-secret")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret")
	t.Setenv("STORE_DRIVER", "postgres")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown store driver")
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without secrets")
	}
}

func TestValidate_SecretsMustDiffer(t *testing.T) {
	cfg := Config{StoreDriver: StoreMongo, Auth: AuthConfig{
		AccessSecret:  "same",
		RefreshSecret: "same",
		AccessTTL:     Duration(time.Minute),
		RefreshTTL:    Duration(time.Hour),
		HashWorkers:   1,
	}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for equal secrets")
	}

	cfg.Auth.RefreshSecret = "other"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
