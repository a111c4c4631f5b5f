package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.SessionSecret != DevSessionSecret {
		t.Errorf("SessionSecret = %q, want dev fallback", cfg.SessionSecret)
	}
	if cfg.SessionTTL != "168h" {
		t.Errorf("SessionTTL = %q, want %q", cfg.SessionTTL, "168h")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.LoginRateMax != 10 {
		t.Errorf("LoginRateMax = %d, want 10", cfg.LoginRateMax)
	}
	if cfg.LoginRateWindow != "10m" {
		t.Errorf("LoginRateWindow = %q, want %q", cfg.LoginRateWindow, "10m")
	}
	if cfg.EventKafkaTopic != "dayplanner-events" {
		t.Errorf("EventKafkaTopic = %q, want %q", cfg.EventKafkaTopic, "dayplanner-events")
	}
	if cfg.KafkaGroupID != "dayplanner-event-worker" {
		t.Errorf("KafkaGroupID = %q, want %q", cfg.KafkaGroupID, "dayplanner-event-worker")
	}
	if cfg.IsProduction() {
		t.Error("IsProduction should default to false")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("SESSION_SECRET", "custom-secret")
	os.Setenv("BCRYPT_COST", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.SessionSecret != "custom-secret" {
		t.Errorf("SessionSecret = %q, want %q", cfg.SessionSecret, "custom-secret")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
}

func TestLoad_ProductionRequiresSessionSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "production")

	cfg, err := Load()
	if err == nil {
		t.Fatal("Load should return error when APP_ENV=production without SESSION_SECRET")
	}
	if cfg != nil {
		t.Error("Load should return nil config on error")
	}

	os.Setenv("SESSION_SECRET", "deployed-secret")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load with SESSION_SECRET: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction should be true")
	}
}

func TestLoad_BcryptCostRange(t *testing.T) {
	testCases := []struct {
		name  string
		value string
		want  int
		err   bool
	}{
		{"valid min", "4", 4, false},
		{"valid max", "31", 31, false},
		{"valid middle", "12", 12, false},
		{"too low", "3", 0, true},
		{"too high", "32", 0, true},
		{"zero defaults", "0", 12, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("BCRYPT_COST", tc.value)

			cfg, err := Load()
			if tc.err {
				if err == nil {
					t.Fatal("Load should return error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.BcryptCost != tc.want {
				t.Errorf("BcryptCost = %d, want %d", cfg.BcryptCost, tc.want)
			}
		})
	}
}

func TestLoad_LoginRateMaxMustBePositive(t *testing.T) {
	os.Clearenv()
	os.Setenv("LOGIN_RATE_MAX", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("Load should return error for negative LOGIN_RATE_MAX")
	}
}

func TestSessionLifetime(t *testing.T) {
	testCases := []struct {
		name string
		ttl  string
		want time.Duration
	}{
		{"valid", "24h", 24 * time.Hour},
		{"invalid falls back", "invalid", 168 * time.Hour},
		{"zero falls back", "0", 168 * time.Hour},
		{"negative falls back", "-5m", 168 * time.Hour},
		{"empty falls back", "", 168 * time.Hour},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{SessionTTL: tc.ttl}
			if got := cfg.SessionLifetime(); got != tc.want {
				t.Errorf("SessionLifetime = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLoginWindow(t *testing.T) {
	testCases := []struct {
		name   string
		window string
		want   time.Duration
	}{
		{"valid", "1m", time.Minute},
		{"invalid falls back", "invalid", 10 * time.Minute},
		{"negative falls back", "-1h", 10 * time.Minute},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{LoginRateWindow: tc.window}
			if got := cfg.LoginWindow(); got != tc.want {
				t.Errorf("LoginWindow = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: "https://app.example.com, https://staging.example.com,"}
	got := cfg.AllowedOrigins()
	if len(got) != 2 {
		t.Fatalf("AllowedOrigins = %v, want 2 entries", got)
	}
	if got[0] != "https://app.example.com" || got[1] != "https://staging.example.com" {
		t.Errorf("AllowedOrigins = %v", got)
	}

	empty := &Config{}
	if origins := empty.AllowedOrigins(); origins != nil {
		t.Errorf("empty AllowedOrigins = %v, want nil", origins)
	}
}

func TestEventKafkaBrokersList(t *testing.T) {
	cfg := &Config{EventKafkaBrokers: "broker-1:9092,broker-2:9092"}
	got := cfg.EventKafkaBrokersList()
	if len(got) != 2 {
		t.Fatalf("EventKafkaBrokersList = %v, want 2 entries", got)
	}

	disabled := &Config{}
	if brokers := disabled.EventKafkaBrokersList(); brokers != nil {
		t.Errorf("EventKafkaBrokersList = %v, want nil when unset", brokers)
	}
}
