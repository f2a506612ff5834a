package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-key-that-is-at-least-32-characters-long")
	t.Setenv("GOOGLE_CLIENT_ID", "test-client-id.apps.googleusercontent.com")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	ctx := context.Background()
	cfg, err := Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	// Test default values
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected Server.Port to be '8080', got '%s'", cfg.Server.Port)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected Server.Host to be '0.0.0.0', got '%s'", cfg.Server.Host)
	}

	if cfg.Server.ReadTimeout.Duration != 15*time.Second {
		t.Errorf("Expected Server.ReadTimeout to be 15s, got %v", cfg.Server.ReadTimeout.Duration)
	}

	if cfg.Postgres.Host != "localhost" {
		t.Errorf("Expected Postgres.Host to be 'localhost', got '%s'", cfg.Postgres.Host)
	}

	if cfg.Redis.Host != "localhost" {
		t.Errorf("Expected Redis.Host to be 'localhost', got '%s'", cfg.Redis.Host)
	}

	if cfg.JWT.AccessTokenExpiry.Duration != 15*time.Minute {
		t.Errorf("Expected JWT.AccessTokenExpiry to be 15m, got %v", cfg.JWT.AccessTokenExpiry.Duration)
	}

	if cfg.JWT.RefreshTokenExpiry.Duration != 7*24*time.Hour {
		t.Errorf("Expected JWT.RefreshTokenExpiry to be 7d, got %v", cfg.JWT.RefreshTokenExpiry.Duration)
	}

	if cfg.Google.ClientID != "test-client-id.apps.googleusercontent.com" {
		t.Errorf("Expected Google.ClientID to be set, got '%s'", cfg.Google.ClientID)
	}

	if cfg.Session.SweepInterval.Duration != time.Hour {
		t.Errorf("Expected Session.SweepInterval to be 1h, got %v", cfg.Session.SweepInterval.Duration)
	}

	if cfg.Session.RetentionDays != 30 {
		t.Errorf("Expected Session.RetentionDays to be 30, got %d", cfg.Session.RetentionDays)
	}

	if cfg.Env != "development" {
		t.Errorf("Expected Env to be 'development', got '%s'", cfg.Env)
	}

	// Test CORS defaults
	if len(cfg.CORS.AllowedOrigins) == 0 {
		t.Error("Expected CORS.AllowedOrigins to have at least one value")
	}

	if len(cfg.CORS.AllowedMethods) == 0 {
		t.Error("Expected CORS.AllowedMethods to have at least one value")
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("POSTGRES_HOST", "postgres.example.com")
	t.Setenv("JWT_ACCESS_TOKEN_EXPIRY", "30m")
	t.Setenv("SESSION_RETENTION_DAYS", "14")
	t.Setenv("ENV", "production")

	ctx := context.Background()
	cfg, err := Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected Server.Port to be '9090', got '%s'", cfg.Server.Port)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Expected Server.Host to be '127.0.0.1', got '%s'", cfg.Server.Host)
	}

	if cfg.Postgres.Host != "postgres.example.com" {
		t.Errorf("Expected Postgres.Host to be 'postgres.example.com', got '%s'", cfg.Postgres.Host)
	}

	if cfg.JWT.AccessTokenExpiry.Duration != 30*time.Minute {
		t.Errorf("Expected JWT.AccessTokenExpiry to be 30m, got %v", cfg.JWT.AccessTokenExpiry.Duration)
	}

	if cfg.Session.RetentionDays != 14 {
		t.Errorf("Expected Session.RetentionDays to be 14, got %d", cfg.Session.RetentionDays)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be 'production', got '%s'", cfg.Env)
	}
}

func TestLoadWithoutJWTSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")
	t.Setenv("GOOGLE_CLIENT_ID", "test-client-id.apps.googleusercontent.com")

	ctx := context.Background()
	_, err := Load(ctx)
	if err == nil {
		t.Error("Expected error when JWT_SECRET is not set")
	}
}

func TestLoadWithShortJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "short")
	t.Setenv("GOOGLE_CLIENT_ID", "test-client-id.apps.googleusercontent.com")

	ctx := context.Background()
	_, err := Load(ctx)
	if err == nil {
		t.Error("Expected error when JWT_SECRET is too short")
	}
}

func TestLoadWithoutGoogleClientID(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key-that-is-at-least-32-characters-long")
	os.Unsetenv("GOOGLE_CLIENT_ID")

	ctx := context.Background()
	_, err := Load(ctx)
	if err == nil {
		t.Error("Expected error when GOOGLE_CLIENT_ID is not set")
	}
}

func TestPostgresDSN(t *testing.T) {
	pg := PostgresConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "test_user",
		Password: "test_password",
		DBName:   "test_db",
		SSLMode:  "disable",
	}

	dsn := pg.DSN()
	expected := "host=localhost port=5432 user=test_user password=test_password dbname=test_db sslmode=disable"
	if dsn != expected {
		t.Errorf("Expected DSN to be '%s', got '%s'", expected, dsn)
	}
}

func TestRedisAddress(t *testing.T) {
	redis := RedisConfig{
		Host: "localhost",
		Port: "6379",
	}

	addr := redis.Address()
	expected := "localhost:6379"
	if addr != expected {
		t.Errorf("Expected Address to be '%s', got '%s'", expected, addr)
	}
}
