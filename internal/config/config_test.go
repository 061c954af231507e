package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with empty env: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.StoreDriver != DriverMemory {
		t.Errorf("expected default driver memory, got %s", cfg.StoreDriver)
	}
	if cfg.ReserveMaxAttempts != 5 {
		t.Errorf("expected default retry budget 5, got %d", cfg.ReserveMaxAttempts)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Errorf("expected default shutdown timeout 15s, got %s", cfg.ShutdownTimeout)
	}
	if len(cfg.KafkaBrokers) != 0 {
		t.Errorf("expected no brokers by default, got %v", cfg.KafkaBrokers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("STORE_DRIVER", DriverPostgres)
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("RESERVE_MAX_ATTEMPTS", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.HTTPAddr)
	}
	if cfg.StoreDriver != DriverPostgres {
		t.Errorf("expected postgres driver, got %s", cfg.StoreDriver)
	}
	if len(cfg.KafkaBrokers) != 2 {
		t.Errorf("expected two brokers, got %v", cfg.KafkaBrokers)
	}
	if cfg.ReserveMaxAttempts != 10 {
		t.Errorf("expected retry budget 10, got %d", cfg.ReserveMaxAttempts)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for an unknown store driver")
	}
}
