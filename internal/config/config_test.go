package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	_ = os.Unsetenv("LIMITBOOK_CONFIG")
	_ = os.Unsetenv("LIMITBOOK_PRODUCTS")
	_ = os.Unsetenv("LIMITBOOK_LOG_LEVEL")

	c := Load()
	if c.Source.Exchange != "coinbase" {
		t.Fatalf("expected default exchange coinbase, got %s", c.Source.Exchange)
	}
	if len(c.Source.Products) != 1 || c.Source.Products[0] != "ETH-GBP" {
		t.Fatalf("expected default product ETH-GBP, got %v", c.Source.Products)
	}
	if c.Source.Level != 2 {
		t.Fatalf("expected level 2, got %d", c.Source.Level)
	}
	if c.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %s", c.Logging.Level)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LIMITBOOK_PRODUCTS", "BTC-USD,ETH-USD")
	t.Setenv("LIMITBOOK_LOG_LEVEL", "debug")
	t.Setenv("LIMITBOOK_REFRESH_SECONDS", "0")
	t.Setenv("LIMITBOOK_KAFKA_BROKERS", "k1:9092,k2:9092")
	c := Load()
	if len(c.Source.Products) != 2 || c.Source.Products[1] != "ETH-USD" {
		t.Fatalf("env override failed for products, got %v", c.Source.Products)
	}
	if c.Logging.Level != "debug" {
		t.Fatalf("env override failed for log level, got %s", c.Logging.Level)
	}
	if c.Refresh.IntervalSeconds != 0 {
		t.Fatalf("env override failed for refresh, got %d", c.Refresh.IntervalSeconds)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 {
		t.Fatalf("expected kafka enabled with 2 brokers, got %v %v", c.Kafka.Enabled, c.Kafka.Brokers)
	}
}

func TestYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limitbook.yaml")
	body := "source:\n  exchange: replay\n  products: [SOL-EUR]\narchive:\n  dir: /tmp/snaps\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LIMITBOOK_CONFIG", path)
	t.Setenv("LIMITBOOK_PRODUCTS", "")

	c := Load()
	if c.Source.Exchange != "replay" {
		t.Fatalf("expected exchange from yaml, got %s", c.Source.Exchange)
	}
	if len(c.Source.Products) != 1 || c.Source.Products[0] != "SOL-EUR" {
		t.Fatalf("expected products from yaml, got %v", c.Source.Products)
	}
	if c.Archive.Dir != "/tmp/snaps" {
		t.Fatalf("expected archive dir from yaml, got %s", c.Archive.Dir)
	}
	if c.Source.Level != 2 {
		t.Fatalf("expected default level to survive yaml, got %d", c.Source.Level)
	}
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV("a,,b,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected split: %v", got)
	}
}

func TestDuplicateProductsCollapsed(t *testing.T) {
	t.Setenv("LIMITBOOK_PRODUCTS", "ETH-GBP,BTC-USD,ETH-GBP")
	c := Load()
	if len(c.Source.Products) != 2 || c.Source.Products[0] != "ETH-GBP" || c.Source.Products[1] != "BTC-USD" {
		t.Fatalf("expected duplicates dropped in order, got %v", c.Source.Products)
	}
}
