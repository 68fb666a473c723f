package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Server struct {
		Addr                string   `yaml:"addr"`
		Pprof               bool     `yaml:"pprof"`
		ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
		IdleTimeoutSeconds  int      `yaml:"idle_timeout_seconds"`
		AdminAllowCIDRs     []string `yaml:"admin_allow_cidrs"`
	} `yaml:"server"`
	Source struct {
		Exchange       string   `yaml:"exchange"` // coinbase or replay
		BaseURL        string   `yaml:"base_url"`
		Products       []string `yaml:"products"`
		Level          int      `yaml:"level"`
		UserAgent      string   `yaml:"user_agent"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		Retries        int      `yaml:"retries"`
		RetryBackoffMs int      `yaml:"retry_backoff_ms"`
		RatePerSec     float64  `yaml:"rate_per_sec"`
		Burst          int      `yaml:"burst"`
	} `yaml:"source"`
	Refresh struct {
		IntervalSeconds int `yaml:"interval_seconds"` // 0 loads once
	} `yaml:"refresh"`
	Archive struct {
		Dir    string `yaml:"dir"`
		Record bool   `yaml:"record"`
	} `yaml:"archive"`
	Kafka struct {
		Enabled bool     `yaml:"enabled"`
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
}

func defaultConfig() Config {
	var c Config
	c.Logging.Level = "info"
	c.Logging.Pretty = false
	c.Server.Addr = ":9090"
	c.Server.Pprof = false
	c.Server.ReadTimeoutSeconds = 5
	c.Server.WriteTimeoutSeconds = 10
	c.Server.IdleTimeoutSeconds = 60
	c.Server.AdminAllowCIDRs = []string{"127.0.0.0/8", "::1/128"}
	c.Source.Exchange = "coinbase"
	c.Source.BaseURL = "https://api.exchange.coinbase.com"
	c.Source.Products = []string{"ETH-GBP"}
	c.Source.Level = 2
	c.Source.UserAgent = "limitbook"
	c.Source.TimeoutSeconds = 5
	c.Source.Retries = 2
	c.Source.RetryBackoffMs = 250
	c.Source.RatePerSec = 5 // public endpoints allow more; stay well under
	c.Source.Burst = 5
	c.Refresh.IntervalSeconds = 30
	c.Archive.Dir = "./data/snapshots"
	c.Archive.Record = false
	c.Kafka.Enabled = false
	c.Kafka.Topic = "limitbook.summary"
	return c
}

// Load builds the config from defaults, an optional .env file, an optional
// YAML file named by LIMITBOOK_CONFIG, and LIMITBOOK_* env overrides, in that
// order.
func Load() Config {
	_ = godotenv.Load()
	c := defaultConfig()
	if path := os.Getenv("LIMITBOOK_CONFIG"); path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	if v := os.Getenv("LIMITBOOK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LIMITBOOK_LOG_PRETTY"); v == "1" || v == "true" {
		c.Logging.Pretty = true
	}
	if v := os.Getenv("LIMITBOOK_HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LIMITBOOK_PPROF"); v == "1" || v == "true" {
		c.Server.Pprof = true
	}
	if v := os.Getenv("LIMITBOOK_ADMIN_ALLOW_CIDRS"); v != "" {
		c.Server.AdminAllowCIDRs = splitCSV(v)
	}
	if v := os.Getenv("LIMITBOOK_EXCHANGE"); v != "" {
		c.Source.Exchange = v
	}
	if v := os.Getenv("LIMITBOOK_BASE_URL"); v != "" {
		c.Source.BaseURL = v
	}
	if v := os.Getenv("LIMITBOOK_PRODUCTS"); v != "" {
		c.Source.Products = splitCSV(v)
	}
	if v := os.Getenv("LIMITBOOK_RETRIES"); v != "" {
		var n int
		if _, err := fmt.Sscan(v, &n); err == nil && n >= 0 {
			c.Source.Retries = n
		}
	}
	if v := os.Getenv("LIMITBOOK_REFRESH_SECONDS"); v != "" {
		var n int
		if _, err := fmt.Sscan(v, &n); err == nil && n >= 0 {
			c.Refresh.IntervalSeconds = n
		}
	}
	if v := os.Getenv("LIMITBOOK_ARCHIVE_DIR"); v != "" {
		c.Archive.Dir = v
	}
	if v := os.Getenv("LIMITBOOK_ARCHIVE_RECORD"); v == "1" || v == "true" {
		c.Archive.Record = true
	}
	if v := os.Getenv("LIMITBOOK_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitCSV(v)
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("LIMITBOOK_KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	c.Source.Products = dedupe(c.Source.Products)
	return c
}

// dedupe drops repeated entries, keeping first occurrences in order.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func splitCSV(s string) []string {
	var out []string
	buf := []rune{}
	for _, r := range s {
		if r == ',' {
			if len(buf) > 0 {
				out = append(out, string(buf))
				buf = buf[:0]
			}
			continue
		}
		buf = append(buf, r)
	}
	if len(buf) > 0 {
		out = append(out, string(buf))
	}
	return out
}
