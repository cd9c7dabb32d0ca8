package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	content := strings.Join([]string{
		"DB_DRIVER=sqlite",
		"DATABASE_URL=file:pos.db",
		"JWT_SECRET=from-file",
		"SESSION_IDLE_TIMEOUT=10m",
		"REDIS_ENABLED=true",
		"TIMEZONE=Asia/Makassar",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"DB_DRIVER", "DATABASE_URL", "JWT_SECRET", "SESSION_IDLE_TIMEOUT", "REDIS_ENABLED", "TIMEZONE"} {
		key := key
		old, had := os.LookupEnv(key)
		os.Unsetenv(key)
		t.Cleanup(func() {
			if had {
				os.Setenv(key, old)
			} else {
				os.Unsetenv(key)
			}
		})
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" || cfg.JWT.Secret != "from-file" {
		t.Errorf("unexpected config %+v", cfg.Database)
	}
	if cfg.JWT.IdleTimeout != 10*time.Minute || !cfg.Redis.Enabled {
		t.Errorf("idle %s redis %v", cfg.JWT.IdleTimeout, cfg.Redis.Enabled)
	}
	if cfg.Location().String() != "Asia/Makassar" {
		t.Errorf("location = %s", cfg.Location())
	}
	if cfg.Scheduler.SnapshotCron != "55 23 * * *" {
		t.Errorf("default snapshot cron = %q", cfg.Scheduler.SnapshotCron)
	}
}

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "3000"},
		Database:  DatabaseConfig{Driver: "postgres"},
		JWT:       JWTConfig{Secret: "s", TTLHours: 24, IdleTimeout: 5 * time.Minute},
		Cache:     CacheConfig{TodayTTL: time.Minute, HistoryTTL: time.Hour},
		Scheduler: SchedulerConfig{SnapshotCron: "55 23 * * *", Timezone: "UTC"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"valid", func(*Config) {}, ""},
		{"no secret", func(c *Config) { c.JWT.Secret = "" }, "JWT_SECRET"},
		{"bad driver", func(c *Config) { c.Database.Driver = "oracle" }, "DB_DRIVER"},
		{"sqlite without url", func(c *Config) { c.Database.Driver = "sqlite" }, "DATABASE_URL"},
		{"bad timezone", func(c *Config) { c.Scheduler.Timezone = "Mars/Olympus" }, "TIMEZONE"},
		{"zero idle", func(c *Config) { c.JWT.IdleTimeout = 0 }, "SESSION_IDLE_TIMEOUT"},
		{"sheet without credentials", func(c *Config) { c.Archive.SpreadsheetID = "abc" }, "ARCHIVE_SHEETS_CREDENTIALS_PATH"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want mention of %s", err, tt.want)
			}
		})
	}
}
