package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("AUTH_USERNAME", "admin")
	t.Setenv("AUTH_PASSWORD", "secret")
}

func TestLoadMemoryDriverDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", DriverMemory)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Port != "5000" {
		t.Fatalf("unexpected port %q", cfg.HTTP.Port)
	}
	if cfg.Redis.IdempotencyTTL != 24*time.Hour {
		t.Fatalf("unexpected ttl %v", cfg.Redis.IdempotencyTTL)
	}
	if cfg.Gist.BaseURL != "https://api.github.com" {
		t.Fatalf("unexpected gist url %q", cfg.Gist.BaseURL)
	}
	if cfg.Auth.Username != "admin" || cfg.Auth.Password != "secret" {
		t.Fatalf("unexpected auth config %+v", cfg.Auth)
	}
}

func TestLoadTablesRequiresConnectionString(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", DriverTables)
	t.Setenv("STORAGE_CONNECTION_STRING", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected missing storage config error")
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", "mongo")

	if _, err := Load(); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestLoadActivityQueueRequiresConnectionString(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", DriverMemory)
	t.Setenv("STORAGE_CONNECTION_STRING", "")
	t.Setenv("ACTIVITY_QUEUE", "tracker-activity")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "ACTIVITY_QUEUE") {
		t.Fatalf("expected activity queue config error, got %v", err)
	}

	t.Setenv("STORAGE_CONNECTION_STRING", "UseDevelopmentStorage=true")
	if _, err := Load(); err != nil {
		t.Fatalf("memory driver with queue and connection string: %v", err)
	}
}

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		name     string
		conn     string
		wantAddr string
		wantPass string
		wantTLS  bool
		wantNil  bool
	}{
		{name: "unset", conn: "", wantNil: true},
		{name: "url", conn: "redis://:pw@localhost:6379/0", wantAddr: "localhost:6379", wantPass: "pw"},
		{name: "azure style", conn: "cache.example:6380,password=pw,ssl=True", wantAddr: "cache.example:6380", wantPass: "pw", wantTLS: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := RedisConfig{ConnectionString: tt.conn}.RedisOptions()
			if err != nil {
				t.Fatalf("redis options: %v", err)
			}
			if tt.wantNil {
				if opts != nil {
					t.Fatalf("expected nil options, got %+v", opts)
				}
				return
			}
			if opts.Addr != tt.wantAddr || opts.Password != tt.wantPass {
				t.Fatalf("unexpected options: addr=%q password=%q", opts.Addr, opts.Password)
			}
			if (opts.TLSConfig != nil) != tt.wantTLS {
				t.Fatalf("unexpected tls config: %v", opts.TLSConfig)
			}
		})
	}
}
