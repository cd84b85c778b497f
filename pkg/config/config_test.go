// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadFrom(t *testing.T) {
	path := writeConfig(t, `
[switcher]
address = "192.168.1.50"

[host]
inputs = "Off|TV|Phono"

[registry]
backend = "file"
path = "/var/lib/sspctl/controls.cbor"
`)

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Switcher.Address != "192.168.1.50" {
		t.Errorf("Address = %q", cfg.Switcher.Address)
	}
	if cfg.Switcher.Port != 2001 {
		t.Errorf("Port = %d, want default 2001", cfg.Switcher.Port)
	}
	if cfg.Switcher.LineEnding != "\r\n" {
		t.Errorf("LineEnding = %q, want CRLF", cfg.Switcher.LineEnding)
	}
	if cfg.Host.Inputs != "Off|TV|Phono" {
		t.Errorf("Inputs = %q", cfg.Host.Inputs)
	}
	if cfg.Host.HeartbeatInterval() != 10*time.Second {
		t.Errorf("HeartbeatInterval() = %v", cfg.Host.HeartbeatInterval())
	}
	if cfg.Registry.Backend != BackendFile {
		t.Errorf("Backend = %q", cfg.Registry.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadFrom_Missing(t *testing.T) {
	if _, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("LoadFrom() error = nil for missing file")
	}
}

func TestLoad_NoFileGivesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Switcher.Transport != TransportTCP || cfg.Registry.Backend != BackendMemory {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, "sspctl"), 0o755); err != nil {
		t.Fatal(err)
	}
	body := "[switcher]\naddress = \"ssp.local\"\nport = 23\n"
	if err := os.WriteFile(filepath.Join(dir, "sspctl", "config.toml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Switcher.Address != "ssp.local" || cfg.Switcher.Port != 23 {
		t.Errorf("switcher = %+v", cfg.Switcher)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SSPCTL_SWITCHER_ADDRESS", "10.0.0.9")
	t.Setenv("SSPCTL_SWITCHER_PORT", "4000")
	t.Setenv("SSPCTL_HOST_HEARTBEAT", "3")
	t.Setenv("SSPCTL_LOG_LEVEL", "debug")
	t.Setenv("SSPCTL_NATS_URL", "nats://127.0.0.1:4222")

	cfg, err := LoadFrom(writeConfig(t, "[switcher]\naddress = \"a\"\n"))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Switcher.Address != "10.0.0.9" || cfg.Switcher.Port != 4000 {
		t.Errorf("switcher = %+v", cfg.Switcher)
	}
	if cfg.Host.Heartbeat != 3 {
		t.Errorf("Heartbeat = %d, want 3", cfg.Host.Heartbeat)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
	if cfg.NATS.URL != "nats://127.0.0.1:4222" || cfg.NATS.Subject != "sspctl" {
		t.Errorf("nats = %+v", cfg.NATS)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"no address", func(c *Config) { c.Switcher.Address = "" }, "address is required"},
		{"bad port", func(c *Config) { c.Switcher.Port = 70000 }, "invalid port"},
		{"bad transport", func(c *Config) { c.Switcher.Transport = "udp" }, "invalid transport"},
		{"serial without port", func(c *Config) { c.Switcher.Transport = TransportSerial }, "serial_port is required"},
		{"websocket http scheme", func(c *Config) {
			c.Switcher.Transport = TransportWebSocket
			c.Switcher.URL = "http://bridge.local/ws"
		}, "unsupported url scheme"},
		{"one label", func(c *Config) { c.Host.Inputs = "Off" }, "inputs"},
		{"zero heartbeat", func(c *Config) { c.Host.Heartbeat = 0 }, "heartbeat"},
		{"file without path", func(c *Config) { c.Registry.Backend = BackendFile }, "path is required"},
		{"redis without addr", func(c *Config) { c.Registry.Backend = BackendRedis }, "redis_addr is required"},
		{"bad backend", func(c *Config) { c.Registry.Backend = "sqlite" }, "invalid backend"},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }, "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Switcher.Address = "ssp.local"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Registry.Backend = "sqlite"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil")
	}
	for _, want := range []string{"switcher:", "registry:", "log:"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error missing %q: %v", want, err)
		}
	}
}
