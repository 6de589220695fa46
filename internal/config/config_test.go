package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.DBPath != "./data/garden.db" {
		t.Errorf("Expected default DB path, got %s", cfg.DBPath)
	}
	if cfg.OllamaBaseURL != "http://localhost:11434" {
		t.Errorf("Expected default Ollama URL, got %s", cfg.OllamaBaseURL)
	}
	if cfg.OllamaModel != "qwen2.5" {
		t.Errorf("Expected default model qwen2.5, got %s", cfg.OllamaModel)
	}
	if cfg.OllamaTimeout != 120*time.Second {
		t.Errorf("Expected default timeout 120s, got %v", cfg.OllamaTimeout)
	}
	if cfg.SweepInterval != 10*time.Minute {
		t.Errorf("Expected default sweep interval 10m, got %v", cfg.SweepInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OLLAMA_MODEL", "llama3")
	t.Setenv("OLLAMA_TIMEOUT_SECONDS", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.OllamaModel != "llama3" {
		t.Errorf("Expected model llama3, got %s", cfg.OllamaModel)
	}
	if cfg.OllamaTimeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", cfg.OllamaTimeout)
	}
}

func TestLoadBadIntFallsBack(t *testing.T) {
	t.Setenv("OLLAMA_TIMEOUT_SECONDS", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OllamaTimeout != 120*time.Second {
		t.Errorf("Expected fallback timeout, got %v", cfg.OllamaTimeout)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Port:          "8080",
		DBPath:        "./x.db",
		OllamaBaseURL: "http://localhost:11434",
		OllamaModel:   "qwen2.5",
		OllamaTimeout: time.Minute,
		SweepInterval: time.Minute,
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	cfg.OllamaModel = ""
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for empty model")
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		frontend string
		want     bool
	}{
		{"", true},
		{"http://localhost:3000", true},
		{"http://127.0.0.1:3000", true},
		{"https://garden.example.com", false},
	}
	for _, tt := range tests {
		cfg := &Config{FrontendURL: tt.frontend}
		if got := cfg.IsDevelopment(); got != tt.want {
			t.Errorf("IsDevelopment(%q) = %v, expected %v", tt.frontend, got, tt.want)
		}
	}
}
