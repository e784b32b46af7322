package cmd

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadExtractorEnvVars(t *testing.T) {
	tests := []struct {
		name         string
		flagBaseURL  string
		envBaseURL   string
		envAPIKey    string
		envOpenAIKey string
		wantBaseURL  string
		wantAPIKey   string
	}{
		{
			name:        "defaults when nothing set",
			wantBaseURL: "https://api.openai.com/v1",
			wantAPIKey:  "",
		},
		{
			name:        "env base URL applies when flag unset",
			envBaseURL:  "http://localhost:11434/v1",
			wantBaseURL: "http://localhost:11434/v1",
		},
		{
			name:        "flag base URL wins over env",
			flagBaseURL: "https://llm.example.com/v1",
			envBaseURL:  "http://localhost:11434/v1",
			wantBaseURL: "https://llm.example.com/v1",
		},
		{
			name:       "dedicated key env var",
			envAPIKey:  "sk-dedicated",
			wantAPIKey: "sk-dedicated",
		},
		{
			name:         "fallback to OPENAI_API_KEY",
			envOpenAIKey: "sk-openai",
			wantAPIKey:   "sk-openai",
		},
		{
			name:         "dedicated key wins over fallback",
			envAPIKey:    "sk-dedicated",
			envOpenAIKey: "sk-openai",
			wantAPIKey:   "sk-dedicated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SCHEDWISE_LLM_BASE_URL", tt.envBaseURL)
			t.Setenv("SCHEDWISE_LLM_API_KEY", tt.envAPIKey)
			t.Setenv("OPENAI_API_KEY", tt.envOpenAIKey)

			cmd := newServeCmd()
			if tt.flagBaseURL != "" {
				if err := cmd.Flags().Set("llm-base-url", tt.flagBaseURL); err != nil {
					t.Fatalf("failed to set flag: %v", err)
				}
			}

			config := ExtractorConfig{BaseURL: tt.flagBaseURL}
			loadExtractorEnvVars(cmd, &config)

			wantBaseURL := tt.wantBaseURL
			if wantBaseURL == "" {
				wantBaseURL = "https://api.openai.com/v1"
			}
			if config.BaseURL != wantBaseURL {
				t.Errorf("BaseURL = %q, want %q", config.BaseURL, wantBaseURL)
			}
			if config.APIKey != tt.wantAPIKey {
				t.Errorf("APIKey = %q, want %q", config.APIKey, tt.wantAPIKey)
			}
		})
	}
}

func TestResolveDBPath(t *testing.T) {
	t.Run("explicit path wins", func(t *testing.T) {
		t.Setenv("SCHEDWISE_DB_PATH", "/tmp/env.db")
		got := resolveDBPath("/tmp/flag.db")
		if got != "/tmp/flag.db" {
			t.Errorf("resolveDBPath() = %q, want %q", got, "/tmp/flag.db")
		}
	})

	t.Run("env var applies when flag empty", func(t *testing.T) {
		t.Setenv("SCHEDWISE_DB_PATH", "/tmp/env.db")
		got := resolveDBPath("")
		if got != "/tmp/env.db" {
			t.Errorf("resolveDBPath() = %q, want %q", got, "/tmp/env.db")
		}
	})

	t.Run("falls back to cache dir", func(t *testing.T) {
		t.Setenv("SCHEDWISE_DB_PATH", "")
		got := resolveDBPath("")
		if !strings.HasSuffix(got, filepath.Join("schedwise", "schedwise.db")) {
			t.Errorf("resolveDBPath() = %q, want schedwise/schedwise.db suffix", got)
		}
	})
}
