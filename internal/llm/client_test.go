package llm

import (
	"context"
	"strings"
	"testing"
)

func TestValidateProvider(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		want     Provider
		wantErr  bool
	}{
		{
			name:     "valid openai",
			provider: "openai",
			want:     ProviderOpenAI,
			wantErr:  false,
		},
		{
			name:     "valid ollama",
			provider: "ollama",
			want:     ProviderOllama,
			wantErr:  false,
		},
		{
			name:     "valid anthropic",
			provider: "anthropic",
			want:     ProviderAnthropic,
			wantErr:  false,
		},
		{
			name:     "valid gemini",
			provider: "gemini",
			want:     ProviderGemini,
			wantErr:  false,
		},
		{
			name:     "invalid provider",
			provider: "invalid",
			want:     "",
			wantErr:  true,
		},
		{
			name:     "empty provider",
			provider: "",
			want:     "",
			wantErr:  true,
		},
		{
			name:     "case sensitive - OPENAI fails",
			provider: "OPENAI",
			want:     "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateProvider(tt.provider)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProvider(%q) error = %v, wantErr %v", tt.provider, err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ValidateProvider(%q) = %v, want %v", tt.provider, got, tt.want)
			}
		})
	}
}

func TestDefaultModelsForProvider(t *testing.T) {
	tests := []struct {
		name          string
		provider      string
		wantChat      string
		wantEmbedding string
	}{
		{
			name:          "openai defaults",
			provider:      "openai",
			wantChat:      "gpt-4o-mini",
			wantEmbedding: "text-embedding-3-small",
		},
		{
			name:          "ollama defaults",
			provider:      "ollama",
			wantChat:      "llama3.1",
			wantEmbedding: "nomic-embed-text",
		},
		{
			name:          "anthropic has no embedding model",
			provider:      "anthropic",
			wantChat:      "claude-3-5-haiku-latest",
			wantEmbedding: "",
		},
		{
			name:          "gemini defaults",
			provider:      "gemini",
			wantChat:      "gemini-2.0-flash",
			wantEmbedding: "text-embedding-004",
		},
		{
			name:          "unknown provider returns empty",
			provider:      "unknown",
			wantChat:      "",
			wantEmbedding: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultChatModelForProvider(tt.provider); got != tt.wantChat {
				t.Errorf("DefaultChatModelForProvider(%q) = %q, want %q", tt.provider, got, tt.wantChat)
			}
			if got := DefaultEmbeddingModelForProvider(tt.provider); got != tt.wantEmbedding {
				t.Errorf("DefaultEmbeddingModelForProvider(%q) = %q, want %q", tt.provider, got, tt.wantEmbedding)
			}
		})
	}
}

func TestNewChatModel_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "openai requires API key",
			cfg: Config{
				Provider: ProviderOpenAI,
				Model:    "gpt-4",
				APIKey:   "",
			},
			wantErr: "OpenAI API key is required",
		},
		{
			name: "anthropic requires API key",
			cfg: Config{
				Provider: ProviderAnthropic,
				Model:    "claude-3",
				APIKey:   "",
			},
			wantErr: "anthropic API key is required",
		},
		{
			name: "gemini requires API key",
			cfg: Config{
				Provider: ProviderGemini,
				Model:    "gemini-pro",
				APIKey:   "",
			},
			wantErr: "gemini API key is required",
		},
		{
			name: "unsupported provider",
			cfg: Config{
				Provider: "unknown",
				Model:    "model",
				APIKey:   "key",
			},
			wantErr: "unsupported LLM provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChatModel(ctx, tt.cfg)
			if err == nil {
				t.Errorf("NewChatModel() expected error containing %q, got nil", tt.wantErr)
				return
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewChatModel() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewEmbeddingModel_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "openai requires API key",
			cfg: Config{
				Provider: ProviderOpenAI,
				APIKey:   "",
			},
			wantErr: "OpenAI API key is required",
		},
		{
			name: "gemini requires API key",
			cfg: Config{
				Provider: ProviderGemini,
				APIKey:   "",
			},
			wantErr: "gemini API key is required",
		},
		{
			name: "anthropic has no embedding API",
			cfg: Config{
				Provider: ProviderAnthropic,
				APIKey:   "key",
			},
			wantErr: "unsupported LLM provider",
		},
		{
			name: "unsupported provider",
			cfg: Config{
				Provider: "unknown",
				APIKey:   "key",
			},
			wantErr: "unsupported LLM provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEmbeddingModel(ctx, tt.cfg)
			if err == nil {
				t.Errorf("NewEmbeddingModel() expected error containing %q, got nil", tt.wantErr)
				return
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewEmbeddingModel() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
