package llm

// Provider constants
const (
	// DefaultProvider is the default LLM provider
	DefaultProvider = ProviderOpenAI

	// ProviderOpenAI represents the OpenAI provider
	ProviderOpenAI = "openai"

	// ProviderOllama represents the Ollama provider
	ProviderOllama = "ollama"

	// ProviderAnthropic represents the Anthropic provider
	ProviderAnthropic = "anthropic"

	// ProviderGemini represents the Google Gemini provider
	ProviderGemini = "gemini"
)

// Embedding model defaults per provider. The graph pipeline assumes
// 1536-dimensional vectors, which matches text-embedding-3-small.
const (
	DefaultOpenAIEmbeddingModel = "text-embedding-3-small"
	DefaultOllamaEmbeddingModel = "nomic-embed-text"
	DefaultGeminiEmbeddingModel = "text-embedding-004"
)

// Chat model defaults per provider.
const (
	DefaultOpenAIChatModel    = "gpt-4o-mini"
	DefaultOllamaChatModel    = "llama3.1"
	DefaultAnthropicChatModel = "claude-3-5-haiku-latest"
	DefaultGeminiChatModel    = "gemini-2.0-flash"
)

// DefaultOllamaURL is the default URL for an Ollama server.
const DefaultOllamaURL = "http://localhost:11434"

// DefaultChatModelForProvider returns the default chat model ID for a provider.
func DefaultChatModelForProvider(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIChatModel
	case ProviderOllama:
		return DefaultOllamaChatModel
	case ProviderAnthropic:
		return DefaultAnthropicChatModel
	case ProviderGemini:
		return DefaultGeminiChatModel
	default:
		return ""
	}
}

// DefaultEmbeddingModelForProvider returns the default embedding model ID
// for a provider. Anthropic offers no embedding API.
func DefaultEmbeddingModelForProvider(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIEmbeddingModel
	case ProviderOllama:
		return DefaultOllamaEmbeddingModel
	case ProviderGemini:
		return DefaultGeminiEmbeddingModel
	default:
		return ""
	}
}
