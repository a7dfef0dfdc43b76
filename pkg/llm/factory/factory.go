package factory

import (
	"fmt"

	"ideaforge-be/pkg/llm"
	"ideaforge-be/pkg/llm/gemini"
	"ideaforge-be/pkg/llm/ollama"
)

// NewLLMProvider builds the configured provider. defaultModel is the first
// entry of the fallback list; per-call model selection goes through
// llm.WithModel.
func NewLLMProvider(providerName, defaultModel, ollamaBaseURL, geminiAPIKey string) (llm.LLMProvider, error) {
	switch providerName {
	case "gemini":
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GOOGLE_GEMINI_API_KEY")
		}
		return gemini.NewGeminiProvider(geminiAPIKey, defaultModel), nil
	case "ollama":
		return ollama.NewOllamaProvider(ollamaBaseURL, defaultModel), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", providerName)
	}
}
