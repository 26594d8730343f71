package factory

import (
	"ai-consultancy-be/internal/pkg/apperror"
	"ai-consultancy-be/pkg/llm"
	"ai-consultancy-be/pkg/llm/gemini"
	"ai-consultancy-be/pkg/llm/ollama"
)

// NewLLMProvider selects the model backend from configuration.
// Credential problems surface here, before any session work starts.
func NewLLMProvider(providerType, modelName, ollamaBaseURL, geminiAPIKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "gemini", "":
		if geminiAPIKey == "" {
			return nil, apperror.New(apperror.KindConfig, "GOOGLE_GEMINI_API_KEY is required for the gemini provider")
		}
		return gemini.NewGeminiProvider(geminiAPIKey, modelName), nil
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	default:
		return nil, apperror.New(apperror.KindConfig, "unsupported LLM provider: "+providerType)
	}
}
