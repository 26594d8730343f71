package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-consultancy-be/internal/pkg/apperror"
	"ai-consultancy-be/pkg/llm"
)

const defaultEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

type GeminiProvider struct {
	APIKey    string
	ModelName string
	Endpoint  string // format string taking the model name; overridable for tests
	Client    *http.Client
}

// Ensure GeminiProvider implements LLMProvider
var _ llm.LLMProvider = &GeminiProvider{}

func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiProvider{
		APIKey:    apiKey,
		ModelName: modelName,
		Endpoint:  defaultEndpoint,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiCandidate struct {
	Content *geminiContent `json:"content"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

// --- Interface Implementation ---

func (g *GeminiProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	if g.APIKey == "" {
		return "", apperror.New(apperror.KindConfig, "gemini api key is not configured")
	}

	options := &llm.Options{}
	for _, opt := range opts {
		opt(options)
	}

	// Gemini has no "system" chat role; system messages go into the
	// dedicated systemInstruction field, "assistant" maps to "model".
	var systemInstruction *geminiContent
	contents := make([]geminiContent, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case "system":
			systemInstruction = &geminiContent{Parts: []geminiPart{{Text: msg.Content}}}
		case "assistant", "model":
			contents = append(contents, geminiContent{
				Parts: []geminiPart{{Text: msg.Content}},
				Role:  "model",
			})
		default:
			contents = append(contents, geminiContent{
				Parts: []geminiPart{{Text: msg.Content}},
				Role:  "user",
			})
		}
	}

	payload := geminiRequest{
		SystemInstruction: systemInstruction,
		Contents:          contents,
	}
	if options.Temperature > 0 || options.MaxTokens > 0 {
		payload.GenerationConfig = &geminiGenConfig{
			Temperature:     options.Temperature,
			MaxOutputTokens: options.MaxTokens,
		}
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	model := g.ModelName
	if options.Model != "" {
		model = options.Model
	}

	url := fmt.Sprintf(g.Endpoint, model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadJson))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-goog-api-key", g.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := g.Client.Do(req)
	if err != nil {
		return "", apperror.Wrap(apperror.KindAgent, "gemini request failed", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return "", apperror.Wrap(apperror.KindAgent, "read gemini response", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", apperror.Wrap(
			apperror.KindAgent,
			"gemini returned an error",
			fmt.Errorf("status %d, body %s", res.StatusCode, string(resBody)),
		)
	}

	var geminiRes geminiResponse
	if err := json.Unmarshal(resBody, &geminiRes); err != nil {
		return "", apperror.Wrap(apperror.KindAgent, "unmarshal gemini response", err)
	}

	if len(geminiRes.Candidates) == 0 || geminiRes.Candidates[0].Content == nil || len(geminiRes.Candidates[0].Content.Parts) == 0 {
		return "", apperror.New(apperror.KindAgent, "gemini returned no candidates")
	}

	return geminiRes.Candidates[0].Content.Parts[0].Text, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return g.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}
