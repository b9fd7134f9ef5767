package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

var (
	ErrGeminiDisabled = errors.New("gemini is disabled via config")
	errNoAPIKey       = errors.New("GEMINI_API_KEY is not set")
)

// GeminiService calls the Generative Language REST API (generateContent).
type GeminiService struct {
	apiKey     string
	model      string
	baseURL    string
	enabled    bool
	httpClient *http.Client
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Enabled bool
	Timeout time.Duration
}

func NewGeminiService(cfg GeminiConfig) *GeminiService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiService{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		enabled:    cfg.Enabled,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig map[string]any  `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate sends prompt as a single user turn and returns the first
// non-empty candidate text.
func (s *GeminiService) Generate(ctx context.Context, prompt string) (string, error) {
	if !s.enabled {
		return "", upstreamError("gemini", ErrGeminiDisabled)
	}
	if strings.TrimSpace(s.apiKey) == "" {
		return "", upstreamError("gemini", errNoAPIKey)
	}

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: map[string]any{
			"temperature":     0.6,
			"maxOutputTokens": 1024,
			"topK":            40,
			"topP":            0.9,
		},
	})
	if err != nil {
		return "", upstreamError("gemini", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", s.baseURL, s.model)
	log.Printf("[gemini] POST model=%s promptLen=%d", s.model, len(prompt))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", upstreamError("gemini", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", upstreamError("gemini", fmt.Errorf("http error: %w", err))
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", upstreamError("gemini", fmt.Errorf("read error: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", upstreamError("gemini", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBytes))))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", upstreamError("gemini", fmt.Errorf("malformed response: %w", err))
	}
	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return "", upstreamError("gemini", fmt.Errorf("prompt blocked: %s", parsed.PromptFeedback.BlockReason))
	}
	for _, cand := range parsed.Candidates {
		for _, p := range cand.Content.Parts {
			if txt := strings.TrimSpace(p.Text); txt != "" {
				return txt, nil
			}
		}
	}
	return "", upstreamError("gemini", errors.New("empty completion"))
}
