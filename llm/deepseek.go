package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"aquaquant/predictor"
)

type DeepSeekAdvisor struct {
	apiKey    string
	model     string
	client    *http.Client
	baseURL   string
	maxTokens int
}

type Advisory struct {
	Quality string `json:"quality"`
	Risk    string `json:"risk"`
	Usage   string `json:"usage"`
	Reason  string `json:"reason"`
}

func NewDeepSeekAdvisor(apiKey, model string, timeout time.Duration, maxTokens int) *DeepSeekAdvisor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DeepSeekAdvisor{
		apiKey:    apiKey,
		model:     model,
		client:    &http.Client{Timeout: timeout},
		baseURL:   "https://api.deepseek.com/chat/completions",
		maxTokens: maxTokens,
	}
}

func (d *DeepSeekAdvisor) Advise(ctx context.Context, prediction predictor.Prediction) (*Advisory, error) {
	if d == nil || d.client == nil {
		return nil, errors.New("deepseek advisor not configured")
	}
	if d.apiKey == "" {
		return nil, errors.New("deepseek api key is required")
	}
	if d.model == "" {
		d.model = "deepseek-chat"
	}

	prompt := fmt.Sprintf(`You are a water quality analyst. Assess this river-water prediction:

Sample month: %s
Water temperature: %.1f °C

Predicted values:
- Nitrate (NO3): %.2f mg/L (drinking water limit 50 mg/L)
- Sulphate (SO4): %.2f mg/L (drinking water limit 250 mg/L)
- pH: %.2f (acceptable range 6.5-8.5)

Assess:
1. Overall quality (good/fair/poor)
2. Risk level (low/medium/high)
3. Suitable usage (drinking/irrigation/industrial/none)
4. Reason (under 25 words)

Return JSON only:
{
  "quality": "good|fair|poor",
  "risk": "low|medium|high",
  "usage": "drinking|irrigation|industrial|none",
  "reason": "..."
}
`, prediction.Date, prediction.Temperature, prediction.Nitrate, prediction.Sulphate, prediction.PH)

	requestBody := deepSeekRequest{
		Model: d.model,
		Messages: []deepSeekMessage{{
			Role:    "user",
			Content: prompt,
		}},
		MaxTokens:   d.maxTokens,
		Temperature: 0.2,
	}
	payload, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", d.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr deepSeekErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("deepseek api error: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("deepseek api returned status %d", resp.StatusCode)
	}

	var apiResp deepSeekResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}
	if len(apiResp.Choices) == 0 {
		return nil, errors.New("deepseek api returned empty response")
	}
	return parseAdvisory(apiResp.Choices[0].Message.Content)
}

type deepSeekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type deepSeekRequest struct {
	Model       string            `json:"model"`
	Messages    []deepSeekMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
	Temperature float64           `json:"temperature,omitempty"`
}

type deepSeekResponse struct {
	Choices []struct {
		Message deepSeekMessage `json:"message"`
	} `json:"choices"`
}

type deepSeekErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func parseAdvisory(content string) (*Advisory, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var advisory Advisory
	if err := json.Unmarshal([]byte(trimmed), &advisory); err != nil {
		return nil, err
	}
	return &advisory, nil
}
