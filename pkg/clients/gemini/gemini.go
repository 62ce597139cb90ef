package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nahidfarms/poultrypro/internal/domain/models"
)

const (
	baseURL        = "https://generativelanguage.googleapis.com/v1beta"
	model          = "gemini-3-flash-preview"
	recentTxLimit  = 20
	requestTimeout = 20 * time.Second
)

// Client defines the interface for the farm-insights AI call.
type Client interface {
	GenerateInsights(ctx context.Context, snapshot models.FarmState) (models.Insights, error)
}

type geminiClient struct {
	httpClient *resty.Client
}

// NewClient creates a configured Gemini client.
func NewClient(apiKey string) Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("x-goog-api-key", apiKey).
		SetHeader("content-type", "application/json").
		SetTimeout(requestTimeout)

	return &geminiClient{httpClient: client}
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// insightsSchema asks the model for exactly the three-field reply shape.
var insightsSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"summary": {"type": "STRING"},
		"warnings": {"type": "ARRAY", "items": {"type": "STRING"}},
		"recommendations": {"type": "ARRAY", "items": {"type": "STRING"}}
	},
	"required": ["summary", "warnings", "recommendations"]
}`)

// GenerateInsights sends the farm snapshot for analysis and parses the
// structured reply. Any transport, API or shape problem is returned as an
// error; substituting the fallback payload is the caller's job.
func (c *geminiClient) GenerateInsights(ctx context.Context, snapshot models.FarmState) (models.Insights, error) {
	prompt, err := buildPrompt(snapshot)
	if err != nil {
		return models.Insights{}, fmt.Errorf("build insights prompt: %w", err)
	}

	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   insightsSchema,
		},
	}

	var respBody generateResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(fmt.Sprintf("/models/%s:generateContent", model))
	if err != nil {
		return models.Insights{}, fmt.Errorf("gemini api call: %w", err)
	}
	if resp.IsError() {
		return models.Insights{}, fmt.Errorf("gemini api error: %s", resp.String())
	}
	if len(respBody.Candidates) == 0 || len(respBody.Candidates[0].Content.Parts) == 0 {
		return models.Insights{}, fmt.Errorf("empty response from ai")
	}

	text := respBody.Candidates[0].Content.Parts[0].Text
	return parseInsights(text)
}

// buildPrompt serializes the most recent slice of the books into the analysis
// request. Transactions arrive most-recent-first, so the head of the list is
// the recent window.
func buildPrompt(snapshot models.FarmState) (string, error) {
	recent := snapshot.Transactions
	if len(recent) > recentTxLimit {
		recent = recent[:recentTxLimit]
	}

	txJSON, err := json.Marshal(recent)
	if err != nil {
		return "", err
	}
	flockJSON, err := json.Marshal(snapshot.Flocks)
	if err != nil {
		return "", err
	}
	invJSON, err := json.Marshal(snapshot.Inventory)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Analyze the following poultry farm data and provide strategic insights.
Current Data Summary:
- Transactions: %s
- Active Flocks: %s
- Inventory: %s

Focus on:
1. Financial health (Profit/Loss trends).
2. Feed conversion ratio (FCR) estimation if possible.
3. Health warnings (mortality spikes).
4. Inventory management (low stock alerts).

Provide the response in a structured JSON format with 'summary', 'warnings', and 'recommendations' keys.`,
		txJSON, flockJSON, invJSON), nil
}

// parseInsights decodes the model reply, tolerating markdown code fences.
func parseInsights(text string) (models.Insights, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	text = strings.TrimSpace(text)

	var insights models.Insights
	if err := json.Unmarshal([]byte(text), &insights); err != nil {
		return models.Insights{}, fmt.Errorf("failed to unmarshal ai response: %w", err)
	}
	if insights.Summary == "" {
		return models.Insights{}, fmt.Errorf("ai response missing summary")
	}
	return insights, nil
}
