// Package vision suggests medication details from a photo of the package
// or label using the Claude Messages API.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nhle/medreminder/internal/logging"
	"github.com/nhle/medreminder/internal/model"
)

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 512
	defaultBaseURL   = "https://api.anthropic.com"
	apiVersion       = "2023-06-01"
)

const prompt = "This is a photo of a medication package or label. " +
	"Reply with only a JSON object with the keys " +
	`"name" (the medication name), ` +
	`"dosage" (pills per dose, for example "1 tablet" or "2 capsules"), and ` +
	`"periods" (an array using only "morning", "midday", "evening", "bedtime"). ` +
	"Use an empty string or empty array for anything you cannot read."

// ErrNoSuggestion is returned when the model's answer holds nothing usable.
var ErrNoSuggestion = errors.New("vision: no suggestion in response")

// Suggestion is what the analyzer could read from a photo.
type Suggestion struct {
	Name    string         `json:"name"`
	Dosage  string         `json:"dosage"`
	Periods []model.Period `json:"periods"`
}

// Empty reports whether the suggestion carries no information.
func (s Suggestion) Empty() bool {
	return s.Name == "" && s.Dosage == "" && len(s.Periods) == 0
}

// Apply pre-fills draft with the suggested values. Fields the analyzer
// could not read are left as they are. A dosage that starts with a number
// also sets the pill quantity when the number is a valid half-pill step.
func (s Suggestion) Apply(draft model.Medication) model.Medication {
	if s.Name != "" {
		draft.Name = s.Name
	}
	if s.Dosage != "" {
		draft.Dosage = s.Dosage
		if n, ok := model.PillsFromDosage(s.Dosage); ok && model.ValidPills(n) {
			draft.PillsPerTime = n
		}
	}
	if len(s.Periods) > 0 {
		draft.Periods = model.SortPeriods(s.Periods)
	}
	return draft
}

// Analyzer reads medication details from an image.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (*Suggestion, error)
}

// Suggest runs a on image and swallows every failure: it returns nil when
// there is no analyzer, the call fails, or nothing could be read. Failures
// are logged.
func Suggest(ctx context.Context, a Analyzer, image []byte, logger *slog.Logger) *Suggestion {
	logger = logging.OrDiscard(logger)
	if a == nil || len(image) == 0 {
		return nil
	}

	s, err := a.Analyze(ctx, image)
	if err != nil {
		logger.Warn("image analysis failed", slog.Any("error", err))
		return nil
	}
	if s == nil || s.Empty() {
		logger.Info("image analysis found nothing")
		return nil
	}
	return s
}

// ClaudeAnalyzer implements Analyzer against the Claude Messages API.
type ClaudeAnalyzer struct {
	apiKey    string
	model     string
	maxTokens int
	baseURL   string
	client    *http.Client
}

// Option configures a ClaudeAnalyzer.
type Option func(*ClaudeAnalyzer)

// WithBaseURL points the analyzer at a different API host.
func WithBaseURL(u string) Option {
	return func(a *ClaudeAnalyzer) { a.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *ClaudeAnalyzer) { a.client = c }
}

// NewClaudeAnalyzer creates an analyzer with the given API key.
func NewClaudeAnalyzer(apiKey, modelName string, maxTokens int, opts ...Option) *ClaudeAnalyzer {
	if modelName == "" {
		modelName = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	a := &ClaudeAnalyzer{
		apiKey:    apiKey,
		model:     modelName,
		maxTokens: maxTokens,
		baseURL:   defaultBaseURL,
		client:    &http.Client{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze sends image to the model and parses its answer.
func (a *ClaudeAnalyzer) Analyze(ctx context.Context, image []byte) (*Suggestion, error) {
	mediaType := http.DetectContentType(image)
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, fmt.Errorf("unsupported image type %s", mediaType)
	}

	resp, err := a.callAPI(ctx, apiRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages: []apiMessage{{
			Role: "user",
			Content: []apiContentBlock{
				{
					Type: "image",
					Source: &apiImageSource{
						Type:      "base64",
						MediaType: mediaType,
						Data:      base64.StdEncoding.EncodeToString(image),
					},
				},
				{Type: "text", Text: prompt},
			},
		}},
	})
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return parseSuggestion(text.String())
}

// callAPI makes a single request to the Claude Messages API.
func (a *ClaudeAnalyzer) callAPI(ctx context.Context, reqBody apiRequest) (*apiResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, a.baseURL+"/v1/messages", bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// parseSuggestion pulls the first JSON object out of text, tolerating code
// fences and prose around it. Unknown periods are dropped.
func parseSuggestion(text string) (*Suggestion, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrNoSuggestion
	}

	var raw struct {
		Name    string   `json:"name"`
		Dosage  string   `json:"dosage"`
		Periods []string `json:"periods"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSuggestion, err)
	}

	s := &Suggestion{
		Name:   strings.TrimSpace(raw.Name),
		Dosage: strings.TrimSpace(raw.Dosage),
	}
	seen := make(map[model.Period]bool)
	for _, tag := range raw.Periods {
		p := model.Period(strings.ToLower(strings.TrimSpace(tag)))
		if p.Valid() && !seen[p] {
			seen[p] = true
			s.Periods = append(s.Periods, p)
		}
	}
	return s, nil
}

// --- Claude API types ---

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string            `json:"role"`
	Content []apiContentBlock `json:"content"`
}

type apiContentBlock struct {
	Type string `json:"type"`

	// For text blocks
	Text string `json:"text,omitempty"`

	// For image blocks
	Source *apiImageSource `json:"source,omitempty"`
}

type apiImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type apiResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Role       string            `json:"role"`
	Content    []apiContentBlock `json:"content"`
	Model      string            `json:"model"`
	StopReason string            `json:"stop_reason"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
