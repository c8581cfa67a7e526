package copywriter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAIOptions configures the OpenAI-backed generator.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	// Fallback serves when the key is missing or the remote call fails.
	Fallback Generator
}

// OpenAI generates copy through the chat completions endpoint.
type OpenAI struct {
	apiKey   string
	model    string
	baseURL  string
	client   *http.Client
	fallback Generator
}

const openAIDefaultTimeout = 15 * time.Second

func NewOpenAI(opts OpenAIOptions) *OpenAI {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAI{
		apiKey:   strings.TrimSpace(opts.APIKey),
		model:    model,
		baseURL:  baseURL,
		client:   client,
		fallback: opts.Fallback,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type copyPayload struct {
	Script   string   `json:"script"`
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

func (o *OpenAI) GenerateCopy(ctx context.Context, req Request) (*Copy, error) {
	if o.apiKey == "" {
		return o.useFallback(ctx, req, errors.New("openai api key missing"))
	}

	user := fmt.Sprintf(`Create script, caption, and 10 hashtags for this idea: %q.`, strings.TrimSpace(req.Prompt))
	if tone := strings.TrimSpace(req.Tone); tone != "" {
		user += fmt.Sprintf(" The tone is %s.", tone)
	}
	if locale := strings.TrimSpace(req.Locale); locale != "" && locale != "en" {
		user += fmt.Sprintf(" Write in the %q locale.", locale)
	}
	user += " Return JSON only."

	payload := chatRequest{
		Model:       o.model,
		Temperature: 0.7,
		Messages: []chatMessage{
			{Role: "system", Content: "You generate short social video copy. Reply strictly as compact JSON with keys: script, caption, hashtags (array of short tags without #)."},
			{Role: "user", Content: user},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return o.useFallback(ctx, req, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", &buf)
	if err != nil {
		return o.useFallback(ctx, req, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return o.useFallback(ctx, req, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return o.useFallback(ctx, req, fmt.Errorf("openai status %d", resp.StatusCode))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return o.useFallback(ctx, req, err)
	}
	if len(out.Choices) == 0 {
		return o.useFallback(ctx, req, errors.New("no choices in response"))
	}
	parsed, err := parseCopyPayload(out.Choices[0].Message.Content)
	if err != nil {
		return o.useFallback(ctx, req, err)
	}
	return &Copy{
		Script:   parsed.Script,
		Caption:  parsed.Caption,
		Hashtags: PrefixHashtags(parsed.Hashtags),
	}, nil
}

func (o *OpenAI) useFallback(ctx context.Context, req Request, cause error) (*Copy, error) {
	if o.fallback == nil {
		return nil, fmt.Errorf("copywriter: %w", cause)
	}
	return o.fallback.GenerateCopy(ctx, req)
}

// parseCopyPayload tolerates models that wrap their JSON reply in markdown
// code fences.
func parseCopyPayload(text string) (*copyPayload, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("empty model reply")
	}
	var parsed copyPayload
	if err := json.Unmarshal([]byte(text), &parsed); err == nil {
		return &parsed, nil
	}
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(cleaned)), &parsed); err != nil {
		return nil, fmt.Errorf("parse model reply: %w", err)
	}
	return &parsed, nil
}

var _ Generator = (*OpenAI)(nil)
