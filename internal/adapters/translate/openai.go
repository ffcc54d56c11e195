// Package translate adapts OpenAI chat completions into the Translator port.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"homestay/internal/adapters/observability"
)

// Client translates batches of texts with a single chat completion per call.
// Calls are rate limited client-side and retried on transient failures; the
// per-call timeout bounds how long one degraded field can hold up a
// materialization.
type Client struct {
	ai          *openai.Client
	model       string
	temperature float32
	rl          *rate.Limiter
	timeout     time.Duration
}

type Config struct {
	APIKey      string
	Model       string  // default "gpt-4o-mini"
	Temperature float32 // default 0.3
	BaseURL     string  // optional override
	RPS         int     // client-side rate limit, default 5
	Timeout     time.Duration
}

func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	temp := cfg.Temperature
	if temp == 0 {
		temp = 0.3
	}
	rps := cfg.RPS
	if rps <= 0 {
		rps = 5
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		ai:          openai.NewClientWithConfig(oc),
		model:       model,
		temperature: temp,
		rl:          rate.NewLimiter(rate.Limit(rps), rps),
		timeout:     timeout,
	}, nil
}

// Translate returns the texts rendered in targetLang, preserving order and
// length. Empty input yields an empty result without a provider call.
func (c *Client) Translate(ctx context.Context, texts []string, targetLang, sourceLang string) ([]string, error) {
	if len(texts) == 0 {
		return []string{}, nil
	}
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, _ := json.Marshal(texts)
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(targetLang, sourceLang)},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		start := time.Now()
		resp, err := c.ai.CreateChatCompletion(ctx, req)
		if err != nil {
			observability.ObserveExternal("openai", "chat_completions", 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if !retryable(err) {
				return nil, err
			}
			if !sleepCtx(ctx, time.Duration(1<<attempt)*200*time.Millisecond) {
				return nil, ctx.Err()
			}
			continue
		}
		observability.ObserveExternal("openai", "chat_completions", 200, time.Since(start))
		if len(resp.Choices) == 0 {
			lastErr = errors.New("translate: empty completion")
			continue
		}
		return parseTranslations(resp.Choices[0].Message.Content, len(texts))
	}
	return nil, lastErr
}

func systemPrompt(targetLang, sourceLang string) string {
	return fmt.Sprintf(`You are an expert native translator. Translate each provided text from %s into idiomatic %s.
Rules:
- Never translate personal names, identifiers, URLs, email addresses, or numbers.
- Preserve meaningful whitespace and punctuation conventions of the target language.
- Keep the output order identical to the input order.
Return a valid JSON object with a single key "translations" holding an array of strings, one per input, in the same order.`, sourceLang, targetLang)
}

func parseTranslations(content string, want int) ([]string, error) {
	var obj struct {
		Translations []string `json:"translations"`
	}
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return nil, fmt.Errorf("translate: bad response format: %w", err)
	}
	if len(obj.Translations) != want {
		return nil, fmt.Errorf("translate: expected %d translations, got %d", want, len(obj.Translations))
	}
	return obj.Translations, nil
}

func retryable(err error) bool {
	low := strings.ToLower(err.Error())
	for _, p := range []string{"rate limit", "timeout", "connection refused", "temporary", "429", "502", "503"} {
		if strings.Contains(low, p) {
			return true
		}
	}
	return false
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
