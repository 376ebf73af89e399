// Package llm adapts an eino chat model to the text-completion contract the
// extractor uses.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	goopenai "github.com/meguminnnnnnnnn/go-openai"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/config"
	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/logger"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 2 * time.Second
	systemPrompt      = "You are a JSON generator. Output only a JSON object, no markdown."
)

// ErrEmptyResponse is returned when the model answers with no content.
var ErrEmptyResponse = errors.New("llm returned empty response")

// Generator is the part of model.ChatModel the synthesizer needs.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ChatSynthesizer implements text completion over a chat model, waiting on
// a shared limiter and backing off on rate-limit errors.
type ChatSynthesizer struct {
	gen        Generator
	limiter    *rate.Limiter
	maxRetries int
	baseDelay  time.Duration
}

// Option configures a ChatSynthesizer.
type Option func(*ChatSynthesizer)

// WithRetry sets the rate-limit retry count and initial backoff.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(s *ChatSynthesizer) {
		s.maxRetries = maxRetries
		s.baseDelay = baseDelay
	}
}

// New wraps gen. A nil limiter means unlimited.
func New(gen Generator, limiter *rate.Limiter, opts ...Option) *ChatSynthesizer {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	s := &ChatSynthesizer{
		gen:        gen,
		limiter:    limiter,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewOpenAI builds a synthesizer on the eino OpenAI-compatible chat model.
func NewOpenAI(ctx context.Context, cfg config.LLMConfig, limiter *rate.Limiter) (*ChatSynthesizer, error) {
	mcfg := &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	}
	if cfg.TimeoutMs > 0 {
		mcfg.Timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	}
	cm, err := openai.NewChatModel(ctx, mcfg)
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}
	return New(cm, limiter), nil
}

// Complete sends prompt and returns the raw model text.
func (s *ChatSynthesizer) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(prompt),
	}
	var opts []model.Option
	if maxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(maxTokens))
	}

	var lastErr error
	for i := 0; i <= s.maxRetries; i++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := s.gen.Generate(ctx, messages, opts...)
		if err != nil {
			if isRateLimited(err) && i < s.maxRetries {
				lastErr = err
				delay := s.baseDelay * time.Duration(1<<i)
				logger.Log.Warnf("llm rate limited, retrying in %s", delay)
				if err := sleep(ctx, delay); err != nil {
					return "", err
				}
				continue
			}
			return "", err
		}
		if resp == nil || strings.TrimSpace(resp.Content) == "" {
			return "", ErrEmptyResponse
		}
		return resp.Content, nil
	}
	return "", lastErr
}

// isRateLimited reads the HTTP status carried by the OpenAI client errors.
func isRateLimited(err error) bool {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
