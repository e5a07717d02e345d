// Package aiextract recovers job listings from raw page text with a language
// model. It is the fallback of last resort: the crawler only reaches for it
// when structural extraction produced zero candidates on a page that did not
// carry an explicit no-hiring signal.
package aiextract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"leadscout-engine/internal/crawl/util"
	"leadscout-engine/internal/domain"
)

const (
	maxTokens  = 1024
	maxRetries = 3
	retryBase  = 2 * time.Second
)

type Config struct {
	Model        string        // e.g. claude-3-5-haiku-latest
	Timeout      time.Duration // per-call deadline, retries included
	MaxTextChars int           // page text is cut to this many runes before prompting
}

type Extractor struct {
	cfg    Config
	client anthropic.Client
	log    *zap.SugaredLogger
}

func New(log *zap.SugaredLogger, apiKey string, cfg Config, opts ...option.RequestOption) *Extractor {
	if cfg.Model == "" {
		cfg.Model = string(anthropic.ModelClaude3_5HaikuLatest)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = 8000
	}
	// Retry scheduling lives in complete, not in the SDK transport.
	reqOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &Extractor{
		cfg:    cfg,
		client: anthropic.NewClient(reqOpts...),
		log:    log,
	}
}

// Extract asks the model for job listings hidden in pageText. Candidates with
// a usable title always come back with an absolute URL: the model's own link
// when it found one, pageURL otherwise. An empty slice with a nil error means
// the model looked and found nothing.
func (e *Extractor) Extract(ctx context.Context, companyName, pageURL, pageText string) ([]domain.JobCandidate, error) {
	pageText = util.TruncateRunes(pageText, e.cfg.MaxTextChars)
	if strings.TrimSpace(pageText) == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	raw, err := e.complete(ctx, buildPrompt(companyName, pageText))
	if err != nil {
		return nil, fmt.Errorf("aiextract %s: %w", companyName, err)
	}

	cands := parseJobs(raw, pageURL)
	e.log.Debugw("ai extraction finished", "company", companyName, "candidates", len(cands))
	return cands, nil
}

// complete runs one messages call with exponential backoff. The shared ctx
// deadline bounds the whole attempt series, so a slow first call eats the
// retry budget too.
func (e *Extractor) complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBase << (attempt - 1)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(e.cfg.Model),
			MaxTokens: maxTokens,
			System: []anthropic.TextBlockParam{
				{Text: systemPrompt},
			},
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
			Temperature: anthropic.Float(0.2),
		})
		if err != nil {
			lastErr = err
			e.log.Debugw("model call failed", "attempt", attempt+1, "err", err)
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			continue
		}

		var sb strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		return sb.String(), nil
	}
	return "", fmt.Errorf("model call failed after %d attempts: %w", maxRetries, lastErr)
}

const systemPrompt = "You extract job listings from careers page text. " +
	"Respond with a single JSON object and nothing else: no prose, no markdown fences."

func buildPrompt(companyName, pageText string) string {
	return fmt.Sprintf(`You are analyzing the careers page of %s.

Extract every job listing from the content below. For each job provide:
- job_title: the position name
- description: a brief description, two or three sentences, empty string if the page has none
- job_url: the absolute link to apply or view details, empty string if the page shows none

Return {"jobs": []} when the content lists no open positions.

Page content:
%s

Return format:
{"jobs": [{"job_title": "Senior Software Engineer", "description": "Build scalable systems.", "job_url": "https://example.com/jobs/123"}]}`,
		companyName, pageText)
}
