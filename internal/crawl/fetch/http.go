package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"leadscout-engine/internal/crawl/util"
	"leadscout-engine/internal/domain"
)

// pages bigger than this are not careers pages
const maxBodyBytes = 10 << 20

// HTTPStage is the cheap first rung: a plain GET with a browser-like
// User-Agent. Good enough for server-rendered sites, which is most of them.
type HTTPStage struct {
	hc      *http.Client
	ua      string
	limiter *util.HostLimiter
}

func NewHTTPStage(timeout time.Duration, userAgent string, limiter *util.HostLimiter) *HTTPStage {
	return &HTTPStage{
		hc:      &http.Client{Timeout: timeout},
		ua:      userAgent,
		limiter: limiter,
	}
}

func (s *HTTPStage) Method() domain.FetchMethod { return domain.MethodHTTP }

func (s *HTTPStage) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, rawURL); err != nil {
			return Page{}, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("http request: %w", err)
	}
	req.Header.Set("User-Agent", s.ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	res, err := s.hc.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("http get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return Page{}, fmt.Errorf("http status %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return Page{}, fmt.Errorf("http read body: %w", err)
	}

	// transport-level redirects already followed; record where we landed
	finalURL := rawURL
	if res.Request != nil && res.Request.URL != nil {
		finalURL = res.Request.URL.String()
	}
	return Page{FinalURL: finalURL, HTML: string(body)}, nil
}
