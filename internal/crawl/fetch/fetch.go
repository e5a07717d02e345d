package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"leadscout-engine/internal/domain"
)

// Result is the outcome of running the chain against one URL. Success=true
// implies ByteLength is at least the chain's minimum content threshold,
// measured on the stripped text rather than raw markup. A failed chain still
// carries the longest partial content any stage produced.
type Result struct {
	URL        string
	Content    string
	HTML       string
	Method     domain.FetchMethod
	Success    bool
	ByteLength int
}

// Page is what a single stage hands back before the chain applies the
// content threshold.
type Page struct {
	FinalURL string
	HTML     string
}

// Stage is one rung of the chain, cheapest first.
type Stage interface {
	Method() domain.FetchMethod
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// ErrContentTooShort rejects transport-level successes whose text is below
// the minimum viable threshold.
var ErrContentTooShort = errors.New("content below minimum threshold")

// StageError records why one rung rejected a URL.
type StageError struct {
	Method domain.FetchMethod
	URL    string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("fetch stage %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// AllFailedError means no stage produced usable content for the URL. This is
// the only fetch condition surfaced to callers as an error; it is distinct
// from "fetched fine, found no jobs".
type AllFailedError struct {
	URL    string
	Stages []*StageError
}

func (e *AllFailedError) Error() string {
	parts := make([]string, 0, len(e.Stages))
	for _, s := range e.Stages {
		parts = append(parts, fmt.Sprintf("%s: %v", s.Method, s.Err))
	}
	return fmt.Sprintf("all fetch stages failed for %s (%s)", e.URL, strings.Join(parts, "; "))
}

// Chain tries cheapest-to-most-expensive retrieval methods until one yields
// usable content.
type Chain struct {
	stages   []Stage
	minBytes int
	log      *zap.SugaredLogger
}

func NewChain(log *zap.SugaredLogger, minBytes int, stages ...Stage) *Chain {
	return &Chain{stages: stages, minBytes: minBytes, log: log}
}

// Fetch runs the chain. On total failure the returned Result still carries
// the longest partial content seen, so the caller can degrade instead of
// giving up outright.
func (c *Chain) Fetch(ctx context.Context, rawURL string) (Result, error) {
	var (
		failed  []*StageError
		partial Result
	)

	for _, st := range c.stages {
		res, serr := c.tryStage(ctx, st, rawURL)
		if serr == nil {
			c.log.Infow("fetch ok", "method", res.Method, "url", res.URL, "size", humanize.Bytes(uint64(res.ByteLength)))
			return res, nil
		}

		failed = append(failed, serr)
		c.log.Debugw("fetch stage failed", "method", st.Method(), "url", rawURL, "err", serr.Err)

		// keep the longest thing anyone managed to pull down
		if res.ByteLength > partial.ByteLength {
			partial = res
		}

		if ctx.Err() != nil {
			break
		}
	}

	partial.Success = false
	if partial.URL == "" {
		partial.URL = rawURL
	}
	return partial, &AllFailedError{URL: rawURL, Stages: failed}
}

// tryStage runs one stage against the URL and, when that fails, once more
// against its www/apex twin. Sites routinely serve only one of the two
// hosts.
func (c *Chain) tryStage(ctx context.Context, st Stage, rawURL string) (Result, *StageError) {
	res, err := c.fetchOnce(ctx, st, rawURL)
	if err == nil {
		return res, nil
	}

	if twin, ok := wwwTwin(rawURL); ok {
		twinRes, twinErr := c.fetchOnce(ctx, st, twin)
		if twinErr == nil {
			return twinRes, nil
		}
		if twinRes.ByteLength > res.ByteLength {
			res = twinRes
		}
	}

	return res, &StageError{Method: st.Method(), URL: rawURL, Err: err}
}

// fetchOnce runs a stage once and applies the content threshold. Even a
// too-short page comes back in the Result so partial content survives.
func (c *Chain) fetchOnce(ctx context.Context, st Stage, rawURL string) (Result, error) {
	page, err := st.Fetch(ctx, rawURL)
	if err != nil {
		return Result{URL: rawURL, Method: st.Method()}, err
	}

	text, err := ExtractText(page.HTML)
	if err != nil {
		return Result{URL: rawURL, Method: st.Method()}, fmt.Errorf("strip markup: %w", err)
	}

	res := Result{
		URL:        page.FinalURL,
		Content:    text,
		HTML:       page.HTML,
		Method:     st.Method(),
		ByteLength: len(text),
	}
	if res.URL == "" {
		res.URL = rawURL
	}
	if res.ByteLength < c.minBytes {
		return res, ErrContentTooShort
	}
	res.Success = true
	return res, nil
}

// wwwTwin flips a URL between its www and apex spellings: www hosts are
// stripped, bare hosts get the prefix.
func wwwTwin(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Host)
	if strings.HasPrefix(host, "www.") {
		u.Host = strings.TrimPrefix(host, "www.")
		return u.String(), true
	}
	// prefixing localhost or an IP literal would never resolve
	if u.Hostname() == "localhost" || net.ParseIP(u.Hostname()) != nil {
		return "", false
	}
	u.Host = "www." + host
	return u.String(), true
}
