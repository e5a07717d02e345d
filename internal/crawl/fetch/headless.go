package fetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"leadscout-engine/internal/crawl/browser"
	"leadscout-engine/internal/domain"
)

// HeadlessStage renders the page in the crawl's browser session. When this
// stage wins, the session is left on the rendered page so the interaction
// engine can keep driving it instead of navigating twice.
type HeadlessStage struct {
	sess    *browser.Session
	timeout time.Duration
	log     *zap.SugaredLogger
}

func NewHeadlessStage(log *zap.SugaredLogger, sess *browser.Session, timeout time.Duration) *HeadlessStage {
	return &HeadlessStage{sess: sess, timeout: timeout, log: log}
}

func (s *HeadlessStage) Method() domain.FetchMethod { return domain.MethodHeadless }

func (s *HeadlessStage) Fetch(ctx context.Context, rawURL string) (Page, error) {
	if s.sess == nil {
		return Page{}, errors.New("no browser session")
	}
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	if err := s.sess.Navigate(rawURL, s.timeout); err != nil {
		if !s.sess.Navigated() {
			return Page{}, err
		}
		// network never went idle but a document rendered; use it
		s.log.Debugw("navigation unsettled, using rendered content", "url", rawURL, "err", err)
	}

	html, err := s.sess.Page().Content()
	if err != nil {
		return Page{}, fmt.Errorf("page content: %w", err)
	}
	return Page{FinalURL: s.sess.Page().URL(), HTML: html}, nil
}
