package interact

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/playwright-community/playwright-go"

	"leadscout-engine/internal/domain"
)

// Doc is one HTML document captured for classification, paired with the URL
// its relative links resolve against.
type Doc struct {
	BaseURL string
	HTML    string
}

// Session carries the state of one crawl through the interaction pipeline.
// A single crawl invocation owns it and discards it at the end; nothing in
// here survives across runs.
type Session struct {
	RequestedURL string
	// FinalURL is the post-redirect page URL. Relative links resolve
	// against it, not against RequestedURL.
	FinalURL string

	NoJobsDetected bool
	// NoJobsPhrase is the lexicon phrase that tripped the no-jobs signal.
	NoJobsPhrase string

	Patterns mapset.Set[domain.PatternTag]

	page  playwright.Page
	docs  []Doc
	steps map[domain.PatternTag]int
}

// NewSession wraps a live page for one crawl. page may be nil when the crawl
// degraded to static HTML and no handler will run.
func NewSession(page playwright.Page, requestedURL string) *Session {
	return &Session{
		RequestedURL: requestedURL,
		FinalURL:     requestedURL,
		Patterns:     mapset.NewSet[domain.PatternTag](),
		page:         page,
		steps:        map[domain.PatternTag]int{},
	}
}

func (s *Session) Page() playwright.Page { return s.page }

// AddDoc stages an extra document for classification, such as an iframe body
// or a tab snapshot.
func (s *Session) AddDoc(baseURL, html string) {
	s.docs = append(s.docs, Doc{BaseURL: baseURL, HTML: html})
}

func (s *Session) Docs() []Doc { return s.docs }

// MarkPattern records that a structural pattern was observed on this page.
func (s *Session) MarkPattern(tag domain.PatternTag) { s.Patterns.Add(tag) }

// StepCount reports how many times the engine invoked the handler for tag.
func (s *Session) StepCount(tag domain.PatternTag) int { return s.steps[tag] }

func (s *Session) countStep(tag domain.PatternTag) { s.steps[tag]++ }
