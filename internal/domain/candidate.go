package domain

// PatternTag names a structural careers-page pattern the crawler knows how to
// recognize. Tags double as the source_pattern on extracted candidates and as
// the detected-pattern markers on a crawl session.
type PatternTag string

const (
	PatternSimpleText      PatternTag = "simple_text"
	PatternAccordion       PatternTag = "accordion"
	PatternModalPopup      PatternTag = "modal_popup"
	PatternExternalBoard   PatternTag = "external_board"
	PatternEmailApply      PatternTag = "email_apply"
	PatternJSDynamic       PatternTag = "js_dynamic"
	PatternInfiniteScroll  PatternTag = "infinite_scroll"
	PatternTabbed          PatternTag = "tabbed"
	PatternIframe          PatternTag = "iframe"
	PatternSearchRequired  PatternTag = "search_required"
	PatternAggregator      PatternTag = "aggregator"
	PatternDocumentListing PatternTag = "document_listing"
	PatternFormRequired    PatternTag = "form_required"
	PatternNoJobs          PatternTag = "no_jobs"
	PatternRedirect        PatternTag = "redirect"

	// PatternAnchor marks candidates produced by generic anchor
	// classification rather than one of the page-level patterns above.
	PatternAnchor PatternTag = "anchor"

	// PatternAIFallback marks candidates recovered from raw page text by the
	// language-model fallback after structural extraction found nothing.
	PatternAIFallback PatternTag = "ai_fallback"
)

// JobCandidate is one possible open position found on a careers page, prior
// to any semantic validation. URL is always absolute; when a posting has no
// link of its own it carries the careers page URL instead. Email-apply
// postings are never emitted as candidates.
type JobCandidate struct {
	Title         string
	URL           string
	Description   string
	SourcePattern PatternTag
}
