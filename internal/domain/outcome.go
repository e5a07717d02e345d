package domain

// FetchMethod records which retrieval stage produced the page content.
type FetchMethod string

const (
	MethodHTTP     FetchMethod = "http"
	MethodHeadless FetchMethod = "headless"
	MethodPaidAPI  FetchMethod = "paid_api"
	MethodNone     FetchMethod = ""
)

// CrawlOutcome is what one crawl of one careers page hands back to the
// caller. Candidates may be empty without the crawl having failed; the
// NoJobsDetected flag tells those two cases apart. PageText carries the
// stripped page text so the caller can run an AI extraction fallback when
// structural classification came up empty.
type CrawlOutcome struct {
	Company        string
	RequestedURL   string
	FinalURL       string
	Method         FetchMethod
	Candidates     []JobCandidate
	Patterns       []PatternTag
	NoJobsDetected bool
	PageText       string
	FetchedBytes   int
}
