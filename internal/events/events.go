// Package events carries coarse crawl progress between the runner and
// whoever wants to watch it. Delivery is best-effort: slow subscribers lose
// events rather than stalling a crawl.
package events

import "time"

type Type string

const (
	TypeCrawlStarted    Type = "crawl_started"
	TypeFetchDone       Type = "fetch_done"
	TypeCandidatesFound Type = "candidates_found"
	TypeCrawlFinished   Type = "crawl_finished"
)

type Event struct {
	Type       Type      `json:"type"`
	At         time.Time `json:"at"`
	RunID      string    `json:"run_id"`
	Company    string    `json:"company"`
	URL        string    `json:"url,omitempty"`
	Method     string    `json:"method,omitempty"`
	Bytes      int       `json:"bytes,omitempty"`
	Candidates int       `json:"candidates,omitempty"`
	NoJobs     bool      `json:"no_jobs,omitempty"`
	Error      string    `json:"error,omitempty"`
}

func CrawlStarted(runID, company, url string) Event {
	return Event{Type: TypeCrawlStarted, At: time.Now().UTC(), RunID: runID, Company: company, URL: url}
}

func FetchDone(runID, company, url, method string, bytes int) Event {
	return Event{Type: TypeFetchDone, At: time.Now().UTC(), RunID: runID, Company: company, URL: url, Method: method, Bytes: bytes}
}

func CandidatesFound(runID, company string, n int) Event {
	return Event{Type: TypeCandidatesFound, At: time.Now().UTC(), RunID: runID, Company: company, Candidates: n}
}

func CrawlFinished(runID, company string, n int, noJobs bool, errMsg string) Event {
	return Event{Type: TypeCrawlFinished, At: time.Now().UTC(), RunID: runID, Company: company, Candidates: n, NoJobs: noJobs, Error: errMsg}
}
