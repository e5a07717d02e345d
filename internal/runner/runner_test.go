package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"leadscout-engine/internal/aiextract"
	"leadscout-engine/internal/config"
	"leadscout-engine/internal/crawl"
	"leadscout-engine/internal/crawl/util"
	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/events"
	"leadscout-engine/internal/telemetry"
)

func testConfig(mutate func(*config.Config)) config.Config {
	cfg := config.Default()
	cfg.Fetch.HTTPTimeoutSeconds = 5
	cfg.Fetch.HostReqPerSec = 1000
	cfg.Fetch.HostBurst = 1000
	cfg.AI.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}
	return cfg
}

func testRunner(t *testing.T, cfg config.Config, deps Deps) *Runner {
	t.Helper()
	log := zap.NewNop().Sugar()
	if deps.Crawler == nil {
		limiter := util.NewHostLimiter(cfg.Fetch.HostReqPerSec, cfg.Fetch.HostBurst)
		deps.Crawler = crawl.New(log, cfg, limiter, "")
	}
	return New(log, cfg, deps)
}

func openTestDB(t *testing.T) *telemetry.DB {
	t.Helper()
	db, err := telemetry.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, telemetry.Migrate(db.Pool))
	return db
}

// careersPage pads a body with enough prose to clear the content threshold.
func careersPage(body string) string {
	filler := strings.Repeat("<p>We build careful software for careful people. </p>\n", 20)
	return fmt.Sprintf("<html><body>%s\n%s</body></html>", body, filler)
}

// collectEvents drains a hub subscription in the background; the returned
// func stops collection and hands back everything received.
func collectEvents(hub *events.Hub) func() []events.Event {
	ch := hub.Subscribe()
	var mu sync.Mutex
	var got []events.Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		for evt := range ch {
			mu.Lock()
			got = append(got, evt)
			mu.Unlock()
		}
	}()
	return func() []events.Event {
		hub.Unsubscribe(ch)
		<-done
		mu.Lock()
		defer mu.Unlock()
		return got
	}
}

func TestRunCrawlsEveryCompany(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, careersPage(`
			<a href="https://boards.greenhouse.io/acme/jobs/4001">Backend Engineer</a>
			<a href="https://boards.greenhouse.io/acme/jobs/4002">Data Scientist</a>`))
	}))
	defer srv.Close()

	db := openTestDB(t)
	hub := events.NewHub()
	drain := collectEvents(hub)

	r := testRunner(t, testConfig(nil), Deps{DB: db, Hub: hub})
	companies := []domain.Company{
		{Name: "Acme", CareersURL: srv.URL},
		{Name: "Globex", CareersURL: srv.URL},
		{Name: "Initech", CareersURL: srv.URL},
	}

	sum, err := r.Run(context.Background(), companies)
	require.NoError(t, err)
	require.Len(t, sum.Results, 3)

	for i, res := range sum.Results {
		assert.Equal(t, companies[i].Name, res.Company.Name)
		require.NoError(t, res.Err)
		assert.Len(t, res.Outcome.Candidates, 2)
	}
	assert.Equal(t, 6, sum.Candidates)
	assert.Zero(t, sum.Failures)
	assert.NotEmpty(t, sum.RunID)

	// run log has one row per company with candidates attached
	recs, err := telemetry.ListRecentRuns(context.Background(), db.Pool, 10)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.Equal(t, sum.RunID, rec.RunID)
		assert.Equal(t, 2, rec.Candidates)
		assert.Equal(t, "http", rec.Method)
	}

	got := drain()
	byType := map[events.Type]int{}
	for _, evt := range got {
		byType[evt.Type]++
	}
	assert.Equal(t, 3, byType[events.TypeCrawlStarted])
	assert.Equal(t, 3, byType[events.TypeCrawlFinished])

	st := r.Status()
	assert.False(t, st.Running)
	assert.Equal(t, 3, st.Done)
	assert.Equal(t, 6, st.Candidates)
}

func TestRunBoundsWorkerConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		inFlight.Add(-1)
		fmt.Fprint(w, careersPage(`<a href="/jobs/opening-12345">Engineer</a>`))
	}))
	defer srv.Close()

	cfg := testConfig(func(c *config.Config) { c.App.Workers = 2 })
	r := testRunner(t, cfg, Deps{})

	var companies []domain.Company
	for i := 0; i < 6; i++ {
		companies = append(companies, domain.Company{Name: fmt.Sprintf("Co%d", i), CareersURL: srv.URL})
	}

	sum, err := r.Run(context.Background(), companies)
	require.NoError(t, err)
	assert.Zero(t, sum.Failures)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunRecordsCrawlFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "go away", http.StatusForbidden)
	}))
	defer srv.Close()

	db := openTestDB(t)
	r := testRunner(t, testConfig(nil), Deps{DB: db})

	sum, err := r.Run(context.Background(), []domain.Company{{Name: "Busted", CareersURL: srv.URL}})
	require.NoError(t, err)
	require.Len(t, sum.Results, 1)
	require.Error(t, sum.Results[0].Err)
	assert.Equal(t, 1, sum.Failures)

	recs, err := telemetry.ListRecentRuns(context.Background(), db.Pool, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.NotEmpty(t, recs[0].Error)
}

func TestRunSkipsCompaniesWithoutURLWhenDiscoveryOff(t *testing.T) {
	r := testRunner(t, testConfig(nil), Deps{})

	sum, err := r.Run(context.Background(), []domain.Company{{Name: "Mystery"}})
	require.NoError(t, err)
	require.Len(t, sum.Results, 1)
	require.Error(t, sum.Results[0].Err)
	assert.Contains(t, sum.Results[0].Err.Error(), "no careers url")
}

func modelReply(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-3-5-haiku-latest",
		"stop_reason": "end_turn",
		"usage":       map[string]int{"input_tokens": 1, "output_tokens": 1},
		"content":     []map[string]string{{"type": "text", "text": text}},
	})
	require.NoError(t, err)
}

func TestRunFallsBackToAIExtraction(t *testing.T) {
	// plenty of text, zero links, no listing heading: structural extraction
	// finds nothing and the page never claims to not be hiring
	pageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, careersPage(`<p>Acme is growing. Write to us about the Staff Engineer role.</p>`))
	}))
	defer pageSrv.Close()

	var modelCalls atomic.Int32
	modelSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		modelCalls.Add(1)
		modelReply(t, w, `{"jobs": [{"job_title": "Staff Engineer", "description": "Own hard problems.", "job_url": ""}]}`)
	}))
	defer modelSrv.Close()

	cfg := testConfig(func(c *config.Config) { c.AI.Enabled = true })
	ext := aiextract.New(zap.NewNop().Sugar(), "test-key", aiextract.Config{
		Model:        cfg.AI.Model,
		Timeout:      10 * time.Second,
		MaxTextChars: cfg.AI.MaxTextChars,
	}, option.WithBaseURL(modelSrv.URL))

	r := testRunner(t, cfg, Deps{Extractor: ext})

	sum, err := r.Run(context.Background(), []domain.Company{{Name: "Acme", CareersURL: pageSrv.URL}})
	require.NoError(t, err)
	require.Len(t, sum.Results, 1)

	out := sum.Results[0].Outcome
	require.NoError(t, sum.Results[0].Err)
	require.Len(t, out.Candidates, 1)
	assert.Equal(t, "Staff Engineer", out.Candidates[0].Title)
	assert.Equal(t, out.FinalURL, out.Candidates[0].URL)
	assert.Equal(t, domain.PatternAIFallback, out.Candidates[0].SourcePattern)
	assert.Contains(t, out.Patterns, domain.PatternAIFallback)
	assert.Equal(t, int32(1), modelCalls.Load())
}

func TestRunNoJobsPageSkipsAIFallback(t *testing.T) {
	pageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>We have no current openings. Check back later!</p></body></html>`)
	}))
	defer pageSrv.Close()

	var modelCalls atomic.Int32
	modelSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		modelCalls.Add(1)
		modelReply(t, w, `{"jobs": []}`)
	}))
	defer modelSrv.Close()

	cfg := testConfig(func(c *config.Config) { c.AI.Enabled = true })
	ext := aiextract.New(zap.NewNop().Sugar(), "test-key", aiextract.Config{Model: cfg.AI.Model}, option.WithBaseURL(modelSrv.URL))

	r := testRunner(t, cfg, Deps{Extractor: ext})

	sum, err := r.Run(context.Background(), []domain.Company{{Name: "Quiet", CareersURL: pageSrv.URL}})
	require.NoError(t, err)
	require.Len(t, sum.Results, 1)
	assert.True(t, sum.Results[0].Outcome.NoJobsDetected)
	assert.Empty(t, sum.Results[0].Outcome.Candidates)
	assert.Equal(t, int32(0), modelCalls.Load())
	assert.Equal(t, 1, sum.NoJobs)
}

func TestRunCanceledContextStopsEarly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, careersPage(""))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := testRunner(t, testConfig(nil), Deps{})
	sum, err := r.Run(ctx, []domain.Company{{Name: "Acme", CareersURL: srv.URL}})
	require.Error(t, err)
	require.Len(t, sum.Results, 1)
	assert.Error(t, sum.Results[0].Err)
}
