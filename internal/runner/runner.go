// Package runner fans a company list out over a bounded pool of crawl
// workers and owns everything around a crawl that is not the crawl itself:
// careers-URL discovery, browser session lifecycle, the AI fallback, run
// telemetry and progress events.
package runner

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"leadscout-engine/internal/aiextract"
	"leadscout-engine/internal/config"
	"leadscout-engine/internal/crawl"
	"leadscout-engine/internal/crawl/assemble"
	"leadscout-engine/internal/crawl/browser"
	"leadscout-engine/internal/discover"
	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/events"
	"leadscout-engine/internal/telemetry"
)

// Deps collects the runner's collaborators. Everything except Crawler is
// optional: a nil Launcher crawls without a browser, a nil Extractor skips
// the AI fallback, nil DB and Hub drop telemetry and events.
type Deps struct {
	Crawler   *crawl.Crawler
	Launcher  *browser.Launcher
	Finder    *discover.Finder
	Extractor *aiextract.Extractor
	DB        *telemetry.DB
	Hub       *events.Hub
}

// Result is the outcome of one company's crawl.
type Result struct {
	Company domain.Company
	Outcome domain.CrawlOutcome
	Err     error
}

// Summary aggregates one full run.
type Summary struct {
	RunID      string
	Results    []Result
	Candidates int
	NoJobs     int
	Failures   int
	Elapsed    time.Duration
}

// Status is a point-in-time snapshot of a run's progress.
type Status struct {
	Running    bool
	RunID      string
	Total      int
	Done       int
	Candidates int
	Failures   int
	StartedAt  time.Time
	FinishedAt time.Time
}

type Runner struct {
	cfg  config.Config
	deps Deps
	log  *zap.SugaredLogger

	status atomic.Value // Status
}

func New(log *zap.SugaredLogger, cfg config.Config, deps Deps) *Runner {
	r := &Runner{cfg: cfg, deps: deps, log: log}
	r.status.Store(Status{})
	return r
}

// Status returns the latest progress snapshot.
func (r *Runner) Status() Status {
	return r.status.Load().(Status)
}

// Run crawls every company and returns the per-company results in input
// order. Individual crawl failures land in their Result; the returned error
// is only ever the context's.
func (r *Runner) Run(ctx context.Context, companies []domain.Company) (Summary, error) {
	runID := uuid.NewString()
	started := time.Now()

	workers := r.cfg.App.Workers
	if workers <= 0 {
		workers = 1
	}

	var done, candidates, failures atomic.Int64
	r.status.Store(Status{Running: true, RunID: runID, Total: len(companies), StartedAt: started})

	results := make([]Result, len(companies))

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, co := range companies {
		i, co := i, co
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = Result{Company: co, Err: ctx.Err()}
				return nil
			}

			res := r.crawlOne(ctx, runID, co)
			results[i] = res

			candidates.Add(int64(len(res.Outcome.Candidates)))
			if res.Err != nil {
				failures.Add(1)
			}
			r.status.Store(Status{
				Running:    true,
				RunID:      runID,
				Total:      len(companies),
				Done:       int(done.Add(1)),
				Candidates: int(candidates.Load()),
				Failures:   int(failures.Load()),
				StartedAt:  started,
			})
			return nil
		})
	}
	_ = g.Wait()

	sum := Summary{
		RunID:      runID,
		Results:    results,
		Candidates: int(candidates.Load()),
		Failures:   int(failures.Load()),
		Elapsed:    time.Since(started),
	}
	for _, res := range results {
		if res.Outcome.NoJobsDetected {
			sum.NoJobs++
		}
	}

	r.status.Store(Status{
		Running:    false,
		RunID:      runID,
		Total:      len(companies),
		Done:       int(done.Load()),
		Candidates: sum.Candidates,
		Failures:   sum.Failures,
		StartedAt:  started,
		FinishedAt: time.Now(),
	})

	return sum, ctx.Err()
}

func (r *Runner) crawlOne(ctx context.Context, runID string, co domain.Company) Result {
	log := r.log.With("company", co.Name)
	r.publish(events.CrawlStarted(runID, co.Name, co.CareersURL))

	if strings.TrimSpace(co.CareersURL) == "" {
		url, err := r.discoverURL(ctx, co)
		if err != nil {
			log.Warnw("careers url discovery failed", "err", err)
			r.finishRun(ctx, r.startRun(ctx, runID, co), domain.CrawlOutcome{Company: co.Name}, err)
			r.publish(events.CrawlFinished(runID, co.Name, 0, false, err.Error()))
			return Result{Company: co, Err: err}
		}
		co.CareersURL = url
		log.Infow("careers url discovered", "url", url)
	}

	row := r.startRun(ctx, runID, co)

	var sess *browser.Session
	if r.deps.Launcher != nil {
		s, err := r.deps.Launcher.NewSession()
		if err != nil {
			log.Warnw("browser session failed, crawling static", "err", err)
		} else {
			sess = s
			defer sess.Close()
		}
	}

	out, err := r.deps.Crawler.Crawl(ctx, co, sess)
	r.publish(events.FetchDone(runID, co.Name, out.FinalURL, string(out.Method), out.FetchedBytes))

	if err == nil {
		r.maybeExtractWithAI(ctx, co, &out, log)
	}

	r.publish(events.CandidatesFound(runID, co.Name, len(out.Candidates)))
	r.finishRun(ctx, row, out, err)

	errMsg := ""
	if err != nil {
		errMsg = err.Error()
	}
	r.publish(events.CrawlFinished(runID, co.Name, len(out.Candidates), out.NoJobsDetected, errMsg))

	return Result{Company: co, Outcome: out, Err: err}
}

// maybeExtractWithAI runs the model fallback when structural extraction came
// up empty on a page that did not say it has no openings.
func (r *Runner) maybeExtractWithAI(ctx context.Context, co domain.Company, out *domain.CrawlOutcome, log *zap.SugaredLogger) {
	if r.deps.Extractor == nil || !r.cfg.AI.Enabled {
		return
	}
	if len(out.Candidates) > 0 || out.NoJobsDetected || strings.TrimSpace(out.PageText) == "" {
		return
	}

	cands, err := r.deps.Extractor.Extract(ctx, co.Name, out.FinalURL, out.PageText)
	if err != nil {
		log.Warnw("ai extraction failed", "err", err)
		return
	}
	if len(cands) == 0 {
		return
	}

	out.Candidates = assemble.Assemble(out.FinalURL, cands, r.cfg.App.MaxJobs)
	out.Patterns = appendPattern(out.Patterns, domain.PatternAIFallback)
	log.Infow("ai extraction recovered candidates", "count", len(out.Candidates))
}

func (r *Runner) discoverURL(ctx context.Context, co domain.Company) (string, error) {
	if r.deps.Finder == nil {
		return "", errors.New("company has no careers url and discovery is off")
	}
	var db *sql.DB
	if r.deps.DB != nil {
		db = r.deps.DB.Pool
	}
	return r.deps.Finder.Discover(ctx, db, co)
}

// startRun opens the telemetry row for a crawl; returns 0 when there is no
// run log.
func (r *Runner) startRun(ctx context.Context, runID string, co domain.Company) int64 {
	if r.deps.DB == nil {
		return 0
	}
	id, err := telemetry.StartRun(ctx, r.deps.DB.Pool, runID, co)
	if err != nil {
		r.log.Warnw("telemetry start failed", "company", co.Name, "err", err)
		return 0
	}
	return id
}

func (r *Runner) finishRun(ctx context.Context, row int64, out domain.CrawlOutcome, crawlErr error) {
	if r.deps.DB == nil || row == 0 {
		return
	}
	errMsg := ""
	if crawlErr != nil {
		errMsg = crawlErr.Error()
	}
	if err := telemetry.FinishRun(ctx, r.deps.DB.Pool, row, out, errMsg); err != nil {
		r.log.Warnw("telemetry finish failed", "err", err)
		return
	}
	if err := telemetry.InsertCandidates(ctx, r.deps.DB.Pool, row, out.Candidates); err != nil {
		r.log.Warnw("telemetry candidates failed", "err", err)
	}
}

func (r *Runner) publish(evt events.Event) {
	if r.deps.Hub != nil {
		r.deps.Hub.Publish(evt)
	}
}

func appendPattern(tags []domain.PatternTag, tag domain.PatternTag) []domain.PatternTag {
	for _, t := range tags {
		if t == tag {
			return tags
		}
	}
	tags = append(tags, tag)
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
