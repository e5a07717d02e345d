// Command engine crawls the configured companies' careers pages and reports
// every job posting link it can find. Results are printed as a summary
// table and recorded in a local sqlite file; -out additionally dumps the
// found jobs as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"leadscout-engine/internal/aiextract"
	"leadscout-engine/internal/config"
	"leadscout-engine/internal/crawl"
	"leadscout-engine/internal/crawl/browser"
	"leadscout-engine/internal/crawl/util"
	"leadscout-engine/internal/discover"
	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/events"
	"leadscout-engine/internal/runner"
	"leadscout-engine/internal/scheduler"
	"leadscout-engine/internal/secrets"
	"leadscout-engine/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	defaultData := os.Getenv("LEADSCOUT_DATA_DIR")
	if defaultData == "" {
		defaultData = "."
	}

	var (
		dataDir   = flag.String("data", defaultData, "directory holding config.yml and the telemetry database")
		companies = flag.String("companies", "", "companies yaml overriding the config list (default <data>/companies.yml)")
		debug     = flag.Bool("debug", false, "debug logging plus a live crawl event feed")
		every     = flag.Duration("every", 0, "rerun the crawl on this interval; 0 runs once")
		recent    = flag.Int("recent", 0, "print the last N recorded runs and exit")
		outPath   = flag.String("out", "", "write found jobs to this file as JSON")
	)
	flag.Parse()

	zlog, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger init failed:", err)
		os.Exit(1)
	}
	defer zlog.Sync()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		zlog.Fatalw("data dir unusable", "dir", *dataDir, "err", err)
	}

	cfgPath, err := config.EnsureUserConfig(*dataDir)
	if err != nil {
		zlog.Fatalw("config bootstrap failed", "err", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		zlog.Fatalw("config load failed", "path", cfgPath, "err", err)
	}

	companiesPath := *companies
	if companiesPath == "" {
		companiesPath = filepath.Join(*dataDir, "companies.yml")
	}
	if err := config.OverlayCompanies(&cfg, companiesPath); err != nil {
		zlog.Fatalw("companies file unreadable", "path", companiesPath, "err", err)
	}

	cfg, validation := config.NormalizeAndValidate(cfg)
	for _, w := range validation.Warnings {
		zlog.Warnw("config warning", "warning", w)
	}
	if !validation.OK() {
		for _, e := range validation.Errors {
			zlog.Errorw("config error", "error", e)
		}
		zlog.Fatalw("config invalid", "path", cfgPath)
	}

	db, err := telemetry.Open(filepath.Join(*dataDir, "leadscout.db"))
	if err != nil {
		zlog.Fatalw("telemetry open failed", "err", err)
	}
	defer db.Close()
	if err := telemetry.Migrate(db.Pool); err != nil {
		zlog.Fatalw("telemetry migrate failed", "err", err)
	}
	if n, err := telemetry.CleanupOldRuns(db.Pool); err != nil {
		zlog.Warnw("telemetry cleanup failed", "err", err)
	} else if n > 0 {
		zlog.Debugw("pruned old telemetry rows", "rows", n)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *recent > 0 {
		if err := printRecentRuns(ctx, db, *recent); err != nil {
			zlog.Fatalw("run history unavailable", "err", err)
		}
		return
	}

	targets := toDomainCompanies(cfg.Companies)
	if len(targets) == 0 {
		zlog.Fatalw("no companies configured", "config", cfgPath, "companies", companiesPath)
	}

	hub := events.NewHub()
	if *debug {
		ch := hub.Subscribe()
		defer hub.Unsubscribe(ch)
		go func() {
			for ev := range ch {
				zlog.Debugw("event",
					"type", ev.Type, "company", ev.Company, "url", ev.URL,
					"candidates", ev.Candidates, "err", ev.Error)
			}
		}()
	}

	launcher := newLauncher(zlog, cfg.Fetch.UserAgent)
	if launcher != nil {
		defer launcher.Close()
	}

	var extractor *aiextract.Extractor
	if cfg.AI.Enabled {
		if key := secrets.AnthropicAPIKey(); key != "" {
			extractor = aiextract.New(zlog, key, aiextract.Config{
				Model:        cfg.AI.Model,
				Timeout:      time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
				MaxTextChars: cfg.AI.MaxTextChars,
			})
		} else {
			zlog.Warnw("ai fallback enabled but no anthropic key configured, skipping it")
		}
	}

	limiter := util.NewHostLimiter(cfg.Fetch.HostReqPerSec, cfg.Fetch.HostBurst)
	run := runner.New(zlog, cfg, runner.Deps{
		Crawler:   crawl.New(zlog, cfg, limiter, secrets.RenderAPIToken()),
		Launcher:  launcher,
		Finder:    discover.New(zlog),
		Extractor: extractor,
		DB:        db,
		Hub:       hub,
	})

	crawlOnce := func(ctx context.Context) error {
		sum, err := run.Run(ctx, targets)
		printSummary(sum)
		if *outPath != "" {
			if werr := writeJobsFile(*outPath, sum); werr != nil {
				zlog.Errorw("jobs file write failed", "path", *outPath, "err", werr)
			} else {
				zlog.Infow("jobs written", "path", *outPath)
			}
		}
		return err
	}

	zlog.Infow("engine starting",
		"companies", len(targets), "workers", cfg.App.Workers,
		"browser", launcher != nil, "ai", extractor != nil, "data", *dataDir)

	if *every > 0 {
		scheduler.Every(ctx, zlog, *every, "crawl", crawlOnce)
		return
	}
	if err := crawlOnce(ctx); err != nil {
		zlog.Warnw("run interrupted", "err", err)
	}
}

// newLogger builds the console logger. Debug mode turns on colored levels
// and caller locations for interactive use.
func newLogger(debug bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableCaller = false
	}
	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}

// newLauncher installs the browser binaries and starts the shared headless
// browser. Any failure downgrades the whole run to static crawling.
func newLauncher(zlog *zap.SugaredLogger, userAgent string) *browser.Launcher {
	if err := browser.Install(); err != nil {
		zlog.Warnw("browser install failed, crawling static only", "err", err)
		return nil
	}
	l, err := browser.NewLauncher(zlog, userAgent)
	if err != nil {
		zlog.Warnw("browser launch failed, crawling static only", "err", err)
		return nil
	}
	return l
}

func toDomainCompanies(cs []config.Company) []domain.Company {
	out := make([]domain.Company, 0, len(cs))
	for _, c := range cs {
		out = append(out, domain.Company{
			Name:       c.Name,
			CareersURL: c.CareersURL,
			SiteDomain: c.Domain,
		})
	}
	return out
}

func printSummary(sum runner.Summary) {
	data := pterm.TableData{{"Company", "Method", "Jobs", "Fetched", "Status"}}
	for _, res := range sum.Results {
		method := string(res.Outcome.Method)
		if method == "" {
			method = "-"
		}
		status := pterm.Green("ok")
		switch {
		case res.Err != nil:
			status = pterm.Red(util.TruncateRunes(res.Err.Error(), 64))
		case res.Outcome.NoJobsDetected:
			status = pterm.Yellow("no jobs posted")
		case len(res.Outcome.Candidates) == 0:
			status = pterm.Yellow("nothing found")
		}
		data = append(data, []string{
			res.Company.Name,
			method,
			fmt.Sprint(len(res.Outcome.Candidates)),
			humanize.Bytes(uint64(res.Outcome.FetchedBytes)),
			status,
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	fmt.Printf("run %s: %s jobs across %d companies in %s (%d failed, %d with no openings)\n",
		shortRunID(sum.RunID),
		humanize.Comma(int64(sum.Candidates)),
		len(sum.Results),
		sum.Elapsed.Round(time.Millisecond),
		sum.Failures,
		sum.NoJobs,
	)
}

func printRecentRuns(ctx context.Context, db *telemetry.DB, limit int) error {
	recs, err := telemetry.ListRecentRuns(ctx, db.Pool, limit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		pterm.Info.Println("no recorded runs yet")
		return nil
	}
	data := pterm.TableData{{"Started", "Run", "Company", "Method", "Jobs", "Error"}}
	for _, rec := range recs {
		data = append(data, []string{
			rec.StartedAt.Local().Format("2006-01-02 15:04"),
			shortRunID(rec.RunID),
			rec.Company,
			rec.Method,
			fmt.Sprint(rec.Candidates),
			util.TruncateRunes(rec.Error, 64),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// writeJobsFile dumps every candidate found in the run, grouped by company.
func writeJobsFile(path string, sum runner.Summary) error {
	type job struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description,omitempty"`
		Source      string `json:"source"`
	}
	type companyJobs struct {
		Company string `json:"company"`
		URL     string `json:"url"`
		Jobs    []job  `json:"jobs"`
	}

	out := make([]companyJobs, 0, len(sum.Results))
	for _, res := range sum.Results {
		if len(res.Outcome.Candidates) == 0 {
			continue
		}
		cj := companyJobs{Company: res.Company.Name, URL: res.Outcome.FinalURL}
		for _, c := range res.Outcome.Candidates {
			cj.Jobs = append(cj.Jobs, job{
				Title:       c.Title,
				URL:         c.URL,
				Description: c.Description,
				Source:      string(c.SourcePattern),
			})
		}
		out = append(out, cj)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
