// Package crawl runs one careers page end to end: the fetch chain, the
// interaction engine, classification and assembly.
package crawl

import (
	"context"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"leadscout-engine/internal/config"
	"leadscout-engine/internal/crawl/assemble"
	"leadscout-engine/internal/crawl/browser"
	"leadscout-engine/internal/crawl/classify"
	"leadscout-engine/internal/crawl/fetch"
	"leadscout-engine/internal/crawl/interact"
	"leadscout-engine/internal/crawl/util"
	"leadscout-engine/internal/domain"
)

// Crawler turns careers URLs into job candidates. One Crawler is shared
// across workers; per-crawl state lives in the session values, never here.
type Crawler struct {
	cfg         config.Config
	httpStage   *fetch.HTTPStage
	renderStage *fetch.RenderAPIStage
	engine      *interact.Engine
	classifier  *classify.Classifier
	log         *zap.SugaredLogger
}

func New(log *zap.SugaredLogger, cfg config.Config, limiter *util.HostLimiter, renderToken string) *Crawler {
	var render *fetch.RenderAPIStage
	if cfg.Fetch.RenderAPI.Enabled && cfg.Fetch.RenderAPI.Endpoint != "" {
		render = fetch.NewRenderAPIStage(
			cfg.Fetch.RenderAPI.Endpoint,
			cfg.Fetch.RenderAPI.Zone,
			renderToken,
			time.Duration(cfg.Fetch.RenderAPI.TimeoutSeconds)*time.Second,
		)
	}

	return &Crawler{
		cfg: cfg,
		httpStage: fetch.NewHTTPStage(
			time.Duration(cfg.Fetch.HTTPTimeoutSeconds)*time.Second,
			cfg.Fetch.UserAgent,
			limiter,
		),
		renderStage: render,
		engine: interact.New(log, interact.Options{
			NoJobsPhrases:   cfg.Interact.NoJobsPhrases,
			ExpandPhrases:   cfg.Interact.ExpandPhrases,
			MaxScrollRounds: cfg.Interact.MaxScrollRounds,
			MaxTabs:         cfg.Interact.MaxTabs,
			MaxIframes:      cfg.Interact.MaxIframes,
			Settle:          time.Duration(cfg.Interact.SettleMillis) * time.Millisecond,
			SelectorTimeout: time.Duration(cfg.Interact.SelectorTimeoutMillis) * time.Millisecond,
			ClickTimeout:    time.Duration(cfg.Interact.ClickTimeoutMillis) * time.Millisecond,
		}),
		classifier: classify.New(log, classify.Lexicon{
			JobPathPatterns:  cfg.Classify.JobPathPatterns,
			JobKeywords:      cfg.Classify.JobKeywords,
			ExclusionPhrases: cfg.Classify.ExclusionPhrases,
			ATSHosts:         cfg.Classify.ATSHosts,
			AggregatorHosts:  cfg.Classify.AggregatorHosts,
		}),
		log: log,
	}
}

// Crawl fetches, interacts with and classifies one careers page. sess may be
// nil when no browser is available; the crawl then degrades to static
// classification of whatever the fetch chain produced. The returned error
// reports total fetch failure, which is distinct from "no jobs found"; the
// outcome still carries any partial extraction.
func (c *Crawler) Crawl(ctx context.Context, company domain.Company, sess *browser.Session) (domain.CrawlOutcome, error) {
	requested := util.EnsureScheme(company.CareersURL)
	out := domain.CrawlOutcome{
		Company:      company.Name,
		RequestedURL: requested,
		FinalURL:     requested,
	}

	var stages []fetch.Stage
	stages = append(stages, c.httpStage)
	if sess != nil {
		stages = append(stages, fetch.NewHeadlessStage(c.log, sess, c.browserTimeout()))
	}
	if c.renderStage != nil {
		stages = append(stages, c.renderStage)
	}
	chain := fetch.NewChain(c.log, c.cfg.Fetch.MinContentBytes, stages...)

	res, fetchErr := chain.Fetch(ctx, requested)
	if fetchErr != nil {
		c.log.Warnw("all fetch stages failed",
			"company", company.Name, "url", requested, "err", fetchErr)
	}
	out.Method = res.Method
	out.FetchedBytes = res.ByteLength
	out.PageText = res.Content
	if res.URL != "" {
		out.FinalURL = res.URL
	}

	var (
		docs []classify.Page
		tags mapset.Set[domain.PatternTag]
	)
	if c.pageLive(sess, res.Method, out.FinalURL, company.Name) {
		isess := interact.NewSession(sess.Page(), requested)
		if err := c.engine.Run(ctx, isess); err != nil {
			return out, err
		}
		tags = isess.Patterns
		out.FinalURL = isess.FinalURL
		out.NoJobsDetected = isess.NoJobsDetected

		if html, err := sess.Page().Content(); err == nil {
			if text, terr := fetch.ExtractText(html); terr == nil && text != "" {
				out.PageText = text
			}
			docs = append(docs, classify.Page{BaseURL: isess.FinalURL, HTML: html})
		}
		for _, d := range isess.Docs() {
			docs = append(docs, classify.Page{BaseURL: d.BaseURL, HTML: d.HTML})
		}
	} else {
		tags = mapset.NewSet[domain.PatternTag]()
		if _, ok := interact.MatchNoJobs(out.PageText, c.noJobsPhrases()); ok {
			out.NoJobsDetected = true
			tags.Add(domain.PatternNoJobs)
		} else if res.HTML != "" {
			docs = append(docs, classify.Page{BaseURL: out.FinalURL, HTML: res.HTML})
		}
	}

	if out.NoJobsDetected {
		// An explicit no-hiring signal outranks a content-threshold
		// failure; tiny "we're not hiring" pages fail it routinely.
		out.Patterns = sortedTags(tags)
		return out, nil
	}

	cls := c.classifier.Classify(docs)
	for _, cand := range cls.Candidates {
		tags.Add(cand.SourcePattern)
	}
	if cls.EmailApply {
		tags.Add(domain.PatternEmailApply)
	}

	out.Candidates = assemble.Assemble(out.FinalURL, cls.Candidates, c.cfg.App.MaxJobs)
	out.Patterns = sortedTags(tags)
	return out, fetchErr
}

// pageLive reports whether the browser holds a usable rendered page,
// navigating it when a cheaper fetch stage won.
func (c *Crawler) pageLive(sess *browser.Session, method domain.FetchMethod, target, company string) bool {
	if sess == nil {
		return false
	}
	if method == domain.MethodHeadless && sess.Navigated() {
		return true
	}
	if err := sess.Navigate(target, c.browserTimeout()); err != nil {
		c.log.Debugw("browser navigation failed",
			"company", company, "url", target, "err", err)
		// a timed-out navigation may still have rendered plenty
		return sess.Navigated()
	}
	return true
}

func (c *Crawler) browserTimeout() time.Duration {
	return time.Duration(c.cfg.Fetch.BrowserTimeoutSeconds) * time.Second
}

func (c *Crawler) noJobsPhrases() []string {
	if len(c.cfg.Interact.NoJobsPhrases) > 0 {
		return c.cfg.Interact.NoJobsPhrases
	}
	return interact.DefaultNoJobsPhrases
}

func sortedTags(tags mapset.Set[domain.PatternTag]) []domain.PatternTag {
	if tags == nil || tags.Cardinality() == 0 {
		return nil
	}
	list := tags.ToSlice()
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}
