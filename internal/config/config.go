package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Company struct {
	Name       string `yaml:"name"`
	CareersURL string `yaml:"careers_url"`
	Domain     string `yaml:"domain"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
		Workers int    `yaml:"workers"`  // concurrent crawl sessions
		MaxJobs int    `yaml:"max_jobs"` // per-company candidate cap
	} `yaml:"app"`

	Fetch struct {
		HTTPTimeoutSeconds    int     `yaml:"http_timeout_seconds"`
		BrowserTimeoutSeconds int     `yaml:"browser_timeout_seconds"`
		MinContentBytes       int     `yaml:"min_content_bytes"`
		UserAgent             string  `yaml:"user_agent"`
		HostReqPerSec         float64 `yaml:"host_req_per_sec"`
		HostBurst             int     `yaml:"host_burst"`

		RenderAPI struct {
			Enabled        bool   `yaml:"enabled"`
			Endpoint       string `yaml:"endpoint"`
			Zone           string `yaml:"zone"`
			TimeoutSeconds int    `yaml:"timeout_seconds"`
		} `yaml:"render_api"`
	} `yaml:"fetch"`

	Interact struct {
		MaxScrollRounds       int `yaml:"max_scroll_rounds"`
		MaxTabs               int `yaml:"max_tabs"`
		MaxIframes            int `yaml:"max_iframes"`
		SettleMillis          int `yaml:"settle_millis"`
		SelectorTimeoutMillis int `yaml:"selector_timeout_millis"`
		ClickTimeoutMillis    int `yaml:"click_timeout_millis"`

		// Empty lists fall back to the built-in lexicons.
		NoJobsPhrases []string `yaml:"no_jobs_phrases"`
		ExpandPhrases []string `yaml:"expand_phrases"`
	} `yaml:"interact"`

	Classify struct {
		// Empty lists fall back to the built-in lexicons.
		JobPathPatterns  []string `yaml:"job_path_patterns"`
		JobKeywords      []string `yaml:"job_keywords"`
		ExclusionPhrases []string `yaml:"exclusion_phrases"`
		ATSHosts         []string `yaml:"ats_hosts"`
		AggregatorHosts  []string `yaml:"aggregator_hosts"`
	} `yaml:"classify"`

	AI struct {
		Enabled        bool   `yaml:"enabled"`
		Model          string `yaml:"model"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		MaxTextChars   int    `yaml:"max_text_chars"`
	} `yaml:"ai"`

	Companies []Company `yaml:"companies"`
}

// MaxJobsLimit is the hard ceiling on per-company output regardless of what
// the config asks for.
const MaxJobsLimit = 400

// Default returns the built-in configuration. Load unmarshals user yaml on
// top of it, so omitted keys keep these values.
func Default() Config {
	var cfg Config

	cfg.App.DataDir = "."
	cfg.App.Workers = 5
	cfg.App.MaxJobs = 100

	cfg.Fetch.HTTPTimeoutSeconds = 30
	cfg.Fetch.BrowserTimeoutSeconds = 90
	cfg.Fetch.MinContentBytes = 500
	cfg.Fetch.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
	cfg.Fetch.HostReqPerSec = 1
	cfg.Fetch.HostBurst = 3
	cfg.Fetch.RenderAPI.TimeoutSeconds = 60

	cfg.Interact.MaxScrollRounds = 5
	cfg.Interact.MaxTabs = 10
	cfg.Interact.MaxIframes = 3
	cfg.Interact.SettleMillis = 1500
	cfg.Interact.SelectorTimeoutMillis = 2000
	cfg.Interact.ClickTimeoutMillis = 5000

	cfg.AI.Enabled = true
	cfg.AI.Model = "claude-3-5-haiku-latest"
	cfg.AI.TimeoutSeconds = 60
	cfg.AI.MaxTextChars = 8000

	return cfg
}

func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
