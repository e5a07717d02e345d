package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// Install downloads the playwright driver and a chromium build if they are
// missing. A file lock serializes concurrent processes; the download is not
// safe to race.
func Install() error {
	lockPath := filepath.Join(os.TempDir(), "leadscout-playwright-install.lock")
	fl := flock.New(lockPath)
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("install lock: %w", err)
	}
	defer fl.Unlock()

	return playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
}

// Launcher owns the playwright runtime. One Launcher serves many sessions.
type Launcher struct {
	pw  *playwright.Playwright
	ua  string
	log *zap.SugaredLogger
}

func NewLauncher(log *zap.SugaredLogger, userAgent string) (*Launcher, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	return &Launcher{pw: pw, ua: userAgent, log: log}, nil
}

func (l *Launcher) Close() {
	if l == nil || l.pw == nil {
		return
	}
	_ = l.pw.Stop()
}

// Session is one crawl's browser instance plus its single page. Sessions are
// never shared across concurrent crawls; each worker launches and tears down
// its own.
type Session struct {
	browser playwright.Browser
	page    playwright.Page
	log     *zap.SugaredLogger
}

func (l *Launcher) NewSession() (*Session, error) {
	br, err := l.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	page, err := br.NewPage(playwright.BrowserNewPageOptions{
		UserAgent: playwright.String(l.ua),
	})
	if err != nil {
		_ = br.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}

	return &Session{browser: br, page: page, log: l.log}, nil
}

// Navigate loads url and waits for the network to go idle, up to timeout.
func (s *Session) Navigate(url string, timeout time.Duration) error {
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("goto %s: %w", url, err)
	}
	return nil
}

func (s *Session) Page() playwright.Page {
	if s == nil {
		return nil
	}
	return s.page
}

// Navigated reports whether the page holds a loaded document. A navigation
// that timed out waiting for network idle may still have rendered plenty.
func (s *Session) Navigated() bool {
	if s == nil || s.page == nil {
		return false
	}
	u := s.page.URL()
	return u != "" && u != "about:blank"
}

func (s *Session) Close() {
	if s == nil {
		return
	}
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.browser != nil {
		_ = s.browser.Close()
	}
}
