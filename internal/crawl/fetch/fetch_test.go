package fetch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"leadscout-engine/internal/domain"
)

type stubStage struct {
	method domain.FetchMethod
	pages  map[string]Page
	errs   map[string]error
	calls  []string
}

func (s *stubStage) Method() domain.FetchMethod { return s.method }

func (s *stubStage) Fetch(_ context.Context, rawURL string) (Page, error) {
	s.calls = append(s.calls, rawURL)
	if err, ok := s.errs[rawURL]; ok {
		return Page{}, err
	}
	if p, ok := s.pages[rawURL]; ok {
		return p, nil
	}
	return Page{}, errors.New("no route")
}

func longHTML(marker string) string {
	return fmt.Sprintf("<html><body><p>%s %s</p></body></html>",
		marker, strings.Repeat("open positions across teams ", 20))
}

func testChain(minBytes int, stages ...Stage) *Chain {
	return NewChain(zap.NewNop().Sugar(), minBytes, stages...)
}

func TestChainStopsAtFirstUsableStage(t *testing.T) {
	url := "https://acme.com/careers"
	httpStage := &stubStage{
		method: domain.MethodHTTP,
		pages:  map[string]Page{url: {FinalURL: url, HTML: longHTML("a")}},
	}
	headless := &stubStage{method: domain.MethodHeadless}

	res, err := testChain(50, httpStage, headless).Fetch(context.Background(), url)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, domain.MethodHTTP, res.Method)
	assert.Empty(t, headless.calls, "cheaper stage succeeded; expensive one must not run")
}

func TestChainSuccessImpliesMinimumContent(t *testing.T) {
	url := "https://acme.com/careers"
	tiny := Page{FinalURL: url, HTML: "<html><body><p>tiny</p></body></html>"}
	short := &stubStage{
		method: domain.MethodHTTP,
		pages: map[string]Page{
			url:                            tiny,
			"https://www.acme.com/careers": tiny,
		},
	}
	long := &stubStage{
		method: domain.MethodHeadless,
		pages:  map[string]Page{url: {FinalURL: url, HTML: longHTML("b")}},
	}

	res, err := testChain(50, short, long).Fetch(context.Background(), url)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, domain.MethodHeadless, res.Method)
	assert.GreaterOrEqual(t, res.ByteLength, 50)
}

func TestChainApexTimeoutFallsBackToWWWTwin(t *testing.T) {
	apex := "https://acme.com/careers"
	www := "https://www.acme.com/careers"

	httpStage := &stubStage{
		method: domain.MethodHTTP,
		errs:   map[string]error{apex: errors.New("timeout")},
		pages:  map[string]Page{www: {FinalURL: www, HTML: longHTML("c")}},
	}
	headless := &stubStage{method: domain.MethodHeadless}

	res, err := testChain(50, httpStage, headless).Fetch(context.Background(), apex)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, domain.MethodHTTP, res.Method, "twin succeeded within the http stage")
	assert.Equal(t, www, res.URL)
	assert.Empty(t, headless.calls)
}

func TestChainStripsWWWOnFailure(t *testing.T) {
	www := "https://www.acme.com/careers"
	apex := "https://acme.com/careers"

	httpStage := &stubStage{
		method: domain.MethodHTTP,
		errs:   map[string]error{www: errors.New("connection refused")},
		pages:  map[string]Page{apex: {FinalURL: apex, HTML: longHTML("d")}},
	}

	res, err := testChain(50, httpStage).Fetch(context.Background(), www)

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, apex, res.URL)
}

func TestChainTotalFailureKeepsPartialContent(t *testing.T) {
	url := "https://acme.com/careers"
	www := "https://www.acme.com/careers"

	shortPage := Page{FinalURL: url, HTML: "<html><body><p>we are acme, a small shop</p></body></html>"}
	httpStage := &stubStage{
		method: domain.MethodHTTP,
		pages:  map[string]Page{url: shortPage, www: shortPage},
	}
	headless := &stubStage{
		method: domain.MethodHeadless,
		errs: map[string]error{
			url: errors.New("browser crash"),
			www: errors.New("browser crash"),
		},
	}

	res, err := testChain(500, httpStage, headless).Fetch(context.Background(), url)

	require.Error(t, err)
	var allFailed *AllFailedError
	require.ErrorAs(t, err, &allFailed)
	assert.Len(t, allFailed.Stages, 2)
	assert.ErrorIs(t, allFailed.Stages[0], ErrContentTooShort)

	assert.False(t, res.Success)
	assert.Contains(t, res.Content, "small shop", "partial content survives total failure")
}

func TestWWWTwin(t *testing.T) {
	twin, ok := wwwTwin("https://acme.com/careers")
	assert.True(t, ok)
	assert.Equal(t, "https://www.acme.com/careers", twin)

	twin, ok = wwwTwin("https://www.acme.com/careers")
	assert.True(t, ok)
	assert.Equal(t, "https://acme.com/careers", twin)

	_, ok = wwwTwin("not-a-url")
	assert.False(t, ok)

	_, ok = wwwTwin("http://127.0.0.1:8080/careers")
	assert.False(t, ok)

	_, ok = wwwTwin("http://localhost:3000/careers")
	assert.False(t, ok)
}
