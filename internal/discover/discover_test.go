package discover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/telemetry"
)

func testFinder() *Finder {
	return New(zap.NewNop().Sugar())
}

func TestCareerLinksFindsAnchorsThenCommonPaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/about">About us</a>
			<a href="/careers">Careers</a>
			<a href="/team">Join our team</a>
			<a href="mailto:hello@acme.com">Contact</a>
		</body></html>`))
	}))
	defer srv.Close()

	links, err := testFinder().CareerLinks(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, links, 5)

	assert.Equal(t, srv.URL+"/careers", links[0])
	assert.Equal(t, srv.URL+"/team", links[1])
	// well-known paths fill the rest, minus the /careers duplicate
	assert.Equal(t, []string{srv.URL + "/jobs", srv.URL + "/join-us", srv.URL + "/opportunities"}, links[2:])
}

func TestCareerLinksCapsOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/careers/eng">Engineering jobs</a>
			<a href="/careers/sales">Sales jobs</a>
			<a href="/careers/design">Design jobs</a>
			<a href="/careers/ops">Ops jobs</a>
			<a href="/careers/legal">Legal jobs</a>
			<a href="/careers/hr">HR jobs</a>
		</body></html>`))
	}))
	defer srv.Close()

	links, err := testFinder().CareerLinks(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, links, 5)
	assert.NotContains(t, links, srv.URL+"/careers/hr")
}

func TestCareerLinksHomepageFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testFinder().CareerLinks(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestCompanySiteSkipsBlockedHosts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "official+website")
		_, _ = w.Write([]byte(`<html><body>
			<a class="result__a" href="https://www.linkedin.com/company/acme">Acme | LinkedIn</a>
			<a class="result__a" href="https://boards.greenhouse.io/acme">Acme openings</a>
			<a class="result__a" href="/l/?uddg=https%3A%2F%2Fwww.acme.com%2F">Acme: Home</a>
		</body></html>`))
	}))
	defer srv.Close()

	f := testFinder()
	f.searchURL = srv.URL

	host, err := f.CompanySite(context.Background(), "Acme, Inc.")
	require.NoError(t, err)
	assert.Equal(t, "acme.com", host)
}

func TestCompanySiteNoUsableResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a class="result__a" href="https://www.indeed.com/cmp/acme">Acme hiring</a>
		</body></html>`))
	}))
	defer srv.Close()

	f := testFinder()
	f.searchURL = srv.URL

	host, err := f.CompanySite(context.Background(), "Acme")
	require.NoError(t, err)
	assert.Empty(t, host)
}

func TestDecodeDDGRedirect(t *testing.T) {
	assert.Equal(t, "https://www.acme.com/",
		decodeDDGRedirect("/l/?uddg=https%3A%2F%2Fwww.acme.com%2F"))
	assert.Equal(t, "https://acme.com/careers",
		decodeDDGRedirect("https://acme.com/careers"))
}

func TestSanitizeCompanyForSearch(t *testing.T) {
	assert.Equal(t, "Acme", sanitizeCompanyForSearch("Acme, Inc."))
	assert.Equal(t, "Globex", sanitizeCompanyForSearch("  Globex  LLC "))
	assert.Equal(t, "Initech", sanitizeCompanyForSearch("Initech"))
}

func TestDiscoverPrefersConfiguredCareersURL(t *testing.T) {
	got, err := testFinder().Discover(context.Background(), nil, domain.Company{
		Name:       "Acme",
		CareersURL: "https://acme.com/careers",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://acme.com/careers", got)
}

func TestDiscoverScansConfiguredSite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><a href="/careers">Careers at Acme</a></body></html>`))
	}))
	defer srv.Close()

	got, err := testFinder().Discover(context.Background(), nil, domain.Company{
		Name:       "Acme",
		SiteDomain: srv.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/careers", got)
}

func TestDiscoverUsesCachedDomain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><a href="/jobs">Open jobs</a></body></html>`))
	}))
	defer srv.Close()

	db, err := telemetry.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, telemetry.Migrate(db.Pool))

	ctx := context.Background()
	require.NoError(t, telemetry.UpsertCompanyDomain(ctx, db.Pool, "Acme", srv.URL))

	f := testFinder()
	f.searchURL = "http://127.0.0.1:0" // cache hit keeps search out of the flow

	got, err := f.Discover(ctx, db.Pool, domain.Company{Name: "Acme"})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/jobs", got)
}
