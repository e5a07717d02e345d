package telemetry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadscout-engine/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db.Pool))

	var v int
	require.NoError(t, db.Pool.QueryRow(`PRAGMA user_version;`).Scan(&v))
	assert.Equal(t, 1, v)
}

func TestRunRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	company := domain.Company{Name: "Acme", CareersURL: "https://acme.com/careers"}
	id, err := StartRun(ctx, db.Pool, "run-123", company)
	require.NoError(t, err)
	require.NotZero(t, id)

	out := domain.CrawlOutcome{
		Company:        "Acme",
		RequestedURL:   "https://acme.com/careers",
		FinalURL:       "https://acme.com/careers/openings",
		Method:         domain.MethodHeadless,
		Patterns:       []domain.PatternTag{domain.PatternAnchor, domain.PatternRedirect},
		NoJobsDetected: false,
		FetchedBytes:   4821,
		Candidates: []domain.JobCandidate{
			{Title: "Senior Engineer", URL: "https://acme.com/jobs/1", SourcePattern: domain.PatternAnchor},
			{Title: "Product Designer", URL: "https://acme.com/jobs/2", SourcePattern: domain.PatternAnchor},
		},
	}
	require.NoError(t, FinishRun(ctx, db.Pool, id, out, ""))
	require.NoError(t, InsertCandidates(ctx, db.Pool, id, out.Candidates))

	recs, err := ListRecentRuns(ctx, db.Pool, 10)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, id, r.ID)
	assert.Equal(t, "run-123", r.RunID)
	assert.Equal(t, "Acme", r.Company)
	assert.Equal(t, "https://acme.com/careers/openings", r.FinalURL)
	assert.Equal(t, "headless", r.Method)
	assert.Equal(t, []string{"anchor", "redirect"}, r.Patterns)
	assert.False(t, r.NoJobs)
	assert.Equal(t, 2, r.Candidates)
	assert.Equal(t, 4821, r.FetchedBytes)
	assert.Empty(t, r.Error)
	assert.False(t, r.StartedAt.IsZero())
	assert.False(t, r.FinishedAt.IsZero())

	var n int
	require.NoError(t, db.Pool.QueryRow(`SELECT COUNT(*) FROM candidates WHERE run_row = ?`, id).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestFinishRunRecordsFailure(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := StartRun(ctx, db.Pool, "run-err", domain.Company{Name: "Busted", CareersURL: "https://busted.example/careers"})
	require.NoError(t, err)

	out := domain.CrawlOutcome{Company: "Busted", RequestedURL: "https://busted.example/careers"}
	require.NoError(t, FinishRun(ctx, db.Pool, id, out, "fetch: all stages failed"))

	recs, err := ListRecentRuns(ctx, db.Pool, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "fetch: all stages failed", recs[0].Error)
	assert.Equal(t, "", recs[0].Method)
	assert.Empty(t, recs[0].Patterns)
}

func TestListRecentRunsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"First", "Second", "Third"} {
		_, err := StartRun(ctx, db.Pool, "run-order", domain.Company{Name: name, CareersURL: "https://x.example"})
		require.NoError(t, err)
	}

	recs, err := ListRecentRuns(ctx, db.Pool, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Third", recs[0].Company)
	assert.Equal(t, "Second", recs[1].Company)
}

func TestInsertCandidatesEmptyIsNoop(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, InsertCandidates(context.Background(), db.Pool, 1, nil))
}

func TestCleanupOldRunsKeepsFreshRows(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := StartRun(ctx, db.Pool, "run-fresh", domain.Company{Name: "Fresh", CareersURL: "https://fresh.example"})
	require.NoError(t, err)

	deleted, err := CleanupOldRuns(db.Pool)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	recs, err := ListRecentRuns(ctx, db.Pool, 10)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
