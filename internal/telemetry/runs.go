package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"leadscout-engine/internal/domain"
)

// RunRecord is one row of the runs table: a single company crawl inside an
// engine invocation.
type RunRecord struct {
	ID           int64
	RunID        string
	Company      string
	RequestedURL string
	FinalURL     string
	Method       string
	Patterns     []string
	NoJobs       bool
	Candidates   int
	FetchedBytes int
	Error        string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// StartRun inserts the row for a crawl that is about to begin and returns
// its id for the matching FinishRun call.
func StartRun(ctx context.Context, db *sql.DB, runID string, company domain.Company) (int64, error) {
	res, err := db.ExecContext(ctx, `
INSERT INTO runs(run_id, company, requested_url, started_at)
VALUES(?,?,?,?);`,
		runID, company.Name, company.CareersURL, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("telemetry start run: %w", err)
	}
	return res.LastInsertId()
}

// FinishRun fills in the outcome of a crawl started with StartRun. errMsg is
// empty for clean crawls.
func FinishRun(ctx context.Context, db *sql.DB, id int64, out domain.CrawlOutcome, errMsg string) error {
	patterns := make([]string, 0, len(out.Patterns))
	for _, p := range out.Patterns {
		patterns = append(patterns, string(p))
	}
	patternsB, _ := json.Marshal(patterns)

	_, err := db.ExecContext(ctx, `
UPDATE runs
SET final_url = ?, method = ?, patterns = ?, no_jobs = ?,
    candidate_count = ?, fetched_bytes = ?, error = ?, finished_at = ?
WHERE id = ?;`,
		out.FinalURL, string(out.Method), string(patternsB), boolInt(out.NoJobsDetected),
		len(out.Candidates), out.FetchedBytes, errMsg, time.Now().UTC().Format(time.RFC3339),
		id)
	if err != nil {
		return fmt.Errorf("telemetry finish run: %w", err)
	}
	return nil
}

// InsertCandidates records the assembled candidates of one crawl.
func InsertCandidates(ctx context.Context, db *sql.DB, runRow int64, cands []domain.JobCandidate) error {
	if len(cands) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("telemetry insert candidates: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO candidates(run_row, title, url, description, source_pattern)
VALUES(?,?,?,?,?);`)
	if err != nil {
		return fmt.Errorf("telemetry insert candidates: %w", err)
	}
	defer stmt.Close()

	for _, c := range cands {
		if _, err := stmt.ExecContext(ctx, runRow, c.Title, c.URL, c.Description, string(c.SourcePattern)); err != nil {
			return fmt.Errorf("telemetry insert candidates: %w", err)
		}
	}

	return tx.Commit()
}

// ListRecentRuns returns the newest crawl rows, newest first.
func ListRecentRuns(ctx context.Context, db *sql.DB, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.QueryContext(ctx, `
SELECT id, run_id, company, requested_url, final_url, method, patterns,
       no_jobs, candidate_count, fetched_bytes, error, started_at, finished_at
FROM runs
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, fmt.Errorf("telemetry list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			r          RunRecord
			patternsJS string
			noJobs     int
			startedAt  string
			finishedAt string
		)
		if err := rows.Scan(
			&r.ID, &r.RunID, &r.Company, &r.RequestedURL, &r.FinalURL, &r.Method,
			&patternsJS, &noJobs, &r.Candidates, &r.FetchedBytes, &r.Error,
			&startedAt, &finishedAt,
		); err != nil {
			return nil, fmt.Errorf("telemetry list runs: %w", err)
		}
		_ = json.Unmarshal([]byte(patternsJS), &r.Patterns)
		r.NoJobs = noJobs != 0
		r.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finishedAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("telemetry list runs: %w", err)
	}
	return out, nil
}

// CleanupOldRuns drops rows older than three months along with their
// candidates.
func CleanupOldRuns(db *sql.DB) (deleted int64, err error) {
	if _, err := db.Exec(`
DELETE FROM candidates
WHERE run_row IN (SELECT id FROM runs WHERE started_at < datetime('now', '-3 months'));
`); err != nil {
		return 0, fmt.Errorf("telemetry cleanup: %w", err)
	}

	res, err := db.Exec(`
DELETE FROM runs
WHERE started_at < datetime('now', '-3 months');
`)
	if err != nil {
		return 0, fmt.Errorf("telemetry cleanup: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
