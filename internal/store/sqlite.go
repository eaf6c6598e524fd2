package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/audit-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode. Parent directories are created as needed.
func NewSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "sqlite: create dir %s", dir)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS analysis_results (
	url          TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL,
	company_name TEXT,
	industry     TEXT,
	grade        TEXT NOT NULL,
	score        REAL NOT NULL,
	email        TEXT,
	phone        TEXT,
	total_cost   REAL NOT NULL DEFAULT 0,
	result       TEXT NOT NULL,
	analyzed_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_grade ON analysis_results(grade);
CREATE INDEX IF NOT EXISTS idx_results_industry ON analysis_results(industry);
CREATE INDEX IF NOT EXISTS idx_results_score ON analysis_results(score);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveResult(ctx context.Context, result *model.AnalysisResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_results
			(url, run_id, company_name, industry, grade, score, email, phone, total_cost, result, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			run_id = excluded.run_id,
			company_name = excluded.company_name,
			industry = excluded.industry,
			grade = excluded.grade,
			score = excluded.score,
			email = excluded.email,
			phone = excluded.phone,
			total_cost = excluded.total_cost,
			result = excluded.result,
			analyzed_at = excluded.analyzed_at`,
		result.URL, result.RunID, companyNameOf(result),
		industryOf(result), result.Score.Grade, result.Score.Score,
		emailOf(result), phoneOf(result), result.Cost.TotalCost,
		string(resultJSON), result.StartedAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: save result %s", result.URL)
}

func (s *SQLiteStore) GetResult(ctx context.Context, url string) (*model.AnalysisResult, error) {
	var resultJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM analysis_results WHERE url = ?`, url,
	).Scan(&resultJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get result %s", url)
	}

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal result")
	}
	return &result, nil
}

func (s *SQLiteStore) ListResults(ctx context.Context, filter ResultFilter) ([]ResultRecord, error) {
	query := `SELECT url, result FROM analysis_results WHERE 1=1`
	var args []any

	if filter.Grade != "" {
		query += ` AND grade = ?`
		args = append(args, filter.Grade)
	}
	if filter.Industry != "" {
		query += ` AND industry = ?`
		args = append(args, filter.Industry)
	}
	if filter.MinScore > 0 {
		query += ` AND score >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY analyzed_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list results")
	}
	defer rows.Close()

	var records []ResultRecord
	for rows.Next() {
		var rec ResultRecord
		var resultJSON string
		if err := rows.Scan(&rec.URL, &resultJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result row")
		}
		rec.Result = &model.AnalysisResult{}
		if err := json.Unmarshal([]byte(resultJSON), rec.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result row")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list results iterate")
}

func (s *SQLiteStore) DeleteResult(ctx context.Context, url string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM analysis_results WHERE url = ?`, url)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete result %s", url)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: result not found: %s", url)
	}
	return nil
}
