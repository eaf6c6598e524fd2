package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/audit-cli/internal/model"
)

// PostgresStore implements Store using pgx.
type PostgresStore struct {
	pool Pool
}

// NewPostgres connects to PostgreSQL and configures the pool.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS analysis_results (
	url          TEXT PRIMARY KEY,
	run_id       TEXT NOT NULL,
	company_name TEXT,
	industry     TEXT,
	grade        TEXT NOT NULL,
	score        DOUBLE PRECISION NOT NULL,
	email        TEXT,
	phone        TEXT,
	total_cost   DOUBLE PRECISION NOT NULL DEFAULT 0,
	result       JSONB NOT NULL,
	analyzed_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_results_grade ON analysis_results(grade);
CREATE INDEX IF NOT EXISTS idx_results_industry ON analysis_results(industry);
CREATE INDEX IF NOT EXISTS idx_results_score ON analysis_results(score);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// SaveResult upserts by URL, so re-analyzing a site replaces the stored
// row in place.
func (s *PostgresStore) SaveResult(ctx context.Context, result *model.AnalysisResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	query, args, err := sq.Insert("analysis_results").
		Columns("url", "run_id", "company_name", "industry", "grade", "score",
			"email", "phone", "total_cost", "result", "analyzed_at").
		Values(result.URL, result.RunID, companyNameOf(result),
			industryOf(result), result.Score.Grade, result.Score.Score,
			emailOf(result), phoneOf(result), result.Cost.TotalCost,
			resultJSON, result.StartedAt.UTC()).
		Suffix(`ON CONFLICT (url) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			company_name = EXCLUDED.company_name,
			industry = EXCLUDED.industry,
			grade = EXCLUDED.grade,
			score = EXCLUDED.score,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			total_cost = EXCLUDED.total_cost,
			result = EXCLUDED.result,
			analyzed_at = EXCLUDED.analyzed_at`).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return eris.Wrap(err, "postgres: build upsert")
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return eris.Wrapf(err, "postgres: save result %s", result.URL)
	}
	return nil
}

// GetResult returns the stored result for a URL, or nil when none exists.
func (s *PostgresStore) GetResult(ctx context.Context, url string) (*model.AnalysisResult, error) {
	var resultJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT result FROM analysis_results WHERE url = $1`, url,
	).Scan(&resultJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get result %s", url)
	}

	var result model.AnalysisResult
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal result")
	}
	return &result, nil
}

func (s *PostgresStore) ListResults(ctx context.Context, filter ResultFilter) ([]ResultRecord, error) {
	builder := sq.Select("url", "result").
		From("analysis_results").
		OrderBy("analyzed_at DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.Grade != "" {
		builder = builder.Where(sq.Eq{"grade": filter.Grade})
	}
	if filter.Industry != "" {
		builder = builder.Where(sq.Eq{"industry": filter.Industry})
	}
	if filter.MinScore > 0 {
		builder = builder.Where(sq.GtOrEq{"score": filter.MinScore})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	builder = builder.Limit(uint64(limit))
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, eris.Wrap(err, "postgres: build list query")
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list results")
	}
	defer rows.Close()

	var records []ResultRecord
	for rows.Next() {
		var rec ResultRecord
		var resultJSON []byte
		if err := rows.Scan(&rec.URL, &resultJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan result row")
		}
		rec.Result = &model.AnalysisResult{}
		if err := json.Unmarshal(resultJSON, rec.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result row")
		}
		records = append(records, rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list results iterate")
}

func (s *PostgresStore) DeleteResult(ctx context.Context, url string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM analysis_results WHERE url = $1`, url)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete result %s", url)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: result not found: %s", url)
	}
	return nil
}

// flat-column helpers; the nested fields are all optional

func companyNameOf(result *model.AnalysisResult) string {
	if result.Profile.CompanyInfo == nil {
		return ""
	}
	return result.Profile.CompanyInfo.Name
}

func industryOf(result *model.AnalysisResult) string {
	if result.Industry == nil {
		return ""
	}
	return result.Industry.Category
}

func emailOf(result *model.AnalysisResult) string {
	if result.Contact == nil {
		return ""
	}
	return result.Contact.Email
}

func phoneOf(result *model.AnalysisResult) string {
	if result.Contact == nil {
		return ""
	}
	return result.Contact.Phone
}
