// Package store persists analysis results. Two backends implement the
// same interface: PostgreSQL via pgx for shared deployments and SQLite
// via modernc for local single-user runs.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"github.com/sells-group/audit-cli/internal/config"
	"github.com/sells-group/audit-cli/internal/model"
)

// ResultFilter specifies criteria for listing stored results.
type ResultFilter struct {
	Grade    string `json:"grade,omitempty"`
	Industry string `json:"industry,omitempty"`
	MinScore int    `json:"min_score,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// ResultRecord is the stored row: flat columns for querying plus the
// full result document.
type ResultRecord struct {
	URL    string                `json:"url"`
	Result *model.AnalysisResult `json:"result"`
}

// Store defines the persistence interface for analysis results. Saving
// is keyed by URL: re-analyzing a site replaces its previous result.
type Store interface {
	SaveResult(ctx context.Context, result *model.AnalysisResult) error
	GetResult(ctx context.Context, url string) (*model.AnalysisResult, error)
	ListResults(ctx context.Context, filter ResultFilter) ([]ResultRecord, error)
	DeleteResult(ctx context.Context, url string) error

	Migrate(ctx context.Context) error
	Close() error
}

// Pool is the subset of pgxpool.Pool the postgres backend uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Open constructs the backend named by the configuration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	case "sqlite", "":
		return NewSQLite(cfg.SQLitePath)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
