package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// TableStat describes one table of the application schema.
type TableStat struct {
	Name      string `db:"table_name" json:"table_name"`
	Rows      int64  `db:"table_rows" json:"rows"`
	SizeBytes int64  `db:"size_bytes" json:"size_bytes"`
}

// SystemRepo reports on the database itself for the admin health page.
type SystemRepo struct{ db *sqlx.DB }

func NewSystemRepo(db *sqlx.DB) *SystemRepo { return &SystemRepo{db: db} }

// Ping checks connectivity and returns the round-trip time.
func (r *SystemRepo) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := r.db.PingContext(ctx); err != nil {
		return 0, fmt.Errorf("ping: %w", err)
	}
	return time.Since(start), nil
}

// TableStats lists the tables of the current schema, largest first.  Row
// counts are InnoDB estimates.
func (r *SystemRepo) TableStats(ctx context.Context) ([]TableStat, error) {
	out := []TableStat{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT TABLE_NAME AS table_name,
		       COALESCE(TABLE_ROWS, 0) AS table_rows,
		       COALESCE(DATA_LENGTH, 0) + COALESCE(INDEX_LENGTH, 0) AS size_bytes
		FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = DATABASE()
		ORDER BY size_bytes DESC`)
	if err != nil {
		return nil, fmt.Errorf("table stats: %w", err)
	}
	return out, nil
}
