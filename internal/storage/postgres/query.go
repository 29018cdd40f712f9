package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"yt_harvester/internal/domain"
)

// QueryExecutor runs literal read-only SQL and returns the result as a table.
type QueryExecutor struct {
	db *sqlx.DB
}

func NewQueryExecutor(db *sqlx.DB) *QueryExecutor {
	return &QueryExecutor{db: db}
}

func (e *QueryExecutor) Query(ctx context.Context, query string) (*domain.Table, error) {
	rows, err := e.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	table := &domain.Table{Columns: columns}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		for i, v := range values {
			// text and numeric columns arrive as bytes
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		table.Rows = append(table.Rows, values)
	}

	return table, rows.Err()
}
