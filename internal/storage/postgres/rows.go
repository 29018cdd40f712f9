package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"yt_harvester/internal/domain"
)

// wireTime converts a wire timestamp to a nullable column value. "" is stored as NULL.
func wireTime(s string) (sql.NullTime, error) {
	if s == "" {
		return sql.NullTime{}, nil
	}
	t, err := time.Parse(domain.WireTimeFormat, s)
	if err != nil {
		return sql.NullTime{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}, nil
}

// rowExists reports whether table has a row with the given primary key.
// table is always a constant from this package.
func rowExists(ctx context.Context, q sqlx.QueryerContext, table, id string) (bool, error) {
	var found bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table)
	if err := sqlx.GetContext(ctx, q, &found, query, id); err != nil {
		return false, err
	}
	return found, nil
}

// existingIDs returns the subset of ids present in table.
func existingIDs(ctx context.Context, q sqlx.QueryerContext, table string, ids []string) (map[string]struct{}, error) {
	result := make(map[string]struct{})
	if len(ids) == 0 {
		return result, nil
	}

	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = ANY($1)`, table)

	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result[id] = struct{}{}
	}

	return result, rows.Err()
}
