package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the pure go "sqlite" driver
)

const (
	driverSQLite   = "sqlite"
	driverPostgres = "pgx"
)

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// readSQL reads every row of the configured table. Cells are scanned as text
// and converted by the same rules as the CSV source, so NULL and "NA" both
// mean missing.
func (ld *loader) readSQL(ctx context.Context, driver, dsn string) ([]Record, error) {
	if !validIdentifier(ld.table) {
		return nil, fmt.Errorf("invalid table name %q", ld.table)
	}

	db, err := sqlOpen(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+ld.table)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", ld.table, err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[strings.ToLower(c)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var records []Record
	values := make([]sql.NullString, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w", ld.table, len(records)+1, err)
		}
		rec, err := recordFromCells(func(col string) string {
			i, ok := index[col]
			if !ok || !values[i].Valid {
				return ""
			}
			return strings.TrimSpace(values[i].String)
		})
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", ld.table, len(records)+1, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ld.logger.Debug("read sql table",
		zap.String("driver", driver),
		zap.String("table", ld.table),
		zap.Int("rows", len(records)))
	return records, nil
}

func validIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
