package db

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/ironforge/gym-membership/internal/core/ports"
	"github.com/sirupsen/logrus"
)

var identifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var sqlOps = map[ports.FilterOp]string{
	ports.OpEq:  "=",
	ports.OpNeq: "<>",
	ports.OpGt:  ">",
	ports.OpGte: ">=",
	ports.OpLt:  "<",
	ports.OpLte: "<=",
}

// Backend implements ports.Backend over postgres.
type Backend struct {
	db     *Database
	logger *logrus.Logger
}

// NewBackend creates a new postgres-backed query backend
func NewBackend(database *Database, logger *logrus.Logger) *Backend {
	return &Backend{db: database, logger: logger}
}

// QueryRows runs a filtered SELECT and returns each row as a column map
func (b *Backend) QueryRows(ctx context.Context, table string, filters []ports.Filter, order *ports.Ordering, limit int) ([]ports.Record, error) {
	query, args, err := buildSelect(table, filters, order, limit)
	if err != nil {
		return nil, err
	}

	rows, err := b.db.DB.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	records := make([]ports.Record, 0)
	for rows.Next() {
		rec := make(map[string]any)
		if err := rows.MapScan(rec); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", table, err)
	}

	if b.logger != nil {
		b.logger.WithFields(logrus.Fields{"table": table, "filters": len(filters), "rows": len(records)}).Debug("backend query")
	}
	return records, nil
}

// UpdateRow sets fields on the row matching key
func (b *Backend) UpdateRow(ctx context.Context, table string, key ports.RowKey, fields map[string]any) error {
	query, args, err := buildUpdate(table, key, fields)
	if err != nil {
		return err
	}

	result, err := b.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s row with %s %v not found", table, key.Column, key.Value)
	}

	return nil
}

func checkIdent(name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

func buildSelect(table string, filters []ports.Filter, order *ports.Ordering, limit int) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	var sb strings.Builder
	args := make([]any, 0, len(filters)+1)
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(table)

	for i, f := range filters {
		if err := checkIdent(f.Column); err != nil {
			return "", nil, err
		}
		op, ok := sqlOps[f.Op]
		if !ok {
			return "", nil, fmt.Errorf("unsupported filter operator %q", f.Op)
		}
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, f.Value)
		fmt.Fprintf(&sb, "%s %s $%d", f.Column, op, len(args))
	}

	if order != nil {
		if err := checkIdent(order.Column); err != nil {
			return "", nil, err
		}
		dir := "ASC"
		if order.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", order.Column, dir)
	}

	if limit > 0 {
		args = append(args, limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	return sb.String(), args, nil
}

// buildUpdate orders SET columns by name so the statement text is stable.
func buildUpdate(table string, key ports.RowKey, fields map[string]any) (string, []any, error) {
	if err := checkIdent(table); err != nil {
		return "", nil, err
	}
	if err := checkIdent(key.Column); err != nil {
		return "", nil, err
	}
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("no fields to update")
	}
	cols := make([]string, 0, len(fields))
	for c := range fields {
		if err := checkIdent(c); err != nil {
			return "", nil, err
		}
		cols = append(cols, c)
	}
	slices.Sort(cols)

	args := make([]any, 0, len(cols)+1)
	sets := make([]string, 0, len(cols))
	for _, c := range cols {
		args = append(args, fields[c])
		sets = append(sets, fmt.Sprintf("%s = $%d", c, len(args)))
	}
	args = append(args, key.Value)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d", table, strings.Join(sets, ", "), key.Column, len(args))
	return query, args, nil
}

var _ ports.Backend = (*Backend)(nil)
