package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ironforge/gym-membership/internal/core/ports"
	"github.com/shopspring/decimal"
)

// Backend is an in-process ports.Backend holding rows per table. Filters follow
// SQL semantics: a NULL or incomparable column never matches.
type Backend struct {
	mu     sync.Mutex
	tables map[string][]ports.Record

	queries int
	updates int

	// QueryHook, when set, runs before every query; a non-nil error fails it.
	QueryHook func(table string, filters []ports.Filter) error
	// UpdateHook, when set, runs before every update; a non-nil error fails it.
	UpdateHook func(table string, key ports.RowKey, fields map[string]any) error
}

func NewBackend() *Backend {
	return &Backend{tables: make(map[string][]ports.Record)}
}

// Insert appends a copy of rec to table.
func (b *Backend) Insert(table string, rec map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tables[table] = append(b.tables[table], maps.Clone(ports.Record(rec)))
}

// Rows returns copies of every row in table.
func (b *Backend) Rows(table string) []ports.Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ports.Record, 0, len(b.tables[table]))
	for _, r := range b.tables[table] {
		out = append(out, maps.Clone(r))
	}
	return out
}

// QueryCount returns how many queries have been served (including failed ones).
func (b *Backend) QueryCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queries
}

// UpdateCount returns how many updates have been attempted.
func (b *Backend) UpdateCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updates
}

func (b *Backend) QueryRows(ctx context.Context, table string, filters []ports.Filter, order *ports.Ordering, limit int) ([]ports.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queries++
	if b.QueryHook != nil {
		if err := b.QueryHook(table, filters); err != nil {
			return nil, err
		}
	}
	rows, ok := b.tables[table]
	if !ok {
		return nil, fmt.Errorf("table %s does not exist", table)
	}
	out := make([]ports.Record, 0)
	for _, r := range rows {
		if matchesAll(r, filters) {
			out = append(out, maps.Clone(r))
		}
	}
	if order != nil {
		sort.SliceStable(out, func(i, j int) bool {
			c, ok := compare(out[i][order.Column], out[j][order.Column])
			if !ok {
				return false
			}
			if order.Descending {
				return c > 0
			}
			return c < 0
		})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (b *Backend) UpdateRow(ctx context.Context, table string, key ports.RowKey, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates++
	if b.UpdateHook != nil {
		if err := b.UpdateHook(table, key, fields); err != nil {
			return err
		}
	}
	rows, ok := b.tables[table]
	if !ok {
		return fmt.Errorf("table %s does not exist", table)
	}
	updated := 0
	for _, r := range rows {
		if c, ok := compare(r[key.Column], key.Value); ok && c == 0 {
			maps.Copy(r, fields)
			updated++
		}
	}
	if updated == 0 {
		return fmt.Errorf("%s row with %s=%v not found", table, key.Column, key.Value)
	}
	return nil
}

func matchesAll(r ports.Record, filters []ports.Filter) bool {
	for _, f := range filters {
		c, ok := compare(r[f.Column], f.Value)
		if !ok {
			return false
		}
		var pass bool
		switch f.Op {
		case ports.OpEq:
			pass = c == 0
		case ports.OpNeq:
			pass = c != 0
		case ports.OpGt:
			pass = c > 0
		case ports.OpGte:
			pass = c >= 0
		case ports.OpLt:
			pass = c < 0
		case ports.OpLte:
			pass = c <= 0
		}
		if !pass {
			return false
		}
	}
	return true
}

// compare orders a against b. ok is false when either side is NULL or the
// types cannot be compared.
func compare(a, b any) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return av.Compare(bv), true
	case string:
		bv, ok := b.(string)
		if !ok {
			if s, isStringer := b.(fmt.Stringer); isStringer {
				bv = s.String()
			} else {
				return 0, false
			}
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		default:
			return 1, true
		}
	}
	ad, ok := toDecimal(a)
	if !ok {
		return 0, false
	}
	bd, ok := toDecimal(b)
	if !ok {
		return 0, false
	}
	return ad.Cmp(bd), true
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	default:
		return decimal.Decimal{}, false
	}
}

var _ ports.Backend = (*Backend)(nil)
