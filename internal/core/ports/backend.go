package ports

import "context"

// Record is a single backend row keyed by column name.
type Record map[string]any

type FilterOp string

const (
	OpEq  FilterOp = "eq"
	OpNeq FilterOp = "neq"
	OpGt  FilterOp = "gt"
	OpGte FilterOp = "gte"
	OpLt  FilterOp = "lt"
	OpLte FilterOp = "lte"
)

// Filter restricts a query to rows where Column Op Value holds.
// A NULL column never satisfies a filter.
type Filter struct {
	Column string
	Op     FilterOp
	Value  any
}

func Eq(col string, v any) Filter  { return Filter{Column: col, Op: OpEq, Value: v} }
func Neq(col string, v any) Filter { return Filter{Column: col, Op: OpNeq, Value: v} }
func Gt(col string, v any) Filter  { return Filter{Column: col, Op: OpGt, Value: v} }
func Gte(col string, v any) Filter { return Filter{Column: col, Op: OpGte, Value: v} }
func Lt(col string, v any) Filter  { return Filter{Column: col, Op: OpLt, Value: v} }
func Lte(col string, v any) Filter { return Filter{Column: col, Op: OpLte, Value: v} }

type Ordering struct {
	Column     string
	Descending bool
}

// RowKey identifies the row an update applies to.
type RowKey struct {
	Column string
	Value  any
}

// Backend is the query/storage service the application reads member data from.
type Backend interface {
	// QueryRows returns rows of table matching every filter. A nil order leaves
	// ordering unspecified; limit <= 0 means no limit.
	QueryRows(ctx context.Context, table string, filters []Filter, order *Ordering, limit int) ([]Record, error)
	// UpdateRow sets fields on the row identified by key.
	UpdateRow(ctx context.Context, table string, key RowKey, fields map[string]any) error
}
