package row

import (
	"github.com/jackc/pgx/v5"
)

type pgxRow struct {
	names      []string
	values     []any
	positioned bool
}

// FromPgx snapshots the record rows is currently positioned on. Call it only
// after rows.Next() returned true; otherwise the result is not positioned.
func FromPgx(rows pgx.Rows) Row {
	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}

	values, err := rows.Values()
	positioned := err == nil && len(fields) > 0 && len(values) == len(fields)
	return &pgxRow{names: names, values: values, positioned: positioned}
}

func (r *pgxRow) Positioned() bool        { return r.positioned }
func (r *pgxRow) ColumnCount() int        { return len(r.names) }
func (r *pgxRow) ColumnName(i int) string { return r.names[i] }
func (r *pgxRow) String(i int) string     { return toString(r.values[i]) }
func (r *pgxRow) Int(i int) int           { return toInt(r.values[i]) }
