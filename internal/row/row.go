// Package row maps App and Apk entities to and from generic named-column
// records, independent of the storage engine behind them.
package row

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrRowPosition is returned when a row is not positioned on a record.
var ErrRowPosition = errors.New("row is not positioned on a valid record")

// Row is a read-only view of one record from a column store.
type Row interface {
	Positioned() bool
	ColumnCount() int
	ColumnName(i int) string
	String(i int) string
	Int(i int) int
}

// Values is one record to be written, keyed by column name.
type Values map[string]any

// Keys returns the column names in sorted order.
func (v Values) Keys() []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge copies other on top of v and returns v.
func (v Values) Merge(other Values) Values {
	for k, val := range other {
		v[k] = val
	}
	return v
}

type valuesRow struct {
	names  []string
	values []any
}

// FromValues returns a positioned Row over a single in-memory record.
func FromValues(v Values) Row {
	names := v.Keys()
	values := make([]any, len(names))
	for i, name := range names {
		values[i] = v[name]
	}
	return &valuesRow{names: names, values: values}
}

func (r *valuesRow) Positioned() bool        { return r.names != nil }
func (r *valuesRow) ColumnCount() int        { return len(r.names) }
func (r *valuesRow) ColumnName(i int) string { return r.names[i] }
func (r *valuesRow) String(i int) string     { return toString(r.values[i]) }
func (r *valuesRow) Int(i int) int           { return toInt(r.values[i]) }

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case bool:
		if t {
			return "1"
		}
		return "0"
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case time.Time:
		return formatDate(t)
	default:
		return fmt.Sprint(t)
	}
}

func toInt(v any) int {
	switch t := v.(type) {
	case nil:
		return 0
	case int:
		return t
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		return int(t)
	case float64:
		return int(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0
		}
		return int(n)
	case []byte:
		return toInt(string(t))
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(DateFormat, s); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(dayFormat, s, time.Local); err == nil {
		return t
	}
	return time.Time{}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateFormat)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
