package optimization

import (
	"optiscope/domain/core"
)

// Row maps column name to cell value
type Row map[string]Value

// Get returns the cell for column, null when the row has no such cell
func (r Row) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Null()
}

// Source describes where a table was loaded from
type Source struct {
	Name   string    `json:"name"`
	Format string    `json:"format"` // "csv", "xlsx", "xml"
	Hash   core.Hash `json:"hash,omitempty"`
}

// Table is a rectangular set of optimization runs. Column names are unique and ordered;
// every row shares the same column set. The engine never mutates a Table.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"-"`
	Source  Source   `json:"source"`
}

// NewTable builds a table from column names and positional records. Records shorter than
// the header are padded with nulls; extra cells are dropped.
func NewTable(columns []string, records [][]Value) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	t.Rows = make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = Null()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Len returns the number of rows; a nil table has none
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Clone copies rows so the result can be owned independently of the receiver.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
