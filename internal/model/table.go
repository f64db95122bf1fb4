package model

// ResultTable is the append-only collection produced by one benchmark run.
// Insertion order is execution order: test case major, model minor.
type ResultTable struct {
	rows []ResultRow
}

// NewResultTable returns an empty table with room for capacity rows.
func NewResultTable(capacity int) *ResultTable {
	if capacity < 0 {
		capacity = 0
	}
	return &ResultTable{rows: make([]ResultRow, 0, capacity)}
}

// Append adds a row at the end of the table.
func (t *ResultTable) Append(row ResultRow) {
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *ResultTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns the i-th row.
func (t *ResultTable) Row(i int) ResultRow {
	return t.rows[i]
}

// Rows returns a copy of the rows in insertion order.
func (t *ResultTable) Rows() []ResultRow {
	if t == nil {
		return nil
	}
	out := make([]ResultRow, len(t.rows))
	copy(out, t.rows)
	return out
}
