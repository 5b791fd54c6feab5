package grid

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formtree/pkg/tree"
)

var (
	// ErrMaxRows is returned when adding a row would exceed maxRows.
	ErrMaxRows = errors.New("grid: row limit reached")
	// ErrMinRows is returned when removing a row would go below minRows.
	ErrMinRows = errors.New("grid: minimum row count reached")
	// ErrRowNotFound is returned for unknown row ids.
	ErrRowNotFound = errors.New("grid: row not found")
)

// RowIDKey holds a row's identifier.
const RowIDKey = "id"

// Row is one grid row: an id, column values and hidden sub-form values.
type Row map[string]any

// ID returns the row identifier.
func (r Row) ID() string {
	if r == nil {
		return ""
	}
	return tree.Stringify(r[RowIDKey])
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = tree.DeepCopyValue(v)
	}
	return out
}

// NewRowID returns ids shaped like row-<unix millis>-<9 random chars>.
func NewRowID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("row-%d-%s", time.Now().UnixMilli(), suffix)
}

// NewRow builds a row with a fresh id and a blank value for every column.
func NewRow(cfg Config, newID tree.IDFunc) Row {
	if newID == nil {
		newID = NewRowID
	}
	row := Row{RowIDKey: newID()}
	for _, col := range cfg.Columns {
		row[col.ID] = ""
	}
	return row
}

// EnsureRows assigns ids to rows that lack one and pads the list with blank
// rows up to cfg.MinRows. The input rows are not modified.
func EnsureRows(rows []Row, cfg Config, newID tree.IDFunc) []Row {
	if newID == nil {
		newID = NewRowID
	}
	out := make([]Row, 0, max(len(rows), cfg.MinRows))
	for _, row := range rows {
		if row.ID() == "" {
			row = row.Clone()
			if row == nil {
				row = Row{}
			}
			row[RowIDKey] = newID()
		}
		out = append(out, row)
	}
	for len(out) < cfg.MinRows {
		out = append(out, NewRow(cfg, newID))
	}
	return out
}

// AddRow appends a blank row unless the grid is full.
func AddRow(rows []Row, cfg Config, newID tree.IDFunc) ([]Row, Row, error) {
	if cfg.MaxRows > 0 && len(rows) >= cfg.MaxRows {
		return rows, nil, fmt.Errorf("%w: %d", ErrMaxRows, cfg.MaxRows)
	}
	row := NewRow(cfg, newID)
	out := make([]Row, 0, len(rows)+1)
	out = append(out, rows...)
	return append(out, row), row, nil
}

// RemoveRow drops the row with id unless the grid is at its minimum.
func RemoveRow(rows []Row, cfg Config, id string) ([]Row, error) {
	idx := indexOfRow(rows, id)
	if idx < 0 {
		return rows, fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	if len(rows) <= cfg.MinRows {
		return rows, fmt.Errorf("%w: %d", ErrMinRows, cfg.MinRows)
	}
	out := make([]Row, 0, len(rows)-1)
	out = append(out, rows[:idx]...)
	return append(out, rows[idx+1:]...), nil
}

// ReplaceRow swaps in row for the existing row with the same id.
func ReplaceRow(rows []Row, row Row) ([]Row, error) {
	idx := indexOfRow(rows, row.ID())
	if idx < 0 {
		return rows, fmt.Errorf("%w: %s", ErrRowNotFound, row.ID())
	}
	out := append([]Row(nil), rows...)
	out[idx] = row
	return out, nil
}

// FindRow returns the row with id.
func FindRow(rows []Row, id string) (Row, bool) {
	if idx := indexOfRow(rows, id); idx >= 0 {
		return rows[idx], true
	}
	return nil, false
}

func indexOfRow(rows []Row, id string) int {
	if id == "" {
		return -1
	}
	for i, row := range rows {
		if row.ID() == id {
			return i
		}
	}
	return -1
}

// RowsOf reads the rows stored for a grid in a value snapshot. Entries that
// are not objects are skipped.
func RowsOf(value any) []Row {
	items, ok := value.([]any)
	if !ok {
		if rows, ok := value.([]Row); ok {
			return rows
		}
		return nil
	}
	out := make([]Row, 0, len(items))
	for _, item := range items {
		switch m := item.(type) {
		case map[string]any:
			out = append(out, Row(m))
		case Row:
			out = append(out, m)
		}
	}
	return out
}

// Values converts rows back to the JSON-native snapshot form.
func Values(rows []Row) []any {
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, map[string]any(row))
	}
	return out
}
