package normalizer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrEmptyInput is returned when a file has no header or no data rows.
var ErrEmptyInput = errors.New("empty input")

// InputError is a fatal problem with the uploaded file as a whole.
type InputError struct {
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *InputError) Unwrap() error { return e.Err }

func emptyInput(reason string) error {
	return &InputError{Reason: reason, Err: ErrEmptyInput}
}

// RawRow is one data line keyed by column name. Values are trimmed and a
// column with no cell reads as the empty string.
type RawRow struct {
	columns []string
	values  map[string]string
}

// NewRawRow builds a row over columns from values. Keys that are not in
// columns are discarded.
func NewRawRow(columns []string, values map[string]string) RawRow {
	v := make(map[string]string, len(columns))
	for _, c := range columns {
		v[c] = strings.TrimSpace(values[c])
	}
	return RawRow{columns: columns, values: v}
}

func (r RawRow) Get(column string) string { return r.values[column] }

func (r RawRow) Columns() []string { return r.columns }

// IsEmpty reports whether every cell is blank.
func (r RawRow) IsEmpty() bool {
	for _, c := range r.columns {
		if r.values[c] != "" {
			return false
		}
	}
	return true
}

// Values returns a copy of the cells keyed by column.
func (r RawRow) Values() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

func (r RawRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.values)
}

// Parse splits CSV text into header columns and data rows. Rows with no
// non-empty cell are dropped. Blank header cells are named column_<n> and
// repeated names get a _<k> suffix so every column is addressable.
func Parse(contents string) ([]string, []RawRow, error) {
	contents = strings.TrimPrefix(contents, "\ufeff")
	if strings.TrimSpace(contents) == "" {
		return nil, nil, emptyInput("file is empty")
	}

	reader := csv.NewReader(strings.NewReader(contents))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, emptyInput("missing header row")
		}
		return nil, nil, &InputError{Reason: "failed to read header row", Err: err}
	}
	columns := headerColumns(header)
	if len(columns) == 0 {
		return nil, nil, emptyInput("header row has no column names")
	}

	var rows []RawRow
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, &InputError{Reason: fmt.Sprintf("failed to read line %d", line), Err: err}
		}
		values := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(record) {
				values[col] = record[i]
			}
		}
		row := NewRawRow(columns, values)
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, nil, emptyInput("file has no data rows")
	}
	return columns, rows, nil
}

func headerColumns(header []string) []string {
	blank := true
	for _, h := range header {
		if strings.TrimSpace(h) != "" {
			blank = false
			break
		}
	}
	if blank {
		return nil
	}

	columns := make([]string, 0, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n)
		} else {
			seen[name] = 1
		}
		columns = append(columns, name)
	}
	return columns
}

// RowsFromMaps builds rows from already-parsed records, as sent by clients
// that parse the file in the browser.
func RowsFromMaps(columns []string, records []map[string]string) []RawRow {
	rows := make([]RawRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, NewRawRow(columns, rec))
	}
	return rows
}
