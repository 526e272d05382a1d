package pop

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// Dataset is a column-oriented table of float64 samples. All columns have
// the same length. Per-event posterior samples and injection campaigns are
// both represented as Datasets.
type Dataset struct {
	n    int
	cols map[string][]float64
}

// NewDataset builds a Dataset from named columns. All columns must be
// non-empty and of equal length.
func NewDataset(cols map[string][]float64) (*Dataset, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("dataset requires at least one column")
	}
	n := -1
	for name, col := range cols {
		if len(col) == 0 {
			return nil, fmt.Errorf("dataset column %q is empty", name)
		}
		if n == -1 {
			n = len(col)
		} else if len(col) != n {
			return nil, fmt.Errorf("dataset column %q has %d rows, want %d", name, len(col), n)
		}
	}
	copied := make(map[string][]float64, len(cols))
	for name, col := range cols {
		c := make([]float64, len(col))
		copy(c, col)
		copied[name] = c
	}
	return &Dataset{n: n, cols: copied}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.n }

// Has reports whether the named column exists.
func (d *Dataset) Has(name string) bool {
	_, ok := d.cols[name]
	return ok
}

// Columns returns the column names in sorted order.
func (d *Dataset) Columns() []string {
	names := make([]string, 0, len(d.cols))
	for name := range d.cols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Column returns the named column. The returned slice is shared with the
// Dataset and must not be modified.
func (d *Dataset) Column(name string) ([]float64, error) {
	col, ok := d.cols[name]
	if !ok {
		return nil, fmt.Errorf("dataset has no column %q (have %v)", name, d.Columns())
	}
	return col, nil
}

// Truncate returns a view-free copy containing the first n rows. If n is
// zero, negative, or exceeds the row count, the Dataset itself is returned.
// Used to equalize sample counts across events.
func (d *Dataset) Truncate(n int) *Dataset {
	if n <= 0 || n >= d.n {
		return d
	}
	cols := make(map[string][]float64, len(d.cols))
	for name, col := range d.cols {
		c := make([]float64, n)
		copy(c, col[:n])
		cols[name] = c
	}
	return &Dataset{n: n, cols: cols}
}

// LoadCSV reads a headed CSV file into a Dataset. Every cell must parse as
// a float64; the header row supplies column names.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening sample table: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing sample table %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("sample table %s has no data rows", path)
	}

	header := records[0]
	cols := make(map[string][]float64, len(header))
	for _, name := range header {
		cols[name] = make([]float64, 0, len(records)-1)
	}
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("sample table %s row %d has %d fields, want %d", path, i+2, len(record), len(header))
		}
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("sample table %s row %d column %q: %w", path, i+2, header[j], err)
			}
			cols[header[j]] = append(cols[header[j]], v)
		}
	}
	return NewDataset(cols)
}
