package source

// RawRow represents a row of raw tabular data as header -> cell pairs
type RawRow map[string]string

// Table represents a complete tabular file before typing
type Table struct {
	Headers []string // Column headers
	Rows    []RawRow // Data rows
}

// HasColumn reports whether the header row contains name
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Headers {
		if h == name {
			return true
		}
	}
	return false
}
