package formatter

import (
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"
)

// Table buffers rows and renders them as aligned columns with a dashed
// separator under the headers. A table with no rows renders nothing.
type Table struct {
	out      io.Writer
	headers  []string
	maxWidth map[int]int
	rows     [][]string
}

// NewTable creates a table that writes to w with the given column headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{out: w, headers: headers, maxWidth: make(map[int]int)}
}

// SetMaxWidth limits column col (0-indexed) to width runes; longer cells
// end in "...". Zero removes the limit.
func (t *Table) SetMaxWidth(col, width int) *Table {
	t.maxWidth[col] = width
	return t
}

// AddRow appends a row. Values beyond the header count are dropped and
// missing ones render empty.
func (t *Table) AddRow(values ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(values) {
			row[i] = t.clip(i, sanitizeCell(values[i]))
		}
	}
	t.rows = append(t.rows, row)
}

// Render writes the table.
func (t *Table) Render() error {
	if len(t.rows) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(t.out, 0, 0, 2, ' ', 0)
	sep := make([]string, len(t.headers))
	for i, h := range t.headers {
		sep[i] = strings.Repeat("-", utf8.RuneCountInString(h))
	}
	lines := append([][]string{t.headers, sep}, t.rows...)
	for _, cells := range lines {
		if _, err := io.WriteString(tw, strings.Join(cells, "\t")+"\n"); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func (t *Table) clip(col int, s string) string {
	limit := t.maxWidth[col]
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}

// sanitizeCell keeps tabs and newlines in a value from breaking the layout.
func sanitizeCell(s string) string {
	return strings.NewReplacer("\t", " ", "\r", " ", "\n", " ").Replace(s)
}
