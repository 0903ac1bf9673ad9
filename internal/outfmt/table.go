package outfmt

import (
	"io"
	"strings"
	"text/tabwriter"
)

// Table lines up text-mode listings such as `pb profile list`.
type Table struct {
	tw *tabwriter.Writer
}

// NewTable writes the header row and returns a table for the remaining rows.
func NewTable(w io.Writer, headers ...string) *Table {
	t := &Table{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
	t.Row(headers...)
	return t
}

func (t *Table) Row(columns ...string) {
	_, _ = io.WriteString(t.tw, strings.Join(columns, "\t")+"\n")
}

// Flush must be called once all rows are written.
func (t *Table) Flush() error {
	return t.tw.Flush()
}
