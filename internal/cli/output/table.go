package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by types that can render themselves as a table.
type TableRenderer interface {
	// Headers returns the column headers for the table.
	Headers() []string
	// Rows returns the data rows for the table.
	Rows() [][]string
}

// PrintTable writes data as a formatted table to the writer.
func PrintTable(w io.Writer, data TableRenderer) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader(data.Headers())

	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, row := range data.Rows() {
		table.Append(row)
	}

	table.Render()
	return nil
}

// MetadataTable renders a single catalog row vertically as label/value pairs,
// the way the original metadata panel displayed the current selection.
type MetadataTable struct {
	Labels []string
	Values []string
}

// Headers implements TableRenderer.
func (m MetadataTable) Headers() []string {
	return []string{"FIELD", "VALUE"}
}

// Rows implements TableRenderer.
func (m MetadataTable) Rows() [][]string {
	rows := make([][]string, 0, len(m.Labels))
	for i, label := range m.Labels {
		value := ""
		if i < len(m.Values) {
			value = m.Values[i]
		}
		rows = append(rows, []string{label, value})
	}
	return rows
}
