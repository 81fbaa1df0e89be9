package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]Format{
		"":      FormatTable,
		"table": FormatTable,
		"json":  FormatJSON,
		"JSON":  FormatJSON,
		"yaml":  FormatYAML,
		"yml":   FormatYAML,
	} {
		got, err := ParseFormat(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestPrintJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, map[string]int{"scan_id": 1}))
	assert.Contains(t, buf.String(), `"scan_id": 1`)
}

func TestPrintYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, PrintYAML(&buf, map[string]int{"scan_id": 1}))
	assert.Contains(t, buf.String(), "scan_id: 1")
}

func TestPrintTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	data := MetadataTable{
		Labels: []string{"project_id", "title"},
		Values: []string{"7", "Fossil scans"},
	}
	require.NoError(t, PrintTable(&buf, data))

	out := buf.String()
	assert.Contains(t, out, "project_id")
	assert.Contains(t, out, "Fossil scans")
}

func TestPrintFallsBackToJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, FormatTable, map[string]string{"k": "v"}))
	assert.Contains(t, buf.String(), `"k": "v"`)
}
