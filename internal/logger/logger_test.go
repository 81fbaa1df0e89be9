package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"DEBUG", false},
		{"debug", false},
		{"INFO", false},
		{"WARN", false},
		{"ERROR", false},
		{"", false},
		{"verbose", true},
	}

	for _, tt := range tests {
		_, err := parseLevel(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "level %q", tt.input)
		} else {
			assert.NoError(t, err, "level %q", tt.input)
		}
	}
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init(Config{Level: "LOUD", Format: "text"})
	require.Error(t, err)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO")

	Debug("should be filtered")
	Info("should appear", KeyScanID, 7)

	out := buf.String()
	assert.NotContains(t, out, "should be filtered")
	assert.Contains(t, out, "should appear")
	assert.Contains(t, out, "scan_id=7")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO")

	SetLevel("DEBUG")
	Debug("now visible")
	assert.True(t, strings.Contains(buf.String(), "now visible"))
}
