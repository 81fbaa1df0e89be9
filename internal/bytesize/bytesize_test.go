package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  ByteSize
	}{
		{"0", 0},
		{"1024", 1024},
		{"1Ki", KiB},
		{"1KiB", KiB},
		{"500Mi", 500 * MiB},
		{"2Gi", 2 * GiB},
		{"100MB", 100 * MB},
		{"1.5Ki", 1536},
		{" 64 kb ", 64 * KB},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "  ", "abc", "1X", "-5"} {
		_, err := Parse(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "60 B", ByteSize(60).String())
	assert.Equal(t, "1.00 KiB", KiB.String())
	assert.Equal(t, "1.50 MiB", (MiB + 512*KiB).String())
	assert.Equal(t, "2.00 GiB", (2 * GiB).String())
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "60 B", Format(60))
	assert.Equal(t, "1.00 KiB", Format(1024))
}

func TestUnmarshalText(t *testing.T) {
	t.Parallel()

	var b ByteSize
	require.NoError(t, b.UnmarshalText([]byte("4Mi")))
	assert.Equal(t, 4*MiB, b)

	assert.Error(t, b.UnmarshalText([]byte("bogus")))
}
