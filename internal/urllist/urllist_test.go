package urllist

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single no newline", "https://a/x.fits", []string{"https://a/x.fits"}},
		{"trailing newline", "https://a/x.fits\n", []string{"https://a/x.fits"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"lone cr", "a\rb", []string{"a", "b"}},
		{"blank lines kept", "a\n\nb\n", []string{"a", "", "b"}},
		{"duplicates kept", "a\na\n", []string{"a", "a"}},
		{"whitespace not trimmed", " a \n", []string{" a "}},
		{"only newline", "\n", []string{""}},
		{"vertical tab and form feed", "a\vb\fc", []string{"a", "b", "c"}},
		{"separators", "a\x1cb\x1dc\x1ed", []string{"a", "b", "c", "d"}},
		{"unicode breaks", "a\u0085b\u2028c\u2029d\u2029", []string{"a", "b", "c", "d"}},
		{"cr cr lf", "a\r\r\nb", []string{"a", "", "b"}},
		{"invalid utf8 kept", "a\xffb\nc", []string{"a\xffb", "c"}},
		{"tab is not a break", "a\tb", []string{"a\tb"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "url_list.txt")
	content := "https://example.com/a.fits\nhttps://example.com/b.fits\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	urls, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a.fits", "https://example.com/b.fits"}, urls)
}

func TestReadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.txt")

	_, err := Read(path)
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %T", err)
	assert.Equal(t, path, cfgErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), path)
}

func TestReadDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := Read(dir)

	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %T", err)
	assert.ErrorIs(t, err, errIsDirectory)
}

func TestParseLongLine(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("a", 4*1024*1024) + ".fits"

	got, err := Parse(strings.NewReader(long + "\nhttps://example.com/b.fits\n"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, long, got[0])
}
