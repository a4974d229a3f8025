// Package urllist reads the newline-delimited URL list consumed by the
// batch fetcher.
package urllist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// ConfigurationError reports a URL list that cannot be used: the path is
// missing, is a directory, or cannot be read. It is fatal before any work
// starts.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("url list %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// errIsDirectory is wrapped in a ConfigurationError when the list path names
// a directory.
var errIsDirectory = errors.New("is a directory, expected a file")

// Read returns the entries of the URL list at path, in file order.
func Read(path string) ([]string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	if fi.IsDir() {
		return nil, &ConfigurationError{Path: path, Err: errIsDirectory}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	defer f.Close()

	urls, err := Parse(f)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	return urls, nil
}

// Parse splits r into lines. Line boundaries are "\r\n" and each of
// "\n", "\r", "\v", "\f", "\x1c", "\x1d", "\x1e", U+0085, U+2028 and
// U+2029; a trailing boundary does not yield an extra entry. Entries are
// neither trimmed nor filtered: blank lines are kept, and so are duplicates.
// Lines have no length limit.
func Parse(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return splitLines(string(data)), nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == '\r' && i+1 < len(s) && s[i+1] == '\n' {
			size = 2
		} else if !isLineBreak(r) {
			i += size
			continue
		}
		lines = append(lines, s[start:i])
		i += size
		start = i
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
