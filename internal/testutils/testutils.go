// Package testutils provides shared test infrastructure.
package testutils

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

// TestFile defines a test file with name and data.
type TestFile struct {
	Name string
	Data []byte
}

// GenerateTestData generates test data of the given size.
// For sizes <= 10MB, uses a deterministic pattern. For larger sizes, uses random data.
func GenerateTestData(t *testing.T, size int64) []byte {
	t.Helper()
	data := make([]byte, size)
	if size <= 10*1024*1024 {
		for i := range data {
			data[i] = byte(i % 256)
		}
	} else {
		if _, err := rand.Read(data); err != nil {
			t.Fatalf("generate random data: %v", err)
		}
	}
	return data
}

// FileServer serves a fixed set of files and counts the requests it sees.
type FileServer struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	requests atomic.Int64
	perPath  map[string]int
}

// StartFileServer starts an HTTP server serving files at /{Name}.
// Unknown paths get a 404. The server is closed when the test ends.
func StartFileServer(t *testing.T, files []TestFile) *FileServer {
	t.Helper()

	fs := &FileServer{
		files:   make(map[string][]byte),
		perPath: make(map[string]int),
	}
	for _, f := range files {
		fs.files["/"+f.Name] = f.Data
	}

	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.requests.Add(1)

		fs.mu.Lock()
		fs.perPath[r.URL.Path]++
		data, ok := fs.files[r.URL.Path]
		fs.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(data)
	}))
	t.Cleanup(fs.Close)

	return fs
}

// URL returns the absolute URL of the named file.
func (fs *FileServer) URL(name string) string {
	return fmt.Sprintf("%s/%s", fs.Server.URL, name)
}

// Requests returns the number of requests served so far.
func (fs *FileServer) Requests() int64 {
	return fs.requests.Load()
}

// RequestsFor returns the number of requests for /{name}.
func (fs *FileServer) RequestsFor(name string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.perPath["/"+name]
}

// NumberedFiles returns n small files named map-0000.fits, map-0001.fits, ...
func NumberedFiles(n int) []TestFile {
	files := make([]TestFile, n)
	for i := range files {
		files[i] = TestFile{
			Name: fmt.Sprintf("map-%04d.fits", i),
			Data: []byte(fmt.Sprintf("content of map %d", i)),
		}
	}
	return files
}
