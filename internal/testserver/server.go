// Package testserver serves fake launcher metadata and artifacts for tests.
package testserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// Server is an httptest server that serves registered documents and counts requests per method and path.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	files    map[string][]byte
	failures map[string]int
	counts   map[string]int
}

// New starts a server. It is closed by the caller.
func New() *Server {
	s := &Server{
		files:    make(map[string][]byte),
		failures: make(map[string]int),
		counts:   make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.counts[r.Method+" "+r.URL.Path]++
	body, ok := s.files[r.URL.Path]
	status := s.failures[r.URL.Path]
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(body)
	}
}

// Put registers body under path and returns the full URL
func (s *Server) Put(path string, body []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = body
	return s.URL + path
}

// PutJSON registers the JSON encoding of v under path and returns the URL and the encoded bytes
func (s *Server) PutJSON(path string, v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return s.Put(path, body), body
}

// Fail makes every request to path answer with status
func (s *Server) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Gets returns how many GET requests path received
func (s *Server) Gets(path string) int {
	return s.Requests(http.MethodGet, path)
}

// Requests returns how many requests with method path received
func (s *Server) Requests(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[method+" "+path]
}

// TotalGets returns the number of GET requests across all paths
func (s *Server) TotalGets() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for key, n := range s.counts {
		if len(key) > 4 && key[:4] == "GET " {
			total += n
		}
	}
	return total
}

// TotalRequests returns the number of requests of any method across all paths
func (s *Server) TotalRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.counts {
		total += n
	}
	return total
}

// ResetCounts forgets all recorded requests
func (s *Server) ResetCounts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = make(map[string]int)
}

// SHA1 returns the hex digest used throughout launcher metadata
func SHA1(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
