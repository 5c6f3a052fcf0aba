// Package gisttest provides an in-process fake of the Gist API endpoints the
// client uses, for tests.
package gisttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/mcoot/spiderleague/internal/gist"
)

// Request records one request the server received
type Request struct {
	Method string
	Path   string
}

// Server is a fake Gist API backed by a map of gists
type Server struct {
	*httptest.Server

	token string

	mu        sync.Mutex
	gists     map[string]map[string]string
	failWith  int
	failNext  int
	failCount int
	truncated bool
	requests  []Request
}

// New starts a fake server that accepts the given token. It is closed when
// the test ends.
func New(t testing.TB, token string) *Server {
	t.Helper()

	s := &Server{
		token: token,
		gists: make(map[string]map[string]string),
	}

	r := mux.NewRouter()
	r.HandleFunc("/gists/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/gists/{id}", s.handlePatch).Methods(http.MethodPatch)
	r.HandleFunc("/raw/{id}/{filename}", s.handleRaw).Methods(http.MethodGet)
	r.Use(s.record)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// CreateGist adds a gist with the given files (filename to content)
func (s *Server) CreateGist(id string, files map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make(map[string]string, len(files))
	for k, v := range files {
		copied[k] = v
	}
	s.gists[id] = copied
}

// Content returns the current content of a file
func (s *Server) Content(id, filename string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	files, ok := s.gists[id]
	if !ok {
		return "", false
	}
	content, ok := files[filename]
	return content, ok
}

// FailWith makes every following request return status; 0 restores normal behaviour
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	s.failWith = status
	s.mu.Unlock()
}

// FailNext makes only the next count requests return status
func (s *Server) FailNext(status, count int) {
	s.mu.Lock()
	s.failNext = status
	s.failCount = count
	s.mu.Unlock()
}

// SetTruncated makes GET responses mark files truncated, forcing a raw fetch
func (s *Server) SetTruncated(truncated bool) {
	s.mu.Lock()
	s.truncated = truncated
	s.mu.Unlock()
}

// Requests returns the requests received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestCount returns how many requests used method
func (s *Server) RequestCount(method string) int {
	count := 0
	for _, r := range s.Requests() {
		if r.Method == method {
			count++
		}
	}
	return count
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path})
		failWith := s.failWith
		if failWith == 0 && s.failCount > 0 {
			failWith = s.failNext
			s.failCount--
		}
		s.mu.Unlock()

		if failWith != 0 {
			writeError(w, failWith, http.StatusText(failWith))
			return
		}
		if !s.authorized(r) {
			writeError(w, http.StatusUnauthorized, "Bad credentials")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorized(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	for _, scheme := range []string{"Bearer ", "token "} {
		if strings.HasPrefix(header, scheme) {
			return strings.TrimPrefix(header, scheme) == s.token
		}
	}
	return false
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	files, ok := s.gists[id]
	var g gist.Gist
	if ok {
		g = s.render(id, files)
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req gist.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Problems parsing JSON")
		return
	}

	s.mu.Lock()
	files, ok := s.gists[id]
	var g gist.Gist
	if ok {
		for name, f := range req.Files {
			files[name] = f.Content
		}
		g = s.render(id, files)
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	content, ok := s.Content(vars["id"], vars["filename"])
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(content))
}

// render builds the API view of a gist; callers hold s.mu
func (s *Server) render(id string, files map[string]string) gist.Gist {
	g := gist.Gist{ID: id, Files: make(map[string]gist.File, len(files))}
	for name, content := range files {
		f := gist.File{
			Filename: name,
			Size:     len(content),
			RawURL:   s.URL + "/raw/" + id + "/" + name,
			Content:  content,
		}
		if s.truncated {
			f.Truncated = true
			f.Content = ""
		}
		g.Files[name] = f
	}
	return g
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
