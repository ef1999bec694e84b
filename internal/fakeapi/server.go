// Package fakeapi is an in-memory stand-in for the task service. It follows
// the REST contract of /api/v1/tasks closely enough for client and
// controller tests, records every request it receives, and can be told to
// fail or stall specific calls.
package fakeapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/GoCodeAlone/taskmaster/task"
)

// Request is one recorded call.
type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

// Failure is a canned response served instead of the real handler.
type Failure struct {
	Status int
	// Body is written verbatim. Leave empty for a response without a body.
	Body string
}

// Server holds tasks for any number of users.
type Server struct {
	mu       sync.Mutex
	tasks    map[int64]task.Task
	nextID   int64
	requests []Request
	failures map[string][]Failure
	gates    map[string]chan struct{}
	now      func() time.Time
	tick     time.Duration

	router chi.Router
	http   *httptest.Server
}

// New builds a server that is not yet listening. Use Start or Handler.
func New() *Server {
	s := &Server{
		tasks:    make(map[int64]task.Task),
		nextID:   1,
		failures: make(map[string][]Failure),
		gates:    make(map[string]chan struct{}),
		now:      func() time.Time { return time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC) },
	}
	s.router = s.routes()
	return s
}

// Start serves on a loopback port until the returned server is closed.
func Start() *Server {
	s := New()
	s.http = httptest.NewServer(s.router)
	return s
}

// URL is the base URL of a started server.
func (s *Server) URL() string {
	if s.http == nil {
		return ""
	}
	return s.http.URL
}

// Close stops a started server and releases any stalled requests.
func (s *Server) Close() {
	s.mu.Lock()
	for key, gate := range s.gates {
		close(gate)
		delete(s.gates, key)
	}
	s.mu.Unlock()
	if s.http != nil {
		s.http.Close()
	}
}

// Handler exposes the router for in-process use.
func (s *Server) Handler() http.Handler { return s.router }

// Seed stores tasks as given, keeping their ids. Missing timestamps are
// filled from the server clock.
func (s *Server) Seed(tasks ...task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tasks {
		if t.CreatedAt.IsZero() {
			t.CreatedAt = task.Timestamp{Time: s.advance()}
		}
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = t.CreatedAt
		}
		s.tasks[t.ID] = t
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
}

// Remove drops a task without going through the API.
func (s *Server) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[id]
	delete(s.tasks, id)
	return ok
}

// Tasks returns the stored tasks of every user, ordered by id.
func (s *Server) Tasks() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Requests returns a copy of the request log.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// RequestCount counts recorded requests with the given method. An empty
// method counts everything.
func (s *Server) RequestCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if method == "" {
		return len(s.requests)
	}
	n := 0
	for _, r := range s.requests {
		if r.Method == method {
			n++
		}
	}
	return n
}

// ResetRequests clears the request log.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

// FailNext queues canned responses for method. They are consumed one per
// matching request, in order.
func (s *Server) FailNext(method string, failures ...Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = append(s.failures[method], failures...)
}

// Stall makes requests with method block until Release is called.
func (s *Server) Stall(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gates[method]; !ok {
		s.gates[method] = make(chan struct{})
	}
}

// Release unblocks stalled requests for method.
func (s *Server) Release(method string) {
	s.mu.Lock()
	gate, ok := s.gates[method]
	delete(s.gates, method)
	s.mu.Unlock()
	if ok {
		close(gate)
	}
}

// advance returns the clock and moves it forward so creation order is
// visible in created_at. Callers hold mu.
func (s *Server) advance() time.Time {
	s.tick += time.Minute
	return s.now().Add(s.tick)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.record, s.intercept)
	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Get("/", s.listTasks)
		r.Post("/", s.createTask)
		r.Route("/{taskID}", func(r chi.Router) {
			r.Get("/", s.getTask)
			r.Put("/", s.updateTask)
			r.Delete("/", s.deleteTask)
			r.Patch("/status", s.updateStatus)
		})
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(strings.NewReader(string(body)))
		}
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Body:   string(body),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		gate := s.gates[r.Method]
		s.mu.Unlock()
		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}

		s.mu.Lock()
		var failure *Failure
		if queued := s.failures[r.Method]; len(queued) > 0 {
			failure = &queued[0]
			s.failures[r.Method] = queued[1:]
		}
		s.mu.Unlock()

		if failure != nil {
			if failure.Body != "" {
				w.Header().Set("Content-Type", "application/json")
			}
			w.WriteHeader(failure.Status)
			_, _ = io.WriteString(w, failure.Body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// validationIssue mirrors one entry of a FastAPI 422 detail list.
type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeValidation(w http.ResponseWriter, issues ...validationIssue) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": issues})
}

func queryUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		writeValidation(w, validationIssue{Loc: []string{"query", "user_id"}, Msg: "Field required", Type: "missing"})
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeValidation(w, validationIssue{Loc: []string{"query", "user_id"}, Msg: "Input should be a valid integer", Type: "int_parsing"})
		return 0, false
	}
	return id, true
}

var errBadPath = errors.New("invalid task id")

func pathTaskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "taskID"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errBadPath, chi.URLParam(r, "taskID"))
	}
	return id, nil
}

// owned resolves the path task and checks ownership, writing the error
// response itself when it fails.
func (s *Server) owned(w http.ResponseWriter, r *http.Request, verb string) (task.Task, bool) {
	userID, ok := queryUserID(w, r)
	if !ok {
		return task.Task{}, false
	}
	id, err := pathTaskID(r)
	if err != nil {
		writeValidation(w, validationIssue{Loc: []string{"path", "task_id"}, Msg: "Input should be a valid integer", Type: "int_parsing"})
		return task.Task{}, false
	}

	s.mu.Lock()
	t, exists := s.tasks[id]
	s.mu.Unlock()
	if !exists {
		writeDetail(w, http.StatusNotFound, "Task not found")
		return task.Task{}, false
	}
	if t.UserID != userID {
		writeDetail(w, http.StatusForbidden, "Not authorized to "+verb+" this task")
		return task.Task{}, false
	}
	return t, true
}
