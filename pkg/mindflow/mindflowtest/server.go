// Package mindflowtest provides an in-memory MindFlow backend for tests.
//
// The server stores records as opaque JSON and implements the REST convention
// the client consumes. It enforces no domain rules.
package mindflowtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/angelcoaching/mindflow/pkg/mindflow"
)

// RecordedRequest is a request as the server received it.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// JSON decodes the recorded body into v.
func (r RecordedRequest) JSON(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

type account struct {
	password string
	user     mindflow.Record
}

// Server is a fake MindFlow backend.
type Server struct {
	*httptest.Server

	// RequireToken rejects entity, integration and function calls that do
	// not carry a token issued by this server.
	RequireToken bool

	mu       sync.Mutex
	records  map[string][]mindflow.Record
	accounts map[string]*account
	tokens   map[string]string
	requests []RecordedRequest
}

// NewServer starts a fake backend. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		records:  make(map[string][]mindflow.Record),
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /entities/{slug}", s.authorized(s.handleList))
	mux.HandleFunc("GET /entities/{slug}/{id}", s.authorized(s.handleGet))
	mux.HandleFunc("POST /entities/{slug}", s.authorized(s.handleCreate))
	mux.HandleFunc("POST /entities/{slug}/bulk", s.authorized(s.handleBulkCreate))
	mux.HandleFunc("PUT /entities/{slug}/{id}", s.authorized(s.handleUpdate))
	mux.HandleFunc("DELETE /entities/{slug}/{id}", s.authorized(s.handleDelete))
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("GET /auth/me", s.handleMe)
	mux.HandleFunc("PUT /auth/me", s.handleUpdateMe)
	mux.HandleFunc("POST /integrations/{name}", s.authorized(s.handleIntegration))
	mux.HandleFunc("POST /functions/{name}", s.authorized(s.handleFunction))

	s.Server = httptest.NewServer(s.record(mux))
	return s
}

// Requests returns every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// LastRequest returns the most recent request. It panics if there is none.
func (s *Server) LastRequest() RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

// Seed stores records under slug as-is.
func (s *Server) Seed(slug string, records ...mindflow.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[slug] = append(s.records[slug], records...)
}

// Records returns the records stored under slug.
func (s *Server) Records(slug string) []mindflow.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mindflow.Record(nil), s.records[slug]...)
}

// AddUser registers an account and returns its user record.
func (s *Server) AddUser(email, password, fullName string) mindflow.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUser(email, password, fullName)
}

// IssueToken returns a valid token for the account with the given email.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.tokens[token] = email
	return token
}

func (s *Server) addUser(email, password, fullName string) mindflow.Record {
	user := mindflow.Record{
		"id":           uuid.NewString(),
		"email":        email,
		"full_name":    fullName,
		"role":         "user",
		"created_date": now(),
	}
	s.accounts[email] = &account{password: password, user: user}
	return user
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.RequireToken {
			if _, ok := s.currentAccount(r); !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
		}
		next(w, r)
	}
}

// currentAccount resolves the bearer token. Callers must not hold s.mu.
func (s *Server) currentAccount(r *http.Request) (*account, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.tokens[token]
	if !ok {
		return nil, false
	}
	acct, ok := s.accounts[email]
	return acct, ok
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	query := r.URL.Query()

	var filter map[string]interface{}
	if raw := query.Get("filter"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &filter); err != nil {
			writeError(w, http.StatusBadRequest, "invalid filter")
			return
		}
	}

	s.mu.Lock()
	matches := []mindflow.Record{}
	for _, rec := range s.records[slug] {
		if inBoard(rec, query.Get("boardId")) && matchesFilter(rec, filter) {
			matches = append(matches, rec)
		}
	}
	s.mu.Unlock()

	sortRecords(matches, query.Get("sort"))
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rec, _ := s.find(r.PathValue("slug"), r.PathValue("id"), r.URL.Query().Get("boardId"))
	s.mu.Unlock()

	if rec == nil {
		writeError(w, http.StatusNotFound, "Record not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var rec mindflow.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec == nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON object")
		return
	}

	s.mu.Lock()
	created := s.insert(r.PathValue("slug"), rec)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleBulkCreate(w http.ResponseWriter, r *http.Request) {
	var recs []mindflow.Record
	if err := json.NewDecoder(r.Body).Decode(&recs); err != nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON array")
		return
	}

	s.mu.Lock()
	created := make([]mindflow.Record, 0, len(recs))
	for _, rec := range recs {
		created = append(created, s.insert(r.PathValue("slug"), rec))
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var changes mindflow.Record
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON object")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, _ := s.find(r.PathValue("slug"), r.PathValue("id"), changes.String("boardId"))
	if rec == nil {
		writeError(w, http.StatusNotFound, "Record not found")
		return
	}
	for k, v := range changes {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	rec["updated_date"] = now()

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")

	s.mu.Lock()
	defer s.mu.Unlock()

	_, idx := s.find(slug, r.PathValue("id"), r.URL.Query().Get("boardId"))
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Record not found")
		return
	}
	s.records[slug] = append(s.records[slug][:idx], s.records[slug][idx+1:]...)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req mindflow.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[req.Email]; exists {
		writeError(w, http.StatusConflict, "User already exists")
		return
	}
	writeJSON(w, http.StatusCreated, s.addUser(req.Email, req.Password, req.FullName))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.accounts[req.Email]
	if !ok || acct.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	token := uuid.NewString()
	s.tokens[token] = req.Email

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  acct.user,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.currentAccount(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, acct.user)
}

func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.currentAccount(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var changes mindflow.Record
	if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON object")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range changes {
		switch k {
		case "id", "email":
			continue
		}
		acct.user[k] = v
	}
	writeJSON(w, http.StatusOK, acct.user)
}

func (s *Server) handleIntegration(w http.ResponseWriter, r *http.Request) {
	var body mindflow.Record
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON object")
		return
	}

	switch name := r.PathValue("name"); name {
	case "llm":
		writeJSON(w, http.StatusOK, "echo: "+body.String("prompt"))
	case "upload", "upload-private":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"file_url": fmt.Sprintf("%s/files/%s", s.URL, body.String("filename")),
			"file_id":  uuid.NewString(),
			"private":  name == "upload-private",
		})
	case "email", "generate-image", "extract-data", "create-signed-url":
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"integration": name,
			"request":     body,
		})
	default:
		writeError(w, http.StatusNotFound, "Unknown integration")
	}
}

func (s *Server) handleFunction(w http.ResponseWriter, r *http.Request) {
	var params interface{}
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"function": r.PathValue("name"),
		"params":   params,
	})
}

// insert assigns an id and creation time. Callers must hold s.mu.
func (s *Server) insert(slug string, rec mindflow.Record) mindflow.Record {
	stored := mindflow.Record{}
	for k, v := range rec {
		stored[k] = v
	}
	stored["id"] = uuid.NewString()
	stored["created_date"] = now()
	s.records[slug] = append(s.records[slug], stored)
	return stored
}

// find returns the record and its index, or nil and -1. Callers must hold s.mu.
func (s *Server) find(slug, id, boardID string) (mindflow.Record, int) {
	for i, rec := range s.records[slug] {
		if rec.ID() == id && inBoard(rec, boardID) {
			return rec, i
		}
	}
	return nil, -1
}

func inBoard(rec mindflow.Record, boardID string) bool {
	return boardID == "" || rec.String("boardId") == boardID
}

func matchesFilter(rec mindflow.Record, filter map[string]interface{}) bool {
	for k, want := range filter {
		if !reflect.DeepEqual(rec[k], want) {
			return false
		}
	}
	return true
}

func sortRecords(recs []mindflow.Record, order string) {
	if order == "" {
		return
	}
	field, desc := strings.TrimPrefix(order, "-"), strings.HasPrefix(order, "-")
	sort.SliceStable(recs, func(i, j int) bool {
		if desc {
			return less(recs[j][field], recs[i][field])
		}
		return less(recs[i][field], recs[j][field])
	})
}

func less(a, b interface{}) bool {
	af, aok := a.(float64)
	bf, bok := b.(float64)
	if aok && bok {
		return af < bf
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
