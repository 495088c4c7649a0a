// Package testutil provides testing utilities for the admin dashboard client.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/swecha-admin/pkg/entity"
)

// APIPrefix is the version prefix the mock serves under, like the real backend.
const APIPrefix = "/api/v1"

// MockToken is the bearer token issued by a successful OTP verification.
const MockToken = "mock-token"

// MockResponse defines a canned response for a mock endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockBackend is a configurable in-memory corpus backend for tests.
//
// Users, categories and records are served from the exported slices with
// skip/limit pagination. Contribution counts come from Contributions; IDs in
// FailContributions answer 500.
type MockBackend struct {
	server *httptest.Server

	mu            sync.RWMutex
	handlers      map[string]func(w http.ResponseWriter, r *http.Request)
	users         []entity.User
	categories    []entity.Category
	records       []entity.Record
	contributions map[string]int
	failing       map[string]bool
	roles         []string
	contribDelay  time.Duration

	// Tracking
	requestCount int
	pathCounts   map[string]int
	lastHeader   http.Header
	lastBody     []byte
}

// NewMockBackend starts a mock backend. The OTP login grants the admin role.
func NewMockBackend() *MockBackend {
	mock := &MockBackend{
		handlers:      make(map[string]func(w http.ResponseWriter, r *http.Request)),
		contributions: make(map[string]int),
		failing:       make(map[string]bool),
		pathCounts:    make(map[string]int),
		roles:         []string{"admin"},
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, APIPrefix)

		mock.mu.Lock()
		mock.requestCount++
		mock.pathCounts[path]++
		mock.lastHeader = r.Header.Clone()
		handler, exists := mock.handlers[path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		mock.route(w, r, path)
	}))

	return mock
}

// URL returns the API base URL of the mock, including the version prefix.
func (m *MockBackend) URL() string {
	return m.server.URL + APIPrefix
}

// Close shuts down the mock server.
func (m *MockBackend) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockBackend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.pathCounts = make(map[string]int)
	m.lastHeader = nil
	m.lastBody = nil
}

// SetHandler overrides the handler for a path (without the version prefix).
func (m *MockBackend) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a canned response for a path.
func (m *MockBackend) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetUsers replaces the served users.
func (m *MockBackend) SetUsers(users []entity.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = users
}

// SetCategories replaces the served categories.
func (m *MockBackend) SetCategories(categories []entity.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = categories
}

// SetRecords replaces the served records.
func (m *MockBackend) SetRecords(records []entity.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = records
}

// SetContributions sets the contribution total reported for a user.
func (m *MockBackend) SetContributions(userID string, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contributions[userID] = total
}

// FailContributions makes the contribution endpoint answer 500 for userID.
func (m *MockBackend) FailContributions(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[userID] = true
}

// SetContributionDelay delays every contribution response.
func (m *MockBackend) SetContributionDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contribDelay = d
}

// SetRoles sets the roles granted by OTP verification.
func (m *MockBackend) SetRoles(roles ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles = roles
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockBackend) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// GetPathCount returns the number of requests for a path (without the version prefix).
func (m *MockBackend) GetPathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathCounts[path]
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockBackend) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// LastBody returns the body of the most recent write handled by the default routes.
func (m *MockBackend) LastBody() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastBody
}

func (m *MockBackend) route(w http.ResponseWriter, r *http.Request, path string) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case path == "/auth/send-otp" && r.Method == http.MethodPost:
		writeJSON(w, http.StatusOK, map[string]string{"message": "OTP sent"})
	case path == "/auth/verify-otp" && r.Method == http.MethodPost:
		m.verifyOTP(w, r)
	case path == "/auth/me":
		if !m.authorized(r) {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		writeJSON(w, http.StatusOK, entity.Me{ID: "admin-1", Name: "Admin", Phone: "9999999999"})
	case path == "/users/" && r.Method == http.MethodGet:
		m.mu.RLock()
		page := paginate(m.users, r)
		m.mu.RUnlock()
		writeJSON(w, http.StatusOK, page)
	case path == "/categories/" && r.Method == http.MethodGet:
		m.mu.RLock()
		categories := m.categories
		m.mu.RUnlock()
		if categories == nil {
			categories = []entity.Category{}
		}
		writeJSON(w, http.StatusOK, categories)
	case path == "/records/" && r.Method == http.MethodGet:
		m.mu.RLock()
		page := paginate(m.records, r)
		m.mu.RUnlock()
		writeJSON(w, http.StatusOK, page)
	case strings.HasPrefix(path, "/users/") && strings.Contains(path, "/contributions"):
		m.contributionsFor(w, path)
	case strings.HasPrefix(path, "/users/"):
		m.user(w, r, strings.TrimPrefix(path, "/users/"))
	case strings.HasPrefix(path, "/categories/") && r.Method == http.MethodGet:
		m.mu.RLock()
		category, ok := findByID(m.categories, strings.TrimPrefix(path, "/categories/"), func(c entity.Category) string { return c.ID })
		m.mu.RUnlock()
		if !ok {
			writeDetail(w, http.StatusNotFound, "Category not found")
			return
		}
		writeJSON(w, http.StatusOK, category)
	case strings.HasPrefix(path, "/records/") && r.Method == http.MethodGet:
		m.mu.RLock()
		record, ok := findByID(m.records, strings.TrimPrefix(path, "/records/"), entity.Record.ID)
		m.mu.RUnlock()
		if !ok {
			writeDetail(w, http.StatusNotFound, "Record not found")
			return
		}
		writeJSON(w, http.StatusOK, record)
	case r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete:
		m.write(w, r)
	default:
		writeDetail(w, http.StatusNotFound, "Not Found")
	}
}

func (m *MockBackend) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req entity.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OTPCode == "" {
		writeDetail(w, http.StatusBadRequest, "Invalid OTP")
		return
	}
	if req.OTPCode != "123456" {
		writeDetail(w, http.StatusUnauthorized, "Invalid OTP")
		return
	}

	m.mu.RLock()
	roles := make([]entity.Role, 0, len(m.roles))
	for _, name := range m.roles {
		roles = append(roles, entity.Role{Name: name})
	}
	m.mu.RUnlock()

	writeJSON(w, http.StatusOK, entity.AuthSession{
		AccessToken: MockToken,
		TokenType:   "bearer",
		UserID:      "admin-1",
		PhoneNumber: req.PhoneNumber,
		Roles:       roles,
	})
}

func (m *MockBackend) user(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		m.write(w, r)
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ID == id {
			writeJSON(w, http.StatusOK, u)
			return
		}
	}
	writeDetail(w, http.StatusNotFound, "User not found")
}

func (m *MockBackend) contributionsFor(w http.ResponseWriter, path string) {
	parts := strings.Split(strings.TrimPrefix(path, "/users/"), "/")
	id := parts[0]

	m.mu.RLock()
	delay := m.contribDelay
	failing := m.failing[id]
	total := m.contributions[id]
	m.mu.RUnlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if failing {
		writeDetail(w, http.StatusInternalServerError, "contribution lookup failed")
		return
	}

	if len(parts) == 3 {
		writeJSON(w, http.StatusOK, map[string]any{
			"user_id":             id,
			"media_type":          parts[2],
			"total_contributions": total,
			"contributions":       []any{},
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":                     id,
		"total_contributions":         total,
		"contributions_by_media_type": map[string]int{entity.MediaText: total},
	})
}

// write accepts any create/update/delete and records the body.
func (m *MockBackend) write(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(r) {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	body, _ := io.ReadAll(r.Body)
	m.mu.Lock()
	m.lastBody = body
	m.mu.Unlock()

	switch r.Method {
	case http.MethodPost:
		writeJSON(w, http.StatusCreated, map[string]string{"message": "created"})
	case http.MethodPut:
		writeJSON(w, http.StatusOK, map[string]string{"message": "updated"})
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (m *MockBackend) authorized(r *http.Request) bool {
	return r.Header.Get("Authorization") == "Bearer "+MockToken
}

func findByID[T any](items []T, id string, idOf func(T) string) (T, bool) {
	for _, item := range items {
		if idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func paginate[T any](items []T, r *http.Request) []T {
	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 100
	}
	if skip >= len(items) {
		return []T{}
	}
	end := skip + limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
