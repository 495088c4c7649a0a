package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/swecha-admin/pkg/client"
	"github.com/Sternrassler/swecha-admin/pkg/dashboard"
	"github.com/Sternrassler/swecha-admin/pkg/entity"
	"github.com/Sternrassler/swecha-admin/pkg/logging"
	"github.com/Sternrassler/swecha-admin/pkg/metrics"
	"github.com/Sternrassler/swecha-admin/pkg/session"
)

// maxUploadMemory is the part of a multipart upload kept in memory; the rest
// spills to temporary files.
const maxUploadMemory = 32 << 20

type server struct {
	svc    *dashboard.Service
	logger zerolog.Logger
}

// outcome is the body of every write endpoint.
type outcome struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// newRouter mounts the dashboard JSON API.
func newRouter(svc *dashboard.Service) chi.Router {
	s := &server{svc: svc, logger: logging.NewLogger("http")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/send-otp", s.sendOTP)
		r.Post("/verify-otp", s.verifyOTP)
		r.Post("/logout", s.logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/users", s.listUsers)
		r.Post("/users", s.createUser)
		r.Get("/users/search", s.searchUsers)
		r.Get("/users/{id}", s.getUser)
		r.Put("/users/{id}", s.updateUser)
		r.Delete("/users/{id}", s.deleteUser)
		r.Get("/users/{id}/contributions", s.userContributions)
		r.Get("/users/{id}/contributions/{media}", s.userMediaContributions)

		r.Get("/categories", s.listCategories)
		r.Post("/categories", s.createCategory)
		r.Get("/categories/{id}", s.getCategory)
		r.Put("/categories/{id}", s.updateCategory)
		r.Delete("/categories/{id}", s.deleteCategory)

		r.Get("/records", s.listRecords)
		r.Post("/records", s.uploadRecord)
		r.Get("/records/{id}", s.getRecord)
		r.Put("/records/{id}", s.updateRecord)
		r.Delete("/records/{id}", s.deleteRecord)

		r.Get("/stats/users", s.userStats)
		r.Get("/stats/activity", s.activityStats)

		r.Get("/cache", s.cacheInfo)
		r.Post("/cache/refresh", s.refreshCache)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *server) sendOTP(w http.ResponseWriter, r *http.Request) {
	var req entity.SendOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PhoneNumber == "" {
		writeError(w, http.StatusBadRequest, "phone_number is required")
		return
	}
	res, err := s.svc.Session().SendOTP(r.Context(), req.PhoneNumber)
	writeOutcome(w, res, err)
}

func (s *server) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req entity.VerifyOTPRequest
	if !decodeBody(w, r, &req) {
		return
	}
	auth, err := s.svc.Session().Login(r.Context(), req.PhoneNumber, req.OTPCode)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": auth.UserID,
		"roles":   auth.RoleNames(),
	})
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Session().Logout(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome{OK: true, Message: "Logged out", Status: http.StatusOK})
}

func (s *server) listUsers(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := pageParams(w, r)
	if !ok {
		return
	}
	page, err := s.svc.UsersPage(r.Context(), skip, limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *server) searchUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.SearchUsersByName(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *server) createUser(w http.ResponseWriter, r *http.Request) {
	var req entity.UserCreate
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.svc.CreateUser(r.Context(), req)
	s.writeWrite(w, res, err)
}

func (s *server) updateUser(w http.ResponseWriter, r *http.Request) {
	var req entity.UserUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.svc.UpdateUser(r.Context(), chi.URLParam(r, "id"), req)
	s.writeWrite(w, res, err)
}

func (s *server) deleteUser(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.DeleteUser(r.Context(), chi.URLParam(r, "id"))
	s.writeWrite(w, res, err)
}

func (s *server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.Categories(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (s *server) userContributions(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.UserContributions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *server) userMediaContributions(w http.ResponseWriter, r *http.Request) {
	media, err := s.svc.UserMediaContributions(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "media"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, media)
}

func (s *server) getCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.svc.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (s *server) createCategory(w http.ResponseWriter, r *http.Request) {
	var req entity.CategoryCreate
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.svc.CreateCategory(r.Context(), req)
	s.writeWrite(w, res, err)
}

func (s *server) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req entity.CategoryUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.svc.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req)
	s.writeWrite(w, res, err)
}

func (s *server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.DeleteCategory(r.Context(), chi.URLParam(r, "id"))
	s.writeWrite(w, res, err)
}

func (s *server) getRecord(w http.ResponseWriter, r *http.Request) {
	record, err := s.svc.GetRecord(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// uploadRecord accepts multipart/form-data with a "file" part and the record
// metadata as form fields.
func (s *server) uploadRecord(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	res, err := s.svc.UploadRecord(r.Context(), entity.RecordUpload{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		MediaType:   r.FormValue("media_type"),
		UserID:      r.FormValue("user_id"),
		CategoryID:  r.FormValue("category_id"),
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		File:        file,
	})
	s.writeWrite(w, res, err)
}

func (s *server) updateRecord(w http.ResponseWriter, r *http.Request) {
	var req entity.RecordUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.svc.UpdateRecord(r.Context(), chi.URLParam(r, "id"), req)
	s.writeWrite(w, res, err)
}

func (s *server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.DeleteRecord(r.Context(), chi.URLParam(r, "id"))
	s.writeWrite(w, res, err)
}

func (s *server) listRecords(w http.ResponseWriter, r *http.Request) {
	skip, limit, ok := pageParams(w, r)
	if !ok {
		return
	}
	page, err := s.svc.RecordsPage(r.Context(), skip, limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *server) userStats(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.UserStatistics(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *server) activityStats(w http.ResponseWriter, r *http.Request) {
	top := dashboard.DefaultTopN
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "top must be a positive integer")
			return
		}
		top = n
	}
	report, err := s.svc.ActivityReport(r.Context(), top)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *server) cacheInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.CacheInfo(r.Context()))
}

func (s *server) refreshCache(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Refresh(r.Context()); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome{OK: true, Message: "Cache cleared", Status: http.StatusOK})
}

// writeWrite renders a backend write as an outcome. Backend rejections keep
// their status; errors raised before the backend was reached go through fail.
func (s *server) writeWrite(w http.ResponseWriter, res client.Result, err error) {
	var apiErr *client.APIError
	if err != nil && !errors.As(err, &apiErr) {
		s.fail(w, err)
		return
	}
	writeOutcome(w, res, err)
}

// fail maps an error onto an HTTP status and writes it.
func (s *server) fail(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	_, message, _ := client.Outcome(client.Result{}, err)

	var apiErr *client.APIError
	switch {
	case errors.Is(err, session.ErrNotAuthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, session.ErrNotAdmin):
		status = http.StatusForbidden
	case errors.Is(err, dashboard.ErrInvalidMediaType):
		status = http.StatusBadRequest
	case errors.Is(err, client.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		status = apiErr.StatusCode
	}

	if status >= 500 {
		s.logger.Error().Err(err).Int("status_code", status).Msg("Request failed")
	}
	writeError(w, status, message)
}

func writeOutcome(w http.ResponseWriter, res client.Result, err error) {
	ok, message, status := client.Outcome(res, err)
	code := status
	if !ok && (code < 400 || code > 599) {
		code = http.StatusBadGateway
	}
	if ok && code == http.StatusNoContent {
		code = http.StatusOK
	}
	if code == 0 {
		code = http.StatusOK
	}
	writeJSON(w, code, outcome{OK: ok, Message: message, Status: status})
}

func pageParams(w http.ResponseWriter, r *http.Request) (skip, limit int, ok bool) {
	q := r.URL.Query()
	skip, limit = 0, 100
	var err error
	if raw := q.Get("skip"); raw != "" {
		if skip, err = strconv.Atoi(raw); err != nil || skip < 0 {
			writeError(w, http.StatusBadRequest, "skip must be a non-negative integer")
			return 0, 0, false
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return 0, 0, false
		}
	}
	return skip, limit, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
