package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"testament/api/internal/clause"
	"testament/api/internal/search"
	"testament/api/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		s.handleReady(w, r)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/documents/upload" {
		s.handleUpload(w, r)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/documents/latest/document" {
		s.handleLatestDocument(w, r)
		return
	}

	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/documents/") {
		rest := strings.TrimPrefix(r.URL.Path, "/api/documents/")
		if filename, ok := strings.CutSuffix(rest, "/clauses"); ok && !strings.Contains(filename, "/") {
			s.handleDocumentClauses(w, r, filename)
			return
		}
		if !strings.Contains(rest, "/") && rest != "" {
			s.handleGetDocument(w, r, rest)
			return
		}
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/clauses" {
		s.handleListClauses(w, r)
		return
	}

	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/clauses/") {
		rest := strings.TrimPrefix(r.URL.Path, "/api/clauses/")
		if id, ok := strings.CutSuffix(rest, "/template"); ok && !strings.Contains(id, "/") {
			s.handleClauseTemplate(w, r, id)
			return
		}
		if !strings.Contains(rest, "/") && rest != "" {
			s.handleGetClause(w, r, rest)
			return
		}
	}

	if strings.HasPrefix(r.URL.Path, "/api/sessions/") {
		rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
		if sessionID, ok := strings.CutSuffix(rest, "/clauses"); ok && sessionID != "" && !strings.Contains(sessionID, "/") {
			switch r.Method {
			case http.MethodGet:
				s.handleGetSessionClauses(w, r, sessionID)
				return
			case http.MethodPut:
				s.handlePutSessionClauses(w, r, sessionID)
				return
			case http.MethodDelete:
				s.handleDeleteSessionClauses(w, r, sessionID)
				return
			}
		}
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Route not found")
}

func (s *HTTPServer) handleGetSessionClauses(w http.ResponseWriter, r *http.Request, sessionID string) {
	clauses, err := s.service.SessionClauses(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, err, "RETRIEVE_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clauses": clauses})
}

func (s *HTTPServer) handlePutSessionClauses(w http.ResponseWriter, r *http.Request, sessionID string) {
	var body struct {
		Clauses []clause.TrackedClause `json:"clauses"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := s.service.SaveSessionClauses(r.Context(), sessionID, body.Clauses); err != nil {
		writeServiceError(w, err, "SAVE_FAILED")
		return
	}
	writeJSON(w, http.StatusNoContent, map[string]any{})
}

func (s *HTTPServer) handleDeleteSessionClauses(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.service.DeleteSessionClauses(r.Context(), sessionID); err != nil {
		writeServiceError(w, err, "DELETE_FAILED")
		return
	}
	writeJSON(w, http.StatusNoContent, map[string]any{})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	statusCode := http.StatusOK
	checks := map[string]any{
		"storage": map[string]any{"status": "ok"},
	}

	if err := s.service.Ping(ctx); err != nil {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
		checks["storage"] = map[string]any{
			"status": "error",
			"error":  err.Error(),
		}
	}

	writeJSON(w, statusCode, map[string]any{
		"ok":     status == "ready",
		"status": status,
		"checks": checks,
	})
}

func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.service.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.service.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "NO_FILE", "No file uploaded")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "NO_FILE", "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "READ_FAILED", "Failed to read uploaded file")
		return
	}
	log.Printf("app: received file upload: %s, size: %d bytes", header.Filename, len(data))

	filename, err := s.service.SaveDocument(r.Context(), data)
	if err != nil {
		writeServiceError(w, err, "SAVE_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"filename": filename,
	})
}

func (s *HTTPServer) handleLatestDocument(w http.ResponseWriter, r *http.Request) {
	filename, data, err := s.service.LatestDocument(r.Context())
	if err != nil {
		writeServiceError(w, err, "RETRIEVE_FAILED")
		return
	}
	writeDocument(w, filename, data)
}

func (s *HTTPServer) handleGetDocument(w http.ResponseWriter, r *http.Request, filename string) {
	data, err := s.service.GetDocument(r.Context(), filename)
	if err != nil {
		writeServiceError(w, err, "RETRIEVE_FAILED")
		return
	}
	writeDocument(w, filename, data)
}

func (s *HTTPServer) handleDocumentClauses(w http.ResponseWriter, r *http.Request, filename string) {
	clauses, err := s.service.DocumentClauses(r.Context(), filename)
	if err != nil {
		writeServiceError(w, err, "SCAN_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filename": filename,
		"clauses":  clauses,
	})
}

func (s *HTTPServer) handleListClauses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query != "" {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, s.service.SearchClauses(search.Query{Text: query, Limit: limit}))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"clauses": s.service.Clauses()})
}

func (s *HTTPServer) handleGetClause(w http.ResponseWriter, r *http.Request, id string) {
	t, err := s.service.Clause(id)
	if err != nil {
		writeServiceError(w, err, "RETRIEVE_FAILED")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *HTTPServer) handleClauseTemplate(w http.ResponseWriter, r *http.Request, id string) {
	tagged := r.URL.Query().Get("tagged") == "1"
	data, err := s.service.ClauseTemplate(id, tagged)
	if err != nil {
		writeServiceError(w, err, "RETRIEVE_FAILED")
		return
	}
	w.Header().Set("Content-Type", store.DocumentContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeDocument(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", store.DocumentContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeServiceError maps DomainErrors onto their HTTP shape and everything
// else onto a 500.
func writeServiceError(w http.ResponseWriter, err error, fallbackCode string) {
	var derr *DomainError
	if errors.As(err, &derr) {
		writeError(w, derr.Status, derr.Code, derr.Message)
		return
	}
	log.Printf("app: %v", err)
	writeError(w, http.StatusInternalServerError, fallbackCode, err.Error())
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(h http.Header, origin string) {
	if origin == "" {
		origin = "*"
	}
	h.Set("Access-Control-Allow-Origin", origin)
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"code":  code,
		"error": message,
	})
}
