// Package server exposes the dashboard sessions over a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/sheetmetrics/internal/config"
	"github.com/sells-group/sheetmetrics/internal/dashboard"
	"github.com/sells-group/sheetmetrics/internal/fetcher"
	"github.com/sells-group/sheetmetrics/internal/model"
	"github.com/sells-group/sheetmetrics/internal/store"
	"github.com/sells-group/sheetmetrics/internal/templategen"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

// multipart parts above this size spill to temp files.
const formMemory = 1 << 20

type ctxKey int

const (
	requestIDKey ctxKey = iota
	sessionKey
)

// Server routes API requests to the per-domain sessions.
type Server struct {
	sessions map[model.Domain]*dashboard.Session
	store    store.Store
	cfg      config.ServerConfig
	uploads  *rate.Limiter
}

// New creates a server over the given sessions. The store may be nil, in
// which case upload history is empty.
func New(sessions map[model.Domain]*dashboard.Session, st store.Store, cfg config.ServerConfig) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = fetcher.MaxUploadBytes
	}
	if cfg.UploadBurst < 1 {
		cfg.UploadBurst = 1
	}
	limit := rate.Inf
	if cfg.UploadRate > 0 {
		limit = rate.Limit(cfg.UploadRate)
	}
	return &Server{
		sessions: sessions,
		store:    st,
		cfg:      cfg,
		uploads:  rate.NewLimiter(limit, cfg.UploadBurst),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/{domain}", func(r chi.Router) {
		r.Use(s.withSession)
		r.With(s.limitUploads).Post("/upload", s.handleUpload)
		r.Get("/rows", s.handleRows)
		r.Get("/metrics", s.handleMetrics)
		r.Get("/filters", s.handleGetFilters)
		r.Put("/filters", s.handlePutFilters)
		r.Get("/uploads", s.handleUploads)
		r.Get("/template", s.handleTemplate)
	})
	return r
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestID returns the id assigned to the request carrying ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, err := model.ParseDomain(chi.URLParam(r, "domain"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		sess, ok := s.sessions[d]
		if !ok {
			writeError(w, http.StatusNotFound, "domain "+string(d)+" is not served")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))
	})
}

func sessionFrom(r *http.Request) *dashboard.Session {
	return r.Context().Value(sessionKey).(*dashboard.Session)
}

func (s *Server) limitUploads(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.uploads.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "upload rate exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.cfg.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds "+strconv.FormatInt(s.cfg.MaxUploadBytes, 10)+" bytes")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload exceeds "+strconv.FormatInt(s.cfg.MaxUploadBytes, 10)+" bytes")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, `missing form field "file"`)
		return
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload")
		return
	}
	wb, err := fetcher.Parse(data, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := sessionFrom(r).Load(r.Context(), wb)
	if err != nil {
		zap.L().Error("upload failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.String("file", header.Filename),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "upload failed")
		return
	}
	status := http.StatusOK
	if !res.Accepted {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

type rowsResponse struct {
	Domain      model.Domain          `json:"domain"`
	Upload      *model.UploadMetadata `json:"upload,omitempty"`
	Columns     []string              `json:"columns"`
	Total       int                   `json:"total"`
	Warnings    []string              `json:"warnings"`
	Errors      []string              `json:"errors"`
	Projects    []model.Project       `json:"projects,omitempty"`
	Instruments []model.Instrument    `json:"instruments,omitempty"`
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	v := sessionFrom(r).View("")
	writeJSON(w, http.StatusOK, rowsResponse{
		Domain:      v.Domain,
		Upload:      v.Upload,
		Columns:     v.Columns,
		Total:       len(v.Projects) + len(v.Instruments),
		Warnings:    v.Warnings,
		Errors:      v.Errors,
		Projects:    v.Projects,
		Instruments: v.Instruments,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	v := sessionFrom(r).View(r.URL.Query().Get("group_by"))
	v.Projects, v.Instruments = nil, nil
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).Filters())
}

func (s *Server) handlePutFilters(w http.ResponseWriter, r *http.Request) {
	var fs model.FilterState
	if err := json.NewDecoder(io.LimitReader(r.Body, formMemory)).Decode(&fs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter state")
		return
	}
	sess := sessionFrom(r)
	if err := sess.SetFilters(fs); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := sess.Persist(r.Context()); err != nil {
		zap.L().Error("persist filters failed", zap.String("domain", string(sess.Domain())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "persist filters failed")
		return
	}
	writeJSON(w, http.StatusOK, sess.Filters())
}

func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	out := []model.UploadMetadata{}
	if s.store == nil {
		writeJSON(w, http.StatusOK, out)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	uploads, err := s.store.ListUploads(r.Context(), sessionFrom(r).Domain(), limit)
	if err != nil {
		zap.L().Error("list uploads failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list uploads failed")
		return
	}
	writeJSON(w, http.StatusOK, append(out, uploads...))
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	d := sessionFrom(r).Domain()
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+templategen.DefaultFilename(d)+`"`)
	if err := templategen.Write(w, d); err != nil {
		zap.L().Error("write template failed", zap.String("domain", string(d)), zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
