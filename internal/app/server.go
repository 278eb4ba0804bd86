package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/db"
	"github.com/Spok95/siakad/internal/logging"
	"github.com/Spok95/siakad/internal/metrics"
	"github.com/Spok95/siakad/internal/models"
)

// ComplaintNotifier is told about every newly filed room complaint.
type ComplaintNotifier interface {
	ComplaintFiled(ctx context.Context, c models.Complaint, room models.Room, nim string)
}

// BackupTrigger asks the backup sidecar for a fresh dump.
type BackupTrigger interface {
	TriggerBackup(ctx context.Context) (string, error)
}

type Server struct {
	DB          *sqlx.DB
	Log         *zap.Logger
	Secret      []byte
	Loc         *time.Location
	Institution string
	Notifier    ComplaintNotifier // nil disables notifications
	Backup      BackupTrigger     // nil disables /admin/backup
	LogLevel    http.Handler      // GET/PUT {"level": ...}; nil disables /admin/log-level
	ResolveRole func(ctx context.Context, userID int64) (access.Role, error)
	Now         func() time.Time
}

func NewServer(database *sqlx.DB, log *zap.Logger, secret []byte, loc *time.Location) *Server {
	if loc == nil {
		loc = time.UTC
	}
	return &Server{
		DB:     database,
		Log:    log,
		Secret: secret,
		Loc:    loc,
		ResolveRole: func(ctx context.Context, userID int64) (access.Role, error) {
			return db.ResolveRole(ctx, database, userID)
		},
		Now: time.Now,
	}
}

// today is the calendar date in the configured time zone.
func (s *Server) today() time.Time {
	return s.Now().In(s.Loc)
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.StripSlashes)
	r.Use(requestID, observe, s.recoverer, s.authenticate, logging.Middleware(s.Log))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, apperr.NotFound("route"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Detail: "Method \"" + r.Method + "\" not allowed."})
	})

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", metrics.Handler())
	r.Post("/admin/backup", s.guard(access.ResBackup, access.ActCreate, s.triggerBackup))
	r.Get("/admin/log-level", s.guard(access.ResLogLevel, access.ActRead, s.logLevel))
	r.Put("/admin/log-level", s.guard(access.ResLogLevel, access.ActUpdate, s.logLevel))

	r.Route("/academic", s.academic)
	return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
	defer cancel()
	t0 := time.Now()
	if err := s.DB.PingContext(ctx); err != nil {
		http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	metrics.ObserveDBPing(time.Since(t0))
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) triggerBackup(w http.ResponseWriter, r *http.Request) {
	if s.Backup == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Detail: "backup is not configured"})
		return
	}
	path, err := s.Backup.TriggerBackup(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.Log.Info("backup created", zap.String("path", path))
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

// logLevel hands the request to the process logger's atomic level.
func (s *Server) logLevel(w http.ResponseWriter, r *http.Request) {
	if s.LogLevel == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Detail: "log level is not adjustable"})
		return
	}
	s.LogLevel.ServeHTTP(w, r)
}

type HTTPServer struct {
	srv  *http.Server
	done chan struct{}
}

// Wait blocks until the server has shut down.
func (h *HTTPServer) Wait() { <-h.done }

// StartHTTP serves h on addr until ctx is cancelled.
func StartHTTP(ctx context.Context, addr string, h http.Handler, log *zap.Logger) *HTTPServer {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", zap.Error(err))
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx) // закрываем аккуратно
	}()

	return &HTTPServer{srv: srv, done: done}
}
