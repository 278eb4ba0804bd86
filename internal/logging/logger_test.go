package logging

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit_LevelFallback(t *testing.T) {
	l, err := Init("nonsense", "prod", "")
	require.NoError(t, err)
	defer l.Closer()
	assert.Equal(t, zapcore.InfoLevel, l.Level.Level())

	l2, err := Init("DEBUG", "dev", "v1")
	require.NoError(t, err)
	defer l2.Closer()
	assert.Equal(t, zapcore.DebugLevel, l2.Level.Level())
}

func TestLevelHandler_ChangesLevelAtRuntime(t *testing.T) {
	l, err := Init("info", "prod", "v1")
	require.NoError(t, err)
	defer l.Closer()
	require.False(t, l.Base.Core().Enabled(zapcore.DebugLevel))

	rec := httptest.NewRecorder()
	l.LevelHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"level":"debug"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, l.Base.Core().Enabled(zapcore.DebugLevel))

	rec = httptest.NewRecorder()
	l.LevelHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"level":"debug"}`, rec.Body.String())
}

func TestMiddleware_LevelsAndRoute(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := chi.NewRouter()
	r.Use(Middleware(zap.New(core)))
	r.Get("/kelas/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, p := range []string{"/kelas/7", "/ok"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "/kelas/{id}", entries[0].ContextMap()["route"])
	assert.Equal(t, int64(404), entries[0].ContextMap()["status"])
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "anonymous", entries[1].ContextMap()["role"])
}
