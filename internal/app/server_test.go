package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
)

var testSecret = []byte("test-secret")

type fakeBackup struct {
	path string
	err  error
}

func (f fakeBackup) TriggerBackup(context.Context) (string, error) { return f.path, f.err }

// newTestServer has no database: every request below must be answered before
// a query would run.
func newTestServer(roles map[int64]access.Role) *Server {
	s := NewServer(nil, zap.NewNop(), testSecret, time.UTC)
	s.ResolveRole = func(_ context.Context, uid int64) (access.Role, error) {
		if r, ok := roles[uid]; ok {
			return r, nil
		}
		return nil, apperr.Unauthenticated("unknown user")
	}
	return s
}

var testRoles = map[int64]access.Role{
	1: access.SystemAdmin{User: 1},
	2: access.DepartmentStaff{User: 2, StaffID: 20, ProgramID: 7},
	3: access.Lecturer{User: 3, LecturerID: 30, ProgramID: 7},
	4: access.Student{User: 4, StudentID: 40, ClassID: 5, ProgramID: 7, DepartmentID: 1},
}

func bearer(t *testing.T, uid int64) string {
	t.Helper()
	tok, err := IssueToken(testSecret, uid, time.Hour, time.Now())
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(t *testing.T, h http.Handler, method, path, auth, body string) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var eb errorBody
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &eb)
	}
	return rec, eb
}

func TestRoutes_AnonymousOnProtectedRouteIs401(t *testing.T) {
	h := newTestServer(testRoles).Routes()

	rec, body := do(t, h, http.MethodGet, "/academic/mahasiswa", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, body.Detail)
}

func TestRoutes_AnonymousWriteOnPublicResourceIs401(t *testing.T) {
	h := newTestServer(testRoles).Routes()

	rec, _ := do(t, h, http.MethodPost, "/academic/kelas", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/academic/jurusan", "", `{"nama":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_BadTokenIs401(t *testing.T) {
	h := newTestServer(testRoles).Routes()

	rec, body := do(t, h, http.MethodGet, "/academic/jurusan", "Bearer nope", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Given token not valid.", body.Detail)

	rec, _ = do(t, h, http.MethodGet, "/academic/jurusan", "Token abc", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_WrongRoleIs403(t *testing.T) {
	h := newTestServer(testRoles).Routes()

	cases := []struct {
		method, path string
		uid          int64
	}{
		{http.MethodGet, "/academic/mahasiswa", 4},
		{http.MethodPost, "/academic/jurusan", 2},
		{http.MethodPost, "/academic/khs", 3},
		{http.MethodDelete, "/academic/khs/1/nilai/2", 3},
		{http.MethodPost, "/academic/ruangan/1/aduan", 1},
		{http.MethodGet, "/academic/mahasiswa/me", 2},
		{http.MethodPost, "/admin/backup", 2},
		{http.MethodPut, "/admin/log-level", 2},
		{http.MethodGet, "/academic/staff_prodi", 2},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec, _ := do(t, h, tc.method, tc.path, bearer(t, tc.uid), `{}`)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestRoutes_ValidationBeforeDatabase(t *testing.T) {
	h := newTestServer(testRoles).Routes()

	rec, body := do(t, h, http.MethodPost, "/academic/jurusan", bearer(t, 1), `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body.Errors, "nama")

	rec, body = do(t, h, http.MethodPost, "/academic/semester", bearer(t, 1), `{"no":"tiga"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body.Errors, "no")

	rec, body = do(t, h, http.MethodPost, "/academic/khs", bearer(t, 2),
		`{"nim":"2201001","tahun_akademik_awal":2024,"tahun_akademik_akhir":2023}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body.Errors, "tahun_akademik_akhir")
}

func TestRoutes_StaffWritesStayInOwnProgram(t *testing.T) {
	h := newTestServer(testRoles).Routes()

	rec, _ := do(t, h, http.MethodPost, "/academic/kelas", bearer(t, 2), `{"huruf":"A","prodi":8,"semester":1}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = do(t, h, http.MethodPost, "/academic/makul", bearer(t, 2),
		`{"kode":"X1","nama":"X","jumlah_sks_teori":2,"jumlah_sks_praktik":0,"program_studi":8}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRoutes_ScheduleEntryTimesChecked(t *testing.T) {
	req := scheduleEntryReq{}
	require.NoError(t, json.Unmarshal([]byte(`{"jam_mulai":"10:00","jam_selesai":"08:00","ruangan":1,"mata_kuliah":1}`), &req))
	err := req.check()
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestRoutes_GenerateDocumentUnknownModel(t *testing.T) {
	h := newTestServer(testRoles).Routes()

	rec, body := do(t, h, http.MethodGet, "/academic/generate_pdf?model=krs&khs_id=1", bearer(t, 4), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body.Errors, "model")

	rec, body = do(t, h, http.MethodGet, "/academic/generate_pdf?model=khs&khs_id=x", bearer(t, 4), "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body.Errors, "khs_id")

	rec, _ = do(t, h, http.MethodGet, "/academic/generate_pdf?model=khs&khs_id=1", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_AdminBackup(t *testing.T) {
	s := newTestServer(testRoles)
	h := s.Routes()

	rec, _ := do(t, h, http.MethodPost, "/admin/backup", bearer(t, 1), "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s.Backup = fakeBackup{path: "/backups/siakad-20240509.dump"}
	rec, _ = do(t, h, http.MethodPost, "/admin/backup", bearer(t, 1), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"path":"/backups/siakad-20240509.dump"}`, rec.Body.String())

	s.Backup = fakeBackup{err: errors.New("sidecar down")}
	rec, body := do(t, h, http.MethodPost, "/admin/backup", bearer(t, 1), "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body.Detail)
}

func TestRoutes_AdminLogLevel(t *testing.T) {
	s := newTestServer(testRoles)
	h := s.Routes()

	rec, _ := do(t, h, http.MethodGet, "/admin/log-level", bearer(t, 1), "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	lvl := zap.NewAtomicLevelAt(zap.InfoLevel)
	s.LogLevel = lvl
	rec, _ = do(t, h, http.MethodPut, "/admin/log-level", bearer(t, 1), `{"level":"warn"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, zap.WarnLevel, lvl.Level())

	rec, _ = do(t, h, http.MethodGet, "/admin/log-level", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_RecoversFromPanic(t *testing.T) {
	s := newTestServer(testRoles)
	s.ResolveRole = func(context.Context, int64) (access.Role, error) { panic("boom") }
	h := s.Routes()

	rec, body := do(t, h, http.MethodGet, "/academic/jurusan", bearer(t, 1), "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", body.Detail)
}

func TestRoutes_UnknownRouteAndRequestID(t *testing.T) {
	h := newTestServer(testRoles).Routes()

	req := httptest.NewRequest(http.MethodGet, "/academic/nope", nil)
	req.Header.Set(requestIDHeader, "rid-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "rid-1", rec.Header().Get(requestIDHeader))

	rec, _ = do(t, h, http.MethodGet, "/academic/nope", "", "")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRoutes_TokenForDeletedUserIs401(t *testing.T) {
	h := newTestServer(testRoles).Routes()

	rec, _ := do(t, h, http.MethodGet, "/academic/jurusan", bearer(t, 99), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
