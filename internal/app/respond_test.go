package app

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperr.Validation("x"), http.StatusBadRequest},
		{apperr.Conflict("mata_kuliah", "dup"), http.StatusBadRequest},
		{apperr.Unauthenticated("x"), http.StatusUnauthorized},
		{apperr.Permission("x"), http.StatusForbidden},
		{apperr.NotFound("khs"), http.StatusNotFound},
		{fmt.Errorf("wrap: %w", apperr.NotFound("x")), http.StatusNotFound},
		{apperr.Domain("ips of nothing"), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusOf(tc.err), tc.err.Error())
	}
}

func TestDeny(t *testing.T) {
	err := deny(access.Anonymous{}, access.ResKHS, access.ActRead)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	err = deny(access.Student{User: 1}, access.ResKHS, access.ActCreate)
	assert.ErrorIs(t, err, apperr.ErrPermission)
}

func TestDecode(t *testing.T) {
	newReq := func(body string) *http.Request {
		return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	}

	var dr departmentReq
	err := decode(newReq(""), &dr)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	err = decode(newReq("{"), &dr)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	var sr studentCreateReq
	err = decode(newReq(`{"nim":"12345678901","tahun_angkatan":1999}`), &sr)
	require.ErrorIs(t, err, apperr.ErrValidation)
	fields := apperr.FieldsOf(err)
	assert.Contains(t, fields, "nim")
	assert.Contains(t, fields, "tahun_angkatan")
	assert.Contains(t, fields, "user")

	var ar announcementReq
	err = decode(newReq(`{"judul":"a","sub_judul":"b","thumbnail":"t.png","link":"not a url"}`), &ar)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, []string{"Enter a valid URL."}, apperr.FieldsOf(err)["link"])
}

func TestDecodeGradeScore(t *testing.T) {
	newReq := func(body string) *http.Request {
		return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	}

	var g gradeReq
	err := decode(newReq(`{"mata_kuliah":3,"nilai":"abc"}`), &g)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, []string{"A valid number is required."}, apperr.FieldsOf(err)["nilai"])

	err = decode(newReq(`{"mata_kuliah":"x","nilai":80}`), &g)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, apperr.FieldsOf(err), "mata_kuliah")

	err = decode(newReq(`{"mata_kuliah":3}`), &g)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, apperr.FieldsOf(err), "nilai")

	g = gradeReq{}
	require.NoError(t, decode(newReq(`{"mata_kuliah":3,"nilai":"85.50"}`), &g))
	assert.Equal(t, int64(3), g.CourseID)
	require.NotNil(t, g.Score)
	assert.Equal(t, "85.5", g.Score.String())

	require.NoError(t, decode(newReq(`{"mata_kuliah":3,"nilai":70}`), &g))
	assert.Equal(t, "70", g.Score.String())
}

func TestProfileFieldsSkipOmitted(t *testing.T) {
	phone := "0812"
	f := (&profileReq{Phone: &phone}).fields()
	assert.Equal(t, "0812", f["no_hp"])
	assert.Len(t, f, 1)

	assert.Error(t, nonEmpty((&profileReq{}).fields()))
}

func TestAnnouncementPatchOnlySentFields(t *testing.T) {
	var p announcementPatch
	require.NoError(t, decode(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"judul":"Libur"}`)), &p))
	f := p.fields()
	assert.Equal(t, "Libur", f["judul"])
	assert.Len(t, f, 1)
}

func TestTokenRoundTrip(t *testing.T) {
	now := time.Now()
	tok, err := IssueToken(testSecret, 42, time.Hour, now)
	require.NoError(t, err)

	uid, err := ParseToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), uid)

	_, err = ParseToken([]byte("other"), tok)
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	old, err := IssueToken(testSecret, 42, time.Minute, now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = ParseToken(testSecret, old)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.Equal(t, "Token has expired.", apperr.DetailOf(err))
}

func TestOwnProgram(t *testing.T) {
	staff := access.DepartmentStaff{User: 2, ProgramID: 7}
	assert.NoError(t, ownProgram(staff, 7, "kelas"))
	assert.ErrorIs(t, ownProgram(staff, 8, "kelas"), apperr.ErrPermission)
	assert.NoError(t, ownProgram(access.SystemAdmin{User: 1}, 8, "kelas"))
}

func TestAsField(t *testing.T) {
	err := asField(apperr.NotFound("kelas"), "kelas", int64(9))
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, apperr.FieldsOf(err), "kelas")

	boom := errors.New("boom")
	assert.Same(t, boom, asField(boom, "kelas", 9))
	assert.NoError(t, asField(nil, "kelas", 9))
}
