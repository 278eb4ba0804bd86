package db

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/siakad/internal/apperr"
)

func TestMapErr(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		kind  error
		field string
	}{
		{"no rows", sql.ErrNoRows, apperr.ErrNotFound, ""},
		{"grade unique", &pgconn.PgError{Code: "23505", ConstraintName: ConstraintGradeCourse}, apperr.ErrConflict, "mata_kuliah"},
		{"nim unique via pq", &pq.Error{Code: "23505", Constraint: "mahasiswa_nim_key"}, apperr.ErrConflict, "nim"},
		{"unknown unique", &pgconn.PgError{Code: "23505", ConstraintName: "whatever"}, apperr.ErrConflict, "non_field_errors"},
		{"missing fk target", &pgconn.PgError{Code: "23503", ConstraintName: "kelas_prodi_id_fkey",
			Message: `insert or update on table "kelas" violates foreign key constraint`}, apperr.ErrValidation, "prodi"},
		{"still referenced", &pgconn.PgError{Code: "23503", ConstraintName: "kelas_prodi_id_fkey",
			Message: `update or delete on table "program_studi" violates foreign key constraint`}, apperr.ErrValidation, ""},
		{"check", &pgconn.PgError{Code: "23514", ConstraintName: "jadwal_makul_jam_chk"}, apperr.ErrValidation, "jam_selesai"},
		{"wrapped", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", ConstraintName: "dosen_nip_key"}), apperr.ErrConflict, "nip"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapErr(tc.err, "x")
			require.ErrorIs(t, got, tc.kind)
			if tc.field != "" {
				assert.Contains(t, apperr.FieldsOf(got), tc.field)
			}
		})
	}
}

func TestMapErr_PassThrough(t *testing.T) {
	assert.NoError(t, mapErr(nil, "x"))
	boom := errors.New("boom")
	assert.Same(t, boom, mapErr(boom, "x"))
}

func TestReferencedField(t *testing.T) {
	assert.Equal(t, "pembimbing_akademik", referencedField("mahasiswa_pembimbing_akademik_id_fkey"))
	assert.Equal(t, "mata_kuliah", referencedField("nilai_khs_mata_kuliah_id_fkey"))
	assert.Equal(t, "semester", referencedField("kelas_semester_no_fkey"))
	assert.Equal(t, "program_pendidikan_kode", referencedField("program_studi_program_pendidikan_kode_fkey"))
	assert.Equal(t, "non_field_errors", referencedField("odd"))
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: ConstraintGradeCourse}
	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, ConstraintGradeCourse))
	assert.False(t, IsUniqueViolation(err, "other"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
}
