package db

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/Spok95/siakad/internal/apperr"
)

const (
	codeUniqueViolation = "23505"
	codeFKViolation     = "23503"
	codeCheckViolation  = "23514"
)

// ConstraintGradeCourse guards one grade per course per KHS.
const ConstraintGradeCourse = "nilai_khs_khs_makul_uniq"

// constraint name -> request field reported to the client
var constraintFields = map[string]string{
	ConstraintGradeCourse:                       "mata_kuliah",
	"kurikulum_kode_key":                        "kode",
	"program_studi_kode_key":                    "kode",
	"program_pendidikan_pkey":                   "kode",
	"mata_kuliah_kode_key":                      "kode",
	"semester_pkey":                             "no",
	"ketua_jurusan_nomor_induk_key":             "nomor_induk",
	"koordinator_program_studi_nomor_induk_key": "nomor_induk",
	"users_username_key":                        "username",
	"upt_tik_no_induk_key":                      "no_induk",
	"staff_prodi_no_induk_key":                  "no_induk",
	"staff_prodi_user_id_key":                   "user",
	"dosen_nip_key":                             "nip",
	"dosen_user_id_key":                         "user",
	"mahasiswa_nim_key":                         "nim",
	"mahasiswa_user_id_key":                     "user",
	"jadwal_kelas_id_key":                       "kelas",
	"jadwal_makul_jam_chk":                      "jam_selesai",
}

type pgErr struct {
	code       string
	constraint string
	message    string
}

func asPgErr(err error) (pgErr, bool) {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		return pgErr{pge.Code, pge.ConstraintName, pge.Message}, true
	}
	var pqe *pq.Error
	if errors.As(err, &pqe) {
		return pgErr{string(pqe.Code), pqe.Constraint, pqe.Message}, true
	}
	return pgErr{}, false
}

// IsUniqueViolation reports a duplicate key, optionally on a specific constraint.
func IsUniqueViolation(err error, constraint string) bool {
	pe, ok := asPgErr(err)
	if !ok || pe.code != codeUniqueViolation {
		return false
	}
	return constraint == "" || pe.constraint == constraint
}

func fieldOf(constraint string) string {
	if f, ok := constraintFields[constraint]; ok {
		return f
	}
	return "non_field_errors"
}

// mapErr turns driver errors into the apperr taxonomy. what names the entity
// for NotFound messages.
func mapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(what)
	}
	pe, ok := asPgErr(err)
	if !ok {
		return err
	}
	field := fieldOf(pe.constraint)
	switch pe.code {
	case codeUniqueViolation:
		if pe.constraint == ConstraintGradeCourse {
			return apperr.Conflict(field, "mata_kuliah already has a grade in this khs")
		}
		return apperr.Conflict(field, what+" with this "+field+" already exists")
	case codeFKViolation:
		if strings.Contains(pe.message, "still referenced") || strings.Contains(pe.message, "update or delete") {
			return apperr.Validation(what + " is still referenced by other records")
		}
		return apperr.FieldValidation(referencedField(pe.constraint), "referenced record does not exist")
	case codeCheckViolation:
		return apperr.FieldValidation(field, "value out of allowed range")
	}
	return err
}

// referencedField extracts the column from postgres' default FK names
// (<table>_<column>_fkey) and drops the _id suffix.
func referencedField(constraint string) string {
	c := strings.TrimSuffix(constraint, "_fkey")
	for _, col := range []string{
		"pembimbing_akademik_id", "program_pendidikan_kode", "program_studi_id", "mata_kuliah_id",
		"pemberitahuan_id", "jadwal_makul_id", "semester_no", "kurikulum_id", "mahasiswa_id",
		"ruangan_id", "jurusan_id", "gedung_id", "jadwal_id", "prodi_id", "kelas_id",
		"dosen_id", "user_id", "khs_id",
	} {
		if strings.HasSuffix(c, "_"+col) {
			return strings.TrimSuffix(strings.TrimSuffix(col, "_id"), "_no")
		}
	}
	return "non_field_errors"
}
