package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/ctxutil"
	"github.com/Spok95/siakad/internal/models"
)

func studentSelect() sq.SelectBuilder {
	return psql.Select(
		"m.id", "m.nim", "m.tanggal_lahir", "m.no_hp", "m.alamat", "m.foto_profil", "m.tahun_angkatan",
		"m.pembimbing_akademik_id", "pa.nama AS pembimbing_nama",
		"m.kelas_id", "k.huruf AS kelas_huruf", "k.semester_no AS kelas_semester",
		"k.prodi_id", "ps.nama AS prodi_nama", "ps.jurusan_id",
		"m.user_id", "u.username", "u.first_name", "u.last_name", "u.email",
	).
		From("mahasiswa m").
		Join("users u ON u.id = m.user_id").
		LeftJoin("kelas k ON k.id = m.kelas_id").
		LeftJoin("program_studi ps ON ps.id = k.prodi_id").
		LeftJoin("dosen pa ON pa.id = m.pembimbing_akademik_id")
}

func ListStudents(ctx context.Context, database Queryer, role access.Role) ([]models.Student, error) {
	q := studentSelect().Where(access.Visible(role, access.EntityStudent)).OrderBy("m.nim NULLS LAST", "m.id")
	return selectAll[models.Student](ctx, database, q, "mahasiswa")
}

func GetStudent(ctx context.Context, database Queryer, role access.Role, nim string) (*models.Student, error) {
	q := studentSelect().Where(sq.Eq{"m.nim": nim}).Where(access.Visible(role, access.EntityStudent))
	return selectOne[models.Student](ctx, database, q, "mahasiswa")
}

func getStudentByID(ctx context.Context, database Queryer, id int64) (*models.Student, error) {
	return selectOne[models.Student](ctx, database, studentSelect().Where(sq.Eq{"m.id": id}), "mahasiswa")
}

func CreateStudent(ctx context.Context, database Queryer, f Fields) (*models.Student, error) {
	id, err := insertReturningID(ctx, database, psql.Insert("mahasiswa").SetMap(f), "mahasiswa")
	if err != nil {
		return nil, err
	}
	return getStudentByID(ctx, database, id)
}

func UpdateStudent(ctx context.Context, database Queryer, role access.Role, nim string, f Fields) (*models.Student, error) {
	cur, err := GetStudent(ctx, database, role, nim)
	if err != nil {
		return nil, err
	}
	q := psql.Update("mahasiswa AS m").SetMap(f).
		Where(sq.Eq{"m.id": cur.ID}).
		Where(access.Mutable(role, access.EntityStudent))
	if err := execAffected(ctx, database, q, "mahasiswa", apperr.Permission("mahasiswa is outside your scope")); err != nil {
		return nil, err
	}
	return getStudentByID(ctx, database, cur.ID)
}

func DeleteStudent(ctx context.Context, database Queryer, role access.Role, nim string) error {
	if _, err := GetStudent(ctx, database, role, nim); err != nil {
		return err
	}
	q := psql.Delete("mahasiswa AS m").Where(sq.Eq{"m.nim": nim}).Where(access.Mutable(role, access.EntityStudent))
	return execAffected(ctx, database, q, "mahasiswa", apperr.Permission("mahasiswa is outside your scope"))
}

// EnsureStudentProfile returns the caller's mahasiswa row, creating an empty one
// on first use. Concurrent first calls still produce a single row.
func EnsureStudentProfile(ctx context.Context, database Queryer, userID int64) (*models.Student, error) {
	dbctx, cancel := ctxutil.WithDBTimeout(ctx)
	_, err := database.ExecContext(dbctx,
		`INSERT INTO mahasiswa (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	cancel()
	if err != nil {
		return nil, mapErr(err, "mahasiswa")
	}
	return selectOne[models.Student](ctx, database, studentSelect().Where(sq.Eq{"m.user_id": userID}), "mahasiswa")
}

// UpdateOwnProfile replaces the caller's profile fields, creating the row if needed.
func UpdateOwnProfile(ctx context.Context, database Queryer, userID int64, f Fields) (*models.Student, error) {
	if _, err := EnsureStudentProfile(ctx, database, userID); err != nil {
		return nil, err
	}
	q := psql.Update("mahasiswa").SetMap(f).Where(sq.Eq{"user_id": userID})
	if err := execAffected(ctx, database, q, "mahasiswa", nil); err != nil {
		return nil, err
	}
	return selectOne[models.Student](ctx, database, studentSelect().Where(sq.Eq{"m.user_id": userID}), "mahasiswa")
}

// StudentRef is the minimum needed to attach records to a student by NIM.
type StudentRef struct {
	ID        int64  `db:"id"`
	ClassID   *int64 `db:"kelas_id"`
	ProgramID *int64 `db:"prodi_id"`
}

// StudentByNIM resolves a NIM within the role's visibility.
func StudentByNIM(ctx context.Context, database Queryer, role access.Role, nim string) (*StudentRef, error) {
	q := psql.Select("m.id", "m.kelas_id", "k.prodi_id").
		From("mahasiswa m").
		LeftJoin("kelas k ON k.id = m.kelas_id").
		Where(sq.Eq{"m.nim": nim}).
		Where(access.Visible(role, access.EntityStudent))
	return selectOne[StudentRef](ctx, database, q, "mahasiswa")
}
