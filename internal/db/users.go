package db

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/ctxutil"
	"github.com/Spok95/siakad/internal/models"
)

func CreateUser(ctx context.Context, database Queryer, u models.User) (int64, error) {
	if !access.Kind(u.Kind).Valid() {
		return 0, apperr.FieldValidation("kind", "unknown user kind")
	}
	return insertReturningID(ctx, database, psql.Insert("users").SetMap(Fields{
		"username":   u.Username,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"email":      u.Email,
		"kind":       u.Kind,
	}), "user")
}

func GetUser(ctx context.Context, database Queryer, id int64) (*models.User, error) {
	return selectOne[models.User](ctx, database,
		psql.Select("id", "username", "first_name", "last_name", "email", "kind").From("users").Where(sq.Eq{"id": id}),
		"user")
}

// CreateSystemAdminProfile attaches a UPT TIK profile to a user.
func CreateSystemAdminProfile(ctx context.Context, database Queryer, p models.SystemAdminProfile) (int64, error) {
	return insertReturningID(ctx, database, psql.Insert("upt_tik").SetMap(Fields{
		"no_induk": p.RegNo,
		"no_hp":    p.Phone,
		"user_id":  p.UserID,
	}), "upt_tik")
}

// ResolveRole builds the caller's role from users.kind and the matching profile.
// A user whose profile row is missing gets a role with an empty scope.
func ResolveRole(ctx context.Context, database Queryer, userID int64) (access.Role, error) {
	u, err := GetUser(ctx, database, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthenticated("unknown user")
		}
		return nil, err
	}

	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	switch access.Kind(u.Kind) {
	case access.KindSystemAdmin:
		return access.SystemAdmin{User: u.ID}, nil

	case access.KindDepartmentStaff:
		r := access.DepartmentStaff{User: u.ID}
		err := database.QueryRowxContext(ctx,
			`SELECT id, prodi_id FROM staff_prodi WHERE user_id = $1`, u.ID).
			Scan(&r.StaffID, &r.ProgramID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return r, nil

	case access.KindLecturer:
		r := access.Lecturer{User: u.ID}
		err := database.QueryRowxContext(ctx,
			`SELECT id, prodi_id FROM dosen WHERE user_id = $1`, u.ID).
			Scan(&r.LecturerID, &r.ProgramID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return r, nil

	case access.KindStudent:
		r := access.Student{User: u.ID}
		var classID, programID, deptID sql.NullInt64
		err := database.QueryRowxContext(ctx, `
			SELECT m.id, m.kelas_id, k.prodi_id, ps.jurusan_id
			FROM mahasiswa m
			LEFT JOIN kelas k ON k.id = m.kelas_id
			LEFT JOIN program_studi ps ON ps.id = k.prodi_id
			WHERE m.user_id = $1`, u.ID).
			Scan(&r.StudentID, &classID, &programID, &deptID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		r.ClassID, r.ProgramID, r.DepartmentID = classID.Int64, programID.Int64, deptID.Int64
		return r, nil
	}
	return nil, apperr.Unauthenticated("user has no role")
}
