package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/models"
)

func lecturerSelect() sq.SelectBuilder {
	return psql.Select(
		"d.id", "d.nip", "d.nama", "d.email", "d.no_hp", "d.gelar",
		"d.prodi_id", "ps.nama AS prodi_nama", "d.foto_profil", "d.user_id",
	).
		From("dosen d").
		Join("program_studi ps ON ps.id = d.prodi_id")
}

func ListLecturers(ctx context.Context, database Queryer, role access.Role) ([]models.Lecturer, error) {
	q := lecturerSelect().Where(access.Visible(role, access.EntityLecturer)).OrderBy("d.nama")
	return selectAll[models.Lecturer](ctx, database, q, "dosen")
}

// GetLecturer returns a lecturer together with the courses they teach.
func GetLecturer(ctx context.Context, database Queryer, role access.Role, nip string) (*models.Lecturer, error) {
	l, err := selectOne[models.Lecturer](ctx, database,
		lecturerSelect().Where(sq.Eq{"d.nip": nip}).Where(access.Visible(role, access.EntityLecturer)),
		"dosen")
	if err != nil {
		return nil, err
	}
	l.Teaching, err = listEntries(ctx, database, sq.Eq{"jm.dosen_id": l.ID})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetLecturerByID skips visibility; used for snapshots and internal lookups.
func GetLecturerByID(ctx context.Context, database Queryer, id int64) (*models.Lecturer, error) {
	return selectOne[models.Lecturer](ctx, database, lecturerSelect().Where(sq.Eq{"d.id": id}), "dosen")
}

func CreateLecturer(ctx context.Context, database Queryer, role access.Role, f Fields) (*models.Lecturer, error) {
	if _, err := insertReturningID(ctx, database, psql.Insert("dosen").SetMap(f), "dosen"); err != nil {
		return nil, err
	}
	return GetLecturer(ctx, database, role, f["nip"].(string))
}

func UpdateLecturer(ctx context.Context, database Queryer, role access.Role, nip string, f Fields) (*models.Lecturer, error) {
	if _, err := GetLecturer(ctx, database, role, nip); err != nil {
		return nil, err
	}
	q := psql.Update("dosen AS d").SetMap(f).
		Where(sq.Eq{"d.nip": nip}).
		Where(access.Mutable(role, access.EntityLecturer))
	if err := execAffected(ctx, database, q, "dosen", apperr.Permission("dosen belongs to another program")); err != nil {
		return nil, err
	}
	if v, ok := f["nip"].(string); ok {
		nip = v
	}
	return GetLecturer(ctx, database, role, nip)
}

func DeleteLecturer(ctx context.Context, database Queryer, role access.Role, nip string) error {
	if _, err := GetLecturer(ctx, database, role, nip); err != nil {
		return err
	}
	q := psql.Delete("dosen AS d").Where(sq.Eq{"d.nip": nip}).Where(access.Mutable(role, access.EntityLecturer))
	return execAffected(ctx, database, q, "dosen", apperr.Permission("dosen belongs to another program"))
}
