package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/models"
)

func courseSelect() sq.SelectBuilder {
	return psql.Select(
		"mk.id", "mk.kode", "mk.nama", "mk.jumlah_sks_teori", "mk.jumlah_sks_praktik",
		"mk.program_studi_id", "mk.semester", "mk.kurikulum_id",
	).From("mata_kuliah mk")
}

func ListCourses(ctx context.Context, database Queryer, role access.Role) ([]models.Course, error) {
	q := courseSelect().Where(access.Visible(role, access.EntityCourse)).OrderBy("mk.kode")
	return selectAll[models.Course](ctx, database, q, "mata_kuliah")
}

func GetCourse(ctx context.Context, database Queryer, role access.Role, kode string) (*models.Course, error) {
	q := courseSelect().Where(sq.Eq{"mk.kode": kode}).Where(access.Visible(role, access.EntityCourse))
	return selectOne[models.Course](ctx, database, q, "mata_kuliah")
}

// CourseVisible reports whether the role sees the course; for a lecturer this
// means the course is on their teaching schedule.
func CourseVisible(ctx context.Context, database Queryer, role access.Role, id int64) (bool, error) {
	return exists(ctx, database, psql.Select("1").From("mata_kuliah mk").
		Where(sq.Eq{"mk.id": id}).
		Where(access.Visible(role, access.EntityCourse)))
}

func CreateCourse(ctx context.Context, database Queryer, role access.Role, f Fields) (*models.Course, error) {
	if _, err := insertReturningID(ctx, database, psql.Insert("mata_kuliah").SetMap(f), "mata_kuliah"); err != nil {
		return nil, err
	}
	return GetCourse(ctx, database, access.SystemAdmin{}, f["kode"].(string))
}

func UpdateCourse(ctx context.Context, database Queryer, role access.Role, kode string, f Fields) (*models.Course, error) {
	if _, err := GetCourse(ctx, database, role, kode); err != nil {
		return nil, err
	}
	q := psql.Update("mata_kuliah AS mk").SetMap(f).
		Where(sq.Eq{"mk.kode": kode}).
		Where(access.Mutable(role, access.EntityCourse))
	if err := execAffected(ctx, database, q, "mata_kuliah", apperr.Permission("mata kuliah belongs to another program")); err != nil {
		return nil, err
	}
	if v, ok := f["kode"].(string); ok {
		kode = v
	}
	return GetCourse(ctx, database, access.SystemAdmin{}, kode)
}

func DeleteCourse(ctx context.Context, database Queryer, role access.Role, kode string) error {
	if _, err := GetCourse(ctx, database, role, kode); err != nil {
		return err
	}
	q := psql.Delete("mata_kuliah AS mk").Where(sq.Eq{"mk.kode": kode}).Where(access.Mutable(role, access.EntityCourse))
	return execAffected(ctx, database, q, "mata_kuliah", apperr.Permission("mata kuliah belongs to another program"))
}
