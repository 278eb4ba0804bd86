package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/models"
)

func classSelect() sq.SelectBuilder {
	return psql.Select(
		"k.id", "k.huruf", "k.prodi_id", "ps.kode AS prodi_kode", "ps.nama AS prodi_nama",
		"k.semester_no", "k.kurikulum_id", "ku.nama AS kurikulum_nama",
	).
		From("kelas k").
		Join("program_studi ps ON ps.id = k.prodi_id").
		LeftJoin("kurikulum ku ON ku.id = k.kurikulum_id")
}

func ListClasses(ctx context.Context, database Queryer, role access.Role) ([]models.Class, error) {
	q := classSelect().Where(access.Visible(role, access.EntityClass)).OrderBy("ps.nama", "k.semester_no", "k.huruf")
	return selectAll[models.Class](ctx, database, q, "kelas")
}

func GetClass(ctx context.Context, database Queryer, role access.Role, id int64) (*models.Class, error) {
	q := classSelect().Where(sq.Eq{"k.id": id}).Where(access.Visible(role, access.EntityClass))
	return selectOne[models.Class](ctx, database, q, "kelas")
}

func CreateClass(ctx context.Context, database Queryer, role access.Role, f Fields) (*models.Class, error) {
	id, err := insertReturningID(ctx, database, psql.Insert("kelas").SetMap(f), "kelas")
	if err != nil {
		return nil, err
	}
	return GetClass(ctx, database, role, id)
}

func UpdateClass(ctx context.Context, database Queryer, role access.Role, id int64, f Fields) (*models.Class, error) {
	if _, err := GetClass(ctx, database, role, id); err != nil {
		return nil, err
	}
	q := psql.Update("kelas AS k").SetMap(f).
		Where(sq.Eq{"k.id": id}).
		Where(access.Mutable(role, access.EntityClass))
	if err := execAffected(ctx, database, q, "kelas", apperr.Permission("kelas belongs to another program")); err != nil {
		return nil, err
	}
	return GetClass(ctx, database, access.SystemAdmin{}, id)
}

func DeleteClass(ctx context.Context, database Queryer, role access.Role, id int64) error {
	if _, err := GetClass(ctx, database, role, id); err != nil {
		return err
	}
	q := psql.Delete("kelas AS k").Where(sq.Eq{"k.id": id}).Where(access.Mutable(role, access.EntityClass))
	return execAffected(ctx, database, q, "kelas", apperr.Permission("kelas belongs to another program"))
}
