package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/models"
)

func materialSelect() sq.SelectBuilder {
	return psql.Select("mt.id", "mt.judul", "mt.deskripsi", "mt.tanggal_unggah", "mt.file", "mt.jadwal_makul_id").
		From("materi mt")
}

// ListMaterials returns materials newest first, optionally for one schedule entry.
func ListMaterials(ctx context.Context, database Queryer, role access.Role, entryID *int64) ([]models.Material, error) {
	q := materialSelect().Where(access.Visible(role, access.EntityMaterial)).OrderBy("mt.tanggal_unggah DESC", "mt.id DESC")
	if entryID != nil {
		q = q.Where(sq.Eq{"mt.jadwal_makul_id": *entryID})
	}
	return selectAll[models.Material](ctx, database, q, "materi")
}

func GetMaterial(ctx context.Context, database Queryer, role access.Role, id int64) (*models.Material, error) {
	q := materialSelect().Where(sq.Eq{"mt.id": id}).Where(access.Visible(role, access.EntityMaterial))
	return selectOne[models.Material](ctx, database, q, "materi")
}

func CreateMaterial(ctx context.Context, database Queryer, role access.Role, f Fields) (*models.Material, error) {
	id, err := insertReturningID(ctx, database, psql.Insert("materi").SetMap(f), "materi")
	if err != nil {
		return nil, err
	}
	return GetMaterial(ctx, database, access.SystemAdmin{}, id)
}

func UpdateMaterial(ctx context.Context, database Queryer, role access.Role, id int64, f Fields) (*models.Material, error) {
	if _, err := GetMaterial(ctx, database, role, id); err != nil {
		return nil, err
	}
	q := psql.Update("materi AS mt").SetMap(f).
		Where(sq.Eq{"mt.id": id}).
		Where(access.Mutable(role, access.EntityMaterial))
	if err := execAffected(ctx, database, q, "materi", apperr.Permission("materi is outside your teaching")); err != nil {
		return nil, err
	}
	return GetMaterial(ctx, database, access.SystemAdmin{}, id)
}

func DeleteMaterial(ctx context.Context, database Queryer, role access.Role, id int64) error {
	if _, err := GetMaterial(ctx, database, role, id); err != nil {
		return err
	}
	q := psql.Delete("materi AS mt").Where(sq.Eq{"mt.id": id}).Where(access.Mutable(role, access.EntityMaterial))
	return execAffected(ctx, database, q, "materi", apperr.Permission("materi is outside your teaching"))
}
