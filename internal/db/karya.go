package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/models"
)

func workSelect() sq.SelectBuilder {
	return psql.Select(
		"ki.id", "ki.judul", "ki.abstrak", "ki.tanggal_terbit", "ki.link_versi_full", "ki.tipe",
		"ki.file_preview", "ki.mahasiswa_id", "m.nim",
		"NULLIF(TRIM(u.first_name || ' ' || u.last_name), '') AS mahasiswa_nama",
		"ki.prodi_id", "ps.nama AS prodi_nama",
	).
		From("karya_ilmiah ki").
		LeftJoin("mahasiswa m ON m.id = ki.mahasiswa_id").
		LeftJoin("users u ON u.id = m.user_id").
		LeftJoin("program_studi ps ON ps.id = ki.prodi_id")
}

func withTypeLabels(ws []models.ScientificWork) []models.ScientificWork {
	for i := range ws {
		ws[i].TypeLabel = ws[i].Type.Label()
	}
	return ws
}

func ListScientificWorks(ctx context.Context, database Queryer, role access.Role) ([]models.ScientificWork, error) {
	q := workSelect().Where(access.Visible(role, access.EntityScientificWork)).OrderBy("ki.tanggal_terbit DESC", "ki.id DESC")
	out, err := selectAll[models.ScientificWork](ctx, database, q, "karya_ilmiah")
	return withTypeLabels(out), err
}

func GetScientificWork(ctx context.Context, database Queryer, role access.Role, id int64) (*models.ScientificWork, error) {
	w, err := selectOne[models.ScientificWork](ctx, database,
		workSelect().Where(sq.Eq{"ki.id": id}).Where(access.Visible(role, access.EntityScientificWork)),
		"karya_ilmiah")
	if err != nil {
		return nil, err
	}
	w.TypeLabel = w.Type.Label()
	return w, nil
}

func CreateScientificWork(ctx context.Context, database Queryer, role access.Role, f Fields) (*models.ScientificWork, error) {
	id, err := insertReturningID(ctx, database, psql.Insert("karya_ilmiah").SetMap(f), "karya_ilmiah")
	if err != nil {
		return nil, err
	}
	return GetScientificWork(ctx, database, access.SystemAdmin{}, id)
}

func UpdateScientificWork(ctx context.Context, database Queryer, role access.Role, id int64, f Fields) (*models.ScientificWork, error) {
	if _, err := GetScientificWork(ctx, database, role, id); err != nil {
		return nil, err
	}
	q := psql.Update("karya_ilmiah AS ki").SetMap(f).
		Where(sq.Eq{"ki.id": id}).
		Where(access.Mutable(role, access.EntityScientificWork))
	if err := execAffected(ctx, database, q, "karya_ilmiah", apperr.Permission("karya ilmiah is outside your scope")); err != nil {
		return nil, err
	}
	return GetScientificWork(ctx, database, access.SystemAdmin{}, id)
}

func DeleteScientificWork(ctx context.Context, database Queryer, role access.Role, id int64) error {
	if _, err := GetScientificWork(ctx, database, role, id); err != nil {
		return err
	}
	q := psql.Delete("karya_ilmiah AS ki").Where(sq.Eq{"ki.id": id}).Where(access.Mutable(role, access.EntityScientificWork))
	return execAffected(ctx, database, q, "karya_ilmiah", apperr.Permission("karya ilmiah is outside your scope"))
}
