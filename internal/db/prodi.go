package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/models"
)

func programSelect() sq.SelectBuilder {
	return psql.Select(
		"ps.id", "ps.kode", "ps.nama", "ps.jurusan_id", "j.nama AS jurusan_nama",
		"ps.program_pendidikan_kode", "pp.nama AS program_pendidikan_nama",
		"ps.no_sk", "ps.tanggal_sk", "ps.tahun_operasional", "ps.akreditasi",
	).
		From("program_studi ps").
		Join("jurusan j ON j.id = ps.jurusan_id").
		Join("program_pendidikan pp ON pp.kode = ps.program_pendidikan_kode")
}

func ListPrograms(ctx context.Context, database Queryer) ([]models.Program, error) {
	return selectAll[models.Program](ctx, database, programSelect().OrderBy("ps.kode"), "prodi")
}

func GetProgram(ctx context.Context, database Queryer, kode string) (*models.Program, error) {
	return selectOne[models.Program](ctx, database, programSelect().Where(sq.Eq{"ps.kode": kode}), "prodi")
}

func GetProgramByID(ctx context.Context, database Queryer, id int64) (*models.Program, error) {
	return selectOne[models.Program](ctx, database, programSelect().Where(sq.Eq{"ps.id": id}), "prodi")
}

func CreateProgram(ctx context.Context, database Queryer, f Fields) (*models.Program, error) {
	id, err := insertReturningID(ctx, database, psql.Insert("program_studi").SetMap(f), "prodi")
	if err != nil {
		return nil, err
	}
	return GetProgramByID(ctx, database, id)
}

// UpdateProgram replaces a program addressed by kode. Department staff may only
// update their own program.
func UpdateProgram(ctx context.Context, database Queryer, role access.Role, kode string, f Fields) (*models.Program, error) {
	if _, err := GetProgram(ctx, database, kode); err != nil {
		return nil, err
	}
	q := psql.Update("program_studi AS ps").SetMap(f).
		Where(sq.Eq{"ps.kode": kode}).
		Where(access.Mutable(role, access.EntityProgram))
	if err := execAffected(ctx, database, q, "prodi", apperr.Permission("prodi belongs to another program")); err != nil {
		return nil, err
	}
	if v, ok := f["kode"].(string); ok {
		kode = v
	}
	return GetProgram(ctx, database, kode)
}

func DeleteProgram(ctx context.Context, database Queryer, kode string) error {
	return execAffected(ctx, database, psql.Delete("program_studi").Where(sq.Eq{"kode": kode}), "prodi", nil)
}
