package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/models"
)

// RefTable is a flat lookup table whose row type maps 1:1 onto its columns.
type RefTable[T any] struct {
	Table string
	Key   string
	What  string
	Order string
}

var (
	Curricula       = RefTable[models.Curriculum]{Table: "kurikulum", Key: "id", What: "kurikulum", Order: "tanggal_digunakan DESC"}
	Departments     = RefTable[models.Department]{Table: "jurusan", Key: "id", What: "jurusan", Order: "nama"}
	Semesters       = RefTable[models.Semester]{Table: "semester", Key: "no", What: "semester", Order: "no"}
	EducationLevels = RefTable[models.EducationLevel]{Table: "program_pendidikan", Key: "kode", What: "program_pendidikan", Order: "kode"}
	Buildings       = RefTable[models.Building]{Table: "gedung_kuliah", Key: "id", What: "gedung", Order: "nama"}
	DepartmentHeads = RefTable[models.DepartmentHead]{Table: "ketua_jurusan", Key: "id", What: "ketua_jurusan", Order: "id"}
	Coordinators    = RefTable[models.ProgramCoordinator]{Table: "koordinator_program_studi", Key: "id", What: "koordinator_prodi", Order: "id"}
)

func (t RefTable[T]) List(ctx context.Context, database Queryer) ([]T, error) {
	return selectAll[T](ctx, database, psql.Select("*").From(t.Table).OrderBy(t.Order), t.What)
}

func (t RefTable[T]) Get(ctx context.Context, database Queryer, key any) (*T, error) {
	return selectOne[T](ctx, database, psql.Select("*").From(t.Table).Where(sq.Eq{t.Key: key}), t.What)
}

func (t RefTable[T]) Create(ctx context.Context, database Queryer, f Fields) (*T, error) {
	return t.returning(ctx, database, psql.Insert(t.Table).SetMap(f).Suffix("RETURNING *"))
}

func (t RefTable[T]) Update(ctx context.Context, database Queryer, key any, f Fields) (*T, error) {
	return t.returning(ctx, database, psql.Update(t.Table).SetMap(f).Where(sq.Eq{t.Key: key}).Suffix("RETURNING *"))
}

func (t RefTable[T]) Delete(ctx context.Context, database Queryer, key any) error {
	return execAffected(ctx, database, psql.Delete(t.Table).Where(sq.Eq{t.Key: key}), t.What, nil)
}

func (t RefTable[T]) returning(ctx context.Context, database Queryer, b sq.Sqlizer) (*T, error) {
	return selectOne[T](ctx, database, b, t.What)
}
