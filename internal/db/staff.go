package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/models"
)

func staffSelect() sq.SelectBuilder {
	return psql.Select(
		"s.id", "s.no_induk", "s.no_hp", "s.prodi_id", "ps.kode AS prodi_kode", "ps.nama AS prodi_nama",
		"s.user_id", "u.username", "u.first_name", "u.last_name", "u.email",
	).
		From("staff_prodi s").
		Join("users u ON u.id = s.user_id").
		Join("program_studi ps ON ps.id = s.prodi_id")
}

func ListStaff(ctx context.Context, database Queryer, role access.Role) ([]models.Staff, error) {
	q := staffSelect().Where(access.Visible(role, access.EntityStaff)).OrderBy("s.no_induk")
	return selectAll[models.Staff](ctx, database, q, "staff_prodi")
}

func GetStaff(ctx context.Context, database Queryer, role access.Role, noInduk string) (*models.Staff, error) {
	q := staffSelect().Where(sq.Eq{"s.no_induk": noInduk}).Where(access.Visible(role, access.EntityStaff))
	return selectOne[models.Staff](ctx, database, q, "staff_prodi")
}

func CreateStaff(ctx context.Context, database Queryer, f Fields) (*models.Staff, error) {
	if _, err := insertReturningID(ctx, database, psql.Insert("staff_prodi").SetMap(f), "staff_prodi"); err != nil {
		return nil, err
	}
	return GetStaff(ctx, database, access.SystemAdmin{}, f["no_induk"].(string))
}

// UpdateStaff replaces a staff profile. Staff may only edit their own row.
func UpdateStaff(ctx context.Context, database Queryer, role access.Role, noInduk string, f Fields) (*models.Staff, error) {
	if _, err := GetStaff(ctx, database, role, noInduk); err != nil {
		return nil, err
	}
	q := psql.Update("staff_prodi AS s").SetMap(f).
		Where(sq.Eq{"s.no_induk": noInduk}).
		Where(access.Mutable(role, access.EntityStaff))
	if err := execAffected(ctx, database, q, "staff_prodi", apperr.Permission("not your profile")); err != nil {
		return nil, err
	}
	if v, ok := f["no_induk"].(string); ok {
		noInduk = v
	}
	return GetStaff(ctx, database, role, noInduk)
}

func DeleteStaff(ctx context.Context, database Queryer, noInduk string) error {
	return execAffected(ctx, database, psql.Delete("staff_prodi").Where(sq.Eq{"no_induk": noInduk}), "staff_prodi", nil)
}
