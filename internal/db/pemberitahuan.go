package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/ctxutil"
	"github.com/Spok95/siakad/internal/models"
)

func announcementSelect() sq.SelectBuilder {
	return psql.Select(
		"p.id", "p.judul", "p.sub_judul", "p.detail", "p.tanggal_terbit", "p.tanggal_hapus",
		"p.thumbnail", "p.file", "p.link",
	).From("pemberitahuan p")
}

// ListAnnouncements returns the announcements visible to role that have not
// expired as of today, newest first, with their filters.
func ListAnnouncements(ctx context.Context, database Queryer, role access.Role, today models.Date) ([]models.Announcement, error) {
	q := announcementSelect().
		Where(access.Visible(role, access.EntityAnnouncement)).
		Where(sq.Or{sq.Eq{"p.tanggal_hapus": nil}, sq.GtOrEq{"p.tanggal_hapus": today}}).
		OrderBy("p.tanggal_terbit DESC", "p.id DESC")
	out, err := selectAll[models.Announcement](ctx, database, q, "pemberitahuan")
	if err != nil || len(out) == 0 {
		return out, err
	}
	ids := make([]int64, len(out))
	idx := make(map[int64]int, len(out))
	for i, a := range out {
		ids[i] = a.ID
		idx[a.ID] = i
		out[i].Programs = []models.AnnouncementProgram{}
		out[i].Departments = []models.AnnouncementDepartment{}
	}
	progs, err := selectAll[models.AnnouncementProgram](ctx, database, programFilterSelect().Where(sq.Eq{"pp.pemberitahuan_id": ids}), "pemberitahuan_prodi")
	if err != nil {
		return nil, err
	}
	for _, f := range progs {
		i := idx[f.AnnouncementID]
		out[i].Programs = append(out[i].Programs, f)
	}
	depts, err := selectAll[models.AnnouncementDepartment](ctx, database, deptFilterSelect().Where(sq.Eq{"pj.pemberitahuan_id": ids}), "pemberitahuan_jurusan")
	if err != nil {
		return nil, err
	}
	for _, f := range depts {
		i := idx[f.AnnouncementID]
		out[i].Departments = append(out[i].Departments, f)
	}
	return out, nil
}

func GetAnnouncement(ctx context.Context, database Queryer, role access.Role, id int64) (*models.Announcement, error) {
	a, err := selectOne[models.Announcement](ctx, database,
		announcementSelect().Where(sq.Eq{"p.id": id}).Where(access.Visible(role, access.EntityAnnouncement)),
		"pemberitahuan")
	if err != nil {
		return nil, err
	}
	if a.Programs, err = ListProgramFilters(ctx, database, id); err != nil {
		return nil, err
	}
	if a.Departments, err = ListDepartmentFilters(ctx, database, id); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAnnouncement inserts an announcement. Department staff announcements are
// filtered to the staff's program in the same transaction.
func CreateAnnouncement(ctx context.Context, database *sqlx.DB, role access.Role, f Fields) (*models.Announcement, error) {
	var id int64
	err := InTx(ctx, database, func(tx *sqlx.Tx) error {
		var err error
		id, err = insertReturningID(ctx, tx, psql.Insert("pemberitahuan").SetMap(f), "pemberitahuan")
		if err != nil {
			return err
		}
		if staff, ok := role.(access.DepartmentStaff); ok {
			_, err = insertReturningID(ctx, tx, psql.Insert("pemberitahuan_prodi").
				Columns("pemberitahuan_id", "prodi_id").Values(id, staff.ProgramID), "pemberitahuan_prodi")
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return GetAnnouncement(ctx, database, role, id)
}

func PatchAnnouncement(ctx context.Context, database Queryer, role access.Role, id int64, f Fields) (*models.Announcement, error) {
	if _, err := GetAnnouncement(ctx, database, role, id); err != nil {
		return nil, err
	}
	if len(f) > 0 {
		q := psql.Update("pemberitahuan AS p").SetMap(f).
			Where(sq.Eq{"p.id": id}).
			Where(access.Mutable(role, access.EntityAnnouncement))
		if err := execAffected(ctx, database, q, "pemberitahuan", apperr.Permission("announcement is not filtered to your program")); err != nil {
			return nil, err
		}
	}
	return GetAnnouncement(ctx, database, role, id)
}

func DeleteAnnouncement(ctx context.Context, database Queryer, role access.Role, id int64) error {
	if _, err := GetAnnouncement(ctx, database, role, id); err != nil {
		return err
	}
	q := psql.Delete("pemberitahuan AS p").Where(sq.Eq{"p.id": id}).Where(access.Mutable(role, access.EntityAnnouncement))
	return execAffected(ctx, database, q, "pemberitahuan", apperr.Permission("announcement is not filtered to your program"))
}

// PurgeExpired deletes announcements whose tanggal_hapus is before today.
func PurgeExpired(ctx context.Context, database Queryer, today models.Date) (int64, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	query, args, err := psql.Delete("pemberitahuan").Where(sq.Lt{"tanggal_hapus": today}).ToSql()
	if err != nil {
		return 0, err
	}
	res, err := database.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func programFilterSelect() sq.SelectBuilder {
	return psql.Select("pp.id", "pp.pemberitahuan_id", "pp.prodi_id", "ps.kode AS prodi_kode", "ps.nama AS prodi_nama").
		From("pemberitahuan_prodi pp").
		Join("program_studi ps ON ps.id = pp.prodi_id")
}

func deptFilterSelect() sq.SelectBuilder {
	return psql.Select("pj.id", "pj.pemberitahuan_id", "pj.jurusan_id", "j.nama AS jurusan_nama").
		From("pemberitahuan_jurusan pj").
		Join("jurusan j ON j.id = pj.jurusan_id")
}

func ListProgramFilters(ctx context.Context, database Queryer, announcementID int64) ([]models.AnnouncementProgram, error) {
	return selectAll[models.AnnouncementProgram](ctx, database,
		programFilterSelect().Where(sq.Eq{"pp.pemberitahuan_id": announcementID}).OrderBy("pp.id"),
		"pemberitahuan_prodi")
}

func GetProgramFilter(ctx context.Context, database Queryer, announcementID, id int64) (*models.AnnouncementProgram, error) {
	return selectOne[models.AnnouncementProgram](ctx, database,
		programFilterSelect().Where(sq.Eq{"pp.pemberitahuan_id": announcementID, "pp.id": id}),
		"pemberitahuan_prodi")
}

func AddProgramFilter(ctx context.Context, database Queryer, announcementID, programID int64) (*models.AnnouncementProgram, error) {
	id, err := insertReturningID(ctx, database, psql.Insert("pemberitahuan_prodi").
		Columns("pemberitahuan_id", "prodi_id").Values(announcementID, programID), "pemberitahuan_prodi")
	if err != nil {
		return nil, err
	}
	return GetProgramFilter(ctx, database, announcementID, id)
}

func DeleteProgramFilter(ctx context.Context, database Queryer, announcementID, id int64) error {
	return execAffected(ctx, database, psql.Delete("pemberitahuan_prodi").
		Where(sq.Eq{"pemberitahuan_id": announcementID, "id": id}), "pemberitahuan_prodi", nil)
}

func ListDepartmentFilters(ctx context.Context, database Queryer, announcementID int64) ([]models.AnnouncementDepartment, error) {
	return selectAll[models.AnnouncementDepartment](ctx, database,
		deptFilterSelect().Where(sq.Eq{"pj.pemberitahuan_id": announcementID}).OrderBy("pj.id"),
		"pemberitahuan_jurusan")
}

func GetDepartmentFilter(ctx context.Context, database Queryer, announcementID, id int64) (*models.AnnouncementDepartment, error) {
	return selectOne[models.AnnouncementDepartment](ctx, database,
		deptFilterSelect().Where(sq.Eq{"pj.pemberitahuan_id": announcementID, "pj.id": id}),
		"pemberitahuan_jurusan")
}

func AddDepartmentFilter(ctx context.Context, database Queryer, announcementID, departmentID int64) (*models.AnnouncementDepartment, error) {
	id, err := insertReturningID(ctx, database, psql.Insert("pemberitahuan_jurusan").
		Columns("pemberitahuan_id", "jurusan_id").Values(announcementID, departmentID), "pemberitahuan_jurusan")
	if err != nil {
		return nil, err
	}
	return GetDepartmentFilter(ctx, database, announcementID, id)
}

func DeleteDepartmentFilter(ctx context.Context, database Queryer, announcementID, id int64) error {
	return execAffected(ctx, database, psql.Delete("pemberitahuan_jurusan").
		Where(sq.Eq{"pemberitahuan_id": announcementID, "id": id}), "pemberitahuan_jurusan", nil)
}
