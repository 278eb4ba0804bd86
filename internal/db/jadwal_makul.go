package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/models"
)

func entrySelect() sq.SelectBuilder {
	return psql.Select(
		"jm.id", "jm.jadwal_id", "j.kelas_id", "jm.hari", "jm.jam_mulai", "jm.jam_selesai",
		"jm.dosen_id", "d.nama AS dosen_nama",
		"jm.ruangan_id", "r.nama AS ruangan_nama", "g.nama AS gedung_nama",
		"jm.mata_kuliah_id", "mk.kode AS mata_kuliah_kode", "mk.nama AS mata_kuliah_nama",
		"(mk.jumlah_sks_teori + mk.jumlah_sks_praktik) AS sks",
	).
		From("jadwal_makul jm").
		Join("jadwal j ON j.id = jm.jadwal_id").
		LeftJoin("dosen d ON d.id = jm.dosen_id").
		Join("ruangan r ON r.id = jm.ruangan_id").
		Join("gedung_kuliah g ON g.id = r.gedung_id").
		Join("mata_kuliah mk ON mk.id = jm.mata_kuliah_id")
}

var dayOrder = "CASE jm.hari WHEN 'S' THEN 1 WHEN 'SE' THEN 2 WHEN 'R' THEN 3 WHEN 'K' THEN 4 ELSE 5 END"

func listEntries(ctx context.Context, database Queryer, where ...sq.Sqlizer) ([]models.ScheduleEntry, error) {
	q := entrySelect()
	for _, w := range where {
		q = q.Where(w)
	}
	out, err := selectAll[models.ScheduleEntry](ctx, database, q.OrderBy(dayOrder, "jm.jam_mulai", "jm.id"), "jadwal_makul")
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].DayName = out[i].Day.Name()
	}
	return out, nil
}

func ListScheduleEntries(ctx context.Context, database Queryer, role access.Role, scheduleID int64) ([]models.ScheduleEntry, error) {
	return listEntries(ctx, database, sq.Eq{"jm.jadwal_id": scheduleID}, access.Visible(role, access.EntitySchedule))
}

func GetScheduleEntry(ctx context.Context, database Queryer, role access.Role, scheduleID, id int64) (*models.ScheduleEntry, error) {
	out, err := listEntries(ctx, database,
		sq.Eq{"jm.jadwal_id": scheduleID, "jm.id": id},
		access.Visible(role, access.EntitySchedule))
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, apperr.NotFound("jadwal_makul")
	}
	return &out[0], nil
}

// ScheduleEntryVisible reports whether the role can see (for a lecturer: teaches) the entry.
func ScheduleEntryVisible(ctx context.Context, database Queryer, role access.Role, id int64) (bool, error) {
	return exists(ctx, database, psql.Select("1").From("jadwal_makul jm").
		Where(sq.Eq{"jm.id": id}).
		Where(access.Visible(role, access.EntityScheduleEntry)))
}

func CreateScheduleEntry(ctx context.Context, database Queryer, role access.Role, scheduleID int64, f Fields) (*models.ScheduleEntry, error) {
	f["jadwal_id"] = scheduleID
	id, err := insertReturningID(ctx, database, psql.Insert("jadwal_makul").SetMap(f), "jadwal_makul")
	if err != nil {
		return nil, err
	}
	return GetScheduleEntry(ctx, database, role, scheduleID, id)
}

func UpdateScheduleEntry(ctx context.Context, database Queryer, role access.Role, scheduleID, id int64, f Fields) (*models.ScheduleEntry, error) {
	if _, err := GetScheduleEntry(ctx, database, role, scheduleID, id); err != nil {
		return nil, err
	}
	q := psql.Update("jadwal_makul AS jm").SetMap(f).
		Where(sq.Eq{"jm.id": id, "jm.jadwal_id": scheduleID}).
		Where(access.Mutable(role, access.EntityScheduleEntry))
	if err := execAffected(ctx, database, q, "jadwal_makul", apperr.Permission("schedule belongs to another program")); err != nil {
		return nil, err
	}
	return GetScheduleEntry(ctx, database, role, scheduleID, id)
}

func DeleteScheduleEntry(ctx context.Context, database Queryer, role access.Role, scheduleID, id int64) error {
	if _, err := GetScheduleEntry(ctx, database, role, scheduleID, id); err != nil {
		return err
	}
	q := psql.Delete("jadwal_makul AS jm").
		Where(sq.Eq{"jm.id": id, "jm.jadwal_id": scheduleID}).
		Where(access.Mutable(role, access.EntityScheduleEntry))
	return execAffected(ctx, database, q, "jadwal_makul", apperr.Permission("schedule belongs to another program"))
}
