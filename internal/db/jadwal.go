package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/models"
)

type ScheduleFilter struct {
	ClassID *int64
	// SemesterType is "odd", "even" or empty.
	SemesterType string
}

func scheduleSelect() sq.SelectBuilder {
	return psql.Select(
		"j.id", "j.kelas_id", "k.huruf AS kelas_huruf", "k.semester_no",
		"k.prodi_id", "ps.nama AS prodi_nama",
	).
		From("jadwal j").
		Join("kelas k ON k.id = j.kelas_id").
		Join("program_studi ps ON ps.id = k.prodi_id")
}

// ListSchedules returns visible schedules with their entries. ClassID wins
// over SemesterType, mirroring the query string precedence.
func ListSchedules(ctx context.Context, database Queryer, role access.Role, f ScheduleFilter) ([]models.Schedule, error) {
	q := scheduleSelect().Where(access.Visible(role, access.EntitySchedule))
	switch {
	case f.ClassID != nil:
		q = q.Where(sq.Eq{"j.kelas_id": *f.ClassID})
	case f.SemesterType == "even":
		q = q.Where(sq.Eq{"k.semester_no": []int{2, 4, 6, 8}})
	case f.SemesterType == "odd":
		q = q.Where(sq.Eq{"k.semester_no": []int{1, 3, 5, 7}})
	}
	out, err := selectAll[models.Schedule](ctx, database, q.OrderBy("ps.nama", "k.semester_no", "k.huruf"), "jadwal")
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]int64, 0, len(out))
	idx := make(map[int64]int, len(out))
	for i, s := range out {
		ids = append(ids, s.ID)
		idx[s.ID] = i
		out[i].Entries = []models.ScheduleEntry{}
	}
	entries, err := listEntries(ctx, database, sq.Eq{"jm.jadwal_id": ids})
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		i := idx[e.ScheduleID]
		out[i].Entries = append(out[i].Entries, e)
	}
	return out, nil
}

func GetSchedule(ctx context.Context, database Queryer, role access.Role, id int64) (*models.Schedule, error) {
	s, err := selectOne[models.Schedule](ctx, database,
		scheduleSelect().Where(sq.Eq{"j.id": id}).Where(access.Visible(role, access.EntitySchedule)),
		"jadwal")
	if err != nil {
		return nil, err
	}
	s.Entries, err = listEntries(ctx, database, sq.Eq{"jm.jadwal_id": id})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func CreateSchedule(ctx context.Context, database Queryer, role access.Role, classID int64) (*models.Schedule, error) {
	id, err := insertReturningID(ctx, database, psql.Insert("jadwal").Columns("kelas_id").Values(classID), "jadwal")
	if err != nil {
		return nil, err
	}
	return GetSchedule(ctx, database, role, id)
}

func UpdateSchedule(ctx context.Context, database Queryer, role access.Role, id, classID int64) (*models.Schedule, error) {
	if _, err := GetSchedule(ctx, database, role, id); err != nil {
		return nil, err
	}
	q := psql.Update("jadwal AS j").Set("kelas_id", classID).
		Where(sq.Eq{"j.id": id}).
		Where(access.Mutable(role, access.EntitySchedule))
	if err := execAffected(ctx, database, q, "jadwal", apperr.Permission("schedule belongs to another program")); err != nil {
		return nil, err
	}
	return GetSchedule(ctx, database, role, id)
}

func DeleteSchedule(ctx context.Context, database Queryer, role access.Role, id int64) error {
	if _, err := GetSchedule(ctx, database, role, id); err != nil {
		return err
	}
	q := psql.Delete("jadwal AS j").Where(sq.Eq{"j.id": id}).Where(access.Mutable(role, access.EntitySchedule))
	return execAffected(ctx, database, q, "jadwal", apperr.Permission("schedule belongs to another program"))
}
