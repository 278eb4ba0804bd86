package db

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/ctxutil"
	"github.com/Spok95/siakad/internal/models"
)

func khsSelect() sq.SelectBuilder {
	return psql.Select(
		"h.id", "h.mahasiswa_id", "COALESCE(m.nim, '') AS nim",
		"TRIM(u.first_name || ' ' || u.last_name) AS mahasiswa_nama",
		"h.tahun_akademik_awal", "h.tahun_akademik_akhir",
		"h.semester", "h.program_studi", "h.program_pendidikan", "h.dosen_pembimbing", "h.kelas",
	).
		From("khs h").
		Join("mahasiswa m ON m.id = h.mahasiswa_id").
		Join("users u ON u.id = m.user_id")
}

// ListKHS lists visible KHS, optionally for one NIM, with grades and IPS.
func ListKHS(ctx context.Context, database Queryer, role access.Role, nim string) ([]models.KHS, error) {
	q := khsSelect().Where(access.Visible(role, access.EntityKHS)).OrderBy("h.tahun_akademik_awal DESC", "h.semester DESC", "h.id DESC")
	if nim != "" {
		q = q.Where(sq.Eq{"m.nim": nim})
	}
	out, err := selectAll[models.KHS](ctx, database, q, "khs")
	if err != nil || len(out) == 0 {
		return out, err
	}
	ids := make([]int64, len(out))
	idx := make(map[int64]int, len(out))
	for i, k := range out {
		ids[i] = k.ID
		idx[k.ID] = i
		out[i].Grades = []models.GradeEntry{}
	}
	grades, err := selectAll[models.GradeEntry](ctx, database, gradeSelect().
		Where(sq.Eq{"n.khs_id": ids}).
		Where(access.Visible(role, access.EntityGrade)).
		OrderBy("n.id"), "nilai")
	if err != nil {
		return nil, err
	}
	for _, g := range grades {
		i := idx[g.KHSID]
		out[i].Grades = append(out[i].Grades, g)
	}
	totals, err := gradeTotals(ctx, database, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Partial = totals[out[i].ID] > len(out[i].Grades)
		out[i].Summarize()
	}
	return out, nil
}

type gradeTotal struct {
	KHSID int64 `db:"khs_id"`
	N     int   `db:"n"`
}

// gradeTotals counts all grades per KHS regardless of the caller, so a
// narrowed view can be told apart from a complete one.
func gradeTotals(ctx context.Context, database Queryer, ids []int64) (map[int64]int, error) {
	rows, err := selectAll[gradeTotal](ctx, database, psql.Select("n.khs_id", "COUNT(*) AS n").
		From("nilai_khs n").
		Where(sq.Eq{"n.khs_id": ids}).
		GroupBy("n.khs_id"), "nilai")
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int, len(rows))
	for _, r := range rows {
		out[r.KHSID] = r.N
	}
	return out, nil
}

func GetKHS(ctx context.Context, database Queryer, role access.Role, id int64) (*models.KHS, error) {
	k, err := selectOne[models.KHS](ctx, database,
		khsSelect().Where(sq.Eq{"h.id": id}).Where(access.Visible(role, access.EntityKHS)),
		"khs")
	if err != nil {
		return nil, err
	}
	k.Grades, err = selectAll[models.GradeEntry](ctx, database, gradeSelect().
		Where(sq.Eq{"n.khs_id": id}).
		Where(access.Visible(role, access.EntityGrade)).
		OrderBy("n.id"), "nilai")
	if err != nil {
		return nil, err
	}
	totals, err := gradeTotals(ctx, database, []int64{id})
	if err != nil {
		return nil, err
	}
	k.Partial = totals[id] > len(k.Grades)
	k.Summarize()
	return k, nil
}

// KHSVisible reports whether the role may see the KHS.
func KHSVisible(ctx context.Context, database Queryer, role access.Role, id int64) (bool, error) {
	return exists(ctx, database, psql.Select("1").From("khs h").
		Where(sq.Eq{"h.id": id}).
		Where(access.Visible(role, access.EntityKHS)))
}

// SnapshotFor captures the student's current class, program and advisor.
// A student without a class cannot get a KHS yet.
func SnapshotFor(ctx context.Context, database Queryer, studentID int64) (models.Snapshot, error) {
	ctx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()

	var (
		s       models.Snapshot
		advisor sql.NullString
	)
	err := database.QueryRowxContext(ctx, `
		SELECT k.semester_no, ps.nama, pp.nama,
		       NULLIF(TRIM(COALESCE(d.nama, '') || ' ' || COALESCE(d.gelar, '')), ''),
		       k.huruf
		FROM mahasiswa m
		JOIN kelas k ON k.id = m.kelas_id
		JOIN program_studi ps ON ps.id = k.prodi_id
		JOIN program_pendidikan pp ON pp.kode = ps.program_pendidikan_kode
		LEFT JOIN dosen d ON d.id = m.pembimbing_akademik_id
		WHERE m.id = $1`, studentID).
		Scan(&s.Semester, &s.Program, &s.EducationLevel, &advisor, &s.ClassLetter)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, apperr.FieldValidation("mahasiswa", "student has no class yet")
	}
	if err != nil {
		return models.Snapshot{}, err
	}
	s.Advisor = advisor.String
	return s, nil
}

// CreateKHS opens a KHS for a student, freezing the snapshot fields.
func CreateKHS(ctx context.Context, database Queryer, role access.Role, studentID int64, startYear, endYear int) (*models.KHS, error) {
	snap, err := SnapshotFor(ctx, database, studentID)
	if err != nil {
		return nil, err
	}
	id, err := insertReturningID(ctx, database, psql.Insert("khs").SetMap(Fields{
		"mahasiswa_id":         studentID,
		"tahun_akademik_awal":  startYear,
		"tahun_akademik_akhir": endYear,
		"semester":             snap.Semester,
		"program_studi":        snap.Program,
		"program_pendidikan":   snap.EducationLevel,
		"dosen_pembimbing":     snap.Advisor,
		"kelas":                snap.ClassLetter,
	}), "khs")
	if err != nil {
		return nil, err
	}
	return GetKHS(ctx, database, role, id)
}

// UpdateKHSYears changes the academic term only; the snapshot is never recomputed.
func UpdateKHSYears(ctx context.Context, database Queryer, role access.Role, id int64, startYear, endYear int) (*models.KHS, error) {
	if _, err := GetKHS(ctx, database, role, id); err != nil {
		return nil, err
	}
	q := psql.Update("khs AS h").
		Set("tahun_akademik_awal", startYear).
		Set("tahun_akademik_akhir", endYear).
		Where(sq.Eq{"h.id": id}).
		Where(access.Mutable(role, access.EntityKHS))
	if err := execAffected(ctx, database, q, "khs", apperr.Permission("khs is outside your program")); err != nil {
		return nil, err
	}
	return GetKHS(ctx, database, role, id)
}

// DeleteKHS removes a KHS; its grades go with it through ON DELETE CASCADE.
func DeleteKHS(ctx context.Context, database Queryer, role access.Role, id int64) error {
	if _, err := GetKHS(ctx, database, role, id); err != nil {
		return err
	}
	q := psql.Delete("khs AS h").Where(sq.Eq{"h.id": id}).Where(access.Mutable(role, access.EntityKHS))
	return execAffected(ctx, database, q, "khs", apperr.Permission("khs is outside your program"))
}

// GetTranscript loads a KHS with the signatories for its printout: the head of
// the student's department and the coordinator of the snapshot program.
// Only a caller who sees every grade may print it.
func GetTranscript(ctx context.Context, database Queryer, role access.Role, id int64) (*models.Transcript, error) {
	k, err := GetKHS(ctx, database, role, id)
	if err != nil {
		return nil, err
	}
	if k.Partial {
		return nil, apperr.Permission("khs includes courses you do not teach")
	}
	t := &models.Transcript{KHS: *k}

	head, err := selectOne[models.DepartmentHead](ctx, database, psql.
		Select("kj.id", "kj.nomor_induk", "kj.nama", "kj.gelar", "kj.jurusan_id").
		From("ketua_jurusan kj").
		Join("program_studi ps ON ps.jurusan_id = kj.jurusan_id").
		Join("kelas k ON k.prodi_id = ps.id").
		Join("mahasiswa m ON m.kelas_id = k.id").
		Where(sq.Eq{"m.id": k.StudentID}).
		OrderBy("kj.id").Limit(1), "ketua_jurusan")
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	t.Head = head

	coord, err := selectOne[models.ProgramCoordinator](ctx, database, psql.
		Select("kp.id", "kp.nomor_induk", "kp.nama", "kp.gelar", "kp.program_studi_id").
		From("koordinator_program_studi kp").
		Join("program_studi ps ON ps.id = kp.program_studi_id").
		Where(sq.Eq{"ps.nama": k.Program}).
		OrderBy("kp.id").Limit(1), "koordinator_prodi")
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	t.Coordinator = coord
	return t, nil
}
