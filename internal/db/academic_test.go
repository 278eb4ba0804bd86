//go:build testutil
// +build testutil

package db_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/db"
	"github.com/Spok95/siakad/internal/models"
	"github.com/Spok95/siakad/internal/testutil/testdb"
)

type fixture struct {
	deptID    int64
	progA     int64
	progB     int64
	classA    int64
	classB    int64
	lecturer  int64
	courseA   int64
	courseA2  int64
	studentA  int64
	studentB  int64
	staffA    access.DepartmentStaff
	studentUA int64
}

func start(t *testing.T) (*sqlx.DB, context.Context) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h, err := testdb.Start(ctx)
	require.NoError(t, err)
	t.Cleanup(h.Close)
	return h.DB, ctx
}

func mustID(t *testing.T, dbx *sqlx.DB, query string, args ...any) int64 {
	t.Helper()
	var id int64
	require.NoError(t, dbx.QueryRow(query+" RETURNING id", args...).Scan(&id), query)
	return id
}

func mustUser(t *testing.T, dbx *sqlx.DB, username, kind string) int64 {
	t.Helper()
	return mustID(t, dbx,
		`INSERT INTO users (username, first_name, last_name, kind) VALUES ($1, $1, 'Test', $2)`,
		username, kind)
}

func seed(t *testing.T, dbx *sqlx.DB) fixture {
	t.Helper()
	var f fixture
	_, err := dbx.Exec(`INSERT INTO semester (no) VALUES (1), (3), (5)`)
	require.NoError(t, err)
	_, err = dbx.Exec(`INSERT INTO program_pendidikan (kode, nama) VALUES ('D3', 'Diploma 3')`)
	require.NoError(t, err)

	f.deptID = mustID(t, dbx, `INSERT INTO jurusan (nama) VALUES ('Teknik Elektro')`)
	prog := `INSERT INTO program_studi (kode, nama, jurusan_id, program_pendidikan_kode, no_sk, tanggal_sk, tahun_operasional)
		VALUES ($1, $2, $3, 'D3', '123/SK/2010', '2010-01-01', 2010)`
	f.progA = mustID(t, dbx, prog, "TI", "Teknik Informatika", f.deptID)
	f.progB = mustID(t, dbx, prog, "TL", "Teknik Listrik", f.deptID)

	f.classA = mustID(t, dbx, `INSERT INTO kelas (huruf, prodi_id, semester_no) VALUES ('A', $1, 3)`, f.progA)
	f.classB = mustID(t, dbx, `INSERT INTO kelas (huruf, prodi_id, semester_no) VALUES ('B', $1, 1)`, f.progB)

	f.lecturer = mustID(t, dbx, `INSERT INTO dosen (nip, nama, email, no_hp, gelar, prodi_id)
		VALUES ('1987001', 'Budi Santoso', 'budi@example.ac.id', '0811', 'S.T., M.T.', $1)`, f.progA)

	course := `INSERT INTO mata_kuliah (kode, nama, jumlah_sks_teori, jumlah_sks_praktik, program_studi_id)
		VALUES ($1, $2, 2, 1, $3)`
	f.courseA = mustID(t, dbx, course, "TI301", "Basis Data", f.progA)
	f.courseA2 = mustID(t, dbx, course, "TI302", "Jaringan Komputer", f.progA)

	f.studentUA = mustUser(t, dbx, "mhs_a", "mahasiswa")
	f.studentA = mustID(t, dbx, `INSERT INTO mahasiswa (nim, kelas_id, pembimbing_akademik_id, user_id)
		VALUES ('2201001', $1, $2, $3)`, f.classA, f.lecturer, f.studentUA)
	f.studentB = mustID(t, dbx, `INSERT INTO mahasiswa (nim, kelas_id, user_id) VALUES ('2201002', $1, $2)`,
		f.classB, mustUser(t, dbx, "mhs_b", "mahasiswa"))

	staffUser := mustUser(t, dbx, "staff_a", "staff_prodi")
	staffID := mustID(t, dbx, `INSERT INTO staff_prodi (no_induk, no_hp, prodi_id, user_id) VALUES ('S-01', '0812', $1, $2)`,
		f.progA, staffUser)
	f.staffA = access.DepartmentStaff{User: staffUser, StaffID: staffID, ProgramID: f.progA}
	return f
}

func TestGrades_DuplicateCourseIsConflict(t *testing.T) {
	dbx, ctx := start(t)
	f := seed(t, dbx)
	admin := access.SystemAdmin{}

	k, err := db.CreateKHS(ctx, dbx, admin, f.studentA, 2023, 2024)
	require.NoError(t, err)

	g, err := db.CreateGrade(ctx, dbx, admin, k.ID, f.courseA, decimal.RequireFromString("85"))
	require.NoError(t, err)
	assert.Equal(t, "A", g.Letter)
	assert.Equal(t, 4, g.Point)
	assert.Equal(t, 3, g.Credits)

	_, err = db.CreateGrade(ctx, dbx, admin, k.ID, f.courseA, decimal.RequireFromString("70"))
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Contains(t, apperr.FieldsOf(err), "mata_kuliah")

	// moving the second grade onto an occupied course is the same conflict
	g2, err := db.CreateGrade(ctx, dbx, admin, k.ID, f.courseA2, decimal.RequireFromString("60"))
	require.NoError(t, err)
	_, err = db.UpdateGrade(ctx, dbx, admin, k.ID, g2.ID, f.courseA, decimal.RequireFromString("60"))
	assert.ErrorIs(t, err, apperr.ErrConflict)

	got, err := db.GetKHS(ctx, dbx, admin, k.ID)
	require.NoError(t, err)
	require.Len(t, got.Grades, 2)
	require.NotNil(t, got.IPS)
	assert.Equal(t, "3.00", got.IPS.String())
}

func TestGrades_ScoreOutOfRange(t *testing.T) {
	dbx, ctx := start(t)
	f := seed(t, dbx)
	admin := access.SystemAdmin{}

	k, err := db.CreateKHS(ctx, dbx, admin, f.studentA, 2023, 2024)
	require.NoError(t, err)

	for _, s := range []string{"0", "100.01", "-5"} {
		_, err := db.CreateGrade(ctx, dbx, admin, k.ID, f.courseA, decimal.RequireFromString(s))
		assert.ErrorIs(t, err, apperr.ErrValidation, s)
	}
}

func TestStudents_StaffSeesOwnProgramOnly(t *testing.T) {
	dbx, ctx := start(t)
	f := seed(t, dbx)

	got, err := db.ListStudents(ctx, dbx, f.staffA)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].NIM)
	assert.Equal(t, "2201001", *got[0].NIM)

	_, err = db.GetStudent(ctx, dbx, f.staffA, "2201002")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	all, err := db.ListStudents(ctx, dbx, access.SystemAdmin{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	anon, err := db.ListStudents(ctx, dbx, access.Anonymous{})
	require.NoError(t, err)
	assert.Empty(t, anon)
}

func TestStudents_StaffCannotMoveStudentOut(t *testing.T) {
	dbx, ctx := start(t)
	f := seed(t, dbx)

	_, err := db.UpdateStudent(ctx, dbx, f.staffA, "2201002", db.Fields{"no_hp": "0899"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	s, err := db.UpdateStudent(ctx, dbx, f.staffA, "2201001", db.Fields{"no_hp": "0899"})
	require.NoError(t, err)
	require.NotNil(t, s.Phone)
	assert.Equal(t, "0899", *s.Phone)
}

func TestEnsureStudentProfile_ConcurrentFirstCall(t *testing.T) {
	dbx, ctx := start(t)
	uid := mustUser(t, dbx, "baru", "mahasiswa")

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := db.EnsureStudentProfile(ctx, dbx, uid)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var n int
	require.NoError(t, dbx.Get(&n, `SELECT count(*) FROM mahasiswa WHERE user_id = $1`, uid))
	assert.Equal(t, 1, n)

	s, err := db.UpdateOwnProfile(ctx, dbx, uid, db.Fields{"alamat": "Jl. Merdeka 1"})
	require.NoError(t, err)
	require.NotNil(t, s.Address)
	assert.Equal(t, "Jl. Merdeka 1", *s.Address)
	assert.Nil(t, s.NIM)
}

func TestKHS_SnapshotAndCascade(t *testing.T) {
	dbx, ctx := start(t)
	f := seed(t, dbx)
	admin := access.SystemAdmin{}

	k1, err := db.CreateKHS(ctx, dbx, admin, f.studentA, 2023, 2024)
	require.NoError(t, err)
	assert.Equal(t, models.Snapshot{
		Semester:       3,
		Program:        "Teknik Informatika",
		EducationLevel: "Diploma 3",
		Advisor:        "Budi Santoso S.T., M.T.",
		ClassLetter:    "A",
	}, k1.Snapshot)
	assert.Nil(t, k1.IPS)

	k2, err := db.CreateKHS(ctx, dbx, admin, f.studentA, 2024, 2025)
	require.NoError(t, err)
	for _, k := range []int64{k1.ID, k2.ID} {
		_, err := db.CreateGrade(ctx, dbx, admin, k, f.courseA, decimal.RequireFromString("77.5"))
		require.NoError(t, err)
	}

	// later edits to the program and class leave the snapshot alone
	_, err = dbx.Exec(`UPDATE program_studi SET nama = 'Informatika' WHERE id = $1`, f.progA)
	require.NoError(t, err)
	_, err = dbx.Exec(`UPDATE kelas SET semester_no = 5 WHERE id = $1`, f.classA)
	require.NoError(t, err)
	k1, err = db.UpdateKHSYears(ctx, dbx, admin, k1.ID, 2022, 2023)
	require.NoError(t, err)
	assert.Equal(t, 3, k1.Semester)
	assert.Equal(t, "Teknik Informatika", k1.Program)
	assert.Equal(t, "2022 / 2023", k1.AcademicYear())

	require.NoError(t, db.DeleteKHS(ctx, dbx, admin, k1.ID))

	var left int
	require.NoError(t, dbx.Get(&left, `SELECT count(*) FROM nilai_khs WHERE khs_id = $1`, k1.ID))
	assert.Zero(t, left)
	require.NoError(t, dbx.Get(&left, `SELECT count(*) FROM nilai_khs WHERE khs_id = $1`, k2.ID))
	assert.Equal(t, 1, left)
}

func TestMigrations_AppliedThroughGoose(t *testing.T) {
	dbx, _ := start(t)

	var version int64
	require.NoError(t, dbx.Get(&version, `SELECT max(version_id) FROM goose_db_version WHERE is_applied`))
	assert.Equal(t, int64(4), version)

	table := func() bool {
		var ok bool
		require.NoError(t, dbx.Get(&ok, `SELECT to_regclass('public.nilai_khs') IS NOT NULL`))
		return ok
	}
	require.True(t, table())

	require.NoError(t, db.MigrateDown(dbx.DB))
	assert.False(t, table(), "down block of the last migration drops the academic tables")

	require.NoError(t, db.Migrate(dbx.DB))
	assert.True(t, table())
}

func TestKHS_LecturerSeesTaughtGradesOnly(t *testing.T) {
	dbx, ctx := start(t)
	f := seed(t, dbx)
	admin := access.SystemAdmin{}

	room := mustID(t, dbx, `INSERT INTO ruangan (nama, gedung_id) VALUES ('A-101', $1)`,
		mustID(t, dbx, `INSERT INTO gedung_kuliah (nama) VALUES ('Gedung A')`))
	jadwal := mustID(t, dbx, `INSERT INTO jadwal (kelas_id) VALUES ($1)`, f.classA)
	mustID(t, dbx, `INSERT INTO jadwal_makul (jadwal_id, hari, jam_mulai, jam_selesai, dosen_id, ruangan_id, mata_kuliah_id)
		VALUES ($1, 'S', '08:00', '10:00', $2, $3, $4)`, jadwal, f.lecturer, room, f.courseA)

	k, err := db.CreateKHS(ctx, dbx, admin, f.studentA, 2023, 2024)
	require.NoError(t, err)
	_, err = db.CreateGrade(ctx, dbx, admin, k.ID, f.courseA, decimal.RequireFromString("85"))
	require.NoError(t, err)
	_, err = db.CreateGrade(ctx, dbx, admin, k.ID, f.courseA2, decimal.RequireFromString("65"))
	require.NoError(t, err)

	lecturer := access.Lecturer{LecturerID: f.lecturer, ProgramID: f.progA}

	got, err := db.GetKHS(ctx, dbx, lecturer, k.ID)
	require.NoError(t, err)
	require.Len(t, got.Grades, 1)
	assert.Equal(t, f.courseA, got.Grades[0].CourseID)
	assert.Nil(t, got.IPS, "no IPS over a partial view")

	list, err := db.ListKHS(ctx, dbx, lecturer, "2201001")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Grades, 1)
	assert.Nil(t, list[0].IPS)

	_, err = db.GetTranscript(ctx, dbx, lecturer, k.ID)
	assert.ErrorIs(t, err, apperr.ErrPermission)

	full, err := db.GetKHS(ctx, dbx, f.staffA, k.ID)
	require.NoError(t, err)
	require.Len(t, full.Grades, 2)
	require.NotNil(t, full.IPS)
	assert.Equal(t, "3.00", full.IPS.String())
	_, err = db.GetTranscript(ctx, dbx, f.staffA, k.ID)
	assert.NoError(t, err)
}

func TestKHS_StudentWithoutClass(t *testing.T) {
	dbx, ctx := start(t)
	uid := mustUser(t, dbx, "tanpa_kelas", "mahasiswa")
	s, err := db.EnsureStudentProfile(ctx, dbx, uid)
	require.NoError(t, err)

	_, err = db.CreateKHS(ctx, dbx, access.SystemAdmin{}, s.ID, 2023, 2024)
	require.ErrorIs(t, err, apperr.ErrValidation)
	assert.Contains(t, apperr.FieldsOf(err), "mahasiswa")
}

func TestKHS_StudentSeesOwnOnly(t *testing.T) {
	dbx, ctx := start(t)
	f := seed(t, dbx)
	admin := access.SystemAdmin{}

	_, err := db.CreateKHS(ctx, dbx, admin, f.studentA, 2023, 2024)
	require.NoError(t, err)
	other, err := db.CreateKHS(ctx, dbx, admin, f.studentB, 2023, 2024)
	require.NoError(t, err)

	role, err := db.ResolveRole(ctx, dbx, f.studentUA)
	require.NoError(t, err)
	require.Equal(t, access.KindStudent, role.Kind())

	mine, err := db.ListKHS(ctx, dbx, role, "")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "2201001", mine[0].NIM)

	_, err = db.GetKHS(ctx, dbx, role, other.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAnnouncements_PurgeExpired(t *testing.T) {
	dbx, ctx := start(t)
	today := models.NewDate(2024, time.May, 10)

	ins := `INSERT INTO pemberitahuan (judul, sub_judul, thumbnail, tanggal_hapus) VALUES ($1, 'sub', 'thumb.png', $2)`
	for i, hapus := range []any{"2024-05-09", "2024-05-10", "2024-06-01", nil} {
		_, err := dbx.Exec(ins, fmt.Sprintf("p%d", i), hapus)
		require.NoError(t, err)
	}

	list, err := db.ListAnnouncements(ctx, dbx, access.Anonymous{}, today)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	n, err := db.PurgeExpired(ctx, dbx, today)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var left int
	require.NoError(t, dbx.Get(&left, `SELECT count(*) FROM pemberitahuan`))
	assert.Equal(t, 3, left)
}

func TestAnnouncements_StaffCreateIsScoped(t *testing.T) {
	dbx, ctx := start(t)
	f := seed(t, dbx)

	a, err := db.CreateAnnouncement(ctx, dbx, f.staffA, db.Fields{
		"judul": "Ujian", "sub_judul": "UTS", "thumbnail": "t.png",
	})
	require.NoError(t, err)
	require.Len(t, a.Programs, 1)
	assert.Equal(t, f.progA, a.Programs[0].ProgramID)

	staffB := access.DepartmentStaff{ProgramID: f.progB}
	_, err = db.PatchAnnouncement(ctx, dbx, staffB, a.ID, db.Fields{"judul": "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// unfiltered announcements are readable by every staff but writable by none
	pub, err := db.CreateAnnouncement(ctx, dbx, access.SystemAdmin{}, db.Fields{
		"judul": "Libur", "sub_judul": "Nasional", "thumbnail": "t.png",
	})
	require.NoError(t, err)
	assert.Empty(t, pub.Programs)
	_, err = db.PatchAnnouncement(ctx, dbx, staffB, pub.ID, db.Fields{"judul": "x"})
	assert.ErrorIs(t, err, apperr.ErrPermission)
}
