package access

import (
	sq "github.com/Masterminds/squirrel"
)

// Entity identifies a row set. Each entity is queried under a fixed table alias
// (the comment next to it); predicates only reference that alias.
type Entity int

const (
	EntityStudent        Entity = iota // m: mahasiswa
	EntityLecturer                     // d: dosen
	EntityStaff                        // s: staff_prodi
	EntityCourse                       // mk: mata_kuliah
	EntityAnnouncement                 // p: pemberitahuan
	EntityClass                        // k: kelas
	EntitySchedule                     // j: jadwal
	EntityScheduleEntry                // jm: jadwal_makul
	EntityKHS                          // h: khs
	EntityGrade                        // n: nilai_khs
	EntityComplaint                    // a: aduan_ruangan
	EntityScientificWork               // ki: karya_ilmiah
	EntityMaterial                     // mt: materi
	EntityProgram                      // ps: program_studi
)

var (
	all  = sq.Expr("TRUE")
	none = sq.Expr("FALSE")
)

const (
	classesOfProgram = `SELECT id FROM kelas WHERE prodi_id = ?`
	taughtClasses    = `SELECT jj.kelas_id FROM jadwal jj JOIN jadwal_makul tj ON tj.jadwal_id = jj.id WHERE tj.dosen_id = ?`
	taughtCourses    = `SELECT tj.mata_kuliah_id FROM jadwal_makul tj WHERE tj.dosen_id = ?`
	programFilterOf  = `EXISTS (SELECT 1 FROM pemberitahuan_prodi pp WHERE pp.pemberitahuan_id = p.id`
	deptFilterOf     = `EXISTS (SELECT 1 FROM pemberitahuan_jurusan pj WHERE pj.pemberitahuan_id = p.id`
)

// Visible narrows e to the rows r may read.
func Visible(r Role, e Entity) sq.Sqlizer {
	switch v := r.(type) {
	case SystemAdmin:
		return all
	case DepartmentStaff:
		if e == EntityStaff {
			return sq.Eq{"s.id": v.StaffID}
		}
		return staffScope(v.ProgramID, e, false)
	case Lecturer:
		return lecturerScope(v, e)
	case Student:
		return studentScope(v, e)
	default:
		return anonymousScope(e)
	}
}

// Mutable narrows e to the rows r may change. It differs from Visible where a
// role reads more than it may write.
func Mutable(r Role, e Entity) sq.Sqlizer {
	switch v := r.(type) {
	case SystemAdmin:
		return all
	case DepartmentStaff:
		if e == EntityStaff {
			return sq.Eq{"s.id": v.StaffID}
		}
		return staffScope(v.ProgramID, e, true)
	case Lecturer:
		switch e {
		case EntityGrade, EntityMaterial:
			return lecturerScope(v, e)
		}
		return none
	case Student:
		switch e {
		case EntityStudent:
			return sq.Expr("m.id = ?", v.StudentID)
		case EntityComplaint:
			return sq.Expr("a.mahasiswa_id = ?", v.StudentID)
		case EntityScientificWork:
			return sq.Expr("ki.mahasiswa_id = ?", v.StudentID)
		}
		return none
	default:
		return none
	}
}

func staffScope(p int64, e Entity, write bool) sq.Sqlizer {
	switch e {
	case EntityStudent:
		return sq.Expr("m.kelas_id IN ("+classesOfProgram+")", p)
	case EntityLecturer:
		return sq.Eq{"d.prodi_id": p}
	case EntityStaff:
		return sq.Eq{"s.prodi_id": p}
	case EntityCourse:
		return sq.Eq{"mk.program_studi_id": p}
	case EntityAnnouncement:
		if write {
			return sq.Expr(programFilterOf+" AND pp.prodi_id = ?)", p)
		}
		return sq.Or{
			sq.Expr("NOT " + programFilterOf + ")"),
			sq.Expr(programFilterOf+" AND pp.prodi_id = ?)", p),
		}
	case EntityClass:
		return sq.Eq{"k.prodi_id": p}
	case EntitySchedule:
		return sq.Expr("j.kelas_id IN ("+classesOfProgram+")", p)
	case EntityScheduleEntry:
		return sq.Expr("jm.jadwal_id IN (SELECT jj.id FROM jadwal jj JOIN kelas kk ON kk.id = jj.kelas_id WHERE kk.prodi_id = ?)", p)
	case EntityKHS:
		return sq.Expr("h.mahasiswa_id IN (SELECT mm.id FROM mahasiswa mm JOIN kelas kk ON kk.id = mm.kelas_id WHERE kk.prodi_id = ?)", p)
	case EntityGrade:
		return sq.Expr("n.khs_id IN (SELECT hh.id FROM khs hh JOIN mahasiswa mm ON mm.id = hh.mahasiswa_id JOIN kelas kk ON kk.id = mm.kelas_id WHERE kk.prodi_id = ?)", p)
	case EntityComplaint:
		return none
	case EntityScientificWork:
		return sq.Eq{"ki.prodi_id": p}
	case EntityMaterial:
		return sq.Expr("mt.jadwal_makul_id IN (SELECT tj.id FROM jadwal_makul tj JOIN jadwal jj ON jj.id = tj.jadwal_id JOIN kelas kk ON kk.id = jj.kelas_id WHERE kk.prodi_id = ?)", p)
	case EntityProgram:
		if write {
			return sq.Eq{"ps.id": p}
		}
		return all
	}
	return none
}

func lecturerScope(l Lecturer, e Entity) sq.Sqlizer {
	switch e {
	case EntityStudent:
		return sq.Expr("m.kelas_id IN ("+taughtClasses+")", l.LecturerID)
	case EntityCourse:
		return sq.Expr("mk.id IN ("+taughtCourses+")", l.LecturerID)
	case EntityGrade:
		return sq.Expr("n.mata_kuliah_id IN ("+taughtCourses+")", l.LecturerID)
	case EntityKHS:
		return sq.Expr("h.mahasiswa_id IN (SELECT mm.id FROM mahasiswa mm WHERE mm.kelas_id IN ("+taughtClasses+"))", l.LecturerID)
	case EntityScheduleEntry:
		return sq.Eq{"jm.dosen_id": l.LecturerID}
	case EntityMaterial:
		return sq.Expr("mt.jadwal_makul_id IN (SELECT tj.id FROM jadwal_makul tj WHERE tj.dosen_id = ?)", l.LecturerID)
	case EntityLecturer:
		return sq.Eq{"d.prodi_id": l.ProgramID}
	case EntityStaff, EntityComplaint:
		return none
	}
	// Remaining entities follow the program rule of department staff.
	return staffScope(l.ProgramID, e, false)
}

func studentScope(s Student, e Entity) sq.Sqlizer {
	switch e {
	case EntityStudent:
		return sq.Expr("m.id = ?", s.StudentID)
	case EntityKHS:
		return sq.Expr("h.mahasiswa_id = ?", s.StudentID)
	case EntityGrade:
		return sq.Expr("n.khs_id IN (SELECT hh.id FROM khs hh WHERE hh.mahasiswa_id = ?)", s.StudentID)
	case EntityComplaint:
		return sq.Expr("a.mahasiswa_id = ?", s.StudentID)
	case EntityAnnouncement:
		return sq.Or{
			sq.Expr("NOT " + programFilterOf + ") AND NOT " + deptFilterOf + ")"),
			sq.Expr(programFilterOf+" AND pp.prodi_id = ?)", s.ProgramID),
			sq.Expr(deptFilterOf+" AND pj.jurusan_id = ?)", s.DepartmentID),
		}
	case EntityStaff:
		return none
	case EntityMaterial:
		return sq.Expr("mt.jadwal_makul_id IN (SELECT tj.id FROM jadwal_makul tj JOIN jadwal jj ON jj.id = tj.jadwal_id WHERE jj.kelas_id = ?)", s.ClassID)
	}
	return all
}

func anonymousScope(e Entity) sq.Sqlizer {
	switch e {
	case EntityStudent, EntityKHS, EntityGrade, EntityComplaint, EntityStaff, EntityMaterial:
		return none
	}
	return all
}
