// Package access resolves who the caller is and which rows they may see or change.
package access

// Kind names a role without its scope. It is also the value of users.kind.
type Kind string

const (
	KindAnonymous       Kind = "anonymous"
	KindSystemAdmin     Kind = "upt_tik"
	KindDepartmentStaff Kind = "staff_prodi"
	KindLecturer        Kind = "dosen"
	KindStudent         Kind = "mahasiswa"
)

func (k Kind) Valid() bool {
	switch k {
	case KindSystemAdmin, KindDepartmentStaff, KindLecturer, KindStudent:
		return true
	}
	return false
}

// Role is a closed union: Anonymous, SystemAdmin, DepartmentStaff, Lecturer, Student.
// It is resolved once per request and passed to every query that needs scoping.
type Role interface {
	Kind() Kind
	UserID() int64
	sealed()
}

type Anonymous struct{}

func (Anonymous) Kind() Kind    { return KindAnonymous }
func (Anonymous) UserID() int64 { return 0 }
func (Anonymous) sealed()       {}

// SystemAdmin is a UPT TIK operator.
type SystemAdmin struct {
	User int64
}

func (SystemAdmin) Kind() Kind      { return KindSystemAdmin }
func (r SystemAdmin) UserID() int64 { return r.User }
func (SystemAdmin) sealed()         {}

// DepartmentStaff is a Staff Prodi scoped to one study program.
type DepartmentStaff struct {
	User      int64
	StaffID   int64
	ProgramID int64
}

func (DepartmentStaff) Kind() Kind      { return KindDepartmentStaff }
func (r DepartmentStaff) UserID() int64 { return r.User }
func (DepartmentStaff) sealed()         {}

// Lecturer is a Dosen. Row access follows their teaching assignments.
type Lecturer struct {
	User       int64
	LecturerID int64
	ProgramID  int64
}

func (Lecturer) Kind() Kind      { return KindLecturer }
func (r Lecturer) UserID() int64 { return r.User }
func (Lecturer) sealed()         {}

// Student is a Mahasiswa. StudentID is zero until the profile row exists;
// ClassID, ProgramID and DepartmentID are zero while the profile has no class.
type Student struct {
	User         int64
	StudentID    int64
	ClassID      int64
	ProgramID    int64
	DepartmentID int64
}

func (Student) Kind() Kind      { return KindStudent }
func (r Student) UserID() int64 { return r.User }
func (Student) sealed()         {}

// ProgramOf returns the study program a role is bound to, if any.
func ProgramOf(r Role) (int64, bool) {
	switch v := r.(type) {
	case DepartmentStaff:
		return v.ProgramID, true
	case Lecturer:
		return v.ProgramID, true
	case Student:
		return v.ProgramID, v.ProgramID != 0
	}
	return 0, false
}

func IsAuthenticated(r Role) bool {
	return r != nil && r.Kind() != KindAnonymous
}
