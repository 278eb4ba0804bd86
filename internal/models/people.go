package models

// User is the login identity. Kind selects which profile table holds the rest.
type User struct {
	ID        int64  `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"nama_depan"`
	LastName  string `db:"last_name" json:"nama_belakang"`
	Email     string `db:"email" json:"email"`
	Kind      string `db:"kind" json:"kind"`
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// SystemAdminProfile is a UPT TIK operator.
type SystemAdminProfile struct {
	ID     int64  `db:"id" json:"id"`
	RegNo  string `db:"no_induk" json:"no_induk"`
	Phone  string `db:"no_hp" json:"no_hp"`
	UserID int64  `db:"user_id" json:"user"`
}

type Staff struct {
	ID          int64  `db:"id" json:"-"`
	RegNo       string `db:"no_induk" json:"no_induk"`
	Phone       string `db:"no_hp" json:"no_hp"`
	ProgramID   int64  `db:"prodi_id" json:"prodi"`
	ProgramCode string `db:"prodi_kode" json:"prodi_kode"`
	ProgramName string `db:"prodi_nama" json:"prodi_nama"`
	UserID      int64  `db:"user_id" json:"user"`
	Username    string `db:"username" json:"username"`
	FirstName   string `db:"first_name" json:"nama_depan"`
	LastName    string `db:"last_name" json:"nama_belakang"`
	Email       string `db:"email" json:"email"`
}

type Lecturer struct {
	ID          int64           `db:"id" json:"-"`
	NIP         string          `db:"nip" json:"nip"`
	Name        string          `db:"nama" json:"nama"`
	Email       string          `db:"email" json:"email"`
	Phone       string          `db:"no_hp" json:"no_hp"`
	Title       string          `db:"gelar" json:"gelar"`
	ProgramID   int64           `db:"prodi_id" json:"prodi"`
	ProgramName string          `db:"prodi_nama" json:"prodi_nama"`
	Photo       *string         `db:"foto_profil" json:"foto_profil"`
	UserID      *int64          `db:"user_id" json:"user"`
	Teaching    []ScheduleEntry `db:"-" json:"makul_ajar,omitempty"`
}

// DisplayName is the name with academic title, as printed on a KHS.
func (l Lecturer) DisplayName() string {
	if l.Title == "" {
		return l.Name
	}
	return l.Name + " " + l.Title
}

// Student is a mahasiswa profile. Most fields stay empty until the student
// completes the profile through /mahasiswa/me.
type Student struct {
	ID           int64   `db:"id" json:"-"`
	NIM          *string `db:"nim" json:"nim"`
	BirthDate    *Date   `db:"tanggal_lahir" json:"tanggal_lahir"`
	Phone        *string `db:"no_hp" json:"no_hp"`
	Address      *string `db:"alamat" json:"alamat"`
	Photo        *string `db:"foto_profil" json:"foto_profil"`
	IntakeYear   *int    `db:"tahun_angkatan" json:"tahun_angkatan"`
	AdvisorID    *int64  `db:"pembimbing_akademik_id" json:"pembimbing_akademik"`
	AdvisorName  *string `db:"pembimbing_nama" json:"pembimbing_nama"`
	ClassID      *int64  `db:"kelas_id" json:"kelas"`
	ClassLetter  *string `db:"kelas_huruf" json:"kelas_huruf"`
	Semester     *int    `db:"kelas_semester" json:"semester"`
	ProgramID    *int64  `db:"prodi_id" json:"prodi"`
	ProgramName  *string `db:"prodi_nama" json:"prodi_nama"`
	DepartmentID *int64  `db:"jurusan_id" json:"jurusan"`
	UserID       int64   `db:"user_id" json:"user"`
	Username     string  `db:"username" json:"username"`
	FirstName    string  `db:"first_name" json:"nama_depan"`
	LastName     string  `db:"last_name" json:"nama_belakang"`
	Email        string  `db:"email" json:"email"`
}

func (s Student) FullName() string {
	return User{FirstName: s.FirstName, LastName: s.LastName}.FullName()
}
