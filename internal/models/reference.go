package models

type Curriculum struct {
	ID        int64  `db:"id" json:"id"`
	Code      string `db:"kode" json:"kode"`
	Name      string `db:"nama" json:"nama"`
	InUseFrom Date   `db:"tanggal_digunakan" json:"tanggal_digunakan"`
}

type Department struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"nama" json:"nama"`
}

type Semester struct {
	No int `db:"no" json:"no"`
}

// EducationLevel is keyed by its short code (D3, D4, S1 ...).
type EducationLevel struct {
	Code string `db:"kode" json:"kode"`
	Name string `db:"nama" json:"nama"`
}

type Building struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"nama" json:"nama"`
}

type Program struct {
	ID                 int64   `db:"id" json:"id"`
	Code               string  `db:"kode" json:"kode"`
	Name               string  `db:"nama" json:"nama"`
	DepartmentID       int64   `db:"jurusan_id" json:"jurusan_id"`
	DepartmentName     string  `db:"jurusan_nama" json:"jurusan_nama"`
	EducationLevel     string  `db:"program_pendidikan_kode" json:"program_pendidikan"`
	EducationLevelName string  `db:"program_pendidikan_nama" json:"program_pendidikan_nama"`
	DecreeNo           string  `db:"no_sk" json:"no_sk"`
	DecreeDate         Date    `db:"tanggal_sk" json:"tanggal_sk"`
	OperatingSince     int     `db:"tahun_operasional" json:"tahun_operasional"`
	Accreditation      *string `db:"akreditasi" json:"akreditasi"`
}

// DepartmentHead signs transcripts for every program of a department.
type DepartmentHead struct {
	ID           int64  `db:"id" json:"id"`
	RegNo        string `db:"nomor_induk" json:"nomor_induk"`
	Name         string `db:"nama" json:"nama"`
	Title        string `db:"gelar" json:"gelar"`
	DepartmentID int64  `db:"jurusan_id" json:"jurusan"`
}

type ProgramCoordinator struct {
	ID        int64  `db:"id" json:"id"`
	RegNo     string `db:"nomor_induk" json:"nomor_induk"`
	Name      string `db:"nama" json:"nama"`
	Title     string `db:"gelar" json:"gelar"`
	ProgramID int64  `db:"program_studi_id" json:"program_studi"`
}
