package models

import "time"

type Class struct {
	ID             int64   `db:"id" json:"id"`
	Letter         string  `db:"huruf" json:"huruf"`
	ProgramID      int64   `db:"prodi_id" json:"prodi"`
	ProgramCode    string  `db:"prodi_kode" json:"prodi_kode"`
	ProgramName    string  `db:"prodi_nama" json:"prodi_nama"`
	Semester       int     `db:"semester_no" json:"semester"`
	CurriculumID   *int64  `db:"kurikulum_id" json:"kurikulum"`
	CurriculumName *string `db:"kurikulum_nama" json:"nama_kurikulum"`
}

type Course struct {
	ID            int64  `db:"id" json:"id"`
	Code          string `db:"kode" json:"kode"`
	Name          string `db:"nama" json:"nama"`
	TheoryCredits int    `db:"jumlah_sks_teori" json:"jumlah_sks_teori"`
	LabCredits    int    `db:"jumlah_sks_praktik" json:"jumlah_sks_praktik"`
	ProgramID     int64  `db:"program_studi_id" json:"program_studi"`
	Semester      *int   `db:"semester" json:"semester"`
	CurriculumID  *int64 `db:"kurikulum_id" json:"kurikulum"`
}

// Credits is the total SKS of the course.
func (c Course) Credits() int { return c.TheoryCredits + c.LabCredits }

// Schedule is the weekly timetable of one class.
type Schedule struct {
	ID          int64           `db:"id" json:"id"`
	ClassID     int64           `db:"kelas_id" json:"kelas"`
	ClassLetter string          `db:"kelas_huruf" json:"kelas_huruf"`
	Semester    int             `db:"semester_no" json:"semester"`
	ProgramID   int64           `db:"prodi_id" json:"prodi"`
	ProgramName string          `db:"prodi_nama" json:"prodi_nama"`
	Entries     []ScheduleEntry `db:"-" json:"makul_list"`
}

type Day string

const (
	Monday    Day = "S"
	Tuesday   Day = "SE"
	Wednesday Day = "R"
	Thursday  Day = "K"
	Friday    Day = "J"
)

var dayNames = map[Day]string{
	Monday:    "Senin",
	Tuesday:   "Selasa",
	Wednesday: "Rabu",
	Thursday:  "Kamis",
	Friday:    "Jumat",
}

func (d Day) Valid() bool {
	_, ok := dayNames[d]
	return ok
}

func (d Day) Name() string {
	if n, ok := dayNames[d]; ok {
		return n
	}
	return string(d)
}

// ScheduleEntry is one course slot within a class schedule.
type ScheduleEntry struct {
	ID           int64   `db:"id" json:"id"`
	ScheduleID   int64   `db:"jadwal_id" json:"jadwal"`
	ClassID      int64   `db:"kelas_id" json:"kelas"`
	Day          Day     `db:"hari" json:"kode_hari"`
	DayName      string  `db:"-" json:"nama_hari"`
	Start        Clock   `db:"jam_mulai" json:"jam_mulai"`
	End          Clock   `db:"jam_selesai" json:"jam_selesai"`
	LecturerID   *int64  `db:"dosen_id" json:"dosen"`
	LecturerName *string `db:"dosen_nama" json:"dosen_nama"`
	RoomID       int64   `db:"ruangan_id" json:"ruangan"`
	RoomName     string  `db:"ruangan_nama" json:"ruangan_nama"`
	BuildingName string  `db:"gedung_nama" json:"gedung_nama"`
	CourseID     int64   `db:"mata_kuliah_id" json:"mata_kuliah"`
	CourseCode   string  `db:"mata_kuliah_kode" json:"mata_kuliah_kode"`
	CourseName   string  `db:"mata_kuliah_nama" json:"mata_kuliah_nama"`
	Credits      int     `db:"sks" json:"sks"`
}

type Material struct {
	ID              int64     `db:"id" json:"id"`
	Title           string    `db:"judul" json:"judul"`
	Description     string    `db:"deskripsi" json:"deskripsi"`
	UploadedAt      time.Time `db:"tanggal_unggah" json:"tanggal_unggah"`
	File            *string   `db:"file" json:"file"`
	ScheduleEntryID int64     `db:"jadwal_makul_id" json:"jadwal_makul"`
}
