package app

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/db"
	"github.com/Spok95/siakad/internal/models"
)

// fielder is a validated request body that maps onto table columns.
type fielder interface {
	fields() db.Fields
}

// bodyFields decodes and validates a request of type R and returns its columns.
func bodyFields[R any, PR interface {
	*R
	fielder
}](r *http.Request) (db.Fields, error) {
	var req R
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return PR(&req).fields(), nil
}

// putIf sets col only when the field was sent.
func putIf[T any](f db.Fields, col string, v *T) {
	if v != nil {
		f[col] = *v
	}
}

// Справочники.

type curriculumReq struct {
	Code      string       `json:"kode" validate:"required,max=10"`
	Name      string       `json:"nama" validate:"required,max=255"`
	InUseFrom *models.Date `json:"tanggal_digunakan" validate:"required"`
}

func (q *curriculumReq) fields() db.Fields {
	return db.Fields{"kode": q.Code, "nama": q.Name, "tanggal_digunakan": *q.InUseFrom}
}

type departmentReq struct {
	Name string `json:"nama" validate:"required,max=255"`
}

func (q *departmentReq) fields() db.Fields { return db.Fields{"nama": q.Name} }

type semesterReq struct {
	No int `json:"no" validate:"required,gte=1,lte=14"`
}

func (q *semesterReq) fields() db.Fields { return db.Fields{"no": q.No} }

type educationLevelReq struct {
	Code string `json:"kode" validate:"required,max=5"`
	Name string `json:"nama" validate:"required,max=255"`
}

func (q *educationLevelReq) fields() db.Fields { return db.Fields{"kode": q.Code, "nama": q.Name} }

type buildingReq struct {
	Name string `json:"nama" validate:"required,max=255"`
}

func (q *buildingReq) fields() db.Fields { return db.Fields{"nama": q.Name} }

type departmentHeadReq struct {
	RegNo        string `json:"nomor_induk" validate:"required,max=25"`
	Name         string `json:"nama" validate:"required,max=255"`
	Title        string `json:"gelar" validate:"required,max=20"`
	DepartmentID int64  `json:"jurusan" validate:"required"`
}

func (q *departmentHeadReq) fields() db.Fields {
	return db.Fields{"nomor_induk": q.RegNo, "nama": q.Name, "gelar": q.Title, "jurusan_id": q.DepartmentID}
}

type coordinatorReq struct {
	RegNo     string `json:"nomor_induk" validate:"required,max=25"`
	Name      string `json:"nama" validate:"required,max=255"`
	Title     string `json:"gelar" validate:"required,max=20"`
	ProgramID int64  `json:"program_studi" validate:"required"`
}

func (q *coordinatorReq) fields() db.Fields {
	return db.Fields{"nomor_induk": q.RegNo, "nama": q.Name, "gelar": q.Title, "program_studi_id": q.ProgramID}
}

type programReq struct {
	Code           string       `json:"kode" validate:"required,max=10"`
	Name           string       `json:"nama" validate:"required,max=255"`
	DepartmentID   int64        `json:"jurusan_id" validate:"required"`
	EducationLevel string       `json:"program_pendidikan" validate:"required,max=5"`
	DecreeNo       string       `json:"no_sk" validate:"required,max=12"`
	DecreeDate     *models.Date `json:"tanggal_sk" validate:"required"`
	OperatingSince int          `json:"tahun_operasional" validate:"required,gte=2000,lte=3000"`
	Accreditation  *string      `json:"akreditasi" validate:"omitempty,max=2"`
}

func (q *programReq) fields() db.Fields {
	return db.Fields{
		"kode":                    q.Code,
		"nama":                    q.Name,
		"jurusan_id":              q.DepartmentID,
		"program_pendidikan_kode": q.EducationLevel,
		"no_sk":                   q.DecreeNo,
		"tanggal_sk":              *q.DecreeDate,
		"tahun_operasional":       q.OperatingSince,
		"akreditasi":              q.Accreditation,
	}
}

type roomReq struct {
	Name       string `json:"nama" validate:"required,max=255"`
	BuildingID int64  `json:"gedung" validate:"required"`
}

func (q *roomReq) fields() db.Fields { return db.Fields{"nama": q.Name, "gedung_id": q.BuildingID} }

// Люди.

type staffReq struct {
	RegNo     string `json:"no_induk" validate:"required,max=20"`
	Phone     string `json:"no_hp" validate:"required,max=255"`
	ProgramID int64  `json:"prodi" validate:"required"`
	UserID    int64  `json:"user" validate:"required"`
}

func (q *staffReq) fields() db.Fields {
	return db.Fields{"no_induk": q.RegNo, "no_hp": q.Phone, "prodi_id": q.ProgramID, "user_id": q.UserID}
}

type lecturerReq struct {
	NIP       string  `json:"nip" validate:"required,max=20"`
	Name      string  `json:"nama" validate:"required,max=255"`
	Email     string  `json:"email" validate:"required,email,max=254"`
	Phone     string  `json:"no_hp" validate:"required,max=13"`
	Title     string  `json:"gelar" validate:"required,max=20"`
	ProgramID int64   `json:"prodi" validate:"required"`
	Photo     *string `json:"foto_profil"`
	UserID    *int64  `json:"user"`
}

func (q *lecturerReq) fields() db.Fields {
	return db.Fields{
		"nip": q.NIP, "nama": q.Name, "email": q.Email, "no_hp": q.Phone, "gelar": q.Title,
		"prodi_id": q.ProgramID, "foto_profil": q.Photo, "user_id": q.UserID,
	}
}

// profileReq is what a student may change about themselves.
type profileReq struct {
	NIM        *string      `json:"nim" validate:"omitempty,max=10"`
	BirthDate  *models.Date `json:"tanggal_lahir"`
	Phone      *string      `json:"no_hp" validate:"omitempty,max=13"`
	Address    *string      `json:"alamat"`
	Photo      *string      `json:"foto_profil"`
	IntakeYear *int         `json:"tahun_angkatan" validate:"omitempty,gte=2008,lte=3000"`
}

func (q *profileReq) fields() db.Fields {
	f := db.Fields{}
	putIf(f, "nim", q.NIM)
	putIf(f, "tanggal_lahir", q.BirthDate)
	putIf(f, "no_hp", q.Phone)
	putIf(f, "alamat", q.Address)
	putIf(f, "foto_profil", q.Photo)
	putIf(f, "tahun_angkatan", q.IntakeYear)
	return f
}

// studentReq is the staff view of a mahasiswa: profile plus placement.
// Omitted fields keep their current value.
type studentReq struct {
	profileReq
	AdvisorID *int64 `json:"pembimbing_akademik"`
	ClassID   *int64 `json:"kelas"`
}

func (q *studentReq) fields() db.Fields {
	f := q.profileReq.fields()
	putIf(f, "pembimbing_akademik_id", q.AdvisorID)
	putIf(f, "kelas_id", q.ClassID)
	return f
}

type studentCreateReq struct {
	studentReq
	UserID int64 `json:"user" validate:"required"`
}

func (q *studentCreateReq) fields() db.Fields {
	f := q.studentReq.fields()
	f["user_id"] = q.UserID
	return f
}

// Кафедра.

type classReq struct {
	Letter       string `json:"huruf" validate:"required,len=1"`
	ProgramID    int64  `json:"prodi" validate:"required"`
	Semester     int    `json:"semester" validate:"required,gte=1"`
	CurriculumID *int64 `json:"kurikulum"`
}

func (q *classReq) fields() db.Fields {
	return db.Fields{"huruf": q.Letter, "prodi_id": q.ProgramID, "semester_no": q.Semester, "kurikulum_id": q.CurriculumID}
}

type courseReq struct {
	Code          string `json:"kode" validate:"required,max=255"`
	Name          string `json:"nama" validate:"required,max=255"`
	TheoryCredits *int   `json:"jumlah_sks_teori" validate:"required,gte=0"`
	LabCredits    *int   `json:"jumlah_sks_praktik" validate:"required,gte=0"`
	ProgramID     int64  `json:"program_studi" validate:"required"`
	Semester      *int   `json:"semester" validate:"omitempty,gte=0"`
	CurriculumID  *int64 `json:"kurikulum"`
}

func (q *courseReq) fields() db.Fields {
	return db.Fields{
		"kode": q.Code, "nama": q.Name,
		"jumlah_sks_teori": *q.TheoryCredits, "jumlah_sks_praktik": *q.LabCredits,
		"program_studi_id": q.ProgramID, "semester": q.Semester, "kurikulum_id": q.CurriculumID,
	}
}

type scheduleReq struct {
	ClassID int64 `json:"kelas" validate:"required"`
}

type scheduleEntryReq struct {
	Start      *models.Clock `json:"jam_mulai" validate:"required"`
	End        *models.Clock `json:"jam_selesai" validate:"required"`
	Day        models.Day    `json:"kode_hari" validate:"omitempty,oneof=S SE R K J"`
	LecturerID *int64        `json:"dosen"`
	RoomID     int64         `json:"ruangan" validate:"required"`
	CourseID   int64         `json:"mata_kuliah" validate:"required"`
}

func (q *scheduleEntryReq) fields() db.Fields {
	day := q.Day
	if day == "" {
		day = models.Monday
	}
	return db.Fields{
		"jam_mulai": *q.Start, "jam_selesai": *q.End, "hari": string(day),
		"dosen_id": q.LecturerID, "ruangan_id": q.RoomID, "mata_kuliah_id": q.CourseID,
	}
}

func (q *scheduleEntryReq) check() error {
	if !q.Start.Before(*q.End) {
		return apperr.FieldValidation("jam_selesai", "jam_selesai must be after jam_mulai.")
	}
	return nil
}

type materialReq struct {
	Title       string  `json:"judul" validate:"required,max=255"`
	Description string  `json:"deskripsi"`
	File        *string `json:"file"`
	EntryID     int64   `json:"jadwal_makul" validate:"required"`
}

func (q *materialReq) fields() db.Fields {
	return db.Fields{"judul": q.Title, "deskripsi": q.Description, "file": q.File, "jadwal_makul_id": q.EntryID}
}

type khsReq struct {
	NIM       string `json:"nim" validate:"required,max=10"`
	StartYear int    `json:"tahun_akademik_awal" validate:"required,gte=2000,lte=3000"`
	EndYear   int    `json:"tahun_akademik_akhir" validate:"required,gte=2000,lte=3000"`
}

type khsYearsReq struct {
	StartYear int `json:"tahun_akademik_awal" validate:"required,gte=2000,lte=3000"`
	EndYear   int `json:"tahun_akademik_akhir" validate:"required,gte=2000,lte=3000"`
}

func (q khsYearsReq) check() error {
	if q.EndYear < q.StartYear {
		return apperr.FieldValidation("tahun_akademik_akhir", "Must not be before tahun_akademik_awal.")
	}
	return nil
}

type gradeReq struct {
	CourseID int64            `json:"mata_kuliah" validate:"required"`
	Score    *decimal.Decimal `json:"nilai" validate:"required"`
}

// UnmarshalJSON parses nilai itself so a bad number is reported on the field.
func (g *gradeReq) UnmarshalJSON(b []byte) error {
	var raw struct {
		CourseID int64           `json:"mata_kuliah"`
		Score    json.RawMessage `json:"nilai"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	g.CourseID, g.Score = raw.CourseID, nil
	if len(raw.Score) == 0 || string(raw.Score) == "null" {
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(raw.Score); err != nil {
		return apperr.FieldValidation("nilai", "A valid number is required.")
	}
	g.Score = &d
	return nil
}

// Объявления и прочее.

type announcementReq struct {
	Title     string       `json:"judul" validate:"required,max=255"`
	Subtitle  string       `json:"sub_judul" validate:"required,max=255"`
	Detail    *string      `json:"detail"`
	ExpiresOn *models.Date `json:"tanggal_hapus"`
	Thumbnail string       `json:"thumbnail" validate:"required"`
	File      *string      `json:"file"`
	Link      *string      `json:"link" validate:"omitempty,url"`
}

func (q *announcementReq) fields() db.Fields {
	return db.Fields{
		"judul": q.Title, "sub_judul": q.Subtitle, "detail": q.Detail, "tanggal_hapus": q.ExpiresOn,
		"thumbnail": q.Thumbnail, "file": q.File, "link": q.Link,
	}
}

// announcementPatch only touches the fields present in the body.
type announcementPatch struct {
	Title     *string      `json:"judul" validate:"omitempty,min=1,max=255"`
	Subtitle  *string      `json:"sub_judul" validate:"omitempty,min=1,max=255"`
	Detail    *string      `json:"detail"`
	ExpiresOn *models.Date `json:"tanggal_hapus"`
	Thumbnail *string      `json:"thumbnail" validate:"omitempty,min=1"`
	File      *string      `json:"file"`
	Link      *string      `json:"link" validate:"omitempty,url"`
}

func (q *announcementPatch) fields() db.Fields {
	f := db.Fields{}
	putIf(f, "judul", q.Title)
	putIf(f, "sub_judul", q.Subtitle)
	putIf(f, "detail", q.Detail)
	putIf(f, "tanggal_hapus", q.ExpiresOn)
	putIf(f, "thumbnail", q.Thumbnail)
	putIf(f, "file", q.File)
	putIf(f, "link", q.Link)
	return f
}

type programFilterReq struct {
	ProgramID int64 `json:"prodi" validate:"required"`
}

type departmentFilterReq struct {
	DepartmentID int64 `json:"jurusan" validate:"required"`
}

type complaintReq struct {
	Detail string  `json:"detail" validate:"required"`
	Photo  *string `json:"foto"`
}

type complaintResponseReq struct {
	Status   models.ComplaintStatus `json:"status" validate:"required,oneof=B D"`
	Response *string                `json:"tanggapan"`
}

type scientificWorkReq struct {
	Title    string          `json:"judul" validate:"required,max=255"`
	Abstract *string         `json:"abstrak"`
	FullLink *string         `json:"link_versi_full" validate:"omitempty,url"`
	Type     models.WorkType `json:"kode_tipe" validate:"required,oneof=LM TA S PTA PS"`
	Preview  string          `json:"file_preview" validate:"required"`
	NIM      *string         `json:"nim" validate:"omitempty,max=10"`
}

func (q *scientificWorkReq) fields() db.Fields {
	return db.Fields{
		"judul": q.Title, "abstrak": q.Abstract, "link_versi_full": q.FullLink,
		"tipe": string(q.Type), "file_preview": q.Preview,
	}
}
