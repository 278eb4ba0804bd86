package models

type Announcement struct {
	ID          int64                    `db:"id" json:"id"`
	Title       string                   `db:"judul" json:"judul"`
	Subtitle    string                   `db:"sub_judul" json:"sub_judul"`
	Detail      *string                  `db:"detail" json:"detail"`
	PublishedOn Date                     `db:"tanggal_terbit" json:"tanggal_terbit"`
	ExpiresOn   *Date                    `db:"tanggal_hapus" json:"tanggal_hapus"`
	Thumbnail   string                   `db:"thumbnail" json:"thumbnail"`
	File        *string                  `db:"file" json:"file"`
	Link        *string                  `db:"link" json:"link"`
	Programs    []AnnouncementProgram    `db:"-" json:"filter_prodi"`
	Departments []AnnouncementDepartment `db:"-" json:"filter_jurusan"`
}

// AnnouncementProgram restricts an announcement to one study program.
type AnnouncementProgram struct {
	ID             int64  `db:"id" json:"id"`
	AnnouncementID int64  `db:"pemberitahuan_id" json:"-"`
	ProgramID      int64  `db:"prodi_id" json:"prodi"`
	ProgramCode    string `db:"prodi_kode" json:"prodi_kode"`
	ProgramName    string `db:"prodi_nama" json:"prodi_nama"`
}

type AnnouncementDepartment struct {
	ID             int64  `db:"id" json:"id"`
	AnnouncementID int64  `db:"pemberitahuan_id" json:"-"`
	DepartmentID   int64  `db:"jurusan_id" json:"jurusan"`
	DepartmentName string `db:"jurusan_nama" json:"jurusan_nama"`
}

type WorkType string

const (
	WorkInternshipReport WorkType = "LM"
	WorkFinalProject     WorkType = "TA"
	WorkThesis           WorkType = "S"
	WorkFinalProposal    WorkType = "PTA"
	WorkThesisProposal   WorkType = "PS"
)

var workTypeLabels = map[WorkType]string{
	WorkInternshipReport: "Laporan Magang",
	WorkFinalProject:     "Tugas Akhir",
	WorkThesis:           "Skripsi",
	WorkFinalProposal:    "Proposal Tugas Akhir",
	WorkThesisProposal:   "Proposal Skripsi",
}

func (t WorkType) Valid() bool {
	_, ok := workTypeLabels[t]
	return ok
}

func (t WorkType) Label() string {
	if l, ok := workTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

type ScientificWork struct {
	ID          int64    `db:"id" json:"id"`
	Title       string   `db:"judul" json:"judul"`
	Abstract    *string  `db:"abstrak" json:"abstrak"`
	PublishedOn Date     `db:"tanggal_terbit" json:"tanggal_terbit"`
	FullLink    *string  `db:"link_versi_full" json:"link_versi_full"`
	Type        WorkType `db:"tipe" json:"kode_tipe"`
	TypeLabel   string   `db:"-" json:"tipe"`
	Preview     string   `db:"file_preview" json:"file_preview"`
	StudentID   *int64   `db:"mahasiswa_id" json:"-"`
	NIM         *string  `db:"nim" json:"nim"`
	StudentName *string  `db:"mahasiswa_nama" json:"mahasiswa_nama"`
	ProgramID   *int64   `db:"prodi_id" json:"prodi"`
	ProgramName *string  `db:"prodi_nama" json:"prodi_nama"`
}
