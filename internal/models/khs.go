package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Spok95/siakad/internal/grading"
)

// Snapshot holds the student facts copied into a KHS when it is created.
// Later changes to the student, class or program never touch it.
type Snapshot struct {
	Semester       int    `db:"semester" json:"semester"`
	Program        string `db:"program_studi" json:"program_studi"`
	EducationLevel string `db:"program_pendidikan" json:"program_pendidikan"`
	Advisor        string `db:"dosen_pembimbing" json:"dosen_pembimbing"`
	ClassLetter    string `db:"kelas" json:"kelas"`
}

// KHS is a student's result card for one academic term.
type KHS struct {
	ID          int64  `db:"id" json:"id"`
	StudentID   int64  `db:"mahasiswa_id" json:"-"`
	NIM         string `db:"nim" json:"nim"`
	StudentName string `db:"mahasiswa_nama" json:"mahasiswa_nama"`
	StartYear   int    `db:"tahun_akademik_awal" json:"tahun_akademik_awal"`
	EndYear     int    `db:"tahun_akademik_akhir" json:"tahun_akademik_akhir"`
	Snapshot

	Grades []GradeEntry `db:"-" json:"nilai_list"`
	IPS    *json.Number `db:"-" json:"ips"`

	// Partial is set when the caller sees only some of the grades.
	Partial bool `db:"-" json:"-"`
}

// AcademicYear renders the term as "2023 / 2024".
func (k KHS) AcademicYear() string {
	return fmt.Sprintf("%d / %d", k.StartYear, k.EndYear)
}

// Points returns the angka mutu of every grade in display order.
func (k KHS) Points() []int {
	out := make([]int, 0, len(k.Grades))
	for _, g := range k.Grades {
		out = append(out, g.Point)
	}
	return out
}

// Summarize fills IPS from Grades. An empty or partial KHS keeps IPS nil.
func (k *KHS) Summarize() {
	k.IPS = nil
	if k.Partial {
		return
	}
	ips, err := grading.IPS(k.Points())
	if err != nil {
		return
	}
	n := json.Number(ips.StringFixed(2))
	k.IPS = &n
}

func (k KHS) MarshalJSON() ([]byte, error) {
	type plain KHS
	return json.Marshal(struct {
		plain
		AcademicYear string `json:"tahun_akademik"`
	}{plain(k), k.AcademicYear()})
}

// GradeEntry is one course result (nilai) inside a KHS.
type GradeEntry struct {
	ID         int64           `db:"id" json:"id"`
	KHSID      int64           `db:"khs_id" json:"khs"`
	CourseID   int64           `db:"mata_kuliah_id" json:"mata_kuliah"`
	CourseCode string          `db:"mata_kuliah_kode" json:"mata_kuliah_kode"`
	CourseName string          `db:"mata_kuliah_nama" json:"mata_kuliah_nama"`
	Credits    int             `db:"sks" json:"sks"`
	Score      decimal.Decimal `db:"nilai" json:"nilai"`
	Letter     string          `db:"huruf_mutu" json:"huruf_mutu"`
	Point      int             `db:"angka_mutu" json:"angka_mutu"`
}

// Transcript is everything the printable KHS needs.
type Transcript struct {
	KHS         KHS
	Head        *DepartmentHead
	Coordinator *ProgramCoordinator
}
