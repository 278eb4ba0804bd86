package export

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/grading"
	"github.com/Spok95/siakad/internal/models"
)

const (
	khsSheet      = "KHS"
	khsTableRow   = 13
	khsTableCols  = 8
	khsLastColumn = "H"
)

var bulan = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// IndonesianDate renders t as "10 Mei 2024".
func IndonesianDate(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), bulan[t.Month()-1], t.Year())
}

// KHSWorkbook renders one transcript. A KHS without grades has no IPS and is
// rejected as a validation error.
func KHSWorkbook(t models.Transcript, institution string, today time.Time) (_ *excelize.File, err error) {
	k := t.KHS
	ips, err := grading.IPS(k.Points())
	if err != nil {
		return nil, apperr.FieldValidation("khs_id", "KHS has no grades yet")
	}
	lines := make([]grading.CourseLine, 0, len(k.Grades))
	for _, g := range k.Grades {
		lines = append(lines, grading.CourseLine{Point: g.Point, SKS: g.Credits})
	}
	totals := grading.Sum(lines)

	f := excelize.NewFile()
	defer closeOnErr(f, &err)
	if err := f.SetSheetName("Sheet1", khsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	set := func(cell string, v any) {
		_ = f.SetCellValue(khsSheet, cell, v)
	}

	// шапка
	title, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 13},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	set("A1", institution)
	set("A2", "KARTU HASIL STUDI (KHS)")
	for _, row := range []string{"1", "2"} {
		_ = f.MergeCell(khsSheet, "A"+row, khsLastColumn+row)
		_ = f.SetCellStyle(khsSheet, "A"+row, "A"+row, title)
	}

	info := [][2]string{
		{"Nama", k.StudentName},
		{"NIM", k.NIM},
		{"Program Studi", k.Program},
		{"Program Pendidikan", k.EducationLevel},
		{"Kelas", k.ClassLetter},
		{"Semester", strconv.Itoa(k.Semester)},
		{"Tahun Akademik", fmt.Sprintf("%d/%d", k.StartYear, k.EndYear)},
		{"Dosen Pembimbing", cleanName(k.Advisor)},
	}
	for i, kv := range info {
		r := 4 + i
		set(fmt.Sprintf("A%d", r), kv[0])
		set(fmt.Sprintf("C%d", r), ": "+kv[1])
	}

	// таблица оценок
	header := []string{"No", "Kode", "Mata Kuliah", "SKS", "Nilai", "Huruf Mutu", "Angka Mutu", "Mutu"}
	for c, h := range header {
		set(fmt.Sprintf("%s%d", columName(c+1), khsTableRow), h)
	}
	r := khsTableRow + 1
	for i, g := range k.Grades {
		set(fmt.Sprintf("A%d", r), i+1)
		set(fmt.Sprintf("B%d", r), g.CourseCode)
		set(fmt.Sprintf("C%d", r), g.CourseName)
		set(fmt.Sprintf("D%d", r), g.Credits)
		_ = f.SetCellFloat(khsSheet, fmt.Sprintf("E%d", r), g.Score.InexactFloat64(), 2, 64)
		set(fmt.Sprintf("F%d", r), g.Letter)
		set(fmt.Sprintf("G%d", r), g.Point)
		set(fmt.Sprintf("H%d", r), g.Point*g.Credits)
		r++
	}
	if style, err := f.NewStyle(&excelize.Style{Border: thinBorder()}); err == nil {
		_ = f.SetCellStyle(khsSheet, fmt.Sprintf("A%d", khsTableRow+1), fmt.Sprintf("%s%d", khsLastColumn, r-1), style)
	}
	if err := FormatTable(f, khsSheet, khsTableRow, khsTableCols); err != nil {
		return nil, err
	}

	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	set(fmt.Sprintf("C%d", r), "Jumlah")
	set(fmt.Sprintf("D%d", r), totals.SKS)
	set(fmt.Sprintf("H%d", r), totals.Mutu)
	_ = f.SetCellStyle(khsSheet, fmt.Sprintf("A%d", r), fmt.Sprintf("%s%d", khsLastColumn, r), bold)
	r += 2
	set(fmt.Sprintf("A%d", r), "IPS")
	set(fmt.Sprintf("C%d", r), ": "+ips.StringFixed(2))
	r++
	set(fmt.Sprintf("A%d", r), "Status")
	set(fmt.Sprintf("C%d", r), ": "+grading.StatusOf(ips).Label())
	_ = f.SetCellStyle(khsSheet, fmt.Sprintf("C%d", r), fmt.Sprintf("C%d", r), bold)

	// подписи
	r += 2
	set(fmt.Sprintf("F%d", r), IndonesianDate(today))
	r++
	set(fmt.Sprintf("A%d", r), "Ketua Jurusan")
	set(fmt.Sprintf("F%d", r), "Koordinator Program Studi")
	r += 4
	headName, headNo := signatory(t.Head)
	coordName, coordNo := "-", "-"
	if c := t.Coordinator; c != nil {
		coordName, coordNo = withTitle(c.Name, c.Title), c.RegNo
	}
	set(fmt.Sprintf("A%d", r), headName)
	set(fmt.Sprintf("F%d", r), coordName)
	_ = f.SetCellStyle(khsSheet, fmt.Sprintf("A%d", r), fmt.Sprintf("%s%d", khsLastColumn, r), bold)
	r++
	set(fmt.Sprintf("A%d", r), "NIP. "+headNo)
	set(fmt.Sprintf("F%d", r), "NIP. "+coordNo)
	return f, nil
}

// WriteKHS renders the transcript into an in-memory xlsx.
func WriteKHS(t models.Transcript, institution string, today time.Time) ([]byte, error) {
	f, err := KHSWorkbook(t, institution, today)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func signatory(h *models.DepartmentHead) (name, regNo string) {
	if h == nil {
		return "-", "-"
	}
	return withTitle(h.Name, h.Title), h.RegNo
}

func withTitle(name, title string) string {
	if title == "" {
		return name
	}
	return name + ", " + title
}
