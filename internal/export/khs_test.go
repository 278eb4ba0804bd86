package export

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/models"
)

func sampleTranscript() models.Transcript {
	grade := func(code, name string, sks int, score string, letter string, point int) models.GradeEntry {
		return models.GradeEntry{
			CourseCode: code, CourseName: name, Credits: sks,
			Score: decimal.RequireFromString(score), Letter: letter, Point: point,
		}
	}
	return models.Transcript{
		KHS: models.KHS{
			NIM: "2201001", StudentName: "Siti Aminah", StartYear: 2023, EndYear: 2024,
			Snapshot: models.Snapshot{
				Semester: 3, Program: "Teknik Informatika", EducationLevel: "Diploma 3",
				Advisor: "Budi Santoso S.T., M.T.", ClassLetter: "A",
			},
			Grades: []models.GradeEntry{
				grade("TI301", "Basis Data", 3, "85", "A", 4),
				grade("TI302", "Jaringan Komputer", 2, "72.5", "B", 3),
				grade("TI303", "Statistika", 2, "61", "C", 2),
			},
		},
		Head: &models.DepartmentHead{Name: "Dr. Rahmat", Title: "M.Kom.", RegNo: "19700101"},
	}
}

func cell(t *testing.T, f *excelize.File, axis string) string {
	t.Helper()
	v, err := f.GetCellValue(khsSheet, axis)
	require.NoError(t, err)
	return v
}

func TestKHSWorkbook(t *testing.T) {
	today := time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC)
	f, err := KHSWorkbook(sampleTranscript(), "Politeknik Negeri Contoh", today)
	require.NoError(t, err)

	assert.Equal(t, "Politeknik Negeri Contoh", cell(t, f, "A1"))
	assert.Equal(t, ": 2201001", cell(t, f, "C5"))
	assert.Equal(t, ": 2023/2024", cell(t, f, "C10"))
	assert.Equal(t, "Mutu", cell(t, f, "H13"))
	assert.Equal(t, "Basis Data", cell(t, f, "C14"))
	assert.Equal(t, "12", cell(t, f, "H14"))

	// totals row follows the last grade
	assert.Equal(t, "Jumlah", cell(t, f, "C17"))
	assert.Equal(t, "7", cell(t, f, "D17"))
	assert.Equal(t, "22", cell(t, f, "H17"))
	assert.Equal(t, ": 3.00", cell(t, f, "C19"))
	assert.Equal(t, ": LULUS", cell(t, f, "C20"))
	assert.Equal(t, "10 Mei 2024", cell(t, f, "F22"))
	assert.Equal(t, "Dr. Rahmat, M.Kom.", cell(t, f, "A27"))
	assert.Equal(t, "-", cell(t, f, "F27"))
	assert.Equal(t, "NIP. 19700101", cell(t, f, "A28"))
}

func TestKHSWorkbook_ExactlyTwoFails(t *testing.T) {
	tr := sampleTranscript()
	for i := range tr.KHS.Grades {
		tr.KHS.Grades[i].Point = 2
	}
	f, err := KHSWorkbook(tr, "X", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ": TIDAK LULUS", cell(t, f, "C20"))
}

func TestKHSWorkbook_EmptyIsValidationError(t *testing.T) {
	tr := sampleTranscript()
	tr.KHS.Grades = nil
	_, err := KHSWorkbook(tr, "X", time.Now())
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestWriteKHS_IsReadableXLSX(t *testing.T) {
	b, err := WriteKHS(sampleTranscript(), "X", time.Now())
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{khsSheet}, f.GetSheetList())
}

func TestIndonesianDate(t *testing.T) {
	assert.Equal(t, "1 Januari 2025", IndonesianDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "31 Desember 2024", IndonesianDate(time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)))
}

func TestBuildKHSFilename(t *testing.T) {
	assert.Equal(t, "KHS — 2201001 — Siti Aminah — 2023_2024 — Semester 3.xlsx",
		BuildKHSFilename("2201001", "Siti Aminah", "2023/2024", 3))
	assert.Equal(t, "KHS — — — — — — — Semester 1.xlsx", BuildKHSFilename("", " ", "", 1))
}

type countingCloser struct{ n int }

func (c *countingCloser) Close() error {
	c.n++
	return nil
}

func TestCloseOnErr(t *testing.T) {
	var c countingCloser
	build := func(fail bool) (err error) {
		defer closeOnErr(&c, &err)
		if fail {
			return errors.New("rename sheet")
		}
		return nil
	}

	require.NoError(t, build(false))
	assert.Zero(t, c.n, "a successful build hands the file to the caller")
	require.Error(t, build(true))
	assert.Equal(t, 1, c.n)
}
