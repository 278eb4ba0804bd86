package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// FormatTable applies to the table whose header sits on headerRow:
// - bold bordered header,
// - auto-filter on the header row,
// - approximate auto-width for columns 1..cols, measured from headerRow down.
func FormatTable(f *excelize.File, sheet string, headerRow, cols int) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	if len(rows) < headerRow || cols == 0 {
		return nil
	}

	hdr := fmt.Sprintf("A%d:%s%d", headerRow, columName(cols), headerRow)
	if style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Border:    thinBorder(),
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}); err == nil {
		_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", columName(cols), headerRow), style)
	}
	_ = f.AutoFilter(sheet, hdr, nil)

	widths := make([]float64, cols)
	for c := range widths {
		widths[c] = 6
	}
	for rIdx := headerRow - 1; rIdx < len(rows); rIdx++ {
		row := rows[rIdx]
		for cIdx := 0; cIdx < cols && cIdx < len(row); cIdx++ {
			w := float64(visualLen(row[cIdx])) * 1.1
			if rIdx == headerRow-1 {
				w += 1.5
			}
			if w > 60 {
				w = 60
			}
			if w > widths[cIdx] {
				widths[cIdx] = w
			}
		}
	}
	for i := 0; i < cols; i++ {
		col := columName(i + 1)
		_ = f.SetColWidth(sheet, col, col, widths[i])
	}
	return nil
}

func thinBorder() []excelize.Border {
	out := make([]excelize.Border, 0, 4)
	for _, side := range []string{"left", "top", "right", "bottom"} {
		out = append(out, excelize.Border{Type: side, Color: "000000", Style: 1})
	}
	return out
}

// BuildKHSFilename builds a human-readable file name for a transcript.
func BuildKHSFilename(nim, studentName, academicYear string, semester int) string {
	base := fmt.Sprintf("KHS — %s — %s — %s — Semester %d.xlsx",
		cleanName(nim),
		cleanName(studentName),
		cleanName(academicYear),
		semester,
	)
	return sanitizeFileName(base)
}

// closeOnErr closes f when the builder that owns it fails.
func closeOnErr(f io.Closer, err *error) {
	if *err != nil {
		_ = f.Close()
	}
}

// Utility helpers

func columName(n int) string {
	// 1 -> A; 27 -> AA
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

// visualLen approximates text width by counting runes, treating tabs as 4 chars.
func visualLen(s string) int {
	n := 0
	for _, r := range s {
		if r == '\t' {
			n += 4
		} else {
			n++
		}
	}
	return n
}

var invalidFileRe = regexp.MustCompile(`[\\/:*?"<>|]+`)

func sanitizeFileName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	s = invalidFileRe.ReplaceAllString(s, "_")
	return s
}

func cleanName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "—"
	}
	return s
}
