package db

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/grading"
	"github.com/Spok95/siakad/internal/metrics"
	"github.com/Spok95/siakad/internal/models"
)

func gradeSelect() sq.SelectBuilder {
	return psql.Select(
		"n.id", "n.khs_id", "n.mata_kuliah_id", "mk.kode AS mata_kuliah_kode", "mk.nama AS mata_kuliah_nama",
		"(mk.jumlah_sks_teori + mk.jumlah_sks_praktik) AS sks",
		"n.nilai", "n.huruf_mutu", "n.angka_mutu",
	).
		From("nilai_khs n").
		Join("mata_kuliah mk ON mk.id = n.mata_kuliah_id")
}

func ListGrades(ctx context.Context, database Queryer, role access.Role, khsID int64) ([]models.GradeEntry, error) {
	q := gradeSelect().
		Where(sq.Eq{"n.khs_id": khsID}).
		Where(access.Visible(role, access.EntityGrade)).
		OrderBy("n.id")
	return selectAll[models.GradeEntry](ctx, database, q, "nilai")
}

func GetGrade(ctx context.Context, database Queryer, role access.Role, khsID, id int64) (*models.GradeEntry, error) {
	q := gradeSelect().
		Where(sq.Eq{"n.khs_id": khsID, "n.id": id}).
		Where(access.Visible(role, access.EntityGrade))
	return selectOne[models.GradeEntry](ctx, database, q, "nilai")
}

// gradeFields validates the raw score and derives huruf/angka mutu from it.
func gradeFields(courseID int64, score decimal.Decimal) (Fields, error) {
	if err := grading.ValidateScore(score); err != nil {
		return nil, err
	}
	g := grading.MapScore(score)
	return Fields{
		"mata_kuliah_id": courseID,
		"nilai":          score.StringFixed(2),
		"huruf_mutu":     g.Letter,
		"angka_mutu":     g.Point,
	}, nil
}

func conflictMetric(err error) error {
	if IsUniqueViolation(err, ConstraintGradeCourse) || errors.Is(err, apperr.ErrConflict) {
		metrics.GradeConflicts.Inc()
	}
	return err
}

// CreateGrade records a course score in a KHS. A second grade for the same
// course in the same KHS is a ConflictError on mata_kuliah.
func CreateGrade(ctx context.Context, database Queryer, role access.Role, khsID, courseID int64, score decimal.Decimal) (*models.GradeEntry, error) {
	f, err := gradeFields(courseID, score)
	if err != nil {
		return nil, err
	}
	f["khs_id"] = khsID
	id, err := insertReturningID(ctx, database, psql.Insert("nilai_khs").SetMap(f), "nilai")
	if err != nil {
		return nil, conflictMetric(err)
	}
	return GetGrade(ctx, database, access.SystemAdmin{}, khsID, id)
}

// UpdateGrade replaces course and score; derived fields are recomputed.
func UpdateGrade(ctx context.Context, database Queryer, role access.Role, khsID, id, courseID int64, score decimal.Decimal) (*models.GradeEntry, error) {
	if _, err := GetGrade(ctx, database, role, khsID, id); err != nil {
		return nil, err
	}
	f, err := gradeFields(courseID, score)
	if err != nil {
		return nil, err
	}
	q := psql.Update("nilai_khs AS n").SetMap(f).
		Where(sq.Eq{"n.khs_id": khsID, "n.id": id}).
		Where(access.Mutable(role, access.EntityGrade))
	if err := execAffected(ctx, database, q, "nilai", apperr.Permission("you do not teach this course")); err != nil {
		return nil, conflictMetric(err)
	}
	return GetGrade(ctx, database, access.SystemAdmin{}, khsID, id)
}

func DeleteGrade(ctx context.Context, database Queryer, role access.Role, khsID, id int64) error {
	if _, err := GetGrade(ctx, database, role, khsID, id); err != nil {
		return err
	}
	q := psql.Delete("nilai_khs AS n").
		Where(sq.Eq{"n.khs_id": khsID, "n.id": id}).
		Where(access.Mutable(role, access.EntityGrade))
	return execAffected(ctx, database, q, "nilai", apperr.Permission("grade is outside your scope"))
}
