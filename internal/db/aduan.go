package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/access"
	"github.com/Spok95/siakad/internal/apperr"
	"github.com/Spok95/siakad/internal/models"
)

func complaintSelect() sq.SelectBuilder {
	return psql.Select("a.id", "a.status", "a.detail", "a.foto", "a.ruangan_id", "a.tanggapan", "a.mahasiswa_id").
		From("aduan_ruangan a")
}

func ListComplaints(ctx context.Context, database Queryer, role access.Role, roomID int64) ([]models.Complaint, error) {
	q := complaintSelect().
		Where(sq.Eq{"a.ruangan_id": roomID}).
		Where(access.Visible(role, access.EntityComplaint)).
		OrderBy("a.id DESC")
	return selectAll[models.Complaint](ctx, database, q, "aduan")
}

func GetComplaint(ctx context.Context, database Queryer, role access.Role, roomID, id int64) (*models.Complaint, error) {
	q := complaintSelect().
		Where(sq.Eq{"a.ruangan_id": roomID, "a.id": id}).
		Where(access.Visible(role, access.EntityComplaint))
	return selectOne[models.Complaint](ctx, database, q, "aduan")
}

// CreateComplaint files a complaint about a room; status starts as unread.
func CreateComplaint(ctx context.Context, database Queryer, role access.Role, c models.Complaint) (*models.Complaint, error) {
	id, err := insertReturningID(ctx, database, psql.Insert("aduan_ruangan").SetMap(Fields{
		"detail":       c.Detail,
		"foto":         c.Photo,
		"ruangan_id":   c.RoomID,
		"mahasiswa_id": c.StudentID,
		"status":       models.ComplaintUnread,
	}), "aduan")
	if err != nil {
		return nil, err
	}
	return GetComplaint(ctx, database, role, c.RoomID, id)
}

// RespondComplaint sets the status and, when given, the response text.
func RespondComplaint(ctx context.Context, database Queryer, role access.Role, roomID, id int64, status models.ComplaintStatus, response *string) (*models.Complaint, error) {
	if !status.Valid() {
		return nil, apperr.FieldValidation("status", "must be B or D")
	}
	set := Fields{"status": status}
	if response != nil {
		set["tanggapan"] = *response
	}
	q := psql.Update("aduan_ruangan AS a").SetMap(set).
		Where(sq.Eq{"a.ruangan_id": roomID, "a.id": id}).
		Where(access.Mutable(role, access.EntityComplaint))
	if err := execAffected(ctx, database, q, "aduan", nil); err != nil {
		return nil, err
	}
	return GetComplaint(ctx, database, role, roomID, id)
}

func DeleteComplaint(ctx context.Context, database Queryer, role access.Role, roomID, id int64) error {
	q := psql.Delete("aduan_ruangan AS a").
		Where(sq.Eq{"a.ruangan_id": roomID, "a.id": id}).
		Where(access.Mutable(role, access.EntityComplaint))
	return execAffected(ctx, database, q, "aduan", nil)
}
