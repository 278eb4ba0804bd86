package db

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/Spok95/siakad/internal/models"
)

func roomSelect() sq.SelectBuilder {
	return psql.Select("r.id", "r.nama", "r.gedung_id", "g.nama AS gedung_nama").
		From("ruangan r").
		Join("gedung_kuliah g ON g.id = r.gedung_id")
}

// ListRooms lists rooms, optionally of one building, each with its weekly usage.
func ListRooms(ctx context.Context, database Queryer, buildingID *int64) ([]models.Room, error) {
	q := roomSelect().OrderBy("g.nama", "r.nama")
	if buildingID != nil {
		q = q.Where(sq.Eq{"r.gedung_id": *buildingID})
	}
	rooms, err := selectAll[models.Room](ctx, database, q, "ruangan")
	if err != nil || len(rooms) == 0 {
		return rooms, err
	}
	ids := make([]int64, len(rooms))
	idx := make(map[int64]int, len(rooms))
	for i, r := range rooms {
		ids[i] = r.ID
		idx[r.ID] = i
	}
	usage, err := listEntries(ctx, database, sq.Eq{"jm.ruangan_id": ids})
	if err != nil {
		return nil, err
	}
	for _, e := range usage {
		i := idx[e.RoomID]
		rooms[i].Usage = append(rooms[i].Usage, e)
	}
	return rooms, nil
}

func GetRoom(ctx context.Context, database Queryer, id int64) (*models.Room, error) {
	r, err := selectOne[models.Room](ctx, database, roomSelect().Where(sq.Eq{"r.id": id}), "ruangan")
	if err != nil {
		return nil, err
	}
	r.Usage, err = listEntries(ctx, database, sq.Eq{"jm.ruangan_id": id})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func CreateRoom(ctx context.Context, database Queryer, f Fields) (*models.Room, error) {
	id, err := insertReturningID(ctx, database, psql.Insert("ruangan").SetMap(f), "ruangan")
	if err != nil {
		return nil, err
	}
	return GetRoom(ctx, database, id)
}

func UpdateRoom(ctx context.Context, database Queryer, id int64, f Fields) (*models.Room, error) {
	if err := execAffected(ctx, database, psql.Update("ruangan").SetMap(f).Where(sq.Eq{"id": id}), "ruangan", nil); err != nil {
		return nil, err
	}
	return GetRoom(ctx, database, id)
}

func DeleteRoom(ctx context.Context, database Queryer, id int64) error {
	return execAffected(ctx, database, psql.Delete("ruangan").Where(sq.Eq{"id": id}), "ruangan", nil)
}
