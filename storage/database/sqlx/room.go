package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/room"
)

const roomColumns = "room_number, block, floor, sharing, occupied, available, created_at, updated_at"

var roomOrderings = map[string]string{
	"room_number": "room_number",
	"block":       "block",
	"floor":       "floor",
	"sharing":     "sharing",
	"occupied":    "occupied",
	"available":   "available",
	"created_at":  "created_at",
}

type roomRepository struct {
	exec core.DBExecutor
}

var _ room.Repository = (*roomRepository)(nil) // interface compliance check

func NewRoomRepository(exec core.DBExecutor) *roomRepository {
	return &roomRepository{exec: exec}
}

func (repo roomRepository) CreateRoom(ctx context.Context, rm room.Room, exec ...core.DBExecutor) (room.Room, error) {
	ex := getExec(repo.exec, exec)
	q := "INSERT INTO rooms (" + roomColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := ex.ExecContext(ctx, ex.Rebind(q),
		rm.Number, rm.Block, rm.Floor, rm.Sharing, rm.Occupied, rm.Available, rm.CreatedAt, rm.UpdatedAt)
	if err != nil {
		return room.Room{}, errors.Wrap(err, "inserting room")
	}
	return rm, nil
}

func (repo roomRepository) QueryRooms(ctx context.Context, filter room.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]room.Room, error) {
	ex := getExec(repo.exec, exec)

	var w where
	if filter.Block != "" {
		w.add("block = ?", filter.Block)
	}
	if filter.AvailableOnly {
		w.add("available > 0")
	}
	q := "SELECT " + roomColumns + " FROM rooms" + w.String() + core.OrderBy(ordering, roomOrderings, "room_number ASC")

	rooms := make([]room.Room, 0)
	if err := sqlx.SelectContext(ctx, ex, &rooms, ex.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting rooms")
	}
	return rooms, nil
}

func (repo roomRepository) getRoom(ctx context.Context, ex core.DBExecutor, number string, lock bool) (room.Room, error) {
	q := "SELECT " + roomColumns + " FROM rooms WHERE room_number = ?"
	if lock {
		q += core.ForUpdate(ex)
	}
	var rm room.Room
	if err := sqlx.GetContext(ctx, ex, &rm, ex.Rebind(q), number); err != nil {
		return room.Room{}, trapNoRowsErr(err, room.ErrNotFound, "selecting room")
	}
	return rm, nil
}

func (repo roomRepository) GetRoom(ctx context.Context, number string, exec ...core.DBExecutor) (room.Room, error) {
	return repo.getRoom(ctx, getExec(repo.exec, exec), number, false)
}

func (repo roomRepository) LockRoom(ctx context.Context, exec core.DBExecutor, number string) (room.Room, error) {
	return repo.getRoom(ctx, exec, number, true)
}

func (repo roomRepository) LockAllRooms(ctx context.Context, exec core.DBExecutor) ([]room.Room, error) {
	q := "SELECT " + roomColumns + " FROM rooms ORDER BY room_number ASC" + core.ForUpdate(exec)
	rooms := make([]room.Room, 0)
	if err := sqlx.SelectContext(ctx, exec, &rooms, q); err != nil {
		return nil, errors.Wrap(err, "selecting rooms")
	}
	return rooms, nil
}

func (repo roomRepository) UpdateRoom(ctx context.Context, rm room.Room, exec ...core.DBExecutor) (room.Room, error) {
	ex := getExec(repo.exec, exec)
	q := "UPDATE rooms SET block = ?, floor = ?, sharing = ?, occupied = ?, available = ?, updated_at = ? WHERE room_number = ?"
	res, err := ex.ExecContext(ctx, ex.Rebind(q),
		rm.Block, rm.Floor, rm.Sharing, rm.Occupied, rm.Available, rm.UpdatedAt, rm.Number)
	if err != nil {
		return room.Room{}, errors.Wrap(err, "updating room")
	}
	if err := checkAffected(res, room.ErrNotFound, "updating room"); err != nil {
		return room.Room{}, err
	}
	return rm, nil
}

func (repo roomRepository) SaveOccupancy(ctx context.Context, exec core.DBExecutor, rm room.Room) error {
	q := "UPDATE rooms SET occupied = ?, available = ?, updated_at = ? WHERE room_number = ?"
	res, err := exec.ExecContext(ctx, exec.Rebind(q), rm.Occupied, rm.Available, time.Now().UTC(), rm.Number)
	if err != nil {
		return errors.Wrap(err, "updating room occupancy")
	}
	return checkAffected(res, room.ErrNotFound, "updating room occupancy")
}

func (repo roomRepository) DeleteRoom(ctx context.Context, number string, exec ...core.DBExecutor) error {
	ex := getExec(repo.exec, exec)
	res, err := ex.ExecContext(ctx, ex.Rebind("DELETE FROM rooms WHERE room_number = ?"), number)
	if err != nil {
		return errors.Wrap(err, "deleting room")
	}
	return checkAffected(res, room.ErrNotFound, "deleting room")
}
