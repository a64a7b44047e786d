package room

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core"
)

var (
	// errors
	ErrNotFound             = errors.New("room not found")
	ErrExists               = errors.New("a room with this number already exists")
	ErrSharingBelowOccupied = errors.New("sharing cannot be lower than the current occupancy")
)

type (
	Repository interface {
		CreateRoom(ctx context.Context, rm Room, exec ...core.DBExecutor) (Room, error)
		// QueryRooms applies AND operation on available QueryFilter fields.
		QueryRooms(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Room, error)
		GetRoom(ctx context.Context, number string, exec ...core.DBExecutor) (Room, error)
		// LockRoom reads a room and keeps its row locked until the transaction behind exec ends.
		LockRoom(ctx context.Context, exec core.DBExecutor, number string) (Room, error)
		// LockAllRooms is LockRoom for every room, in room number order.
		LockAllRooms(ctx context.Context, exec core.DBExecutor) ([]Room, error)
		UpdateRoom(ctx context.Context, rm Room, exec ...core.DBExecutor) (Room, error)
		// SaveOccupancy writes back the occupied and available counters only.
		SaveOccupancy(ctx context.Context, exec core.DBExecutor, rm Room) error
		DeleteRoom(ctx context.Context, number string, exec ...core.DBExecutor) error
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) Create(ctx context.Context, nr NewRoom) (Room, error) {
	if _, err := svc.repo.GetRoom(ctx, nr.Number); err == nil {
		return Room{}, core.NewValidationError(ErrExists, core.FieldError{Field: "room_number", Error: ErrExists.Error()})
	} else if errors.Cause(err) != ErrNotFound {
		return Room{}, errors.Wrap(err, "checking room uniqueness")
	}

	now := time.Now().UTC()
	rm := Room{
		Number:    nr.Number,
		Block:     nr.Block,
		Floor:     nr.Floor,
		Sharing:   nr.Sharing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	rm.Refresh()
	return svc.repo.CreateRoom(ctx, rm)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Room, error) {
	return svc.repo.QueryRooms(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, number string) (Room, error) {
	return svc.repo.GetRoom(ctx, core.CleanString(number))
}

// Update changes a room's descriptive fields and capacity. The room row is locked so that
// a concurrent allocation cannot slip in between the occupancy check and the write.
func (svc *Service) Update(ctx context.Context, number string, ur UpdateRoom) (Room, error) {
	var updated Room
	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		rm, err := svc.repo.LockRoom(ctx, tx, core.CleanString(number))
		if err != nil {
			return err
		}
		if ur.Block != nil {
			rm.Block = *ur.Block
		}
		if ur.Floor != nil {
			rm.Floor = *ur.Floor
		}
		if ur.Sharing != nil {
			if *ur.Sharing < rm.Occupied {
				return core.NewValidationError(
					ErrSharingBelowOccupied,
					core.FieldError{Field: "sharing", Error: ErrSharingBelowOccupied.Error()},
				)
			}
			rm.Sharing = *ur.Sharing
		}
		rm.Refresh()
		rm.UpdatedAt = time.Now().UTC()

		updated, err = svc.repo.UpdateRoom(ctx, rm, tx)
		return err
	})
	return updated, err
}

// Delete removes a room even when students are still assigned to it; their profiles keep the room number.
func (svc *Service) Delete(ctx context.Context, number string) error {
	return svc.repo.DeleteRoom(ctx, core.CleanString(number))
}
