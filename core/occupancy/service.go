package occupancy

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/room"
	"github.com/trezcool/hostel/core/student"
)

var (
	// errors
	ErrRoomFull       = errors.New("room is full")
	ErrMissingStudent = errors.New("student id is required")

	errDryRun = errors.New("dry run")
)

type (
	Service struct {
		db       core.DB
		rooms    room.Repository
		students student.Repository
		policy   CapacityPolicy
		recorder Recorder
	}

	Option func(*Service)
)

func WithCapacityPolicy(p CapacityPolicy) Option {
	return func(svc *Service) { svc.policy = p }
}

func WithRecorder(r Recorder) Option {
	return func(svc *Service) {
		if r != nil {
			svc.recorder = r
		}
	}
}

func NewService(db core.DB, rooms room.Repository, students student.Repository, opts ...Option) *Service {
	svc := &Service{
		db:       db,
		rooms:    rooms,
		students: students,
		policy:   FailOpen,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (svc *Service) Policy() CapacityPolicy { return svc.policy }

// SaveDetails creates or updates a student's profile and moves the student between rooms,
// keeping both rooms' counters consistent. Everything happens in one transaction:
//   - the profile row is created if missing and locked first, so concurrent edits of the same student,
//     including two first-time saves, are serialised;
//   - the previous room (if any, and if different) gives one slot back;
//   - the new room takes one slot if it has a free one, otherwise the capacity policy applies;
//   - the profile is upserted with the submitted room number.
//
// Rooms that do not exist are skipped: the profile still records the room number.
func (svc *Service) SaveDetails(ctx context.Context, studentID string, details student.Details) (student.Profile, Outcome, error) {
	studentID = core.CleanString(studentID)
	if studentID == "" {
		return student.Profile{}, "", core.NewValidationError(ErrMissingStudent, core.FieldError{Field: "user_id", Error: ErrMissingStudent.Error()})
	}
	if err := details.Validate(); err != nil {
		return student.Profile{}, "", err
	}

	var (
		saved   student.Profile
		outcome Outcome
	)
	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		now := time.Now().UTC()

		// a first-time student gets an empty row to lock, with no previous room
		if err := svc.students.ReserveProfile(ctx, tx, studentID, now); err != nil {
			return err
		}
		profile, err := svc.students.LockProfile(ctx, tx, studentID)
		if err != nil {
			return errors.Wrap(err, "locking student profile")
		}

		outcome, err = svc.transfer(ctx, tx, profile.Room(), details.RoomNo)
		if err != nil {
			return err
		}

		details.Apply(&profile)
		profile.UpdatedAt = now
		saved, err = svc.students.UpsertProfile(ctx, tx, profile)
		return errors.Wrap(err, "saving student profile")
	})
	if err != nil {
		if outcome != OutcomeRejected {
			outcome = OutcomeFailed
		}
		svc.recorder.RecordTransfer(outcome)
		return student.Profile{}, outcome, err
	}

	svc.recorder.RecordTransfer(outcome)
	return saved, outcome, nil
}

// transfer adjusts the counters of the vacated and the newly assigned room.
func (svc *Service) transfer(ctx context.Context, tx core.DBExecutor, prevNo, newNo string) (Outcome, error) {
	if newNo == "" {
		return OutcomeUnassigned, nil
	}
	if prevNo == newNo {
		return OutcomeUnchanged, nil
	}

	locked, err := svc.lockRooms(ctx, tx, prevNo, newNo)
	if err != nil {
		return OutcomeFailed, err
	}

	if prev, ok := locked[prevNo]; ok {
		prev.Release()
		if err := svc.rooms.SaveOccupancy(ctx, tx, *prev); err != nil {
			return OutcomeFailed, errors.Wrapf(err, "releasing room %s", prevNo)
		}
	}

	next, ok := locked[newNo]
	if !ok {
		return OutcomeUnknownRoom, nil
	}
	if !next.Take() {
		if svc.policy == FailClosed {
			return OutcomeRejected, core.NewConflictError(ErrRoomFull)
		}
		return OutcomeOverCapacity, nil
	}
	if err := svc.rooms.SaveOccupancy(ctx, tx, *next); err != nil {
		return OutcomeFailed, errors.Wrapf(err, "taking room %s", newNo)
	}
	if prevNo != "" {
		return OutcomeMoved, nil
	}
	return OutcomeAssigned, nil
}

// lockRooms locks the given rooms in ascending room number order, so that two crossing transfers
// wait on each other instead of deadlocking. Missing rooms are left out of the result.
func (svc *Service) lockRooms(ctx context.Context, tx core.DBExecutor, numbers ...string) (map[string]*room.Room, error) {
	wanted := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if n != "" {
			wanted = append(wanted, n)
		}
	}
	sort.Strings(wanted)

	locked := make(map[string]*room.Room, len(wanted))
	for _, n := range wanted {
		rm, err := svc.rooms.LockRoom(ctx, tx, n)
		if err != nil {
			if errors.Cause(err) == room.ErrNotFound {
				continue
			}
			return nil, errors.Wrapf(err, "locking room %s", n)
		}
		locked[n] = &rm
	}
	return locked, nil
}
