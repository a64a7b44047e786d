package occupancy

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core"
)

type (
	// Report summarises a reconciliation run.
	Report struct {
		DryRun       bool         `json:"dry_run"`
		Rooms        int          `json:"rooms"`
		Changed      []Change     `json:"changed"`
		OverAssigned []Assignment `json:"over_assigned"` // more students than the room can hold
		Orphaned     []Assignment `json:"orphaned"`      // room numbers on profiles that match no room
	}

	Change struct {
		RoomNumber   string `json:"room_number"`
		FromOccupied int    `json:"from_occupied"`
		ToOccupied   int    `json:"to_occupied"`
	}

	Assignment struct {
		RoomNumber string `json:"room_number"`
		Students   int    `json:"students"`
	}
)

// Reconcile recomputes every room's occupied and available counters from the student profiles,
// overwriting whatever the incremental transfers left behind. Occupied is capped at sharing;
// rooms holding more students than that are listed in Report.OverAssigned.
// With dryRun the changes are computed and then rolled back.
func (svc *Service) Reconcile(ctx context.Context, dryRun bool) (Report, error) {
	report := Report{
		DryRun:       dryRun,
		Changed:      []Change{},
		OverAssigned: []Assignment{},
		Orphaned:     []Assignment{},
	}

	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		rooms, err := svc.rooms.LockAllRooms(ctx, tx)
		if err != nil {
			return errors.Wrap(err, "locking rooms")
		}
		counts, err := svc.students.CountByRoom(ctx, tx)
		if err != nil {
			return errors.Wrap(err, "counting students per room")
		}

		report.Rooms = len(rooms)
		for _, rm := range rooms {
			assigned := counts[rm.Number]
			delete(counts, rm.Number)

			before := rm
			if rm.Recount(assigned) {
				report.OverAssigned = append(report.OverAssigned, Assignment{RoomNumber: rm.Number, Students: assigned})
			}
			if rm.Occupied == before.Occupied && rm.Available == before.Available {
				continue
			}
			report.Changed = append(report.Changed, Change{RoomNumber: rm.Number, FromOccupied: before.Occupied, ToOccupied: rm.Occupied})
			if err := svc.rooms.SaveOccupancy(ctx, tx, rm); err != nil {
				return errors.Wrapf(err, "saving room %s", rm.Number)
			}
		}

		for number, students := range counts {
			report.Orphaned = append(report.Orphaned, Assignment{RoomNumber: number, Students: students})
		}
		sort.Slice(report.Orphaned, func(i, j int) bool { return report.Orphaned[i].RoomNumber < report.Orphaned[j].RoomNumber })

		if dryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && err != errDryRun {
		return Report{}, err
	}

	svc.recorder.RecordReconciliation(report)
	return report, nil
}
