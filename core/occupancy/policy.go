package occupancy

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// CapacityPolicy decides what happens when a student is assigned to a room that is already full.
type CapacityPolicy int

const (
	// FailOpen records the assignment on the profile but stops the room's counter at capacity.
	// Profile updates are never blocked by room capacity.
	FailOpen CapacityPolicy = iota
	// FailClosed rejects the whole update when the target room is full.
	FailClosed
)

func (p CapacityPolicy) String() string {
	switch p {
	case FailOpen:
		return "fail_open"
	case FailClosed:
		return "fail_closed"
	default:
		return fmt.Sprintf("CapacityPolicy(%d)", int(p))
	}
}

// ParseCapacityPolicy accepts "fail_open" (or "") and "fail_closed", case-insensitively,
// with either "_" or "-" as separator. Anything else is an error.
func ParseCapacityPolicy(s string) (CapacityPolicy, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "", "fail_open", "failopen":
		return FailOpen, nil
	case "fail_closed", "failclosed":
		return FailClosed, nil
	default:
		return FailOpen, errors.Errorf("unknown capacity policy %q (want fail_open or fail_closed)", s)
	}
}

// Outcome describes what a transfer did to the room counters.
type Outcome string

const (
	OutcomeUnassigned   Outcome = "unassigned"    // no room submitted, counters untouched
	OutcomeUnchanged    Outcome = "unchanged"     // same room as before
	OutcomeAssigned     Outcome = "assigned"      // a slot was taken in the new room, coming from no room
	OutcomeMoved        Outcome = "moved"         // a slot was taken in the new room, coming from another one
	OutcomeOverCapacity Outcome = "over_capacity" // new room full, assignment recorded without counting
	OutcomeUnknownRoom  Outcome = "unknown_room"  // new room does not exist, assignment recorded
	OutcomeRejected     Outcome = "rejected"      // new room full under FailClosed
	OutcomeFailed       Outcome = "failed"        // transaction rolled back
)

// Recorder observes transfers and reconciliations, e.g. to export metrics.
type Recorder interface {
	RecordTransfer(outcome Outcome)
	RecordReconciliation(report Report)
}

type nopRecorder struct{}

func (nopRecorder) RecordTransfer(Outcome)      {}
func (nopRecorder) RecordReconciliation(Report) {}
