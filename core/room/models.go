package room

import (
	"time"

	"github.com/trezcool/hostel/core"
)

// MaxSharing caps how many students a single room can be declared for.
const MaxSharing = 20

type Room struct {
	Number    string    `json:"room_number" db:"room_number"`
	Block     string    `json:"block" db:"block"`
	Floor     int       `json:"floor" db:"floor"`
	Sharing   int       `json:"sharing" db:"sharing"`
	Occupied  int       `json:"occupied" db:"occupied"`
	Available int       `json:"available" db:"available"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// Refresh recomputes Available from Sharing and Occupied, clamped at 0.
func (r *Room) Refresh() {
	r.Available = r.Sharing - r.Occupied
	if r.Available < 0 {
		r.Available = 0
	}
}

// Release frees the slot of a departing student. Occupied never drops below 0.
func (r *Room) Release() {
	if r.Occupied > 0 {
		r.Occupied--
	}
	r.Refresh()
}

// Take claims a slot for an arriving student and reports whether one was free.
func (r *Room) Take() bool {
	if r.Occupied >= r.Sharing {
		r.Refresh()
		return false
	}
	r.Occupied++
	r.Refresh()
	return true
}

// Recount overwrites Occupied with the number of students assigned to the room, capped at Sharing.
// It reports whether more students are assigned than the room can hold.
func (r *Room) Recount(assigned int) (overAssigned bool) {
	r.Occupied = assigned
	if r.Occupied > r.Sharing {
		r.Occupied = r.Sharing
		overAssigned = true
	}
	r.Refresh()
	return overAssigned
}

func (r Room) IsFull() bool { return r.Occupied >= r.Sharing }

// NewRoom contains information needed to create a new Room.
type NewRoom struct {
	Number  string `json:"room_number" validate:"required,roomno"`
	Block   string `json:"block" validate:"omitempty,max=32"`
	Floor   int    `json:"floor" validate:"min=0,max=200"`
	Sharing int    `json:"sharing" validate:"required,min=1,max=20"`
}

func (nr *NewRoom) Validate() error {
	nr.Number = core.CleanString(nr.Number)
	nr.Block = core.CleanString(nr.Block)
	return core.Validate.Struct(nr)
}

// UpdateRoom defines what information may be provided to modify an existing Room.
// Occupancy counters are never set directly.
type UpdateRoom struct {
	Block   *string `json:"block" validate:"omitempty,max=32"`
	Floor   *int    `json:"floor" validate:"omitempty,min=0,max=200"`
	Sharing *int    `json:"sharing" validate:"omitempty,min=1,max=20"`
}

func (ur *UpdateRoom) Validate() error {
	if ur.Block != nil {
		block := core.CleanString(*ur.Block)
		ur.Block = &block
	}
	return core.Validate.Struct(ur)
}

type QueryFilter struct {
	Block         string `query:"block"`
	AvailableOnly bool   `query:"available"`
}

func (qf *QueryFilter) Clean() {
	qf.Block = core.CleanString(qf.Block)
}
