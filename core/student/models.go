package student

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/hostel/core"
)

// Profile is the hostel record of a student. RoomNo is the single source of truth for where the student lives;
// it is a soft reference and may name a room that no longer exists.
type Profile struct {
	UserID        string      `json:"user_id" db:"user_id"`
	Name          string      `json:"name" db:"name"`
	Email         string      `json:"email" db:"email"`
	Phone         string      `json:"phone" db:"phone"`
	Department    string      `json:"department" db:"department"`
	Year          int         `json:"year" db:"year"`
	GuardianName  string      `json:"guardian_name" db:"guardian_name"`
	GuardianPhone string      `json:"guardian_phone" db:"guardian_phone"`
	RoomNo        null.String `json:"room_no" db:"room_no"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"` // UTC
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"` // UTC
}

// Room returns the assigned room number, "" when unallocated.
func (p Profile) Room() string {
	if !p.RoomNo.Valid {
		return ""
	}
	return p.RoomNo.String
}

// Details is the full set of profile fields a warden submits for a student.
// An empty RoomNo leaves the student unallocated.
type Details struct {
	Name          string `json:"name" validate:"required,max=128"`
	Email         string `json:"email" validate:"omitempty,email,max=254"`
	Phone         string `json:"phone" validate:"omitempty,phone"`
	Department    string `json:"department" validate:"omitempty,max=64"`
	Year          int    `json:"year" validate:"min=0,max=8"`
	GuardianName  string `json:"guardian_name" validate:"omitempty,max=128"`
	GuardianPhone string `json:"guardian_phone" validate:"omitempty,phone"`
	RoomNo        string `json:"room_no" validate:"omitempty,roomno"`
}

func (d *Details) Validate() error {
	d.Name = core.CleanString(d.Name)
	d.Email = core.CleanString(d.Email, true /* lower */)
	d.Phone = core.CleanString(d.Phone)
	d.Department = core.CleanString(d.Department)
	d.GuardianName = core.CleanString(d.GuardianName)
	d.GuardianPhone = core.CleanString(d.GuardianPhone)
	d.RoomNo = core.CleanString(d.RoomNo)
	return core.Validate.Struct(d)
}

// Apply copies the submitted fields onto p, including the new room assignment.
func (d Details) Apply(p *Profile) {
	p.Name = d.Name
	p.Email = d.Email
	p.Phone = d.Phone
	p.Department = d.Department
	p.Year = d.Year
	p.GuardianName = d.GuardianName
	p.GuardianPhone = d.GuardianPhone
	p.RoomNo = null.NewString(d.RoomNo, d.RoomNo != "")
}

type QueryFilter struct {
	RoomNo     string `query:"room_no"`
	Department string `query:"department"`
	Search     string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.RoomNo = core.CleanString(qf.RoomNo)
	qf.Department = core.CleanString(qf.Department)
	qf.Search = core.CleanString(qf.Search)
}
