package attendance

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core"
)

// Statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLeave   = "leave"
)

var errDuplicateStudent = errors.New("student listed more than once")

// Record is one student's attendance on one day. There is at most one Record per student and date.
type Record struct {
	ID        string    `json:"id" db:"id"`
	StudentID string    `json:"student_id" db:"student_id"`
	Date      string    `json:"date" db:"attended_on"` // YYYY-MM-DD
	Status    string    `json:"status" db:"status"`
	MarkedBy  string    `json:"marked_by" db:"marked_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

type Entry struct {
	StudentID string `json:"student_id" validate:"required,max=64"`
	Status    string `json:"status" validate:"required,oneof=present absent leave"`
}

// Mark is a batch of attendance entries for a single date.
type Mark struct {
	Date    string  `json:"date" validate:"required,date"`
	Entries []Entry `json:"entries" validate:"required,min=1,max=500,dive"`
}

func (m *Mark) Validate() error {
	m.Date = core.CleanString(m.Date)
	for i := range m.Entries {
		m.Entries[i].StudentID = core.CleanString(m.Entries[i].StudentID)
		m.Entries[i].Status = core.CleanString(m.Entries[i].Status, true /* lower */)
	}
	if err := core.Validate.Struct(m); err != nil {
		return err
	}

	seen := make(map[string]bool, len(m.Entries))
	for i, e := range m.Entries {
		if seen[e.StudentID] {
			return core.NewValidationError(errDuplicateStudent, core.FieldError{
				Field: fmt.Sprintf("entries[%d].student_id", i),
				Error: errDuplicateStudent.Error(),
			})
		}
		seen[e.StudentID] = true
	}
	return nil
}

type QueryFilter struct {
	Date      string `query:"date" validate:"omitempty,date"`
	StudentID string `query:"student_id"`
	Status    string `query:"status" validate:"omitempty,oneof=present absent leave"`
}

func (qf *QueryFilter) Validate() error {
	qf.Date = core.CleanString(qf.Date)
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	return core.Validate.Struct(qf)
}
