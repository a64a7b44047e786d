package complaint

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/hostel/core"
)

// Categories
const (
	CategoryElectrical  = "electrical"
	CategoryPlumbing    = "plumbing"
	CategoryFurniture   = "furniture"
	CategoryCleanliness = "cleanliness"
	CategoryInternet    = "internet"
	CategoryOther       = "other"
)

// Statuses
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

type Complaint struct {
	ID          string    `json:"id" db:"id"`
	StudentID   string    `json:"student_id" db:"student_id"`
	Category    string    `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	Status      string    `json:"status" db:"status"`
	Remark      string    `json:"remark" db:"remark"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
	ResolvedAt  null.Time `json:"resolved_at" db:"resolved_at"`
}

var statusRanks = map[string]int{
	StatusOpen:       0,
	StatusInProgress: 1,
	StatusResolved:   2,
}

func statusRank(status string) int {
	return statusRanks[status]
}

func (c Complaint) IsResolved() bool { return c.Status == StatusResolved }

// NewComplaint contains information a student provides to file a Complaint.
type NewComplaint struct {
	Category    string `json:"category" validate:"required,oneof=electrical plumbing furniture cleanliness internet other"`
	Description string `json:"description" validate:"required,max=2000"`
}

func (nc *NewComplaint) Validate() error {
	nc.Category = core.CleanString(nc.Category, true /* lower */)
	nc.Description = core.CleanString(nc.Description)
	return core.Validate.Struct(nc)
}

// UpdateComplaint is what a warden may change on a Complaint.
type UpdateComplaint struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved"`
	Remark string `json:"remark" validate:"max=2000"`
}

func (uc *UpdateComplaint) Validate() error {
	uc.Status = core.CleanString(uc.Status, true /* lower */)
	uc.Remark = core.CleanString(uc.Remark)
	return core.Validate.Struct(uc)
}

type QueryFilter struct {
	StudentID string `query:"student_id"`
	Status    string `query:"status"`
	Category  string `query:"category"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
	qf.Category = core.CleanString(qf.Category, true /* lower */)
}
