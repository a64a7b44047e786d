package complaint

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/student"
)

var (
	// errors
	ErrNotFound        = errors.New("complaint not found")
	ErrAlreadyResolved = errors.New("complaint is already resolved")
	ErrStatusBackwards = errors.New("complaint status cannot move backwards")
)

type (
	Repository interface {
		CreateComplaint(ctx context.Context, c Complaint, exec ...core.DBExecutor) (Complaint, error)
		// QueryComplaints applies AND operation on available QueryFilter fields.
		QueryComplaints(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Complaint, error)
		GetComplaint(ctx context.Context, id string, exec ...core.DBExecutor) (Complaint, error)
		// LockComplaint reads a complaint and keeps its row locked until the transaction behind exec ends.
		LockComplaint(ctx context.Context, exec core.DBExecutor, id string) (Complaint, error)
		UpdateComplaint(ctx context.Context, c Complaint, exec ...core.DBExecutor) (Complaint, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		students student.Repository
		mailSvc  core.EmailService
	}

	resolvedEmailData struct {
		Name        string
		Category    string
		Description string
		Remark      string
		FiledOn     string
	}
)

func NewService(db core.DB, repo Repository, students student.Repository, mailSvc core.EmailService) *Service {
	return &Service{db: db, repo: repo, students: students, mailSvc: mailSvc}
}

func (svc *Service) Create(ctx context.Context, studentID string, nc NewComplaint) (Complaint, error) {
	now := time.Now().UTC()
	c := Complaint{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		Category:    nc.Category,
		Description: nc.Description,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateComplaint(ctx, c)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Complaint, error) {
	return svc.repo.QueryComplaints(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Complaint, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Complaint{}, ErrNotFound
	}
	return svc.repo.GetComplaint(ctx, id)
}

// Update moves a complaint forward through its statuses (open, in_progress, resolved); staying on the
// same status only changes the remark. The row is locked so that a complaint is resolved, and the
// student emailed, only once. Resolving stamps ResolvedAt.
func (svc *Service) Update(ctx context.Context, id string, uc UpdateComplaint) (Complaint, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Complaint{}, ErrNotFound
	}

	var updated Complaint
	err := core.WithTx(ctx, svc.db, func(tx core.DBExecutor) error {
		c, err := svc.repo.LockComplaint(ctx, tx, id)
		if err != nil {
			return err
		}
		if c.IsResolved() {
			return core.NewConflictError(ErrAlreadyResolved)
		}
		if statusRank(uc.Status) < statusRank(c.Status) {
			return core.NewConflictError(ErrStatusBackwards)
		}

		now := time.Now().UTC()
		c.Status = uc.Status
		if uc.Remark != "" {
			c.Remark = uc.Remark
		}
		c.UpdatedAt = now
		if c.IsResolved() {
			c.ResolvedAt = null.TimeFrom(now)
		}

		updated, err = svc.repo.UpdateComplaint(ctx, c, tx)
		return errors.Wrap(err, "updating complaint")
	})
	if err != nil {
		return Complaint{}, err
	}

	if updated.IsResolved() {
		if err := svc.notifyResolved(ctx, updated); err != nil {
			return updated, errors.Wrap(err, "notifying student")
		}
	}
	return updated, nil
}

func (svc *Service) notifyResolved(ctx context.Context, c Complaint) error {
	profile, err := svc.students.GetProfile(ctx, c.StudentID)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return nil
		}
		return err
	}
	if profile.Email == "" {
		return nil
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: profile.Name, Address: profile.Email}},
		Subject:      "Your complaint has been resolved",
		TemplateName: "complaint_resolved",
		TemplateData: resolvedEmailData{
			Name:        profile.Name,
			Category:    c.Category,
			Description: c.Description,
			Remark:      c.Remark,
			FiledOn:     c.CreatedAt.Format(core.DateLayout),
		},
	})
	return nil
}
