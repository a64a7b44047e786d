package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/complaint"
)

const complaintColumns = "id, student_id, category, description, status, remark, created_at, updated_at, resolved_at"

var complaintOrderings = map[string]string{
	"created_at":  "created_at",
	"updated_at":  "updated_at",
	"resolved_at": "resolved_at",
	"status":      "status",
	"category":    "category",
}

type complaintRepository struct {
	exec core.DBExecutor
}

var _ complaint.Repository = (*complaintRepository)(nil) // interface compliance check

func NewComplaintRepository(exec core.DBExecutor) *complaintRepository {
	return &complaintRepository{exec: exec}
}

func (repo complaintRepository) CreateComplaint(ctx context.Context, c complaint.Complaint, exec ...core.DBExecutor) (complaint.Complaint, error) {
	ex := getExec(repo.exec, exec)
	q := "INSERT INTO complaints (" + complaintColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := ex.ExecContext(ctx, ex.Rebind(q),
		c.ID, c.StudentID, c.Category, c.Description, c.Status, c.Remark, c.CreatedAt, c.UpdatedAt, c.ResolvedAt)
	if err != nil {
		return complaint.Complaint{}, errors.Wrap(err, "inserting complaint")
	}
	return c, nil
}

func (repo complaintRepository) QueryComplaints(ctx context.Context, filter complaint.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]complaint.Complaint, error) {
	ex := getExec(repo.exec, exec)

	var w where
	if filter.StudentID != "" {
		w.add("student_id = ?", filter.StudentID)
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	if filter.Category != "" {
		w.add("category = ?", filter.Category)
	}
	q := "SELECT " + complaintColumns + " FROM complaints" + w.String() +
		core.OrderBy(ordering, complaintOrderings, "created_at DESC, id ASC")

	complaints := make([]complaint.Complaint, 0)
	if err := sqlx.SelectContext(ctx, ex, &complaints, ex.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting complaints")
	}
	return complaints, nil
}

func (repo complaintRepository) getComplaint(ctx context.Context, ex core.DBExecutor, id string, lock bool) (complaint.Complaint, error) {
	q := "SELECT " + complaintColumns + " FROM complaints WHERE id = ?"
	if lock {
		q += core.ForUpdate(ex)
	}
	var c complaint.Complaint
	if err := sqlx.GetContext(ctx, ex, &c, ex.Rebind(q), id); err != nil {
		return complaint.Complaint{}, trapNoRowsErr(err, complaint.ErrNotFound, "selecting complaint")
	}
	return c, nil
}

func (repo complaintRepository) GetComplaint(ctx context.Context, id string, exec ...core.DBExecutor) (complaint.Complaint, error) {
	return repo.getComplaint(ctx, getExec(repo.exec, exec), id, false)
}

func (repo complaintRepository) LockComplaint(ctx context.Context, exec core.DBExecutor, id string) (complaint.Complaint, error) {
	return repo.getComplaint(ctx, exec, id, true)
}

func (repo complaintRepository) UpdateComplaint(ctx context.Context, c complaint.Complaint, exec ...core.DBExecutor) (complaint.Complaint, error) {
	ex := getExec(repo.exec, exec)
	q := "UPDATE complaints SET status = ?, remark = ?, updated_at = ?, resolved_at = ? WHERE id = ?"
	res, err := ex.ExecContext(ctx, ex.Rebind(q), c.Status, c.Remark, c.UpdatedAt, c.ResolvedAt, c.ID)
	if err != nil {
		return complaint.Complaint{}, errors.Wrap(err, "updating complaint")
	}
	if err := checkAffected(res, complaint.ErrNotFound, "updating complaint"); err != nil {
		return complaint.Complaint{}, err
	}
	return c, nil
}
