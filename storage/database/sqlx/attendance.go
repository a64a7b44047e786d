package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/attendance"
)

const attendanceColumns = "id, student_id, attended_on, status, marked_by, created_at, updated_at"

var attendanceOrderings = map[string]string{
	"date":       "attended_on",
	"student_id": "student_id",
	"status":     "status",
	"updated_at": "updated_at",
}

type attendanceRepository struct {
	exec core.DBExecutor
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{exec: exec}
}

func (repo attendanceRepository) UpsertRecord(ctx context.Context, exec core.DBExecutor, r attendance.Record) (attendance.Record, error) {
	q := "INSERT INTO attendance (" + attendanceColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?) " +
		"ON CONFLICT (student_id, attended_on) DO UPDATE SET " +
		"status = excluded.status, marked_by = excluded.marked_by, updated_at = excluded.updated_at"
	_, err := exec.ExecContext(ctx, exec.Rebind(q),
		r.ID, r.StudentID, r.Date, r.Status, r.MarkedBy, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "upserting attendance record")
	}

	var saved attendance.Record
	q = "SELECT " + attendanceColumns + " FROM attendance WHERE student_id = ? AND attended_on = ?"
	if err := sqlx.GetContext(ctx, exec, &saved, exec.Rebind(q), r.StudentID, r.Date); err != nil {
		return attendance.Record{}, errors.Wrap(err, "selecting attendance record")
	}
	return saved, nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, filter attendance.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]attendance.Record, error) {
	ex := getExec(repo.exec, exec)

	var w where
	if filter.Date != "" {
		w.add("attended_on = ?", filter.Date)
	}
	if filter.StudentID != "" {
		w.add("student_id = ?", filter.StudentID)
	}
	if filter.Status != "" {
		w.add("status = ?", filter.Status)
	}
	q := "SELECT " + attendanceColumns + " FROM attendance" + w.String() +
		core.OrderBy(ordering, attendanceOrderings, "attended_on DESC, student_id ASC")

	records := make([]attendance.Record, 0)
	if err := sqlx.SelectContext(ctx, ex, &records, ex.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting attendance records")
	}
	return records, nil
}
