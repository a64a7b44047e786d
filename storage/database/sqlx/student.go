package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/student"
)

const profileColumns = "user_id, name, email, phone, department, year, guardian_name, guardian_phone, room_no, created_at, updated_at"

var profileOrderings = map[string]string{
	"name":       "name",
	"department": "department",
	"year":       "year",
	"room_no":    "room_no",
	"created_at": "created_at",
	"updated_at": "updated_at",
}

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo studentRepository) getProfile(ctx context.Context, ex core.DBExecutor, userID string, lock bool) (student.Profile, error) {
	q := "SELECT " + profileColumns + " FROM student_profiles WHERE user_id = ?"
	if lock {
		q += core.ForUpdate(ex)
	}
	var p student.Profile
	if err := sqlx.GetContext(ctx, ex, &p, ex.Rebind(q), userID); err != nil {
		return student.Profile{}, trapNoRowsErr(err, student.ErrNotFound, "selecting student profile")
	}
	return p, nil
}

func (repo studentRepository) GetProfile(ctx context.Context, userID string, exec ...core.DBExecutor) (student.Profile, error) {
	return repo.getProfile(ctx, getExec(repo.exec, exec), userID, false)
}

func (repo studentRepository) ReserveProfile(ctx context.Context, exec core.DBExecutor, userID string, at time.Time) error {
	q := "INSERT INTO student_profiles (user_id, name, created_at, updated_at) VALUES (?, '', ?, ?) " +
		"ON CONFLICT (user_id) DO NOTHING"
	if _, err := exec.ExecContext(ctx, exec.Rebind(q), userID, at, at); err != nil {
		return errors.Wrap(err, "reserving student profile")
	}
	return nil
}

func (repo studentRepository) LockProfile(ctx context.Context, exec core.DBExecutor, userID string) (student.Profile, error) {
	return repo.getProfile(ctx, exec, userID, true)
}

func (repo studentRepository) QueryProfiles(ctx context.Context, filter student.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Profile, error) {
	ex := getExec(repo.exec, exec)

	var w where
	if filter.RoomNo != "" {
		w.add("room_no = ?", filter.RoomNo)
	}
	if filter.Department != "" {
		w.add("department = ?", filter.Department)
	}
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		w.add("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", pattern, pattern)
	}
	q := "SELECT " + profileColumns + " FROM student_profiles" + w.String() +
		core.OrderBy(ordering, profileOrderings, "name ASC, user_id ASC")

	profiles := make([]student.Profile, 0)
	if err := sqlx.SelectContext(ctx, ex, &profiles, ex.Rebind(q), w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting student profiles")
	}
	return profiles, nil
}

func (repo studentRepository) UpsertProfile(ctx context.Context, exec core.DBExecutor, p student.Profile) (student.Profile, error) {
	q := "INSERT INTO student_profiles (" + profileColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) " +
		"ON CONFLICT (user_id) DO UPDATE SET " +
		"name = excluded.name, email = excluded.email, phone = excluded.phone, department = excluded.department, " +
		"year = excluded.year, guardian_name = excluded.guardian_name, guardian_phone = excluded.guardian_phone, " +
		"room_no = excluded.room_no, updated_at = excluded.updated_at"

	_, err := exec.ExecContext(ctx, exec.Rebind(q),
		p.UserID, p.Name, p.Email, p.Phone, p.Department, p.Year, p.GuardianName, p.GuardianPhone, p.RoomNo,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return student.Profile{}, errors.Wrap(err, "upserting student profile")
	}
	return repo.getProfile(ctx, exec, p.UserID, false)
}

func (repo studentRepository) CountByRoom(ctx context.Context, exec core.DBExecutor) (map[string]int, error) {
	var rows []struct {
		RoomNo   string `db:"room_no"`
		Students int    `db:"students"`
	}
	q := "SELECT room_no, COUNT(*) AS students FROM student_profiles WHERE room_no IS NOT NULL GROUP BY room_no"
	if err := sqlx.SelectContext(ctx, exec, &rows, q); err != nil {
		return nil, errors.Wrap(err, "counting students per room")
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.RoomNo] = r.Students
	}
	return counts, nil
}
