package sqlxrepos_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/student"
	sqlxrepos "github.com/trezcool/hostel/storage/database/sqlx"
	"github.com/trezcool/hostel/testutil"
)

func TestStudentRepository_CountByRoom(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewStudentRepository(db)
	testutil.CreateProfile(t, db, "s1", "S1", "", "E101")
	testutil.CreateProfile(t, db, "s2", "S2", "", "E101")
	testutil.CreateProfile(t, db, "s3", "S3", "", "E102")
	testutil.CreateProfile(t, db, "s4", "S4", "", "")

	counts, err := repo.CountByRoom(context.Background(), db)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"E101": 2, "E102": 1}, counts)
}

func TestStudentRepository_QueryProfiles(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewStudentRepository(db)
	testutil.CreateProfile(t, db, "s1", "Zoe", "zoe@example.com", "E101")
	testutil.CreateProfile(t, db, "s2", "Adam", "adam@example.com", "E101")
	testutil.CreateProfile(t, db, "s3", "Bea", "BEA@example.com", "")

	tests := []struct {
		name     string
		filter   student.QueryFilter
		ordering []core.DBOrdering
		wantIDs  []string
	}{
		{name: "all, by name", wantIDs: []string{"s2", "s3", "s1"}},
		{name: "by room", filter: student.QueryFilter{RoomNo: "E101"}, wantIDs: []string{"s2", "s1"}},
		{name: "search is case-insensitive", filter: student.QueryFilter{Search: "bea@"}, wantIDs: []string{"s3"}},
		{
			name:     "descending name",
			ordering: []core.DBOrdering{{Field: "name", Ascending: false}},
			wantIDs:  []string{"s1", "s3", "s2"},
		},
		{
			name:     "unknown ordering field falls back",
			ordering: []core.DBOrdering{{Field: "password", Ascending: false}},
			wantIDs:  []string{"s2", "s3", "s1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles, err := repo.QueryProfiles(context.Background(), tt.filter, tt.ordering)
			require.NoError(t, err)
			ids := make([]string, 0, len(profiles))
			for _, p := range profiles {
				ids = append(ids, p.UserID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestStudentRepository_UpsertProfile(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewStudentRepository(db)
	created := testutil.CreateProfile(t, db, "s1", "Jane", "", "E101")

	created.Name = "Jane Doe"
	created.RoomNo.Valid = false
	updated, err := repo.UpsertProfile(context.Background(), db, created)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", updated.Name)
	assert.False(t, updated.RoomNo.Valid)

	_, err = repo.GetProfile(context.Background(), "nope")
	assert.Equal(t, student.ErrNotFound, err)
	_, err = repo.LockProfile(context.Background(), db, "nope")
	assert.Equal(t, student.ErrNotFound, err)
}

func TestStudentRepository_ReserveProfile(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewStudentRepository(db)
	testutil.CreateProfile(t, db, "s1", "Jane", "jane@example.com", "E101")
	now := time.Now().UTC()

	require.NoError(t, repo.ReserveProfile(ctx, db, "s1", now))
	existing := testutil.GetProfile(t, db, "s1")
	assert.Equal(t, "Jane", existing.Name, "an existing profile is left untouched")
	assert.Equal(t, "E101", existing.Room())

	require.NoError(t, repo.ReserveProfile(ctx, db, "s2", now))
	require.NoError(t, repo.ReserveProfile(ctx, db, "s2", now))
	reserved, err := repo.LockProfile(ctx, db, "s2")
	require.NoError(t, err)
	assert.Equal(t, "", reserved.Name)
	assert.False(t, reserved.RoomNo.Valid)
}

func TestStudentRepository_LockProfile_postgres(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "postgres")

	mock.ExpectQuery(regexp.QuoteMeta("FROM student_profiles WHERE user_id = $1 FOR UPDATE")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "name", "room_no"}).AddRow("s1", "Jane", "E101"))

	p, err := sqlxrepos.NewStudentRepository(db).LockProfile(context.Background(), db, "s1")
	require.NoError(t, err)
	assert.Equal(t, "E101", p.Room())
	assert.NoError(t, mock.ExpectationsWereMet())
}
