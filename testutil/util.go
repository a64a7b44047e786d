// Package testutil prepares migrated in-memory databases and fixtures for tests.
package testutil

import (
	"context"
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/hostel/core/room"
	"github.com/trezcool/hostel/core/student"
	"github.com/trezcool/hostel/storage/database"
	sqlxrepos "github.com/trezcool/hostel/storage/database/sqlx"
)

var (
	dbCounter    int64
	nonWordRegex = regexp.MustCompile(`\W+`)
)

// PrepareDB opens a fresh, migrated in-memory SQLite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	name := fmt.Sprintf("%s_%d", nonWordRegex.ReplaceAllString(t.Name(), "_"), atomic.AddInt64(&dbCounter, 1))
	db, err := database.OpenSQLite(ctx, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateRoom(t *testing.T, db *sqlx.DB, number string, sharing, occupied int) room.Room {
	t.Helper()
	now := time.Now().UTC()
	rm := room.Room{
		Number:    number,
		Block:     number[:1],
		Sharing:   sharing,
		Occupied:  occupied,
		CreatedAt: now,
		UpdatedAt: now,
	}
	rm.Refresh()
	rm, err := sqlxrepos.NewRoomRepository(db).CreateRoom(context.Background(), rm)
	if err != nil {
		t.Fatalf("CreateRoom() failed: %v", err)
	}
	return rm
}

func GetRoom(t *testing.T, db *sqlx.DB, number string) room.Room {
	t.Helper()
	rm, err := sqlxrepos.NewRoomRepository(db).GetRoom(context.Background(), number)
	if err != nil {
		t.Fatalf("GetRoom(%s) failed: %v", number, err)
	}
	return rm
}

// CreateProfile writes a profile directly, leaving room counters alone.
func CreateProfile(t *testing.T, db *sqlx.DB, userID, name, email, roomNo string) student.Profile {
	t.Helper()
	now := time.Now().UTC()
	p := student.Profile{
		UserID:    userID,
		Name:      name,
		Email:     email,
		RoomNo:    null.NewString(roomNo, roomNo != ""),
		CreatedAt: now,
		UpdatedAt: now,
	}
	p, err := sqlxrepos.NewStudentRepository(db).UpsertProfile(context.Background(), db, p)
	if err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	return p
}

func GetProfile(t *testing.T, db *sqlx.DB, userID string) student.Profile {
	t.Helper()
	p, err := sqlxrepos.NewStudentRepository(db).GetProfile(context.Background(), userID)
	if err != nil {
		t.Fatalf("GetProfile(%s) failed: %v", userID, err)
	}
	return p
}
