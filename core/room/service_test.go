package room_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/room"
	sqlxrepos "github.com/trezcool/hostel/storage/database/sqlx"
	"github.com/trezcool/hostel/testutil"
)

func intPtr(i int) *int { return &i }

func TestService(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	svc := room.NewService(db, sqlxrepos.NewRoomRepository(db))

	rm, err := svc.Create(ctx, room.NewRoom{Number: "E101", Block: "E", Floor: 1, Sharing: 2})
	require.NoError(t, err)
	assert.Equal(t, 0, rm.Occupied)
	assert.Equal(t, 2, rm.Available)

	t.Run("duplicate number", func(t *testing.T) {
		_, err := svc.Create(ctx, room.NewRoom{Number: "E101", Sharing: 3})
		vErr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, "want *core.ValidationError, got %T", err)
		assert.Equal(t, room.ErrExists, vErr.Err)
	})

	t.Run("update sharing", func(t *testing.T) {
		testutil.CreateRoom(t, db, "E102", 3, 2)

		rm, err := svc.Update(ctx, "E102", room.UpdateRoom{Sharing: intPtr(4)})
		require.NoError(t, err)
		assert.Equal(t, 4, rm.Sharing)
		assert.Equal(t, 2, rm.Available)

		_, err = svc.Update(ctx, "E102", room.UpdateRoom{Sharing: intPtr(1)})
		vErr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, "want *core.ValidationError, got %T", err)
		assert.Equal(t, room.ErrSharingBelowOccupied, vErr.Err)
		assert.Equal(t, 4, testutil.GetRoom(t, db, "E102").Sharing)
	})

	t.Run("update missing room", func(t *testing.T) {
		_, err := svc.Update(ctx, "Z999", room.UpdateRoom{Floor: intPtr(2)})
		assert.Equal(t, room.ErrNotFound, errors.Cause(err))
	})

	t.Run("query available only", func(t *testing.T) {
		testutil.CreateRoom(t, db, "F201", 1, 1)

		rooms, err := svc.Query(ctx, room.QueryFilter{AvailableOnly: true}, []core.DBOrdering{{Field: "room_number", Ascending: false}})
		require.NoError(t, err)
		numbers := make([]string, 0, len(rooms))
		for _, r := range rooms {
			numbers = append(numbers, r.Number)
		}
		assert.Equal(t, []string{"E102", "E101"}, numbers)
	})

	t.Run("delete occupied room", func(t *testing.T) {
		testutil.CreateProfile(t, db, "s1", "S1", "", "F201")

		require.NoError(t, svc.Delete(ctx, "F201"))
		_, err := svc.Get(ctx, "F201")
		assert.Equal(t, room.ErrNotFound, errors.Cause(err))
		assert.Equal(t, "F201", testutil.GetProfile(t, db, "s1").Room())

		assert.Equal(t, room.ErrNotFound, errors.Cause(svc.Delete(ctx, "F201")))
	})
}
