package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hostel/core/occupancy"
	"github.com/trezcool/hostel/core/room"
	"github.com/trezcool/hostel/testutil"
)

func Test_roomApi_crud(t *testing.T) {
	app := setup(t)
	token := app.token(t, warden)

	t.Run("create", func(t *testing.T) {
		rec := app.do(t, httpTest{
			method: http.MethodPost, path: "/v1/rooms", token: token,
			body: []byte(`{"room_number":"E101","block":"E","floor":1,"sharing":2}`), wantCode: http.StatusCreated,
		})
		var rm room.Room
		decode(t, rec, &rm)
		assert.Equal(t, "E101", rm.Number)
		assert.Equal(t, 0, rm.Occupied)
		assert.Equal(t, 2, rm.Available)
	})

	tests := []httpTest{
		{
			name: "create duplicate", method: http.MethodPost, path: "/v1/rooms", token: token,
			body: []byte(`{"room_number":"E101","sharing":3}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"room_number":"a room with this number already exists"}`),
		},
		{
			name: "create invalid", method: http.MethodPost, path: "/v1/rooms", token: token,
			body: []byte(`{"room_number":"E/1","sharing":0}`), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"room_number":"must be 1 to 16 letters, digits or dashes","sharing":"this field is required"}`),
		},
		{name: "retrieve missing", path: "/v1/rooms/E999", token: token, wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "room not found"})},
		{
			name: "update sharing", method: http.MethodPut, path: "/v1/rooms/E101", token: token,
			body: []byte(`{"sharing":3}`),
		},
		{name: "delete missing", method: http.MethodDelete, path: "/v1/rooms/E999", token: token, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.do(t, tt)
		})
	}

	t.Run("sharing below occupancy", func(t *testing.T) {
		testutil.CreateRoom(t, app.db, "E102", 3, 2)
		app.do(t, httpTest{
			method: http.MethodPut, path: "/v1/rooms/E102", token: token, body: []byte(`{"sharing":1}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"sharing":"sharing cannot be lower than the current occupancy"}`),
		})
	})

	t.Run("list available only", func(t *testing.T) {
		testutil.CreateRoom(t, app.db, "F201", 1, 1)

		var rooms []room.Room
		decode(t, app.do(t, httpTest{path: "/v1/rooms?available=true&ordering=-room_number", token: token}), &rooms)
		require.Len(t, rooms, 2)
		assert.Equal(t, "E102", rooms[0].Number)
		assert.Equal(t, 3, rooms[1].Sharing)
		assert.Equal(t, 3, rooms[1].Available)
	})

	t.Run("delete occupied room", func(t *testing.T) {
		app.do(t, httpTest{method: http.MethodDelete, path: "/v1/rooms/F201", token: app.token(t, admin), wantCode: http.StatusNoContent})
		app.do(t, httpTest{path: "/v1/rooms/F201", token: token, wantCode: http.StatusNotFound})
	})
}

func Test_roomApi_reconcile(t *testing.T) {
	app := setup(t)
	token := app.token(t, warden)
	testutil.CreateRoom(t, app.db, "E101", 2, 1)

	for _, id := range []string{"student-a", "student-b"} {
		app.do(t, httpTest{
			method: http.MethodPut, path: detailsPath(id), token: token,
			body: []byte(`{"name":"` + id + `","room_no":"E101"}`),
		})
	}

	t.Run("students cannot reconcile", func(t *testing.T) {
		app.do(t, httpTest{method: http.MethodPost, path: "/v1/rooms/reconcile", token: app.token(t, studentA), wantCode: http.StatusForbidden})
	})

	t.Run("counters already match the profiles", func(t *testing.T) {
		var report occupancy.Report
		decode(t, app.do(t, httpTest{method: http.MethodPost, path: "/v1/rooms/reconcile", token: token}), &report)
		assert.Equal(t, 1, report.Rooms)
		assert.Empty(t, report.Changed)

		rm := testutil.GetRoom(t, app.db, "E101")
		assert.Equal(t, 2, rm.Occupied)
		assert.Equal(t, 0, rm.Available)
	})

	t.Run("dry run after drift", func(t *testing.T) {
		_, err := app.db.Exec("UPDATE rooms SET occupied = 0, available = 2 WHERE room_number = 'E101'")
		require.NoError(t, err)

		app.do(t, httpTest{
			method: http.MethodPost, path: "/v1/rooms/reconcile?dry_run=true", token: token,
			wantData: []byte(`{"dry_run":true,"rooms":1,"changed":[{"room_number":"E101","from_occupied":0,"to_occupied":2}],"over_assigned":[],"orphaned":[]}`),
		})
		assert.Equal(t, 0, testutil.GetRoom(t, app.db, "E101").Occupied)

		app.do(t, httpTest{method: http.MethodPost, path: "/v1/rooms/reconcile", token: token})
		assert.Equal(t, 2, testutil.GetRoom(t, app.db, "E101").Occupied)
	})
}
