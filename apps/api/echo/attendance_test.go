package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hostel/core/attendance"
)

func Test_attendanceApi(t *testing.T) {
	app := setup(t)
	wardenToken := app.token(t, warden)

	t.Run("mark", func(t *testing.T) {
		var records []attendance.Record
		decode(t, app.do(t, httpTest{
			method: http.MethodPost, path: "/v1/attendance", token: wardenToken,
			body: []byte(`{"date":"2024-03-01","entries":[{"student_id":"student-a","status":"present"},{"student_id":"student-b","status":"leave"}]}`),
		}), &records)
		require.Len(t, records, 2)
		assert.Equal(t, warden.ID, records[0].MarkedBy)
	})

	tests := []httpTest{
		{
			name: "students cannot mark", method: http.MethodPost, path: "/v1/attendance", token: app.token(t, studentA),
			body: []byte(`{"date":"2024-03-01","entries":[{"student_id":"student-a","status":"present"}]}`), wantCode: http.StatusForbidden,
		},
		{
			name: "duplicate student", method: http.MethodPost, path: "/v1/attendance", token: wardenToken,
			body: []byte(`{"date":"2024-03-02","entries":[{"student_id":"s1","status":"present"},{"student_id":"s1","status":"absent"}]}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"entries[1].student_id":"student listed more than once"}`),
		},
		{
			name: "bad date filter", path: "/v1/attendance?date=yesterday", token: wardenToken,
			wantCode: http.StatusBadRequest, wantData: []byte(`{"date":"must be a date formatted as YYYY-MM-DD"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.do(t, tt)
		})
	}

	t.Run("students see their own", func(t *testing.T) {
		var records []attendance.Record
		decode(t, app.do(t, httpTest{path: "/v1/attendance?student_id=student-b", token: app.token(t, studentA)}), &records)
		require.Len(t, records, 1)
		assert.Equal(t, "student-a", records[0].StudentID)

		decode(t, app.do(t, httpTest{path: "/v1/attendance?date=2024-03-01", token: wardenToken}), &records)
		assert.Len(t, records, 2)
	})
}
