package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/hostel/core/complaint"
	"github.com/trezcool/hostel/testutil"
)

func Test_complaintApi(t *testing.T) {
	app := setup(t)
	aToken, bToken, wardenToken := app.token(t, studentA), app.token(t, studentB), app.token(t, warden)
	testutil.CreateProfile(t, app.db, studentA.ID, studentA.Name, studentA.Email, "E101")

	var filed complaint.Complaint
	t.Run("file", func(t *testing.T) {
		rec := app.do(t, httpTest{
			method: http.MethodPost, path: "/v1/complaints", token: aToken,
			body: []byte(`{"category":"electrical","description":"the socket sparks"}`), wantCode: http.StatusCreated,
		})
		decode(t, rec, &filed)
		assert.Equal(t, studentA.ID, filed.StudentID)
		assert.Equal(t, complaint.StatusOpen, filed.Status)

		app.do(t, httpTest{
			method: http.MethodPost, path: "/v1/complaints", token: bToken,
			body: []byte(`{"category":"internet","description":"no wifi"}`), wantCode: http.StatusCreated,
		})
	})

	tests := []httpTest{
		{
			name: "wardens do not file", method: http.MethodPost, path: "/v1/complaints", token: wardenToken,
			body: []byte(`{"category":"other","description":"x"}`), wantCode: http.StatusForbidden,
		},
		{
			name: "invalid category", method: http.MethodPost, path: "/v1/complaints", token: aToken,
			body: []byte(`{"category":"ghosts","description":"boo"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "students do not update", method: http.MethodPatch, path: "/v1/complaints/" + filed.ID, token: aToken,
			body: []byte(`{"status":"resolved"}`), wantCode: http.StatusForbidden,
		},
		{name: "other students cannot read it", path: "/v1/complaints/" + filed.ID, token: bToken, wantCode: http.StatusNotFound},
		{name: "owner reads it", path: "/v1/complaints/" + filed.ID, token: aToken},
		{name: "unknown id", path: "/v1/complaints/lol", token: wardenToken, wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: "complaint not found"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.do(t, tt)
		})
	}

	t.Run("listing is scoped for students", func(t *testing.T) {
		var got []complaint.Complaint
		decode(t, app.do(t, httpTest{path: "/v1/complaints", token: aToken}), &got)
		require.Len(t, got, 1)
		assert.Equal(t, filed.ID, got[0].ID)

		decode(t, app.do(t, httpTest{path: "/v1/complaints?student_id=" + studentB.ID, token: aToken}), &got)
		require.Len(t, got, 1)
		assert.Equal(t, studentA.ID, got[0].StudentID)

		decode(t, app.do(t, httpTest{path: "/v1/complaints?category=internet", token: wardenToken}), &got)
		require.Len(t, got, 1)
		assert.Equal(t, studentB.ID, got[0].StudentID)
	})

	t.Run("resolve", func(t *testing.T) {
		var c complaint.Complaint
		decode(t, app.do(t, httpTest{
			method: http.MethodPatch, path: "/v1/complaints/" + filed.ID, token: wardenToken,
			body: []byte(`{"status":"resolved","remark":"socket replaced"}`),
		}), &c)
		assert.Equal(t, complaint.StatusResolved, c.Status)
		assert.True(t, c.ResolvedAt.Valid)

		sent := app.mailSvc.SentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, studentA.Email, sent[0].To[0].Address)

		app.do(t, httpTest{
			method: http.MethodPatch, path: "/v1/complaints/" + filed.ID, token: wardenToken,
			body: []byte(`{"status":"open"}`), wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: "complaint is already resolved"}),
		})
	})
}
