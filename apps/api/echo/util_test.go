package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"

	. "github.com/trezcool/hostel/apps/api/echo"
	"github.com/trezcool/hostel/core"
	"github.com/trezcool/hostel/core/attendance"
	"github.com/trezcool/hostel/core/complaint"
	"github.com/trezcool/hostel/core/occupancy"
	"github.com/trezcool/hostel/core/room"
	"github.com/trezcool/hostel/core/student"
	"github.com/trezcool/hostel/core/user"
	emailsvc "github.com/trezcool/hostel/services/email"
	logsvc "github.com/trezcool/hostel/services/logger"
	metricsvc "github.com/trezcool/hostel/services/metrics"
	sqlxrepos "github.com/trezcool/hostel/storage/database/sqlx"
	"github.com/trezcool/hostel/testutil"
)

var (
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}

	admin    = user.Principal{ID: "admin-1", Name: "Admin", Roles: []string{user.RoleAdmin}}
	warden   = user.Principal{ID: "warden-1", Name: "Warden", Roles: []string{user.RoleWarden}}
	studentA = user.Principal{ID: "student-a", Name: "Student A", Email: "a@example.com", Roles: []string{user.RoleStudent}}
	studentB = user.Principal{ID: "student-b", Name: "Student B", Roles: []string{user.RoleStudent}}
)

type testApp struct {
	Server
	db      *sqlx.DB
	conf    *core.Config
	mailSvc *emailsvc.ServiceMock
	reg     *prometheus.Registry
}

func setup(t *testing.T, opts ...occupancy.Option) testApp {
	t.Helper()

	// set up DB & repos
	db := testutil.PrepareDB(t)
	roomRepo := sqlxrepos.NewRoomRepository(db)
	studentRepo := sqlxrepos.NewStudentRepository(db)

	// set up services
	conf := &core.Config{
		AppName:   "Hostel",
		SecretKey: "test-secret",
		TestMode:  true,
		Server:    core.ServerConfig{DisableReqLogs: true},
	}
	reg := prometheus.NewRegistry()
	mailSvc := emailsvc.NewServiceMock(conf.AppName)
	opts = append(opts, occupancy.WithRecorder(metricsvc.NewOccupancyRecorder(reg)))

	// set up server
	srv := NewServer(&Options{
		Conf:          conf,
		Logger:        logsvc.NewNop(),
		DB:            db,
		Gatherer:      reg,
		RoomSvc:       room.NewService(db, roomRepo),
		StudentSvc:    student.NewService(studentRepo),
		OccupancySvc:  occupancy.NewService(db, roomRepo, studentRepo, opts...),
		ComplaintSvc:  complaint.NewService(db, sqlxrepos.NewComplaintRepository(db), studentRepo, mailSvc),
		AttendanceSvc: attendance.NewService(db, sqlxrepos.NewAttendanceRepository(db)),
	})
	return testApp{Server: srv, db: db, conf: conf, mailSvc: mailSvc, reg: reg}
}

func (app testApp) token(t *testing.T, p user.Principal) string {
	t.Helper()
	token, err := GenerateToken(app.conf.SecretKey, NewClaims(p, app.conf.AppName, time.Hour))
	if err != nil {
		t.Fatalf("token() failed: %v", err)
	}
	return token
}

// do serves tt against the app and checks the status code, and the body when wantData is set.
func (app testApp) do(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	t.Helper()
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
	return rec
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	if rec.Code != wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode() failed: %v; body %s", err, rec.Body.String())
	}
}
