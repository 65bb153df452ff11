package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/padhaihq/padhai/core"
	"github.com/padhaihq/padhai/core/user"

	echoapi "github.com/padhaihq/padhai/api/echo"
	inmemdb "github.com/padhaihq/padhai/storage/database/inmem"
	testutil "github.com/padhaihq/padhai/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// fixture is a fresh API server over an empty in-memory database plus the
// standard cast of users the policy matrix needs.
type fixture struct {
	app  echoapi.Server
	repo user.Repository

	owner, admin, admin2, mentor, student, disabled user.User
}

func setup(t *testing.T) *fixture {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup(): %v", err)
	}
	repo := inmemdb.NewUserRepository(db)

	fix := &fixture{
		app:      echoapi.NewServer(core.NewConfig(), nil /* shutdown */, &echoapi.Deps{UserSvc: user.NewService(repo), DisableReqLogs: true}),
		repo:     repo,
		owner:    testutil.CreateUser(t, repo, "Owner", "owner@padhai.in", user.RoleAdmin, true, true, false),
		admin:    testutil.CreateUser(t, repo, "Admin", "admin@padhai.in", user.RoleAdmin, false, false, false),
		admin2:   testutil.CreateUser(t, repo, "Admin Two", "admin2@padhai.in", user.RoleAdmin, false, false, false),
		mentor:   testutil.CreateUser(t, repo, "Mentor", "mentor@padhai.in", user.RoleMentor, false, false, false),
		student:  testutil.CreateUser(t, repo, "Student", "student@padhai.in", user.RoleStudent, false, true, false),
		disabled: testutil.CreateUser(t, repo, "Sleeper", "sleeper@padhai.in", user.RoleStudent, false, false, true),
	}
	return fix
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

func (fix *fixture) serve(tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, tt.path, bytes.NewReader(tt.body))
	req.Header.Set("Content-Type", "application/json")
	if tt.token != "" {
		req.Header.Set("Authorization", "Bearer "+tt.token)
	}
	rec := httptest.NewRecorder()
	fix.app.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, usr user.User) string {
	token, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
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
		t.Errorf("failed! code = %v; wantCode %v; body %v", rec.Code, wantCode, rec.Body.String())
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

func runTests(t *testing.T, fix *fixture, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, fix.serve(tt))
		})
	}
}
