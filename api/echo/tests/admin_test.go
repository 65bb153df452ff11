package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	echoapi "github.com/padhaihq/padhai/api/echo"
	"github.com/padhaihq/padhai/core/user"
	testutil "github.com/padhaihq/padhai/tests"
)

func listPath(params map[string]string) string {
	v := make(url.Values)
	for k, val := range params {
		v.Set(k, val)
	}
	if len(v) == 0 {
		return "/api/admin/users"
	}
	return "/api/admin/users?" + v.Encode()
}

func decodeList(t *testing.T, data []byte) echoapi.ListUsersResponse {
	t.Helper()
	var resp echoapi.ListUsersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("decodeList(): %v", err)
	}
	return resp
}

func emails(users []user.User) []string {
	out := make([]string, 0, len(users))
	for _, usr := range users {
		out = append(out, usr.Email)
	}
	return out
}

func Test_adminApi_listUsers_accessControl(t *testing.T) {
	fix := setup(t)

	runTests(t, fix, []httpTest{
		{
			name: "Auth required", path: listPath(nil),
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken),
		},
		{
			name: "Admin required", path: listPath(nil), token: getToken(t, fix.student),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Mentor is not admin", path: listPath(nil), token: getToken(t, fix.mentor),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
	})

	// a demoted admin loses access even with a still-valid admin token
	t.Run("Demoted admin rejected", func(t *testing.T) {
		token := getToken(t, fix.admin2)
		if _, err := fix.repo.UpdateUserRole(context.Background(), fix.admin2.ID, user.RoleStudent, false); err != nil {
			t.Fatalf("UpdateUserRole(): %v", err)
		}
		rec := fix.serve(httpTest{path: listPath(nil), token: token})
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		}, rec)
	})
}

func Test_adminApi_listUsers_filters(t *testing.T) {
	fix := setup(t)
	token := getToken(t, fix.admin)

	tests := []struct {
		name       string
		params     map[string]string
		wantEmails []string
		wantTotal  int
	}{
		{
			name:   "all users, newest first",
			params: nil,
			wantEmails: []string{
				"sleeper@padhai.in", "student@padhai.in", "mentor@padhai.in",
				"admin2@padhai.in", "admin@padhai.in", "owner@padhai.in",
			},
			wantTotal: 6,
		},
		{
			name:       "search by name",
			params:     map[string]string{"search": "sleep"},
			wantEmails: []string{"sleeper@padhai.in"},
			wantTotal:  1,
		},
		{
			name:       "search by email",
			params:     map[string]string{"search": "ADMIN2@"},
			wantEmails: []string{"admin2@padhai.in"},
			wantTotal:  1,
		},
		{
			name:       "search no match",
			params:     map[string]string{"search": "nobody"},
			wantEmails: []string{},
			wantTotal:  0,
		},
		{
			name:       "role filter",
			params:     map[string]string{"role": user.RoleMentor},
			wantEmails: []string{"mentor@padhai.in"},
			wantTotal:  1,
		},
		{
			name:       "role all is no filter",
			params:     map[string]string{"role": user.FilterAll, "status": user.FilterAll, "premium": user.FilterAll},
			wantEmails: nil, // length asserted via total
			wantTotal:  6,
		},
		{
			name:       "status filter",
			params:     map[string]string{"status": user.StatusDisabled},
			wantEmails: []string{"sleeper@padhai.in"},
			wantTotal:  1,
		},
		{
			name:       "premium filter",
			params:     map[string]string{"premium": user.PremiumPaid},
			wantEmails: []string{"student@padhai.in", "owner@padhai.in"},
			wantTotal:  2,
		},
		{
			name:       "filters combine with AND",
			params:     map[string]string{"role": user.RoleStudent, "premium": user.PremiumFree},
			wantEmails: []string{"sleeper@padhai.in"},
			wantTotal:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := fix.serve(httpTest{path: listPath(tt.params), token: token})
			if rec.Code != http.StatusOK {
				t.Fatalf("code = %v; body %v", rec.Code, rec.Body.String())
			}

			resp := decodeList(t, rec.Body.Bytes())
			if resp.Pagination.Total != tt.wantTotal {
				t.Errorf("total = %v; want %v", resp.Pagination.Total, tt.wantTotal)
			}
			if tt.wantEmails != nil {
				got := emails(resp.Users)
				want := fmt.Sprint(tt.wantEmails)
				if fmt.Sprint(got) != want {
					t.Errorf("users = %v; want %v", got, want)
				}
			}
		})
	}
}

func Test_adminApi_listUsers_pagination(t *testing.T) {
	fix := setup(t)
	token := getToken(t, fix.admin)

	// 6 fixture users + 19 extras = 25 total; 2 pages at the fixed size of 20
	for i := 0; i < 19; i++ {
		email := fmt.Sprintf("extra%02d@padhai.in", i)
		testutil.CreateUser(t, fix.repo, fmt.Sprintf("Extra %02d", i), email, user.RoleStudent, false, false, false)
	}

	rec := fix.serve(httpTest{path: listPath(nil), token: token})
	resp := decodeList(t, rec.Body.Bytes())
	if len(resp.Users) != 20 {
		t.Errorf("page 1 len = %v; want 20", len(resp.Users))
	}
	if resp.Pagination.Total != 25 || resp.Pagination.TotalPages != 2 {
		t.Errorf("pagination = %+v; want total 25, totalPages 2", resp.Pagination)
	}

	rec = fix.serve(httpTest{path: listPath(map[string]string{"page": "2"}), token: token})
	resp = decodeList(t, rec.Body.Bytes())
	if len(resp.Users) != 5 {
		t.Errorf("page 2 len = %v; want 5", len(resp.Users))
	}
	if resp.Pagination.Page != 2 {
		t.Errorf("page = %v; want 2", resp.Pagination.Page)
	}

	// the page size is fixed server-side; callers cannot widen it
	rec = fix.serve(httpTest{path: listPath(map[string]string{"pageSize": "100"}), token: token})
	resp = decodeList(t, rec.Body.Bytes())
	if len(resp.Users) != 20 || resp.Pagination.PageSize != 20 {
		t.Errorf("pageSize override leaked: len = %v, pageSize = %v", len(resp.Users), resp.Pagination.PageSize)
	}

	// out of range page is empty, not an error
	rec = fix.serve(httpTest{path: listPath(map[string]string{"page": "9"}), token: token})
	resp = decodeList(t, rec.Body.Bytes())
	if len(resp.Users) != 0 {
		t.Errorf("page 9 len = %v; want 0", len(resp.Users))
	}
}

func Test_adminApi_changeRole(t *testing.T) {
	fix := setup(t)
	adminToken := getToken(t, fix.admin)
	ownerToken := getToken(t, fix.owner)

	path := func(id string) string { return "/api/admin/users/" + id + "/role" }
	body := func(role string) []byte { return marshallObj(t, echoapi.RoleRequest{Role: role}) }

	runTests(t, fix, []httpTest{
		{
			name: "Auth required", method: http.MethodPatch, path: path(fix.student.ID), body: body(user.RoleMentor),
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken),
		},
		{
			name: "admin changes student to mentor", method: http.MethodPatch, path: path(fix.student.ID),
			body: body(user.RoleMentor), token: adminToken,
			wantData: marshallObj(t, echoapi.MutationResponse{Success: true, Message: "User role changed to mentor"}),
		},
		{
			name: "invalid role", method: http.MethodPatch, path: path(fix.mentor.ID),
			body: body("superuser"), token: adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{Error: "Invalid role. Must be student, mentor, or admin"}),
		},
		{
			name: "owner role is immutable", method: http.MethodPatch, path: path(fix.owner.ID),
			body: body(user.RoleStudent), token: adminToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "Cannot change owner's role"}),
		},
		{
			name: "self modification", method: http.MethodPatch, path: path(fix.admin.ID),
			body: body(user.RoleStudent), token: adminToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "Cannot modify yourself"}),
		},
		{
			name: "admin cannot demote admin", method: http.MethodPatch, path: path(fix.admin2.ID),
			body: body(user.RoleStudent), token: adminToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "Only owner can demote admin users"}),
		},
		{
			name: "admin cannot promote to admin", method: http.MethodPatch, path: path(fix.mentor.ID),
			body: body(user.RoleAdmin), token: adminToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "Only owner can promote users to admin"}),
		},
		{
			name: "owner promotes to admin", method: http.MethodPatch, path: path(fix.mentor.ID),
			body: body(user.RoleAdmin), token: ownerToken,
			wantData: marshallObj(t, echoapi.MutationResponse{Success: true, Message: "User role changed to admin"}),
		},
		{
			name: "unknown user", method: http.MethodPatch, path: path("ghost"),
			body: body(user.RoleMentor), token: adminToken,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "user not found"}),
		},
		{
			name: "role required", method: http.MethodPatch, path: path(fix.student.ID),
			body: marshallObj(t, map[string]string{}), token: adminToken,
			wantCode: http.StatusBadRequest,
		},
	})
}

func Test_adminApi_togglePremium(t *testing.T) {
	fix := setup(t)
	adminToken := getToken(t, fix.admin)

	path := func(id string) string { return "/api/admin/users/" + id + "/premium" }
	body := func(isPaid bool) []byte { return marshallObj(t, map[string]bool{"isPaidUser": isPaid}) }

	runTests(t, fix, []httpTest{
		{
			name: "grant premium", method: http.MethodPatch, path: path(fix.mentor.ID),
			body: body(true), token: adminToken,
			wantData: marshallObj(t, echoapi.MutationResponse{Success: true, Message: "Premium status enabled"}),
		},
		{
			name: "revoke premium", method: http.MethodPatch, path: path(fix.student.ID),
			body: body(false), token: adminToken,
			wantData: marshallObj(t, echoapi.MutationResponse{Success: true, Message: "Premium status disabled"}),
		},
		{
			name: "owner account is immutable", method: http.MethodPatch, path: path(fix.owner.ID),
			body: body(false), token: adminToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "Cannot modify an owner account"}),
		},
		{
			name: "admin target needs owner actor", method: http.MethodPatch, path: path(fix.admin2.ID),
			body: body(true), token: adminToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "Only owner can change admin's premium status"}),
		},
		{
			name: "isPaidUser required", method: http.MethodPatch, path: path(fix.student.ID),
			body: marshallObj(t, map[string]string{}), token: adminToken,
			wantCode: http.StatusBadRequest,
		},
	})
}

func Test_adminApi_toggleStatus(t *testing.T) {
	fix := setup(t)
	adminToken := getToken(t, fix.admin)

	path := func(id string) string { return "/api/admin/users/" + id + "/status" }
	body := func(isDisabled bool) []byte { return marshallObj(t, map[string]bool{"isDisabled": isDisabled}) }

	runTests(t, fix, []httpTest{
		{
			name: "disable account", method: http.MethodPatch, path: path(fix.student.ID),
			body: body(true), token: adminToken,
			wantData: marshallObj(t, echoapi.MutationResponse{Success: true, Message: "Account disabled"}),
		},
		{
			name: "enable account", method: http.MethodPatch, path: path(fix.disabled.ID),
			body: body(false), token: adminToken,
			wantData: marshallObj(t, echoapi.MutationResponse{Success: true, Message: "Account enabled"}),
		},
		{
			name: "owner cannot be disabled", method: http.MethodPatch, path: path(fix.owner.ID),
			body: body(true), token: adminToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "Cannot disable owner account"}),
		},
		{
			name: "admin target needs owner actor", method: http.MethodPatch, path: path(fix.admin2.ID),
			body: body(true), token: adminToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "Only owner can disable admin accounts"}),
		},
	})
}
