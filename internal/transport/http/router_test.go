package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-gateway/internal/account"
	"admin-gateway/internal/assignment"
	"admin-gateway/internal/audit"
	"admin-gateway/internal/directory"
	"admin-gateway/internal/jwttoken"
	id "admin-gateway/pkg/domain"
	dErrors "admin-gateway/pkg/domainerrors"
	"admin-gateway/pkg/tree"
)

type fakeAccounts struct {
	loginResult *account.LoginResult
	loginErr    error
	loggedOut   bool
	user        *account.User
}

func (f *fakeAccounts) Login(_ context.Context, creds account.Credentials) (*account.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResult, nil
}

func (f *fakeAccounts) Logout(context.Context) error {
	f.loggedOut = true
	return nil
}

func (f *fakeAccounts) CurrentUser(context.Context) (*account.User, error) {
	if f.user == nil {
		return nil, dErrors.New(dErrors.CodeSessionExpired, "session is no longer valid")
	}
	return f.user, nil
}

type fakeDirectory struct {
	menus []directory.Menu
	err   error
}

func (f *fakeDirectory) OrganizationTree(context.Context) ([]directory.Organization, error) {
	return nil, f.err
}

func (f *fakeDirectory) DepartmentTree(context.Context, id.NodeID) ([]directory.Department, error) {
	return nil, f.err
}

func (f *fakeDirectory) MenuTree(context.Context) ([]directory.Menu, error) {
	return f.menus, f.err
}

type fakeAssignments struct {
	menuAssignment *assignment.MenuAssignment
	savedMenuIDs   []string
	savedRoleID    id.RoleID
}

func (f *fakeAssignments) MenuAssignment(_ context.Context, roleID id.RoleID) (*assignment.MenuAssignment, error) {
	return f.menuAssignment, nil
}

func (f *fakeAssignments) SaveMenus(_ context.Context, roleID id.RoleID, menuIDs []string) error {
	f.savedRoleID = roleID
	f.savedMenuIDs = menuIDs
	return nil
}

func (f *fakeAssignments) PermissionAssignment(_ context.Context, roleID id.RoleID) (*assignment.PermissionAssignment, error) {
	return &assignment.PermissionAssignment{Selection: tree.NewSelection()}, nil
}

func (f *fakeAssignments) SavePermissions(_ context.Context, roleID id.RoleID, permissionIDs []string) error {
	return nil
}

type testEnv struct {
	router      http.Handler
	accounts    *fakeAccounts
	assignments *fakeAssignments
	tokens      *jwttoken.Service
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	tokens := jwttoken.NewService("test-key", "admin-gateway", "admin-console")
	accounts := &fakeAccounts{
		loginResult: &account.LoginResult{
			Token:     "issued-token",
			ExpiresAt: time.Now().Add(time.Hour),
			User:      account.User{ID: "u-1", Username: "alice", Name: "Alice"},
		},
		user: &account.User{ID: "u-1", Username: "alice", Name: "Alice"},
	}
	assignments := &fakeAssignments{
		menuAssignment: &assignment.MenuAssignment{
			Forest: []directory.Menu{
				{ID: "m1", Name: "Dashboard", Path: "/dashboard", Children: []directory.Menu{
					{ID: "m1a", Name: "Stats"},
				}},
			},
			Selection: tree.NewSelection("m1a"),
		},
	}
	router := NewRouter(Deps{
		Accounts:    accounts,
		Directory:   &fakeDirectory{menus: []directory.Menu{{ID: "m1", Name: "Dashboard"}}},
		Assignments: assignments,
		AuditStore:  audit.NewMemory(),
		Tokens:      tokens,
	})
	return &testEnv{router: router, accounts: accounts, assignments: assignments, tokens: tokens}
}

func (e *testEnv) authedRequest(t *testing.T, method, target string, body []byte) *http.Request {
	t.Helper()
	token, err := e.tokens.Generate("u-1", id.NewSessionID(), "alice", time.Now().Add(time.Hour))
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestLoginSetsSessionCookie(t *testing.T) {
	env := newEnv(t)

	body := []byte(`{"username":"alice","password":"s3cret"}`)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)

	var result account.LoginResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, "issued-token", result.Token)
	assert.Equal(t, "Alice", result.User.Name)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "admin_session", cookies[0].Name)
	assert.Equal(t, "issued-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestLoginRejectedCredentials(t *testing.T) {
	env := newEnv(t)
	env.accounts.loginErr = dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")

	body := []byte(`{"username":"alice","password":"wrong"}`)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestLoginMalformedBody(t *testing.T) {
	env := newEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{broken`))))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_input")
}

func TestProtectedRouteRequiresAuth(t *testing.T) {
	env := newEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/directory/menus/tree", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/directory/menus/tree", nil)
	req.Header.Set("Accept", "text/html")
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?redirect=%2Fdirectory%2Fmenus%2Ftree", rec.Header().Get("Location"))
}

func TestSessionExpiredMidRequest(t *testing.T) {
	env := newEnv(t)
	env.accounts.user = nil // CurrentUser now fails with session_expired

	// Browser navigation is sent back to login, exactly like an
	// unauthenticated request would be.
	req := env.authedRequest(t, http.MethodGet, "/auth/me", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?redirect=%2Fauth%2Fme", rec.Header().Get("Location"))

	// API clients keep the machine-readable envelope.
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, env.authedRequest(t, http.MethodGet, "/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "session_expired", body["error"])
}

func TestRoleMenusRendersRows(t *testing.T) {
	env := newEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, env.authedRequest(t, http.MethodGet, "/roles/r1/menus", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rows []struct {
			ID      string `json:"id"`
			Depth   int    `json:"depth"`
			Checked bool   `json:"checked"`
		} `json:"rows"`
		SelectedIDs []string `json:"selected_ids"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Rows, 2)
	assert.Equal(t, "m1", resp.Rows[0].ID)
	assert.Equal(t, 0, resp.Rows[0].Depth)
	assert.False(t, resp.Rows[0].Checked)
	assert.Equal(t, "m1a", resp.Rows[1].ID)
	assert.Equal(t, 1, resp.Rows[1].Depth)
	assert.True(t, resp.Rows[1].Checked)
	assert.Equal(t, []string{"m1a"}, resp.SelectedIDs)
}

func TestSaveRoleMenus(t *testing.T) {
	env := newEnv(t)

	body := []byte(`{"ids":["m1","m1a"]}`)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, env.authedRequest(t, http.MethodPut, "/roles/r1/menus", body))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id.RoleID("r1"), env.assignments.savedRoleID)
	assert.Equal(t, []string{"m1", "m1a"}, env.assignments.savedMenuIDs)
}

func TestInvalidRoleID(t *testing.T) {
	env := newEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, env.authedRequest(t, http.MethodGet, "/roles/%20/menus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, env.authedRequest(t, http.MethodPost, "/auth/logout", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.accounts.loggedOut)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "admin_session", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestHealthz(t *testing.T) {
	env := newEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestAuditRouteDisabledWithoutServiceToken(t *testing.T) {
	env := newEnv(t)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/audit/events", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
