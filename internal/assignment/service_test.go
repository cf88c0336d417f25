package assignment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-gateway/internal/directory"
	"admin-gateway/internal/session"
	"admin-gateway/internal/upstream"
	id "admin-gateway/pkg/domain"
	dErrors "admin-gateway/pkg/domainerrors"
)

func newService(t *testing.T, routes map[string]string) (*Service, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	for path, body := range routes {
		body := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		})
	}
	mgr := session.NewManager(session.NewMemory(), time.Hour)
	client := upstream.NewClient(upstream.BaseURL(srv.URL), mgr)
	return NewService(client, directory.NewService(client)), srv
}

func mustRoleID(t *testing.T, s string) id.RoleID {
	t.Helper()
	roleID, err := id.ParseRoleID(s)
	require.NoError(t, err)
	return roleID
}

func TestMenuAssignmentSeedsFromGrants(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		"/menus/tree": `[
			{"id":"m1","name":"Dashboard","sort_order":1},
			{"id":"m2","name":"Reports","sort_order":2,"children":[
				{"id":"m2a","name":"Daily","sort_order":1}
			]}
		]`,
		"/roles/r1/menus": `[
			{"id":"m2","name":"Reports","children":[{"id":"m2a","name":"Daily"}]}
		]`,
	})

	a, err := svc.MenuAssignment(context.Background(), mustRoleID(t, "r1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"m2", "m2a"}, a.Selection.IDs())

	rows := a.Rows()
	require.Len(t, rows, 3)
	assert.False(t, rows[0].Checked)
	assert.True(t, rows[1].Checked)
	assert.True(t, rows[2].Checked)
}

func TestMenuAssignmentDropsStaleGrants(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		"/menus/tree":     `[{"id":"m1","name":"Dashboard","sort_order":1}]`,
		"/roles/r1/menus": `[{"id":"m1","name":"Dashboard"},{"id":"deleted","name":"Gone"}]`,
	})

	a, err := svc.MenuAssignment(context.Background(), mustRoleID(t, "r1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, a.Selection.IDs())
}

func TestMenuAssignmentToggleDoesNotCascade(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		"/menus/tree": `[
			{"id":"parent","name":"P","sort_order":1,"children":[
				{"id":"child","name":"C","sort_order":1}
			]}
		]`,
		"/roles/r1/menus": `[]`,
	})

	a, err := svc.MenuAssignment(context.Background(), mustRoleID(t, "r1"))
	require.NoError(t, err)

	a.Toggle("parent")
	assert.True(t, a.Selection.Has("parent"))
	assert.False(t, a.Selection.Has("child"))

	a.Toggle("parent")
	assert.Equal(t, 0, a.Selection.Len())
}

func TestMenuAssignmentFetchFailurePropagates(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		"/menus/tree": `[{"id":"m1","name":"Dashboard","sort_order":1}]`,
		// no /roles/r1/menus route: mux returns 404
	})

	_, err := svc.MenuAssignment(context.Background(), mustRoleID(t, "r1"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestSaveMenusDedupesAndTrims(t *testing.T) {
	var got struct {
		MenuIDs []string `json:"menu_ids"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/roles/r1/menus", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mgr := session.NewManager(session.NewMemory(), time.Hour)
	client := upstream.NewClient(upstream.BaseURL(srv.URL), mgr)
	svc := NewService(client, directory.NewService(client))

	err := svc.SaveMenus(context.Background(), mustRoleID(t, "r1"), []string{" m1 ", "m2", "m1", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2"}, got.MenuIDs)
}

func TestPermissionAssignmentRejectsMalformedCatalog(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		"/permissions/tree":     `[{"id":"p1","name":"A"},{"id":"p1","name":"B"}]`,
		"/roles/r1/permissions": `[]`,
	})

	_, err := svc.PermissionAssignment(context.Background(), mustRoleID(t, "r1"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSchema))
}

func TestPermissionAssignmentRoundTrip(t *testing.T) {
	svc, _ := newService(t, map[string]string{
		"/permissions/tree": `[
			{"id":"users","name":"Users","sort_order":1,"children":[
				{"id":"users.read","name":"Read","action":"read","sort_order":1},
				{"id":"users.write","name":"Write","action":"write","sort_order":2}
			]}
		]`,
		"/roles/r1/permissions": `[{"id":"users.read","name":"Read"}]`,
	})

	a, err := svc.PermissionAssignment(context.Background(), mustRoleID(t, "r1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"users.read"}, a.Selection.IDs())

	a.Toggle("users.write")
	assert.Equal(t, []string{"users.read", "users.write"}, a.Selection.IDs())
}
