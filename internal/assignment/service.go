package assignment

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"admin-gateway/internal/directory"
	"admin-gateway/internal/upstream"
	id "admin-gateway/pkg/domain"
	dErrors "admin-gateway/pkg/domainerrors"
	pstrings "admin-gateway/pkg/platform/strings"
	"admin-gateway/pkg/tree"
)

type Service struct {
	client    *upstream.Client
	directory *directory.Service
	logger    *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(client *upstream.Client, dir *directory.Service, opts ...Option) *Service {
	s := &Service{
		client:    client,
		directory: dir,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MenuAssignment loads the full menu catalog and the role's current grants
// concurrently and combines them into an editable snapshot. Grants pointing
// at menus that no longer exist in the catalog are dropped, not surfaced as
// an error: a deleted menu must not wedge the role editor.
func (s *Service) MenuAssignment(ctx context.Context, roleID id.RoleID) (*MenuAssignment, error) {
	var (
		catalog  []directory.Menu
		assigned []directory.Menu
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalog, err = s.directory.MenuTree(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		assigned, err = upstream.Get[[]directory.Menu](gctx, s.client, "/roles/"+roleID.String()+"/menus")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sel := tree.CollectIDs(directory.MenuAccess, assigned)
	if dropped := sel.Retain(tree.CollectIDs(directory.MenuAccess, catalog)); dropped > 0 {
		s.logger.WarnContext(ctx, "dropped stale menu grants",
			"role_id", roleID.String(),
			"dropped", dropped,
		)
	}
	return &MenuAssignment{Forest: catalog, Selection: sel}, nil
}

// SaveMenus persists a role's menu grants. The id list is trimmed and
// deduplicated before it leaves the process, so a double-submitted checkbox
// cannot produce a duplicate grant upstream.
func (s *Service) SaveMenus(ctx context.Context, roleID id.RoleID, menuIDs []string) error {
	body := struct {
		MenuIDs []string `json:"menu_ids"`
	}{MenuIDs: pstrings.DedupeAndTrim(menuIDs)}
	_, err := upstream.Put[struct{}](ctx, s.client, "/roles/"+roleID.String()+"/menus", body)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "menu grants saved",
		"role_id", roleID.String(),
		"count", len(body.MenuIDs),
	)
	return nil
}

// PermissionAssignment is MenuAssignment for the permission catalog. The
// catalog is validated here because, unlike menus, it does not pass through
// the directory service.
func (s *Service) PermissionAssignment(ctx context.Context, roleID id.RoleID) (*PermissionAssignment, error) {
	var (
		catalog  []Permission
		assigned []Permission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalog, err = upstream.Get[[]Permission](gctx, s.client, "/permissions/tree")
		if err != nil {
			return err
		}
		if err := tree.Validate(PermissionAccess, catalog); err != nil {
			return dErrors.Wrap(err, dErrors.CodeSchema, "permission tree is malformed")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		assigned, err = upstream.Get[[]Permission](gctx, s.client, "/roles/"+roleID.String()+"/permissions")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sel := tree.CollectIDs(PermissionAccess, assigned)
	if dropped := sel.Retain(tree.CollectIDs(PermissionAccess, catalog)); dropped > 0 {
		s.logger.WarnContext(ctx, "dropped stale permission grants",
			"role_id", roleID.String(),
			"dropped", dropped,
		)
	}
	return &PermissionAssignment{Forest: catalog, Selection: sel}, nil
}

// SavePermissions persists a role's permission grants, deduplicated.
func (s *Service) SavePermissions(ctx context.Context, roleID id.RoleID, permissionIDs []string) error {
	body := struct {
		PermissionIDs []string `json:"permission_ids"`
	}{PermissionIDs: pstrings.DedupeAndTrim(permissionIDs)}
	_, err := upstream.Put[struct{}](ctx, s.client, "/roles/"+roleID.String()+"/permissions", body)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "permission grants saved",
		"role_id", roleID.String(),
		"count", len(body.PermissionIDs),
	)
	return nil
}
