package directory

import (
	"context"
	"log/slog"

	"admin-gateway/internal/upstream"
	id "admin-gateway/pkg/domain"
	dErrors "admin-gateway/pkg/domainerrors"
	"admin-gateway/pkg/tree"
)

type Service struct {
	client *upstream.Client
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(client *upstream.Client, opts ...Option) *Service {
	s := &Service{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OrganizationTree fetches the organization forest, validated and sorted.
func (s *Service) OrganizationTree(ctx context.Context) ([]Organization, error) {
	forest, err := upstream.Get[[]Organization](ctx, s.client, "/organizations/tree")
	if err != nil {
		return nil, err
	}
	if err := tree.Validate(OrganizationAccess, forest); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeSchema, "organization tree is malformed")
	}
	sortOrganizations(forest)
	return forest, nil
}

// DepartmentTree fetches one organization's department forest, validated and
// sorted.
func (s *Service) DepartmentTree(ctx context.Context, orgID id.NodeID) ([]Department, error) {
	forest, err := upstream.Get[[]Department](ctx, s.client, "/organizations/"+orgID.String()+"/departments/tree")
	if err != nil {
		return nil, err
	}
	if err := tree.Validate(DepartmentAccess, forest); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeSchema, "department tree is malformed")
	}
	sortDepartments(forest)
	return forest, nil
}

// MenuTree fetches the full navigation menu forest, validated and sorted.
func (s *Service) MenuTree(ctx context.Context) ([]Menu, error) {
	forest, err := upstream.Get[[]Menu](ctx, s.client, "/menus/tree")
	if err != nil {
		return nil, err
	}
	if err := tree.Validate(MenuAccess, forest); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeSchema, "menu tree is malformed")
	}
	sortMenus(forest)
	return forest, nil
}

// MenuRows flattens a menu forest for tabular display.
func MenuRows(forest []Menu) []tree.Row[Menu] {
	return tree.Flatten(MenuAccess, forest)
}
