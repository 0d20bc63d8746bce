package service

import (
	"context"
	"net/url"

	"optic-storefront/internal/apiclient"
	"optic-storefront/internal/domain"
)

// UserFilter narrows the admin user list
type UserFilter struct {
	domain.ListParams
	Role domain.Role
}

// UserService wraps the admin /users endpoints
type UserService interface {
	List(ctx context.Context, filter UserFilter) (*domain.Page[domain.User], error)
	Get(ctx context.Context, id string) (*domain.User, error)
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type userService struct {
	client *apiclient.Client
}

// NewUserService creates a new instance of UserService
func NewUserService(client *apiclient.Client) UserService {
	return &userService{client: client}
}

func (s *userService) List(ctx context.Context, filter UserFilter) (*domain.Page[domain.User], error) {
	q := paginationQuery(filter.ListParams)
	setIfNotEmpty(q, "role", string(filter.Role))
	return listPage[domain.User](ctx, s.client, "/users", q)
}

func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if _, err := s.client.Get(ctx, "/users/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	var user domain.User
	body := map[string]domain.Role{"role": role}
	if _, err := s.client.Put(ctx, "/users/"+url.PathEscape(id)+"/role", body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) Delete(ctx context.Context, id string) error {
	_, err := s.client.Delete(ctx, "/users/"+url.PathEscape(id), nil)
	return err
}
