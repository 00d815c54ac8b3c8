package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/identity"
)

type adminLoginRequest struct {
	AdminName string `json:"adminName"`
	Password  string `json:"password"`
}

type adminLoginResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Admin   *domain.Admin `json:"admin"`
}

func (c *Client) LoginAdmin(ctx context.Context, name, password string) (domain.Admin, error) {
	var resp adminLoginResponse
	err := c.do(ctx, "POST", "/api/admin/login", nil, adminLoginRequest{AdminName: name, Password: password}, &resp)
	if err != nil {
		return domain.Admin{}, err
	}
	if !resp.Success || resp.Admin == nil {
		return domain.Admin{}, &domain.ServerError{Status: http.StatusUnauthorized, Message: resp.Message}
	}
	if err := resp.Admin.Validate(); err != nil {
		return domain.Admin{}, fmt.Errorf("login response: %w", err)
	}
	return *resp.Admin, nil
}

func (c *Client) LogoutAdmin(ctx context.Context) error {
	return c.do(ctx, "POST", "/api/admin/logout", nil, nil, nil)
}

func (c *Client) GetAdmin(ctx context.Context, id int64) (domain.Admin, error) {
	var a domain.Admin
	err := c.do(ctx, "GET", fmt.Sprintf("/api/admin/%d", id), nil, nil, &a)
	return a, err
}

// AdminAuth - Authenticator администраторов поверх Client.
type AdminAuth struct {
	Client *Client
}

func (a AdminAuth) Login(ctx context.Context, creds identity.Credentials) (identity.Login, error) {
	admin, err := a.Client.LoginAdmin(ctx, creds.Name, creds.Password)
	if err != nil {
		return identity.Login{}, err
	}
	return identity.Login{Principal: domain.AdminPrincipal(admin), Credential: a.Client.Credential()}, nil
}

func (a AdminAuth) Logout(ctx context.Context, p domain.Principal) error {
	return a.Client.LogoutAdmin(ctx)
}

func (a AdminAuth) Status(ctx context.Context, p domain.Principal) error {
	admin, ok := p.Admin()
	if !ok {
		return domain.ErrNotAuthenticated
	}
	_, err := a.Client.GetAdmin(ctx, admin.ID)
	return err
}
