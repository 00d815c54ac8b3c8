package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/identity"
)

type userLoginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type userLoginResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type withdrawRequest struct {
	Password string `json:"password"`
}

// LoginUser выполняет вход пользователя. Ответ success=false считается отказом 401.
func (c *Client) LoginUser(ctx context.Context, userID, password string) (domain.User, error) {
	var resp userLoginResponse
	err := c.do(ctx, "POST", "/api/users/login", nil, userLoginRequest{UserID: userID, Password: password}, &resp)
	if err != nil {
		return domain.User{}, err
	}
	if !resp.Success || resp.User == nil {
		return domain.User{}, &domain.ServerError{Status: http.StatusUnauthorized, Message: resp.Message}
	}
	if err := resp.User.Validate(); err != nil {
		return domain.User{}, fmt.Errorf("login response: %w", err)
	}
	return *resp.User, nil
}

func (c *Client) Register(ctx context.Context, r domain.Registration) (domain.Account, error) {
	var acc domain.Account
	err := c.do(ctx, "POST", "/api/users/register", nil, r, &acc)
	return acc, err
}

func (c *Client) GetUser(ctx context.Context, pid int64) (domain.User, error) {
	var u domain.User
	err := c.do(ctx, "GET", userPath(pid), nil, nil, &u)
	return u, err
}

func (c *Client) ChangePassword(ctx context.Context, pid int64, current, next string) error {
	return c.do(ctx, "PUT", userPath(pid), nil, changePasswordRequest{CurrentPassword: current, NewPassword: next}, nil)
}

// Withdraw удаляет учетную запись пользователя после проверки пароля.
func (c *Client) Withdraw(ctx context.Context, pid int64, password string) error {
	return c.do(ctx, "POST", userPath(pid)+"/withdraw", nil, withdrawRequest{Password: password}, nil)
}

// ListUsers доступен только админу.
func (c *Client) ListUsers(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := c.do(ctx, "GET", "/api/users", nil, nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *Client) DeleteUser(ctx context.Context, pid int64) error {
	return c.do(ctx, "DELETE", userPath(pid), nil, nil, nil)
}

func userPath(pid int64) string {
	return fmt.Sprintf("/api/users/%d", pid)
}

// UserAuth - Authenticator пользователей поверх Client.
type UserAuth struct {
	Client *Client
}

func (a UserAuth) Login(ctx context.Context, creds identity.Credentials) (identity.Login, error) {
	u, err := a.Client.LoginUser(ctx, creds.Name, creds.Password)
	if err != nil {
		return identity.Login{}, err
	}
	return identity.Login{Principal: domain.UserPrincipal(u), Credential: a.Client.Credential()}, nil
}

// Logout: у бэкенда нет выхода для пользователя, сессию держит кука, общая с админом.
func (a UserAuth) Logout(ctx context.Context, p domain.Principal) error { return nil }

func (a UserAuth) Status(ctx context.Context, p domain.Principal) error {
	u, ok := p.User()
	if !ok {
		return domain.ErrNotAuthenticated
	}
	_, err := a.Client.GetUser(ctx, u.PID)
	return err
}
