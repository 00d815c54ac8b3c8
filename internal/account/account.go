// Package account - регистрация, смена пароля и удаление учетной записи пользователя.
package account

import (
	"context"
	"fmt"

	"github.com/go-playground/log"

	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/identity"
	"github.com/UkralStul/blogfront/internal/validate"
)

type Backend interface {
	Register(ctx context.Context, r domain.Registration) (domain.Account, error)
	ChangePassword(ctx context.Context, pid int64, current, next string) error
	Withdraw(ctx context.Context, pid int64, password string) error
}

// Service работает с учетной записью пользователя из контекста user.
type Service struct {
	backend Backend
	user    *identity.Context
}

func NewService(backend Backend, user *identity.Context) *Service {
	return &Service{backend: backend, user: user}
}

// Register проверяет форму и создает учетную запись. Вход не выполняется.
func (s *Service) Register(ctx context.Context, r domain.Registration) (domain.Account, error) {
	if err := validate.Registration(r); err != nil {
		return domain.Account{}, err
	}
	acc, err := s.backend.Register(ctx, r)
	if err != nil {
		return domain.Account{}, fmt.Errorf("register: %w", err)
	}
	log.WithFields(log.F("user", acc.UserID)).Info("account: registered")
	return acc, nil
}

func (s *Service) ChangePassword(ctx context.Context, current, next string) error {
	u, err := s.current()
	if err != nil {
		return err
	}
	if current == "" {
		return &domain.ValidationError{Field: "currentPassword", Reason: "current password is required"}
	}
	if err := validate.Password(next); err != nil {
		return err
	}
	if err := s.backend.ChangePassword(ctx, u.PID, current, next); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// Withdraw удаляет учетную запись и выполняет выход.
func (s *Service) Withdraw(ctx context.Context, password string) error {
	u, err := s.current()
	if err != nil {
		return err
	}
	if password == "" {
		return &domain.ValidationError{Field: "password", Reason: "password is required"}
	}
	if err := s.backend.Withdraw(ctx, u.PID, password); err != nil {
		return fmt.Errorf("withdraw: %w", err)
	}
	if err := s.user.Logout(ctx); err != nil {
		log.WithFields(log.F("user", u.UserID)).Warnf("account: logout after withdraw: %s", err)
	}
	return nil
}

func (s *Service) current() (domain.User, error) {
	if s.user.IsLoading() {
		return domain.User{}, fmt.Errorf("account: identity is still loading: %w", domain.ErrNotAuthenticated)
	}
	p, _ := s.user.Principal()
	u, ok := p.User()
	if !ok {
		return domain.User{}, domain.ErrNotAuthenticated
	}
	return u, nil
}
