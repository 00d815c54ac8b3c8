// Package session хранит между запусками вошедших участников, куку сессии и тему.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/log"

	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/storage"
)

// Ключи сохраненного состояния.
const (
	KeyToken = "token"
	KeyAdmin = "adminInfo"
	KeyUser  = "userInfo"
	KeyTheme = "theme"
)

// KeyFor возвращает ключ, под которым хранится участник данного вида.
func KeyFor(kind domain.PrincipalKind) (string, error) {
	switch kind {
	case domain.KindUser:
		return KeyUser, nil
	case domain.KindAdmin:
		return KeyAdmin, nil
	default:
		return "", fmt.Errorf("principal kind %q is not persisted", kind)
	}
}

// Store - типизированная обертка над хранилищем клиентского состояния.
type Store struct {
	backend storage.Storage
}

func New(backend storage.Storage) *Store {
	return &Store{backend: backend}
}

// Restore читает сохраненного участника. Ошибок не возвращает: испорченное
// значение стирается, ошибка чтения логируется, в обоих случаях ok=false.
func (s *Store) Restore(ctx context.Context, kind domain.PrincipalKind) (domain.Principal, bool) {
	key, err := KeyFor(kind)
	if err != nil {
		return domain.Guest(), false
	}

	data, err := s.backend.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Guest(), false
	}
	if err != nil {
		log.WithFields(log.F("key", key)).Warnf("session: read failed: %s", err)
		return domain.Guest(), false
	}

	p, err := decodePrincipal(kind, key, data)
	if err != nil {
		log.WithFields(log.F("key", key)).Warnf("session: discarding stored identity: %s", err)
		if err := s.backend.Delete(ctx, key); err != nil {
			log.WithFields(log.F("key", key)).Errorf("session: clear failed: %s", err)
		}
		return domain.Guest(), false
	}
	return p, true
}

// Persist перезаписывает сохраненного участника его вида.
func (s *Store) Persist(ctx context.Context, p domain.Principal) error {
	var (
		value any
		key   string
	)
	if a, ok := p.Admin(); ok {
		value, key = a, KeyAdmin
	} else if u, ok := p.User(); ok {
		value, key = u, KeyUser
	} else {
		return errors.New("session: cannot persist a guest")
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", key, err)
	}
	if err := s.backend.Put(ctx, key, data); err != nil {
		return fmt.Errorf("session: write %s: %w", key, err)
	}
	return nil
}

// Clear удаляет сохраненного участника данного вида.
func (s *Store) Clear(ctx context.Context, kind domain.PrincipalKind) error {
	key, err := KeyFor(kind)
	if err != nil {
		return err
	}
	if err := s.backend.Delete(ctx, key); err != nil {
		return fmt.Errorf("session: clear %s: %w", key, err)
	}
	return nil
}

// Token возвращает сохраненное значение куки сессии бэкенда.
func (s *Store) Token(ctx context.Context) (string, bool) {
	data, err := s.backend.Get(ctx, KeyToken)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warnf("session: read token failed: %s", err)
		}
		return "", false
	}
	return string(data), len(data) > 0
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	if err := s.backend.Put(ctx, KeyToken, []byte(token)); err != nil {
		return fmt.Errorf("session: write token: %w", err)
	}
	return nil
}

func (s *Store) ClearToken(ctx context.Context) error {
	if err := s.backend.Delete(ctx, KeyToken); err != nil {
		return fmt.Errorf("session: clear token: %w", err)
	}
	return nil
}

// ClearTokenIfUnused стирает куку, только если не осталось ни одного сохраненного участника.
// Возвращает true, если кука стерта.
func (s *Store) ClearTokenIfUnused(ctx context.Context) (bool, error) {
	for _, key := range []string{KeyUser, KeyAdmin} {
		_, err := s.backend.Get(ctx, key)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return false, fmt.Errorf("session: read %s: %w", key, err)
		}
	}
	return true, s.ClearToken(ctx)
}

// Theme возвращает сохраненную тему, если она есть и распознана.
func (s *Store) Theme(ctx context.Context) (domain.Theme, bool) {
	data, err := s.backend.Get(ctx, KeyTheme)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Warnf("session: read theme failed: %s", err)
		}
		return "", false
	}
	switch t := domain.Theme(data); t {
	case domain.ThemeDark, domain.ThemeLight:
		return t, true
	default:
		return "", false
	}
}

func (s *Store) SetTheme(ctx context.Context, t domain.Theme) error {
	if t != domain.ThemeDark && t != domain.ThemeLight {
		return fmt.Errorf("session: unknown theme %q", t)
	}
	if err := s.backend.Put(ctx, KeyTheme, []byte(t)); err != nil {
		return fmt.Errorf("session: write theme: %w", err)
	}
	return nil
}

func decodePrincipal(kind domain.PrincipalKind, key string, data []byte) (domain.Principal, error) {
	switch kind {
	case domain.KindUser:
		var u domain.User
		if err := decodeStrict(data, &u); err != nil {
			return domain.Guest(), &domain.DeserializationError{Key: key, Err: err}
		}
		if err := u.Validate(); err != nil {
			return domain.Guest(), &domain.DeserializationError{Key: key, Err: err}
		}
		return domain.UserPrincipal(u), nil
	case domain.KindAdmin:
		var a domain.Admin
		if err := decodeStrict(data, &a); err != nil {
			return domain.Guest(), &domain.DeserializationError{Key: key, Err: err}
		}
		if err := a.Validate(); err != nil {
			return domain.Guest(), &domain.DeserializationError{Key: key, Err: err}
		}
		return domain.AdminPrincipal(a), nil
	}
	return domain.Guest(), fmt.Errorf("principal kind %q is not persisted", kind)
}

// decodeStrict требует ровно один JSON-объект без хвоста.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("trailing data after value")
	}
	return nil
}
