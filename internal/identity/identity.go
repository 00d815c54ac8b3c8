// Package identity отслеживает вошедшего участника одного вида (пользователь или админ).
//
// Контекст начинает в состоянии Loading и переходит в Authenticated или Anonymous
// после Restore. Вход идет по схеме "проверить, потом сохранить": участник
// сохраняется и публикуется только после успешного ответа бэкенда.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/log"
	"github.com/google/uuid"

	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/session"
	"github.com/UkralStul/blogfront/internal/validate"
)

// State - состояние контекста.
type State int

const (
	Loading State = iota
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Snapshot - состояние и участник в один момент времени.
type Snapshot struct {
	State     State
	Principal domain.Principal
}

// Credentials - имя для входа (userId или adminName) и пароль.
type Credentials struct {
	Name     string
	Password string
}

// Login - результат успешного входа.
type Login struct {
	Principal domain.Principal
	// Credential - значение куки сессии, выданной бэкендом, если есть.
	Credential string
}

// Authenticator выполняет запросы входа и выхода для одного вида участника.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (Login, error)
	Logout(ctx context.Context, p domain.Principal) error
	// Status проверяет, что бэкенд все еще знает участника.
	Status(ctx context.Context, p domain.Principal) error
}

// Context хранит участника одного вида. Безопасен для конкурентного использования.
type Context struct {
	kind  domain.PrincipalKind
	auth  Authenticator
	store *session.Store
	probe bool

	mu        sync.RWMutex
	snap      Snapshot
	subs      map[string]chan Snapshot
	ready     chan struct{}
	readyOnce sync.Once
}

// Option настраивает Context.
type Option func(*Context)

// WithStatusProbe включает проверку восстановленного участника на бэкенде.
func WithStatusProbe(enabled bool) Option {
	return func(c *Context) { c.probe = enabled }
}

// New создает контекст в состоянии Loading.
func New(kind domain.PrincipalKind, auth Authenticator, store *session.Store, opts ...Option) *Context {
	c := &Context{
		kind:  kind,
		auth:  auth,
		store: store,
		snap:  Snapshot{State: Loading, Principal: domain.Guest()},
		subs:  make(map[string]chan Snapshot),
		ready: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Context) Kind() domain.PrincipalKind { return c.kind }

// Restore поднимает сохраненного участника и, если включено, проверяет его на бэкенде.
// Отказ бэкенда (401/403/404) стирает сохраненные данные, сетевая ошибка - нет.
func (c *Context) Restore(ctx context.Context) Snapshot {
	p, ok := c.store.Restore(ctx, c.kind)
	if !ok {
		return c.publish(Snapshot{State: Anonymous, Principal: domain.Guest()})
	}

	if c.probe {
		if err := c.auth.Status(ctx, p); err != nil {
			fields := log.F("kind", string(c.kind))
			if rejected(err) {
				log.WithFields(fields).Infof("identity: stored session rejected: %s", err)
				c.forget(ctx)
			} else {
				log.WithFields(fields).Warnf("identity: status probe failed: %s", err)
			}
			return c.publish(Snapshot{State: Anonymous, Principal: domain.Guest()})
		}
	}
	return c.publish(Snapshot{State: Authenticated, Principal: p})
}

// Current возвращает текущий снимок.
func (c *Context) Current() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Principal возвращает участника, если контекст в состоянии Authenticated.
func (c *Context) Principal() (domain.Principal, bool) {
	snap := c.Current()
	return snap.Principal, snap.State == Authenticated
}

func (c *Context) IsLoading() bool { return c.Current().State == Loading }

// WaitReady ждет выхода из состояния Loading.
func (c *Context) WaitReady(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Login проверяет учетные данные на бэкенде и только после успеха сохраняет участника.
func (c *Context) Login(ctx context.Context, creds Credentials) (domain.Principal, error) {
	if err := validate.Login(creds.Name, creds.Password); err != nil {
		return domain.Guest(), err
	}

	res, err := c.auth.Login(ctx, creds)
	if err != nil {
		return domain.Guest(), err
	}
	if res.Principal.Kind() != c.kind {
		return domain.Guest(), fmt.Errorf("identity: login returned %s, expected %s", res.Principal.Kind(), c.kind)
	}

	if err := c.store.Persist(ctx, res.Principal); err != nil {
		// участник все равно вошел, просто не переживет перезапуск
		log.WithFields(log.F("kind", string(c.kind))).Errorf("identity: %s", err)
	}
	if res.Credential != "" {
		if err := c.store.SetToken(ctx, res.Credential); err != nil {
			log.Errorf("identity: %s", err)
		}
	}

	c.publish(Snapshot{State: Authenticated, Principal: res.Principal})
	return res.Principal, nil
}

// Logout сообщает бэкенду о выходе и стирает локальные данные.
// Локальный выход выполняется даже при ошибке бэкенда; ошибка возвращается.
func (c *Context) Logout(ctx context.Context) error {
	var err error
	if p, ok := c.Principal(); ok {
		err = c.auth.Logout(ctx, p)
		if err != nil {
			log.WithFields(log.F("kind", string(c.kind))).Warnf("identity: backend logout failed: %s", err)
		}
	}
	c.forget(ctx)
	c.publish(Snapshot{State: Anonymous, Principal: domain.Guest()})
	return err
}

// Subscribe возвращает канал снимков. Первым приходит текущий снимок.
// Медленный подписчик пропускает промежуточные снимки и получает последний.
// Канал закрывается после отмены ctx.
func (c *Context) Subscribe(ctx context.Context) <-chan Snapshot {
	id := uuid.NewString()
	ch := make(chan Snapshot, 1)

	c.mu.Lock()
	c.subs[id] = ch
	ch <- c.snap
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.mu.Lock()
		delete(c.subs, id)
		close(ch)
		c.mu.Unlock()
	}()
	return ch
}

func (c *Context) publish(snap Snapshot) Snapshot {
	c.mu.Lock()
	c.snap = snap
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
	c.mu.Unlock()

	if snap.State != Loading {
		c.readyOnce.Do(func() { close(c.ready) })
	}
	return snap
}

func (c *Context) forget(ctx context.Context) {
	if err := c.store.Clear(ctx, c.kind); err != nil {
		log.Errorf("identity: %s", err)
	}
	if _, err := c.store.ClearTokenIfUnused(ctx); err != nil {
		log.Errorf("identity: %s", err)
	}
}

func rejected(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrNotFound)
}

// Acting выбирает участника для отправки: админ, затем пользователь, иначе гость.
func Acting(user, admin *Context) domain.Principal {
	if admin != nil {
		if p, ok := admin.Principal(); ok {
			return p
		}
	}
	if user != nil {
		if p, ok := user.Principal(); ok {
			return p
		}
	}
	return domain.Guest()
}

// Ready сообщает, что ни один из контекстов не находится в Loading.
func Ready(contexts ...*Context) bool {
	for _, c := range contexts {
		if c != nil && c.IsLoading() {
			return false
		}
	}
	return true
}
