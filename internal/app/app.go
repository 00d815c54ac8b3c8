// Package app связывает хранилище, клиент бэкенда, контексты участников и сервисы.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/log"

	"github.com/UkralStul/blogfront/internal/account"
	"github.com/UkralStul/blogfront/internal/api"
	"github.com/UkralStul/blogfront/internal/board"
	"github.com/UkralStul/blogfront/internal/comments"
	"github.com/UkralStul/blogfront/internal/config"
	"github.com/UkralStul/blogfront/internal/dashboard"
	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/identity"
	"github.com/UkralStul/blogfront/internal/posts"
	"github.com/UkralStul/blogfront/internal/session"
	"github.com/UkralStul/blogfront/internal/storage"
	"github.com/UkralStul/blogfront/internal/storage/bolt"
	"github.com/UkralStul/blogfront/internal/storage/inmemory"
	"github.com/UkralStul/blogfront/internal/storage/postgres"
	"github.com/UkralStul/blogfront/internal/theme"
)

// countWait - окно сбора ключей для пачки счетчиков комментариев.
const countWait = 2 * time.Millisecond

type App struct {
	Config   config.Config
	Storage  storage.Storage
	Session  *session.Store
	API      *api.Client
	User     *identity.Context
	Admin    *identity.Context
	Posts    *posts.Service
	Accounts *account.Service
}

// Option настраивает App.
type Option func(*options)

type options struct {
	storage storage.Storage
	apiOpts []api.Option
	noProbe bool
}

// WithStorage использует готовое хранилище вместо выбранного в конфигурации.
func WithStorage(s storage.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithAPIOptions передает дополнительные опции клиенту бэкенда.
func WithAPIOptions(opts ...api.Option) Option {
	return func(o *options) { o.apiOpts = append(o.apiOpts, opts...) }
}

// WithoutStatusProbe отключает проверку восстановленных участников на бэкенде.
func WithoutStatusProbe() Option {
	return func(o *options) { o.noProbe = true }
}

// OpenStorage открывает хранилище клиентского состояния по конфигурации.
func OpenStorage(cfg config.Config) (storage.Storage, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return inmemory.New(), nil
	case config.StoreBolt:
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return nil, fmt.Errorf("app: create data dir: %w", err)
		}
		return bolt.Open(cfg.BoltPath(), cfg.Profile)
	case config.StorePostgres:
		return postgres.New(cfg.DatabaseURL, cfg.Profile)
	}
	return nil, fmt.Errorf("app: unknown store %q", cfg.Store)
}

// New собирает приложение. Контексты участников остаются в Loading до Start.
func New(cfg config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	store := o.storage
	if store == nil {
		var err error
		if store, err = OpenStorage(cfg); err != nil {
			return nil, err
		}
	}

	apiOpts := append([]api.Option{
		api.WithTimeout(cfg.Timeout),
		api.WithSessionCookie(cfg.SessionCookie),
	}, o.apiOpts...)
	client, err := api.New(cfg.APIURL, apiOpts...)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	sess := session.New(store)
	probe := identity.WithStatusProbe(!o.noProbe)
	a := &App{
		Config:  cfg,
		Storage: store,
		Session: sess,
		API:     client,
		User:    identity.New(domain.KindUser, api.UserAuth{Client: client}, sess, probe),
		Admin:   identity.New(domain.KindAdmin, api.AdminAuth{Client: client}, sess, probe),
	}
	a.Posts = posts.NewService(client, a.Acting)
	a.Accounts = account.NewService(client, a.User)
	return a, nil
}

// Start поднимает сохраненную сессию и восстанавливает обоих участников.
func (a *App) Start(ctx context.Context) {
	if token, ok := a.Session.Token(ctx); ok {
		a.API.SetCredential(token)
	}
	a.User.Restore(ctx)
	a.Admin.Restore(ctx)
	a.syncCredential(ctx)

	log.WithFields(
		log.F("user", a.User.Current().State.String()),
		log.F("admin", a.Admin.Current().State.String()),
	).Debug("app: identities restored")
}

// Acting - участник, от имени которого пишутся посты и комментарии.
func (a *App) Acting() domain.Principal {
	return identity.Acting(a.User, a.Admin)
}

// Ready сообщает, что оба контекста вышли из Loading.
func (a *App) Ready() bool {
	return identity.Ready(a.User, a.Admin)
}

func (a *App) contextFor(kind domain.PrincipalKind) (*identity.Context, error) {
	switch kind {
	case domain.KindUser:
		return a.User, nil
	case domain.KindAdmin:
		return a.Admin, nil
	}
	return nil, fmt.Errorf("app: no identity context for %q", kind)
}

// Login выполняет вход участника вида kind.
func (a *App) Login(ctx context.Context, kind domain.PrincipalKind, creds identity.Credentials) (domain.Principal, error) {
	c, err := a.contextFor(kind)
	if err != nil {
		return domain.Guest(), err
	}
	return c.Login(ctx, creds)
}

// Logout выполняет выход. Кука сессии убирается из клиента, когда ее больше никто не использует.
func (a *App) Logout(ctx context.Context, kind domain.PrincipalKind) error {
	c, err := a.contextFor(kind)
	if err != nil {
		return err
	}
	err = c.Logout(ctx)
	a.syncCredential(ctx)
	return err
}

func (a *App) syncCredential(ctx context.Context) {
	if _, ok := a.Session.Token(ctx); !ok {
		a.API.ClearCredential()
	}
}

// Section создает блок комментариев поста.
func (a *App) Section(postID int64) *comments.Section {
	return comments.NewSection(postID, a.API, a.Acting)
}

// Board создает представление доски с размером страницы из конфигурации.
func (a *App) Board(bt domain.BoardType) (*board.View, error) {
	cfg, err := board.ConfigFor(bt)
	if err != nil {
		return nil, err
	}
	return board.NewView(cfg, a.Config.PageSize), nil
}

// CommentCounts создает лоадер счетчиков для одной загрузки доски.
func (a *App) CommentCounts() *comments.CountLoader {
	return comments.NewCountLoader(a.API, countWait)
}

// Dashboard создает админку. Пользоваться ей может только вошедший админ.
func (a *App) Dashboard() *dashboard.Dashboard {
	return dashboard.New(a.API, a.Acting)
}

// Theme возвращает начальную тему.
func (a *App) Theme(ctx context.Context) domain.Theme {
	return theme.Initial(ctx, a.Session, nil)
}

// ToggleTheme переключает и сохраняет тему.
func (a *App) ToggleTheme(ctx context.Context, current domain.Theme) domain.Theme {
	return theme.Toggle(ctx, a.Session, current)
}

func (a *App) Close() error {
	if err := a.Storage.Close(); err != nil {
		return fmt.Errorf("app: close storage: %w", err)
	}
	return nil
}
