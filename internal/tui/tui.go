// Package tui - терминальный интерфейс блога на bubbletea.
//
// Все обращения к бэкенду выполняются командами tea.Cmd, интерфейс не блокируется.
// Ответы для экрана, который уже закрыт, отбрасываются.
package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/UkralStul/blogfront/internal/app"
	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/identity"
	"github.com/UkralStul/blogfront/internal/theme"
)

type screen int

const (
	screenBoard screen = iota
	screenPost
	screenLogin
)

type (
	startedMsg  struct{}
	identityMsg struct {
		kind domain.PrincipalKind
		snap identity.Snapshot
		ch   <-chan identity.Snapshot
	}
	logoutMsg struct{ err error }
)

// Model - корневая модель интерфейса.
type Model struct {
	app     *app.App
	ctx     context.Context
	palette theme.Palette

	width, height int
	screen        screen
	user, admin   identity.Snapshot
	started       bool
	notice        string

	board boardModel
	post  postModel
	login loginModel
}

// New создает модель. ctx ограничивает все запросы интерфейса.
func New(ctx context.Context, a *app.App, t domain.Theme) *Model {
	m := &Model{
		app:     a,
		ctx:     ctx,
		palette: theme.PaletteFor(t),
		width:   100,
		height:  30,
		user:    a.User.Current(),
		admin:   a.Admin.Current(),
	}
	m.board = newBoardModel(a)
	m.login = newLoginModel()
	return m
}

// Run запускает интерфейс и ждет выхода.
func Run(ctx context.Context, a *app.App) error {
	m := New(ctx, a, a.Theme(ctx))
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	m.post.stop()
	return err
}

func (m *Model) Init() tea.Cmd {
	userCh := m.app.User.Subscribe(m.ctx)
	adminCh := m.app.Admin.Subscribe(m.ctx)
	a := m.app
	ctx := m.ctx
	start := func() tea.Msg {
		a.Start(ctx)
		return startedMsg{}
	}
	return tea.Batch(
		waitIdentity(domain.KindUser, userCh),
		waitIdentity(domain.KindAdmin, adminCh),
		start,
		m.loadBoard(),
	)
}

func waitIdentity(kind domain.PrincipalKind, ch <-chan identity.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return identityMsg{kind: kind, snap: snap, ch: ch}
	}
}

// ready - оба контекста вышли из Loading; до этого действия с участником недоступны.
func (m *Model) ready() bool {
	return m.started && m.user.State != identity.Loading && m.admin.State != identity.Loading
}

func (m *Model) acting() domain.Principal {
	if !m.ready() {
		return domain.Guest()
	}
	return m.app.Acting()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.post.resize(m.width, m.height)
		return m, nil

	case startedMsg:
		m.started = true
		return m, nil

	case identityMsg:
		if msg.kind == domain.KindAdmin {
			m.admin = msg.snap
		} else {
			m.user = msg.snap
		}
		return m, waitIdentity(msg.kind, msg.ch)

	case postsMsg, countsMsg:
		return m, m.updateBoard(msg)

	case postMsg, commentsMsg, liveMsg, liveClosedMsg, opMsg:
		return m, m.updatePost(msg)

	case loginMsg:
		return m, m.updateLogin(msg)

	case logoutMsg:
		m.notice = ""
		if msg.err != nil {
			m.notice = "로그아웃 오류: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if !m.typing() {
			if cmd, handled := m.globalKey(msg); handled {
				return m, cmd
			}
		}
	}

	switch m.screen {
	case screenPost:
		return m, m.updatePost(msg)
	case screenLogin:
		return m, m.updateLogin(msg)
	default:
		return m, m.updateBoard(msg)
	}
}

// typing - фокус в поле ввода, глобальные клавиши не действуют.
func (m *Model) typing() bool {
	switch m.screen {
	case screenBoard:
		return m.board.editingTag
	case screenPost:
		return m.post.mode != modeNone
	case screenLogin:
		return true
	}
	return false
}

func (m *Model) globalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		return tea.Quit, true
	case "t":
		next := m.app.ToggleTheme(m.ctx, m.palette.Theme)
		m.palette = theme.PaletteFor(next)
		return nil, true
	case "L":
		if !m.ready() {
			return nil, true
		}
		m.login.open(m.screen)
		m.screen = screenLogin
		return m.login.focusCmd(), true
	case "O":
		if !m.ready() {
			return nil, true
		}
		return m.logout(), true
	}
	return nil, false
}

// logout выходит сначала из админа, затем из пользователя.
func (m *Model) logout() tea.Cmd {
	kind := domain.KindUser
	switch {
	case m.admin.State == identity.Authenticated:
		kind = domain.KindAdmin
	case m.user.State != identity.Authenticated:
		return nil
	}
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		return logoutMsg{err: a.Logout(ctx, kind)}
	}
}

func (m *Model) View() string {
	var body string
	switch m.screen {
	case screenPost:
		body = m.viewPost()
	case screenLogin:
		body = m.viewLogin()
	default:
		body = m.viewBoard()
	}
	parts := []string{m.header(), body}
	if m.notice != "" {
		parts = append(parts, m.palette.Error.Render(m.notice))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) header() string {
	p := m.palette
	var who string
	switch {
	case !m.ready():
		who = p.Muted.Render("로딩 중…")
	case m.admin.State == identity.Authenticated:
		who = p.Accent.Render("관리자 " + m.admin.Principal.DisplayName())
		if m.user.State == identity.Authenticated {
			who += p.Muted.Render(" · " + m.user.Principal.DisplayName())
		}
	case m.user.State == identity.Authenticated:
		who = p.Accent.Render(m.user.Principal.DisplayName())
	default:
		who = p.Muted.Render("게스트")
	}
	keys := p.Muted.Render("L 로그인 · O 로그아웃 · t 테마 · q 종료")
	return p.Title.Render("blogfront") + "  " + who + "  " + keys + "\n"
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
