package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/identity"
)

type loginMsg struct {
	principal domain.Principal
	err       error
}

type loginModel struct {
	name     textinput.Model
	password textinput.Model
	admin    bool
	focus    int
	busy     bool
	err      error
	back     screen
}

func newLoginModel() loginModel {
	name := textinput.New()
	name.Placeholder = "아이디"
	name.CharLimit = 40

	password := textinput.New()
	password.Placeholder = "비밀번호"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 64

	return loginModel{name: name, password: password}
}

func (l *loginModel) open(back screen) {
	l.back = back
	l.err = nil
	l.busy = false
	l.focus = 0
	l.name.SetValue("")
	l.password.SetValue("")
}

func (l *loginModel) focusCmd() tea.Cmd {
	if l.focus == 0 {
		l.password.Blur()
		return l.name.Focus()
	}
	l.name.Blur()
	return l.password.Focus()
}

func (m *Model) updateLogin(msg tea.Msg) tea.Cmd {
	l := &m.login
	switch msg := msg.(type) {
	case loginMsg:
		l.busy = false
		if msg.err != nil {
			l.err = msg.err
			return nil
		}
		m.screen = l.back
		m.notice = ""
		return nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			m.screen = l.back
			return nil
		case "tab", "shift+tab", "up", "down":
			l.focus = 1 - l.focus
			return l.focusCmd()
		case "ctrl+a":
			l.admin = !l.admin
			return nil
		case "enter":
			if l.focus == 0 {
				l.focus = 1
				return l.focusCmd()
			}
			if l.busy {
				return nil
			}
			l.busy = true
			kind := domain.KindUser
			if l.admin {
				kind = domain.KindAdmin
			}
			creds := identity.Credentials{Name: strings.TrimSpace(l.name.Value()), Password: l.password.Value()}
			a, ctx := m.app, m.ctx
			return func() tea.Msg {
				p, err := a.Login(ctx, kind, creds)
				return loginMsg{principal: p, err: err}
			}
		}
	}

	var cmd tea.Cmd
	if l.focus == 0 {
		l.name, cmd = l.name.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return cmd
}

func (m *Model) viewLogin() string {
	l := &m.login
	p := m.palette
	title := "로그인"
	if l.admin {
		title = "관리자 로그인"
	}
	lines := []string{
		p.Title.Render(title),
		"",
		l.name.View(),
		l.password.View(),
		"",
	}
	if l.busy {
		lines = append(lines, p.Muted.Render("확인 중…"))
	}
	if l.err != nil {
		lines = append(lines, p.Error.Render(l.err.Error()))
	}
	lines = append(lines, p.Muted.Render("enter 확인 · tab 이동 · ctrl+a 사용자/관리자 · esc 취소"))
	return strings.Join(lines, "\n")
}
