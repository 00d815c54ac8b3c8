package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/UkralStul/blogfront/internal/authz"
	"github.com/UkralStul/blogfront/internal/comments"
	"github.com/UkralStul/blogfront/internal/domain"
)

type inputMode int

const (
	modeNone inputMode = iota
	modeComment
	modeReply
	modeEdit
	modeConfirmDelete
)

type (
	postMsg struct {
		id   int64
		post domain.Post
		err  error
	}
	commentsMsg struct {
		id  int64
		err error
	}
	liveMsg struct {
		id      int64
		comment domain.Comment
		ch      <-chan domain.Comment
	}
	liveClosedMsg struct {
		id  int64
		err error
	}
	opMsg struct {
		id   int64
		mode inputMode
		err  error
	}
)

type postModel struct {
	id       int64
	post     domain.Post
	loaded   bool
	err      error
	section  *comments.Section
	cursor   int
	mode     inputMode
	target   int64
	busy     bool
	opErr    error
	live     bool
	input    textarea.Model
	viewport viewport.Model
	cancel   context.CancelFunc
}

// row - строка списка комментариев под курсором.
type row struct {
	entry comments.Entry
	reply bool
}

func rows(threads []comments.Thread) []row {
	var out []row
	for _, t := range threads {
		out = append(out, row{entry: t.Entry})
		for _, r := range t.Replies {
			out = append(out, row{entry: r, reply: true})
		}
	}
	return out
}

func (p *postModel) stop() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

func (p *postModel) resize(width, height int) {
	if p.section == nil {
		return
	}
	p.viewport.Width = width
	p.viewport.Height = max(height-8, 5)
	p.input.SetWidth(max(width-4, 20))
}

func (m *Model) openPost(id int64) tea.Cmd {
	m.post.stop()

	input := textarea.New()
	input.Placeholder = "댓글을 입력하세요 (ctrl+s 등록, esc 취소)"
	input.CharLimit = 300
	input.ShowLineNumbers = false
	input.SetHeight(3)

	ctx, cancel := context.WithCancel(m.ctx)
	m.post = postModel{
		id:       id,
		section:  m.app.Section(id),
		input:    input,
		viewport: viewport.New(m.width, max(m.height-8, 5)),
		cancel:   cancel,
	}
	m.post.resize(m.width, m.height)
	m.screen = screenPost

	// загрузки не отменяются при уходе с экрана, их ответы отбросит проверка id;
	// отменяется только живая лента
	a, section, loadCtx := m.app, m.post.section, m.ctx
	loadPost := func() tea.Msg {
		post, err := a.Posts.Get(loadCtx, id)
		return postMsg{id: id, post: post, err: err}
	}
	loadComments := func() tea.Msg {
		return commentsMsg{id: id, err: section.Load(loadCtx)}
	}
	watch := func() tea.Msg {
		ch, err := a.API.WatchComments(ctx, id)
		if err != nil {
			return liveClosedMsg{id: id, err: err}
		}
		return nextLive(id, ch)
	}
	return tea.Batch(loadPost, loadComments, watch)
}

func nextLive(id int64, ch <-chan domain.Comment) tea.Msg {
	c, ok := <-ch
	if !ok {
		return liveClosedMsg{id: id}
	}
	return liveMsg{id: id, comment: c, ch: ch}
}

func waitLive(id int64, ch <-chan domain.Comment) tea.Cmd {
	return func() tea.Msg { return nextLive(id, ch) }
}

func (m *Model) closePost() tea.Cmd {
	m.post.stop()
	m.screen = screenBoard
	// число комментариев могло измениться
	delete(m.board.counts, m.post.id)
	return m.loadCounts()
}

func (m *Model) updatePost(msg tea.Msg) tea.Cmd {
	p := &m.post
	switch msg := msg.(type) {
	case postMsg:
		if msg.id != p.id {
			return nil
		}
		p.loaded = true
		p.post, p.err = msg.post, msg.err
		return nil

	case commentsMsg:
		if msg.id != p.id {
			return nil
		}
		p.cursor = 0
		return nil

	case liveMsg:
		if msg.id != p.id || m.screen != screenPost {
			return nil
		}
		p.live = true
		p.section.Merge(msg.comment)
		return waitLive(msg.id, msg.ch)

	case liveClosedMsg:
		if msg.id == p.id {
			p.live = false
		}
		return nil

	case opMsg:
		if msg.id != p.id {
			return nil
		}
		p.busy = false
		p.opErr = msg.err
		if msg.err == nil && msg.mode != modeConfirmDelete {
			p.mode = modeNone
			p.input.Reset()
			p.input.Blur()
		}
		return nil

	case tea.KeyMsg:
		if p.mode != modeNone {
			return m.updatePostInput(msg)
		}
		return m.postKey(msg)
	}

	var cmd tea.Cmd
	switch p.mode {
	case modeComment, modeReply, modeEdit:
		p.input, cmd = p.input.Update(msg)
	default:
		p.viewport, cmd = p.viewport.Update(msg)
	}
	return cmd
}

func (m *Model) selected() (comments.Entry, bool, bool) {
	list := rows(m.post.section.Threads())
	if m.post.cursor < 0 || m.post.cursor >= len(list) {
		return comments.Entry{}, false, false
	}
	r := list[m.post.cursor]
	return r.entry, r.reply, true
}

func (m *Model) postKey(msg tea.KeyMsg) tea.Cmd {
	p := &m.post
	switch msg.String() {
	case "esc", "backspace":
		return m.closePost()
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor+1 < len(rows(p.section.Threads())) {
			p.cursor++
		}
	case "g":
		id, section, ctx := p.id, p.section, m.ctx
		return func() tea.Msg { return commentsMsg{id: id, err: section.Load(ctx)} }
	case "c":
		if authz.CanWrite(m.acting()) {
			return m.beginInput(modeComment, 0, "")
		}
		p.opErr = domain.ErrNotAuthenticated
	case "r":
		e, reply, ok := m.selected()
		if !ok || reply {
			return nil
		}
		if authz.CanWrite(m.acting()) {
			return m.beginInput(modeReply, e.Comment.ID, "")
		}
		p.opErr = domain.ErrNotAuthenticated
	case "e":
		e, _, ok := m.selected()
		if ok && authz.CanModify(m.acting(), e.Comment) {
			return m.beginInput(modeEdit, e.Comment.ID, e.Comment.Content)
		}
	case "d":
		e, _, ok := m.selected()
		if ok && authz.CanModify(m.acting(), e.Comment) {
			p.mode, p.target = modeConfirmDelete, e.Comment.ID
		}
	case "x":
		if e, _, ok := m.selected(); ok {
			p.section.Dismiss(e.Comment.ID)
		}
	default:
		var cmd tea.Cmd
		p.viewport, cmd = p.viewport.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) beginInput(mode inputMode, target int64, text string) tea.Cmd {
	p := &m.post
	p.mode, p.target, p.opErr = mode, target, nil
	p.input.SetValue(text)
	return p.input.Focus()
}

func (m *Model) updatePostInput(msg tea.KeyMsg) tea.Cmd {
	p := &m.post
	if p.mode == modeConfirmDelete {
		switch msg.String() {
		case "y", "Y":
			id, target, section, ctx := p.id, p.target, p.section, m.ctx
			p.mode = modeNone
			if n := len(rows(section.Threads())); p.cursor >= n-1 && p.cursor > 0 {
				p.cursor--
			}
			return func() tea.Msg {
				return opMsg{id: id, mode: modeConfirmDelete, err: section.Delete(ctx, target)}
			}
		case "n", "N", "esc":
			p.mode = modeNone
		}
		return nil
	}

	switch msg.String() {
	case "esc":
		p.mode = modeNone
		p.input.Reset()
		p.input.Blur()
		return nil
	case "ctrl+s":
		if p.busy {
			return nil
		}
		p.busy = true
		id, mode, target, text, section, ctx := p.id, p.mode, p.target, p.input.Value(), p.section, m.ctx
		return func() tea.Msg {
			var err error
			switch mode {
			case modeComment:
				_, err = section.Submit(ctx, text)
			case modeReply:
				_, err = section.Reply(ctx, target, text)
			case modeEdit:
				_, err = section.Edit(ctx, target, text)
			}
			return opMsg{id: id, mode: mode, err: err}
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (m *Model) viewPost() string {
	p := &m.post
	pal := m.palette
	var sb strings.Builder

	switch {
	case !p.loaded:
		sb.WriteString(pal.Muted.Render("불러오는 중…") + "\n")
	case p.err != nil:
		sb.WriteString(pal.Error.Render("게시글을 불러오지 못했습니다: "+p.err.Error()) + "\n")
	default:
		post := p.post
		sb.WriteString(pal.Title.Render(post.Title) + "\n")
		meta := fmt.Sprintf("%s · %s", post.Category, post.NickName)
		if !post.CreatedAt.IsZero() {
			meta += " · " + post.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		sb.WriteString(pal.Muted.Render(meta) + "\n")
		if len(post.Tags) > 0 {
			sb.WriteString(pal.Accent.Render("#"+strings.Join(post.Tags, " #")) + "\n")
		}
		sb.WriteString("\n" + pal.Text.Render(post.Content) + "\n\n")
	}

	threads := p.section.Threads()
	title := fmt.Sprintf("댓글 %d", p.section.Count())
	if p.live {
		title += pal.Muted.Render(" · 실시간")
	}
	sb.WriteString(pal.Title.Render(title) + "\n")
	if err := p.section.LoadError(); err != nil {
		sb.WriteString(pal.Error.Render("댓글을 불러오지 못했습니다: "+err.Error()) + "\n")
	}

	for i, r := range rows(threads) {
		sb.WriteString(m.commentLine(r, i == p.cursor) + "\n")
	}
	if len(threads) == 0 {
		sb.WriteString(pal.Muted.Render("첫 댓글을 남겨보세요.") + "\n")
	}

	p.viewport.SetContent(sb.String())
	out := p.viewport.View() + "\n"

	switch p.mode {
	case modeConfirmDelete:
		out += pal.Error.Render("댓글을 삭제하시겠습니까? (y/n)") + "\n"
	case modeComment, modeReply, modeEdit:
		out += p.input.View() + "\n"
	}
	if p.opErr != nil {
		out += pal.Error.Render(p.opErr.Error()) + "\n"
	}
	out += pal.Muted.Render("c 댓글 · r 답글 · e 수정 · d 삭제 · x 오류 닫기 · g 새로고침 · esc 목록")
	return out
}

func (m *Model) commentLine(r row, selected bool) string {
	pal := m.palette
	c := r.entry.Comment
	name := c.DisplayName()
	if c.AuthorKind == domain.AuthorAdmin {
		name += " [관리자]"
	}
	line := pal.Accent.Render(name) + " " + pal.Text.Render(c.Content)
	if !c.CreatedAt.IsZero() {
		line += " " + pal.Muted.Render(c.CreatedAt.Local().Format("01-02 15:04"))
	}
	if r.entry.Status == comments.Failed {
		line += " " + pal.Error.Render("삭제 실패: "+r.entry.Err.Error())
	}
	if selected {
		line = pal.Selected.Render("›") + " " + line
	} else {
		line = "  " + line
	}
	if r.reply {
		return pal.Reply.Render("↳ " + line)
	}
	return line
}
