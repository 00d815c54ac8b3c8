package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/UkralStul/blogfront/internal/app"
	"github.com/UkralStul/blogfront/internal/board"
	"github.com/UkralStul/blogfront/internal/domain"
)

const cardsPerRow = 3

type (
	postsMsg struct {
		seq   int
		posts []domain.Post
		err   error
	}
	countsMsg struct {
		seq    int
		counts map[int64]int
	}
)

type boardModel struct {
	boardIdx   int
	view       *board.View
	counts     map[int64]int
	cursor     int
	catIdx     int
	tagInput   textinput.Model
	editingTag bool
	loading    bool
	err        error
	// seq растет с каждой загрузкой; ответы старых загрузок отбрасываются.
	seq int
}

func newBoardModel(a *app.App) boardModel {
	ti := textinput.New()
	ti.Placeholder = "태그 검색"
	ti.CharLimit = 20
	ti.Width = 20

	view, _ := a.Board(domain.BoardTypes[0])
	return boardModel{view: view, counts: make(map[int64]int), tagInput: ti}
}

func (m *Model) loadBoard() tea.Cmd {
	m.board.seq++
	m.board.loading = true
	m.board.err = nil
	seq, bt := m.board.seq, m.board.view.Config().BoardType
	a, ctx := m.app, m.ctx
	return func() tea.Msg {
		posts, err := a.Posts.List(ctx, bt)
		return postsMsg{seq: seq, posts: posts, err: err}
	}
}

// loadCounts подгружает число комментариев для карточек текущей страницы одной пачкой.
func (m *Model) loadCounts() tea.Cmd {
	page := m.board.view.Current()
	ids := make([]int64, 0, len(page.Posts))
	for _, p := range page.Posts {
		if _, ok := m.board.counts[p.ID]; !ok {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	seq := m.board.seq
	loader := m.app.CommentCounts()
	ctx := m.ctx
	return func() tea.Msg {
		counts, _ := loader.Counts(ctx, ids)
		return countsMsg{seq: seq, counts: counts}
	}
}

func (m *Model) switchBoard(delta int) tea.Cmd {
	n := len(domain.BoardTypes)
	m.board.boardIdx = (m.board.boardIdx + delta + n) % n
	view, err := m.app.Board(domain.BoardTypes[m.board.boardIdx])
	if err != nil {
		m.board.err = err
		return nil
	}
	m.board.view = view
	m.board.catIdx, m.board.cursor = 0, 0
	m.board.tagInput.SetValue("")
	return m.loadBoard()
}

func (m *Model) moveCategory(delta int) tea.Cmd {
	cats := m.board.view.Config().Categories
	m.board.catIdx = (m.board.catIdx + delta + len(cats)) % len(cats)
	if err := m.board.view.SetCategory(cats[m.board.catIdx]); err != nil {
		m.board.err = err
		return nil
	}
	m.board.cursor = 0
	return m.loadCounts()
}

func (m *Model) updateBoard(msg tea.Msg) tea.Cmd {
	b := &m.board
	switch msg := msg.(type) {
	case postsMsg:
		if msg.seq != b.seq {
			return nil
		}
		b.loading = false
		b.err = msg.err
		b.view.SetPosts(msg.posts)
		b.cursor = 0
		return m.loadCounts()

	case countsMsg:
		if msg.seq != b.seq {
			return nil
		}
		for id, n := range msg.counts {
			b.counts[id] = n
		}
		return nil

	case tea.KeyMsg:
		if b.editingTag {
			return m.updateTag(msg)
		}
		page := b.view.Current()
		switch msg.String() {
		case "tab":
			return m.switchBoard(1)
		case "shift+tab":
			return m.switchBoard(-1)
		case "left", "h":
			return m.moveCategory(-1)
		case "right", "l":
			return m.moveCategory(1)
		case "/":
			b.editingTag = true
			b.tagInput.Focus()
			return textinput.Blink
		case "n", "pgdown":
			b.view.Next()
			b.cursor = 0
			return m.loadCounts()
		case "p", "pgup":
			b.view.Prev()
			b.cursor = 0
			return m.loadCounts()
		case "up", "k":
			if b.cursor >= cardsPerRow {
				b.cursor -= cardsPerRow
			} else if b.cursor > 0 {
				b.cursor--
			}
		case "down", "j":
			if b.cursor+cardsPerRow < len(page.Posts) {
				b.cursor += cardsPerRow
			} else if b.cursor+1 < len(page.Posts) {
				b.cursor++
			}
		case "r":
			b.counts = make(map[int64]int)
			return m.loadBoard()
		case "enter":
			if b.cursor < len(page.Posts) {
				return m.openPost(page.Posts[b.cursor].ID)
			}
		}
	}
	return nil
}

func (m *Model) updateTag(msg tea.KeyMsg) tea.Cmd {
	b := &m.board
	switch msg.String() {
	case "enter":
		b.editingTag = false
		b.tagInput.Blur()
		b.view.SetTag(b.tagInput.Value())
		b.cursor = 0
		return m.loadCounts()
	case "esc":
		b.editingTag = false
		b.tagInput.Blur()
		b.tagInput.SetValue(b.view.Current().Tag)
		return nil
	}
	var cmd tea.Cmd
	b.tagInput, cmd = b.tagInput.Update(msg)
	return cmd
}

func (m *Model) viewBoard() string {
	b := &m.board
	p := m.palette
	page := b.view.Current()
	var sb strings.Builder

	tabs := make([]string, 0, len(domain.BoardTypes))
	for i, bt := range domain.BoardTypes {
		cfg, _ := board.ConfigFor(bt)
		style := p.Muted
		if i == b.boardIdx {
			style = p.Selected
		}
		tabs = append(tabs, style.Render(cfg.Title))
	}
	sb.WriteString(strings.Join(tabs, "  ") + "\n")

	cats := make([]string, 0, len(b.view.Config().Categories))
	for _, c := range b.view.Config().Categories {
		style := p.Muted
		if c == page.Category {
			style = p.Accent
		}
		cats = append(cats, style.Render(c))
	}
	sb.WriteString(strings.Join(cats, " | ") + "\n")

	switch {
	case b.editingTag:
		sb.WriteString(b.tagInput.View() + "\n")
	case page.Tag != "":
		sb.WriteString(p.Muted.Render("#"+page.Tag) + "\n")
	}

	switch {
	case b.loading:
		sb.WriteString(p.Muted.Render("불러오는 중…") + "\n")
	case b.err != nil:
		sb.WriteString(p.Error.Render("게시글을 불러오지 못했습니다: "+b.err.Error()) + "\n")
	case len(page.Posts) == 0:
		sb.WriteString(p.Muted.Render("게시글이 없습니다.") + "\n")
	}

	var rows []string
	for start := 0; start < len(page.Posts); start += cardsPerRow {
		end := min(start+cardsPerRow, len(page.Posts))
		cards := make([]string, 0, cardsPerRow)
		for i := start; i < end; i++ {
			cards = append(cards, m.card(page.Posts[i], i == b.cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	if len(rows) > 0 {
		sb.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...) + "\n")
	}

	totalPages := max(page.TotalPages, 1)
	sb.WriteString(p.Muted.Render(fmt.Sprintf("%d / %d 페이지 · 게시글 %d", page.Page, totalPages, page.Total)) + "\n")
	sb.WriteString(p.Muted.Render("tab 게시판 · ←/→ 카테고리 · / 태그 · n/p 페이지 · enter 열기 · r 새로고침"))
	return sb.String()
}

func (m *Model) card(post domain.Post, selected bool) string {
	p := m.palette
	style := p.Card
	if selected {
		style = p.CardSelected
	}
	count := "…"
	if n, ok := m.board.counts[post.ID]; ok {
		count = strconv.Itoa(n)
	}
	date := ""
	if !post.CreatedAt.IsZero() {
		date = post.CreatedAt.Local().Format("2006-01-02")
	}
	lines := []string{
		p.Title.Render(truncate(post.Title, 24)),
		p.Muted.Render(truncate(post.Category+" · "+post.NickName, 24)),
		p.Muted.Render(truncate(post.Tags.String(), 24)),
		p.Muted.Render(date + "  댓글 " + count),
	}
	return style.Render(strings.Join(lines, "\n"))
}
