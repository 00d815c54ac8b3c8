package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/UkralStul/blogfront/internal/app"
	"github.com/UkralStul/blogfront/internal/domain"
	"github.com/UkralStul/blogfront/internal/identity"
)

// cli выполняет неинтерактивные команды и печатает результат.
type cli struct {
	app    *app.App
	out    io.Writer
	errOut io.Writer
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

// parseInterspersed разбирает флаги, стоящие и до, и после позиционных аргументов.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

func (c *cli) board(ctx context.Context, args []string) error {
	fs := c.flags("board")
	category := fs.String("category", "", "category filter")
	tag := fs.String("tag", "", "tag search")
	page := fs.Int("page", 1, "page number")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errors.New("board: expected a board type (it, japanese, culture, daily)")
	}
	bt, err := domain.ParseBoardType(pos[0])
	if err != nil {
		return err
	}

	view, err := c.app.Board(bt)
	if err != nil {
		return err
	}
	if *category != "" {
		if err := view.SetCategory(*category); err != nil {
			return err
		}
	}
	view.SetTag(*tag)

	posts, err := c.app.Posts.List(ctx, bt)
	if err != nil {
		return err
	}
	view.SetPosts(posts)
	view.GoTo(*page)
	current := view.Current()

	ids := make([]int64, 0, len(current.Posts))
	for _, p := range current.Posts {
		ids = append(ids, p.ID)
	}
	counts, _ := c.app.CommentCounts().Counts(ctx, ids)

	for _, p := range current.Posts {
		count := "?"
		if n, ok := counts[p.ID]; ok {
			count = strconv.Itoa(n)
		}
		line := fmt.Sprintf("#%d  %s  [%s]  %s  댓글 %s", p.ID, p.Title, p.Category, p.NickName, count)
		if !p.CreatedAt.IsZero() {
			line += "  " + p.CreatedAt.Local().Format("2006-01-02")
		}
		fmt.Fprintln(c.out, line)
	}
	if len(current.Posts) == 0 {
		fmt.Fprintln(c.out, "게시글이 없습니다.")
	}
	fmt.Fprintf(c.out, "%d / %d 페이지 · 게시글 %d\n", current.Page, max(current.TotalPages, 1), current.Total)
	return nil
}

func (c *cli) post(ctx context.Context, args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "new", "edit", "rm":
			return c.postEditor(ctx, args[0], args[1:])
		}
	}
	if len(args) != 1 {
		return errors.New("post: expected a post id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("post: invalid id %q", args[0])
	}

	p, err := c.app.Posts.Get(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, p.Title)
	fmt.Fprintf(c.out, "%s · %s · %s\n", p.BoardType, p.Category, p.NickName)
	if len(p.Tags) > 0 {
		fmt.Fprintln(c.out, "#"+strings.Join(p.Tags, " #"))
	}
	fmt.Fprintf(c.out, "\n%s\n\n", p.Content)

	section := c.app.Section(id)
	if err := section.Load(ctx); err != nil {
		fmt.Fprintln(c.out, "댓글을 불러오지 못했습니다:", err)
		return nil
	}
	fmt.Fprintf(c.out, "댓글 %d\n", section.Count())
	for _, t := range section.Threads() {
		fmt.Fprintf(c.out, "[%d] %s: %s\n", t.Comment.ID, t.Comment.DisplayName(), t.Comment.Content)
		for _, r := range t.Replies {
			fmt.Fprintf(c.out, "  ↳ [%d] %s: %s\n", r.Comment.ID, r.Comment.DisplayName(), r.Comment.Content)
		}
	}
	return nil
}

func kindFlag(fs *flag.FlagSet) *bool {
	return fs.Bool("admin", false, "act as the administrator")
}

func kindOf(admin bool) domain.PrincipalKind {
	if admin {
		return domain.KindAdmin
	}
	return domain.KindUser
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := c.flags("login")
	admin := kindFlag(fs)
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		return errors.New("login: expected <name> <password>")
	}
	p, err := c.app.Login(ctx, kindOf(*admin), identity.Credentials{Name: pos[0], Password: pos[1]})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s 님으로 로그인했습니다.\n", p.DisplayName())
	return nil
}

func (c *cli) logout(ctx context.Context, args []string) error {
	fs := c.flags("logout")
	admin := kindFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := c.app.Logout(ctx, kindOf(*admin)); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "로그아웃했습니다.")
	return nil
}

func (c *cli) whoami() error {
	user, admin := c.app.User.Current(), c.app.Admin.Current()
	if u, ok := user.Principal.User(); ok && user.State == identity.Authenticated {
		fmt.Fprintf(c.out, "user: %s (%s)\n", u.NickName, u.UserID)
	}
	if a, ok := admin.Principal.Admin(); ok && admin.State == identity.Authenticated {
		fmt.Fprintf(c.out, "admin: %s\n", a.AdminName)
	}
	if user.State != identity.Authenticated && admin.State != identity.Authenticated {
		fmt.Fprintln(c.out, "guest")
	}
	return nil
}

// theme без аргумента переключает тему, с аргументом - устанавливает.
func (c *cli) theme(ctx context.Context, args []string) error {
	current := c.app.Theme(ctx)
	var next domain.Theme
	switch {
	case len(args) == 0:
		next = c.app.ToggleTheme(ctx, current)
	case len(args) == 1:
		next = domain.Theme(args[0])
		if next != domain.ThemeDark && next != domain.ThemeLight {
			return fmt.Errorf("theme: unknown theme %q", args[0])
		}
		if err := c.app.Session.SetTheme(ctx, next); err != nil {
			return err
		}
	default:
		return errors.New("theme: expected at most one argument")
	}
	fmt.Fprintln(c.out, next)
	return nil
}
