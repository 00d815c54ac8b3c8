package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/UkralStul/blogfront/internal/domain"
)

func parseID(what, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s: invalid id %q", what, s)
	}
	return id, nil
}

// postFlags - поля редактора поста.
type postFlags struct {
	board, category, title, content, tags *string
}

func newPostFlags(fs *flag.FlagSet) postFlags {
	return postFlags{
		board:    fs.String("board", "", "board type (it, japanese, culture, daily)"),
		category: fs.String("category", "", "category"),
		title:    fs.String("title", "", "title"),
		content:  fs.String("content", "", "content"),
		tags:     fs.String("tags", "", "comma-separated tags"),
	}
}

// apply переносит в черновик только явно заданные флаги.
func (f postFlags) apply(fs *flag.FlagSet, d *domain.PostDraft) error {
	var err error
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "board":
			d.BoardType, err = domain.ParseBoardType(*f.board)
		case "category":
			d.Category = *f.category
		case "title":
			d.Title = *f.title
		case "content":
			d.Content = *f.content
		case "tags":
			d.Tags = domain.ParseTags(*f.tags)
		}
	})
	return err
}

func draftOf(p domain.Post) domain.PostDraft {
	return domain.PostDraft{
		Title:     p.Title,
		Content:   p.Content,
		BoardType: p.BoardType,
		Category:  p.Category,
		Tags:      p.Tags,
	}
}

// postEditor обрабатывает post new|edit|rm.
func (c *cli) postEditor(ctx context.Context, sub string, args []string) error {
	fs := c.flags("post " + sub)
	pf := newPostFlags(fs)
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}

	switch sub {
	case "new":
		if len(pos) != 0 {
			return errors.New("post new: unexpected arguments")
		}
		var d domain.PostDraft
		if err := pf.apply(fs, &d); err != nil {
			return err
		}
		p, err := c.app.Posts.Create(ctx, d)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "게시글 #%d 을(를) 등록했습니다.\n", p.ID)
		return nil
	}

	if len(pos) != 1 {
		return fmt.Errorf("post %s: expected a post id", sub)
	}
	id, err := parseID("post "+sub, pos[0])
	if err != nil {
		return err
	}
	current, err := c.app.Posts.Get(ctx, id)
	if err != nil {
		return err
	}

	if sub == "rm" {
		if err := c.app.Posts.Delete(ctx, current); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "게시글 #%d 을(를) 삭제했습니다.\n", id)
		return nil
	}

	d := draftOf(current)
	if err := pf.apply(fs, &d); err != nil {
		return err
	}
	if _, err := c.app.Posts.Update(ctx, current, d); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "게시글 #%d 을(를) 수정했습니다.\n", id)
	return nil
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := c.flags("register")
	var r domain.Registration
	fs.StringVar(&r.UserID, "id", "", "login id")
	fs.StringVar(&r.NickName, "nick", "", "nickname")
	fs.StringVar(&r.Password, "password", "", "password")
	fs.StringVar(&r.ConfirmPassword, "confirm", "", "password confirmation")
	fs.StringVar(&r.Email, "email", "", "email")
	fs.StringVar(&r.PhoneNumber, "phone", "", "phone number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	acc, err := c.app.Accounts.Register(ctx, r)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s 님, 가입을 환영합니다.\n", acc.NickName)
	return nil
}

func (c *cli) passwd(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("passwd: expected <current> <new>")
	}
	if err := c.app.Accounts.ChangePassword(ctx, args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "비밀번호를 변경했습니다.")
	return nil
}

func (c *cli) withdraw(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("withdraw: expected <password>")
	}
	if err := c.app.Accounts.Withdraw(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "회원 탈퇴가 완료되었습니다.")
	return nil
}

// admin - админка: admin posts|users [-q] [-page], admin rm-post|rm-user <id>.
func (c *cli) admin(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("admin: expected posts, users, rm-post or rm-user")
	}
	sub, args := args[0], args[1:]
	fs := c.flags("admin " + sub)
	query := fs.String("q", "", "search")
	page := fs.Int("page", 1, "page number")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}

	d := c.app.Dashboard()
	if err := d.Load(ctx); err != nil {
		return err
	}

	switch sub {
	case "posts":
		d.SearchPosts(*query)
		d.GoToPostPage(*page)
		l := d.Posts()
		for _, p := range l.Rows {
			fmt.Fprintf(c.out, "#%d  %s  [%s/%s]  %s\n", p.ID, p.Title, p.BoardType, p.Category, p.NickName)
		}
		fmt.Fprintf(c.out, "%d / %d 페이지 · 게시글 %d\n", l.Page, max(l.TotalPages, 1), l.Total)
		return nil
	case "users":
		d.SearchUsers(*query)
		d.GoToUserPage(*page)
		l := d.Users()
		for _, u := range l.Rows {
			fmt.Fprintf(c.out, "%d  %s  %s  %s  %s\n", u.PID, u.UserID, u.NickName, u.Email, u.PhoneNumber)
		}
		fmt.Fprintf(c.out, "%d / %d 페이지 · 회원 %d\n", l.Page, max(l.TotalPages, 1), l.Total)
		return nil
	case "rm-post", "rm-user":
		if len(pos) != 1 {
			return fmt.Errorf("admin %s: expected an id", sub)
		}
		id, err := parseID("admin "+sub, pos[0])
		if err != nil {
			return err
		}
		if sub == "rm-post" {
			err = d.DeletePost(ctx, id)
		} else {
			err = d.DeleteUser(ctx, id)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "#%d 삭제했습니다.\n", id)
		return nil
	}
	return fmt.Errorf("admin: unknown command %q", sub)
}
