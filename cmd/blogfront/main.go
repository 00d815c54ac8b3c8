package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/log"

	"github.com/UkralStul/blogfront/internal/app"
	"github.com/UkralStul/blogfront/internal/config"
	"github.com/UkralStul/blogfront/internal/logging"
	"github.com/UkralStul/blogfront/internal/tui"
)

const usage = `usage: blogfront [flags] [command]

commands:
  tui                                      terminal interface (default)
  board <type> [-category c] [-tag t] [-page n]
  post <id>
  post new -board b -category c -title t -content text [-tags "a, b"]
  post edit <id> [-board b] [-category c] [-title t] [-content text] [-tags "a, b"]
  post rm <id>
  login [-admin] <name> <password>
  logout [-admin]
  whoami
  register -id id -nick nick -password p -confirm p -email e -phone n
  passwd <current> <new>
  withdraw <password>
  admin posts|users [-q query] [-page n]
  admin rm-post|rm-user <id>
  theme [dark|light]
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "blogfront:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}
	cfg, rest, err := config.Load("blogfront", args, stderr)
	if err != nil {
		return err
	}

	cmd := "tui"
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}

	// интерфейс занимает экран, поэтому его лог пишется в файл
	if cmd == "tui" {
		f, err := openLog(cfg)
		if err != nil {
			return err
		}
		defer f.Close()
		logging.Init(f, false, cfg.Debug)
	} else {
		logging.Init(stderr, false, cfg.Debug)
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warnf("blogfront: close: %s", err)
		}
	}()

	if cmd == "tui" {
		return tui.Run(ctx, a)
	}

	a.Start(ctx)
	out := &cli{app: a, out: stdout, errOut: stderr}
	switch cmd {
	case "board":
		return out.board(ctx, rest)
	case "post":
		return out.post(ctx, rest)
	case "login":
		return out.login(ctx, rest)
	case "logout":
		return out.logout(ctx, rest)
	case "whoami":
		return out.whoami()
	case "register":
		return out.register(ctx, rest)
	case "passwd":
		return out.passwd(ctx, rest)
	case "withdraw":
		return out.withdraw(ctx, rest)
	case "admin":
		return out.admin(ctx, rest)
	case "theme":
		return out.theme(ctx, rest)
	case "help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	fmt.Fprint(stderr, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

func openLog(cfg config.Config) (*os.File, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	return f, nil
}
