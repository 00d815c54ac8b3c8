package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/log"
	"github.com/mattn/go-isatty"
	"golang.org/x/crypto/bcrypt"

	"github.com/UkralStul/blogfront/internal/devbackend"
	"github.com/UkralStul/blogfront/internal/logging"
)

const defaultPort = "8080"

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	addr := flag.String("addr", ":"+port, "listen address")
	seed := flag.Bool("seed", true, "fill the store with mock data")
	requestLog := flag.Bool("request-log", true, "log every request")
	sessionTTL := flag.Duration("session-ttl", 30*time.Minute, "session lifetime")
	debug := flag.Bool("debug", false, "log debug messages")
	flag.Parse()

	logging.Init(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()), *debug)

	store := devbackend.NewMemoryStore()
	if *seed {
		seeded, err := devbackend.FillWithMockData(context.Background(), store, bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("devbackend: %s", err)
		}
		log.WithFields(
			log.F("posts", len(seeded.Posts)),
			log.F("thread", seeded.ThreadID),
			log.F("user", devbackend.SeedUserID),
			log.F("admin", devbackend.SeedAdminName),
		).Info("devbackend: mock data filled")
	}

	srv := &http.Server{
		Addr: *addr,
		Handler: devbackend.NewServer(store,
			devbackend.WithRequestLog(*requestLog),
			devbackend.WithSessionTTL(*sessionTTL),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warnf("devbackend: shutdown: %s", err)
		}
	}()

	log.Infof("devbackend: listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("devbackend: server failed to start: %s", err)
	}
}
