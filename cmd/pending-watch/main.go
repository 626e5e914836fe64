// Command pending-watch polls the reservation inbox and logs whenever the
// number of pending reservations changes.  It stops on SIGINT or SIGTERM.
//
// Credentials come from SIRI_TOKEN, or from SIRI_ADMIN_EMAIL and
// SIRI_ADMIN_PASSWORD, in which case the tool signs in and re-signs in when
// the session is rejected.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/siri-restaurant/internal/client"
	"github.com/iliyamo/siri-restaurant/internal/config"
	"github.com/iliyamo/siri-restaurant/internal/logger"
)

func main() {
	config.LoadDotEnv()
	base := flag.String("url", envOr("SIRI_API_URL", "http://localhost:8080"), "API base URL")
	interval := flag.Duration("interval", 30*time.Second, "poll interval")
	level := flag.String("log-level", envOr("LOG_LEVEL", "info"), "debug | info | warn | error")
	flag.Parse()

	log := logger.New(*level)
	if err := run(*base, *interval, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("pending_watch.fail", "err", err)
		os.Exit(1)
	}
}

func run(base string, interval time.Duration, log *slog.Logger) error {
	var creds client.CredentialProvider
	var signIn *client.SignInProvider
	switch {
	case os.Getenv("SIRI_TOKEN") != "":
		creds = client.StaticToken(os.Getenv("SIRI_TOKEN"))
	case os.Getenv("SIRI_ADMIN_EMAIL") != "":
		signIn = &client.SignInProvider{BaseURL: base, Email: os.Getenv("SIRI_ADMIN_EMAIL"), Password: os.Getenv("SIRI_ADMIN_PASSWORD")}
		creds = signIn
	default:
		return errors.New("set SIRI_TOKEN or SIRI_ADMIN_EMAIL/SIRI_ADMIN_PASSWORD")
	}

	c, err := client.New(base, creds)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	last := -1
	log.Info("pending_watch.start", "url", base, "interval", interval.String())
	err = c.PollPendingCount(ctx, interval, func(n int) {
		if n != last {
			log.Info("pending_watch.count", "pending", n, "previous", last)
			last = n
		}
	}, func(err error) {
		if client.IsUnauthorized(err) && signIn != nil {
			signIn.Forget()
		}
		log.Warn("pending_watch.poll_failed", "err", err)
	})
	log.Info("pending_watch.stopped")
	return err
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
