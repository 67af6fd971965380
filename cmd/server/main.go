package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-collaborate/collaborate"
	"github.com/jrsteele09/go-collaborate/internal/config"
	"github.com/jrsteele09/go-collaborate/registrations"
	fakeregistrationrepo "github.com/jrsteele09/go-collaborate/registrations/repofake"
	"github.com/jrsteele09/go-collaborate/server"
	"github.com/jrsteele09/go-collaborate/sessions"
	fakesessionrepo "github.com/jrsteele09/go-collaborate/sessions/repofake"
	fakeuserrepo "github.com/jrsteele09/go-collaborate/users/repofake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	if c.GetCollaborateURL() == "" || c.GetCollaborateKey() == "" || c.GetCollaborateSecret() == "" {
		log.Warn().Msg("Collaborate credentials are not fully configured; vendor calls will fail")
	}

	client := collaborate.NewFromConfig(c, collaborate.WithLogger(log.Logger.With().Str("component", "collaborate").Logger()))
	userRepo := fakeuserrepo.NewFakeUserRepo()
	sessionRepo := fakesessionrepo.NewFakeSessionRepo()

	handler := server.New(c, server.Services{
		Users:         userRepo,
		Sessions:      sessions.NewSyncer(sessionRepo, client),
		Registrations: registrations.NewService(fakeregistrationrepo.NewFakeRegistrationRepo(), sessionRepo, userRepo, client),
	})

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		errs <- listenAndServe(httpServer)
	}()

	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func setupLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
