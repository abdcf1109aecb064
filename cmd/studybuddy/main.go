package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/matheus3301/studybuddy/internal/app"
	"github.com/matheus3301/studybuddy/internal/config"
	"github.com/matheus3301/studybuddy/internal/profile"
	"github.com/matheus3301/studybuddy/internal/route"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	sessionFlag := flag.String("session", "", "resume the kept chat with this id")
	openFlag := flag.String("open", "", "open a studybuddy:// link")
	ephemeral := flag.Bool("ephemeral", false, "keep nothing on disk")
	flag.Parse()

	if err := run(*profileFlag, *sessionFlag, *openFlag, *ephemeral); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(profileFlag, sessionFlag, openFlag string, ephemeral bool) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Resolve(profile.ConfigPath())
	if err != nil {
		return err
	}

	name := profile.Resolve(profileFlag, cfg.DefaultProfile)
	if err := profile.ValidateName(name); err != nil {
		return err
	}

	open, err := startRoute(sessionFlag, openFlag)
	if err != nil {
		return err
	}

	fxApp := fx.New(
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		app.Module(app.Params{
			Profile:   name,
			Config:    cfg,
			Ephemeral: ephemeral,
			Open:      open,
		}),
	)
	if err := fxApp.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(context.Background(), fxApp.StartTimeout())
	defer cancel()
	if err := fxApp.Start(startCtx); err != nil {
		return err
	}

	sig := <-fxApp.Wait()

	stopCtx, cancelStop := context.WithTimeout(context.Background(), fxApp.StopTimeout())
	defer cancelStop()
	if err := fxApp.Stop(stopCtx); err != nil {
		return err
	}
	if sig.ExitCode != 0 {
		return fmt.Errorf("exited with status %d", sig.ExitCode)
	}
	return nil
}

// startRoute turns --open or --session into the route opened at startup.
func startRoute(sessionID, link string) (*route.Route, error) {
	switch {
	case link != "" && sessionID != "":
		return nil, errors.New("--open and --session are mutually exclusive")
	case link != "":
		r, err := route.Parse(link)
		if err != nil {
			return nil, err
		}
		return &r, nil
	case sessionID != "":
		r := route.Match(sessionID)
		return &r, nil
	default:
		return nil, nil
	}
}
