package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matheus3301/studybuddy/internal/app"
	"github.com/matheus3301/studybuddy/internal/config"
	"github.com/matheus3301/studybuddy/internal/logging"
	"github.com/matheus3301/studybuddy/internal/profile"
	"github.com/matheus3301/studybuddy/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	profileFlag string
	jsonFlag    bool
	verboseFlag bool
	rootCmd     = &cobra.Command{
		Use:           "buddyctl",
		Short:         "Inspect and manage studybuddy profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&profileFlag, "profile", "p", "", "profile name (overrides config default)")
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "also log to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// resolveProfile applies the same precedence as the TUI: flag, config, default.
func resolveProfile() (string, *config.Config, error) {
	cfg, err := config.Resolve(profile.ConfigPath())
	if err != nil {
		return "", nil, err
	}
	name := profile.Resolve(profileFlag, cfg.DefaultProfile)
	if err := profile.ValidateName(name); err != nil {
		return "", nil, err
	}
	return name, cfg, nil
}

// handle is an opened profile: its database and a logger writing to the
// profile's buddyctl.log, teed to stderr with --verbose.
type handle struct {
	Name   string
	DB     *store.DB
	Logger *zap.Logger
}

func (h *handle) Close() {
	_ = h.DB.Close()
	_ = h.Logger.Sync()
}

// openProfile opens the database of an existing profile.
func openProfile() (*handle, error) {
	name, cfg, err := resolveProfile()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(profile.Dir(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("profile %q not found", name)
		}
		return nil, err
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		Path:    profile.LogPath(name, "buddyctl"),
		Profile: name,
		Level:   level,
		Console: verboseFlag,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := app.OpenStore(name, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return &handle{Name: name, DB: db, Logger: logger}, nil
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
