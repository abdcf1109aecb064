// Package app wires the Soul Match components into an fx application.
package app

import (
	"context"

	"github.com/matheus3301/studybuddy/internal/activity"
	"github.com/matheus3301/studybuddy/internal/bus"
	"github.com/matheus3301/studybuddy/internal/config"
	"github.com/matheus3301/studybuddy/internal/kv"
	"github.com/matheus3301/studybuddy/internal/lock"
	"github.com/matheus3301/studybuddy/internal/logging"
	"github.com/matheus3301/studybuddy/internal/match"
	"github.com/matheus3301/studybuddy/internal/profile"
	"github.com/matheus3301/studybuddy/internal/route"
	"github.com/matheus3301/studybuddy/internal/store"
	"github.com/matheus3301/studybuddy/internal/tui"
	"github.com/matheus3301/studybuddy/internal/tui/ui"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved startup configuration passed to the fx module.
type Params struct {
	Profile string
	Config  *config.Config
	// Ephemeral keeps everything in memory: no lock, no database.
	Ephemeral bool
	// Open is navigated to once the UI is up.
	Open *route.Route
}

// Module returns the fx module composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("studybuddy",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideArchive,
			provideFlash,
			provideMachine,
			provideRecorder,
			provideTUI,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	level, err := p.Config.Level()
	if err != nil {
		return nil, err
	}
	return logging.New(logging.Options{
		Path:    profile.LogPath(p.Profile, "studybuddy"),
		Profile: p.Profile,
		Level:   level,
	})
}

func provideBus() *bus.Bus {
	return bus.New()
}

// provideLock holds the profile lock until every later stop hook has run.
func provideLock(p Params, lc fx.Lifecycle, logger *zap.Logger) (*lock.Lock, error) {
	if p.Ephemeral {
		return nil, nil
	}
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile))
	l, err := lock.Acquire(profile.Dir(p.Profile))
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	lc.Append(fx.StopHook(func() {
		if err := l.Release(); err != nil {
			logger.Warn("error releasing lock", zap.Error(err))
		}
	}))
	return l, nil
}

// provideStore depends on the lock so the database is only opened by the
// process holding it.
func provideStore(p Params, _ *lock.Lock, lc fx.Lifecycle, logger *zap.Logger) (kv.Store, error) {
	if p.Ephemeral {
		logger.Info("ephemeral mode, nothing is persisted")
		return kv.NewMemory(), nil
	}
	db, err := OpenStore(p.Profile, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(db.Close))
	return db, nil
}

// OpenStore opens and migrates the profile database.
func OpenStore(profileName string, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.DBPath(profileName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Debug("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideArchive(s kv.Store, b *bus.Bus, logger *zap.Logger) *match.Archive {
	return match.NewArchive(s, b, logger.Named("archive"))
}

func provideFlash() *ui.FlashModel {
	return ui.NewFlashModel()
}

func provideMachine(p Params, archive *match.Archive, b *bus.Bus, flash *ui.FlashModel, logger *zap.Logger) *match.Machine {
	opts := match.DefaultOptions()
	opts.MatchDelay = p.Config.Match.MatchDelay
	opts.OpeningDelay = p.Config.Match.OpeningDelay
	opts.TypingDelay = p.Config.Match.TypingDelay
	opts.Notifier = flash
	return match.NewMachine(archive, b, logger.Named("match"), opts)
}

func provideRecorder(s kv.Store, b *bus.Bus, logger *zap.Logger) *activity.Recorder {
	return activity.NewRecorder(s, b, logger.Named("activity"))
}

func provideTUI(p Params, m *match.Machine, archive *match.Archive, b *bus.Bus, flash *ui.FlashModel, logger *zap.Logger) *tui.App {
	a := tui.NewApp(m, archive, b, flash, logger.Named("tui"), p.Profile)
	if p.Open != nil {
		a.OpenOnStart(*p.Open)
	}
	return a
}

func registerLifecycle(lc fx.Lifecycle, sd fx.Shutdowner, shell *tui.App, m *match.Machine, rec *activity.Recorder, b *bus.Bus, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			rec.Start(context.Background())

			go func() {
				code := 0
				if err := shell.Run(); err != nil {
					logger.Error("ui exited with error", zap.Error(err))
					code = 1
				}
				_ = sd.Shutdown(fx.ExitCode(code))
			}()

			logger.Info("studybuddy started")
			return nil
		},
		OnStop: func(_ context.Context) error {
			shell.Stop()
			m.Close()
			rec.Stop()
			logger.Info("studybuddy stopped", zap.Uint64("events_dropped", b.Dropped()))
			_ = logger.Sync()
			return nil
		},
	})
}
