package app

import (
	"testing"

	"github.com/matheus3301/studybuddy/internal/config"
	"github.com/matheus3301/studybuddy/internal/match"
	"github.com/matheus3301/studybuddy/internal/profile"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func TestModuleGraph(t *testing.T) {
	t.Setenv("STUDYBUDDY_HOME", t.TempDir())

	for _, ephemeral := range []bool{false, true} {
		err := fx.ValidateApp(
			fx.NopLogger,
			Module(Params{Profile: "test", Config: config.Default(), Ephemeral: ephemeral}),
		)
		if err != nil {
			t.Errorf("ephemeral=%v: %v", ephemeral, err)
		}
	}
}

func TestOpenStorePersists(t *testing.T) {
	t.Setenv("STUDYBUDDY_HOME", t.TempDir())
	if err := profile.EnsureDir("test"); err != nil {
		t.Fatal(err)
	}

	db, err := OpenStore("test", zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	archive := match.NewArchive(db, nil, nil)
	if err := archive.Put(match.KeptSession{ID: "s1", LastMessagePreview: match.NoMessagesPreview}, nil); err != nil {
		t.Fatal(err)
	}
	if err := db.Close(); err != nil {
		t.Fatal(err)
	}

	db, err = OpenStore("test", zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	if _, err := match.NewArchive(db, nil, nil).Get("s1"); err != nil {
		t.Errorf("kept session lost across reopen: %v", err)
	}
}

func TestProvideMachineUsesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Match.MatchDelay = 0
	p := Params{Profile: "test", Config: cfg}

	m := provideMachine(p, match.NewArchive(nil, nil, nil), provideBus(), provideFlash(), zap.NewNop())
	defer m.Close()
	if m.Stage() != match.Selecting {
		t.Errorf("Stage = %s", m.Stage())
	}
}
