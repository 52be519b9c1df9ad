// Package app wires the harvester together with fx: configuration, logging,
// archive, page session, media fetcher and pipeline.
package app

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/matheus3301/waharvest/internal/browser"
	"github.com/matheus3301/waharvest/internal/bus"
	"github.com/matheus3301/waharvest/internal/classify"
	"github.com/matheus3301/waharvest/internal/config"
	"github.com/matheus3301/waharvest/internal/harvest"
	"github.com/matheus3301/waharvest/internal/lock"
	"github.com/matheus3301/waharvest/internal/logging"
	"github.com/matheus3301/waharvest/internal/media"
	"github.com/matheus3301/waharvest/internal/page"
	"github.com/matheus3301/waharvest/internal/page/snapshot"
	"github.com/matheus3301/waharvest/internal/session"
	"github.com/matheus3301/waharvest/internal/store"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// Params holds the resolved invocation passed to the fx modules.
type Params struct {
	SessionName string
	Config      *config.Config
	Mode        harvest.Mode
	Snapshot    string // saved HTML page to harvest instead of a live browser
	Verbose     bool
	JSON        bool
	Interactive bool

	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Logger *zap.Logger // optional override for testing; nil = session log file
}

// RunID identifies the harvest this process performs.
type RunID string

// Core provides what every command needs: logger, bus and the archive.
func Core(p Params) fx.Option {
	if p.Config == nil {
		p.Config = config.Default()
	}
	if p.In == nil {
		p.In = os.Stdin
	}
	if p.Out == nil {
		p.Out = os.Stdout
	}
	if p.Err == nil {
		p.Err = os.Stderr
	}
	return fx.Module("core",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStore,
			NewArchive,
		),
	)
}

// Harvest provides the page session and pipeline on top of Core.
func Harvest() fx.Option {
	return fx.Module("harvest",
		fx.Provide(
			provideRunID,
			provideSession,
			provideEngine,
			provideFetcher,
			providePipeline,
			NewRunner,
		),
	)
}

// FxLogger routes fx's own events through the session logger.
func FxLogger() fx.Option {
	return fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: l.Named("fx")}
	})
}

func provideLogger(lc fx.Lifecycle, p Params) (*zap.Logger, error) {
	if p.Logger != nil {
		return p.Logger, nil
	}
	logger, err := logging.New(session.LogPath(p.SessionName), p.SessionName, p.Verbose)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() { _ = logger.Sync() }))
	return logger, nil
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStore(lc fx.Lifecycle, p Params, logger *zap.Logger) (*store.DB, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	dbPath := session.DBPath(p.SessionName)
	db, result, err := store.OpenMigrated(dbPath)
	if err != nil {
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Debug("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Debug("store initialized", zap.String("path", dbPath))
	lc.Append(fx.StopHook(db.Close))
	return db, nil
}

func provideRunID() RunID {
	return RunID(uuid.NewString())
}

// provideSession opens the saved snapshot, or locks the profile and starts
// Chrome on it.
func provideSession(lc fx.Lifecycle, p Params, id RunID, logger *zap.Logger) (page.Session, error) {
	sel := p.Config.Selectors.WithDefaults()
	if p.Snapshot != "" {
		logger.Info("harvesting snapshot", zap.String("path", p.Snapshot))
		doc, err := snapshot.Open(p.Snapshot,
			snapshot.WithChatName(sel.ChatName, sel.ChatNameAttr),
			snapshot.WithReadyDescriptor(sel.ChatPane))
		if err != nil {
			return nil, err
		}
		return doc, nil
	}

	profile := p.Config.Browser.ProfileDir
	if profile == "" {
		profile = session.ProfileDir(p.SessionName)
	}
	lk, err := lock.Acquire(profile, string(id))
	if err != nil {
		return nil, err
	}
	logger.Debug("profile lock acquired", zap.String("path", lk.Path()))

	sess, err := browser.Open(context.Background(), browser.Options{
		URL:             p.Config.Browser.URL,
		ExecPath:        p.Config.Browser.ExecPath,
		ProfileDir:      profile,
		Headless:        p.Config.Browser.Headless,
		ReadyDescriptor: sel.ChatPane,
	}, logger.Named("browser"))
	if err != nil {
		_ = lk.Release()
		return nil, err
	}
	lc.Append(fx.StopHook(func() {
		if err := sess.Close(); err != nil {
			logger.Warn("error closing browser", zap.Error(err))
		}
		if err := lk.Release(); err != nil {
			logger.Warn("error releasing lock", zap.Error(err))
		}
	}))
	return sess, nil
}

func provideEngine(p Params) *classify.Engine {
	return classify.New(p.Config.Lexicon)
}

func provideFetcher(p Params, sess page.Session, logger *zap.Logger) *media.Fetcher {
	sources := media.DefaultSources(&http.Client{Timeout: p.Config.Media.HTTPTimeout.Duration})
	if live, ok := sess.(*browser.Session); ok {
		sources = browser.Sources(sources, live)
	}
	return media.NewFetcher(sources, logger.Named("media"))
}

func providePipeline(p Params, id RunID, sess page.Session, engine *classify.Engine, fetcher *media.Fetcher, b *bus.Bus, logger *zap.Logger) *harvest.Pipeline {
	return harvest.New(harvest.Deps{
		Page:      sess,
		Engine:    engine,
		Fetcher:   fetcher,
		Bus:       b,
		Logger:    logger,
		Selectors: p.Config.Selectors,
	}, p.Config.HarvestOptions(p.Mode), harvest.WithRunID(func() string { return string(id) }))
}
