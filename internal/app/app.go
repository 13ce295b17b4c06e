package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/gg"

	"stylusnotes/internal/canvas"
	"stylusnotes/internal/config"
	"stylusnotes/internal/domain"
	"stylusnotes/internal/secret"
	"stylusnotes/internal/service"
	"stylusnotes/internal/storage"
	"stylusnotes/internal/watcher"
)

const notesPollInterval = 2 * time.Second

// App wires configuration, storage and services together. The CLI commands
// and the MCP server both run on top of it.
type App struct {
	cfg     *config.Config
	secrets secret.SecretStore
	events  *eventRelay

	db      *storage.DB
	mongo   *storage.MongoNoteStore
	store   domain.StylusNoteStore
	blobs   *storage.BlobStore
	stylus  *service.StylusService
	janitor *service.BlobJanitor
	watch   *watcher.BlobWatcher
	notes   *notesWatcher
}

// New creates an App for cfg. Nothing is opened until Startup.
func New(cfg *config.Config) *App {
	return &App{
		cfg:     cfg,
		secrets: secret.Chain{secret.NewEnvStore(), secret.NewKeychainStore()},
		events:  &eventRelay{debug: cfg.Debug},
	}
}

// Startup opens the note store and blob directory and builds the services.
func (a *App) Startup(ctx context.Context) error {
	if a.cfg.Debug {
		gg.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	newCanvas, err := canvasFactory(a.cfg.Canvas)
	if err != nil {
		return fmt.Errorf("canvas config: %w", err)
	}

	if err := a.openStore(ctx); err != nil {
		return err
	}

	blobs, err := storage.NewBlobStore(a.cfg.DataDir)
	if err != nil {
		a.closeStore(ctx)
		return err
	}
	a.blobs = blobs

	a.stylus = service.NewStylusService(a.store, a.blobs, a.events, newCanvas)
	a.janitor = service.NewBlobJanitor(a.store, a.blobs, a.cfg.Janitor.Schedule)

	w, err := watcher.New(func(noteID, _ string) {
		a.stylus.ImageChanged(context.Background(), noteID)
	})
	if err != nil {
		log.Printf("app: blob watcher disabled: %v", err)
	} else {
		a.watch = w
		a.stylus.SetTracker(w)
	}
	return nil
}

// StartBackground starts the janitor schedule and the cross-process note
// poller. Only long-running modes call it.
func (a *App) StartBackground(ctx context.Context) error {
	if err := a.janitor.Start(); err != nil {
		return err
	}
	a.notes = newNotesWatcher(a.store, a.events, notesPollInterval)
	a.notes.Start(ctx)
	return nil
}

// Shutdown stops background work and closes everything Startup opened.
func (a *App) Shutdown(ctx context.Context) {
	if a.notes != nil {
		a.notes.Stop()
	}
	if a.janitor != nil {
		a.janitor.Stop(ctx)
	}
	if a.stylus != nil {
		if err := a.stylus.Close(); err != nil {
			log.Printf("app: close canvas: %v", err)
		}
	}
	if a.watch != nil {
		a.watch.Close()
	}
	a.closeStore(ctx)
}

// Stylus returns the canvas and note service.
func (a *App) Stylus() *service.StylusService {
	return a.stylus
}

// Janitor returns the orphaned-image sweeper.
func (a *App) Janitor() *service.BlobJanitor {
	return a.janitor
}

// AttachEvents adds a sink that receives every service event.
func (a *App) AttachEvents(sink service.EventEmitter) {
	a.events.Attach(sink)
}

// ── Storage ────────────────────────────────────────────────

func (a *App) openStore(ctx context.Context) error {
	dbCfg := a.cfg.Database
	opts := storage.Options{
		Driver:   dbCfg.Driver,
		DSN:      dbCfg.DSN,
		Host:     dbCfg.Host,
		Port:     dbCfg.Port,
		User:     dbCfg.User,
		Database: dbCfg.Name,
		SSLMode:  dbCfg.SSLMode,
	}

	switch dbCfg.Driver {
	case "", storage.DriverSQLite:
		opts.DSN = a.cfg.DatabasePath()
	case storage.DriverMongo:
		opts.DSN = dbCfg.MongoURI
		if dbCfg.MongoDatabase != "" {
			opts.Database = dbCfg.MongoDatabase
		}
	}
	if opts.DSN == "" && opts.Driver != storage.DriverSQLite {
		pw, err := a.secrets.Get("db_password")
		if err != nil {
			return fmt.Errorf("resolve db password: %w", err)
		}
		opts.Password = string(pw)
	}

	if dbCfg.Driver == storage.DriverMongo {
		m, err := storage.OpenMongo(ctx, opts)
		if err != nil {
			return fmt.Errorf("open note store: %w", err)
		}
		a.mongo = m
		a.store = m
		return nil
	}

	db, err := storage.Open(opts)
	if err != nil {
		return fmt.Errorf("open note store: %w", err)
	}
	a.db = db
	a.store = storage.NewStylusNoteStore(db)
	return nil
}

func (a *App) closeStore(ctx context.Context) {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
	if a.mongo != nil {
		if err := a.mongo.Close(ctx); err != nil {
			log.Printf("[MONGO] disconnect: %v", err)
		}
		a.mongo = nil
	}
}

// ── Canvas defaults ────────────────────────────────────────

// canvasFactory validates the canvas section once and returns a constructor
// that applies it to every new canvas.
func canvasFactory(c config.Canvas) (func() *canvas.Canvas, error) {
	bg := canvas.DefaultBackground
	if c.NightMode {
		bg = canvas.NightBackground
	}
	if c.Background != "" {
		col, err := canvas.ParseColor(c.Background)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		bg = col
	}

	policy, err := canvas.ParseResizePolicy(c.ResizePolicy)
	if err != nil {
		return nil, err
	}

	brush := canvas.BrushPen
	if c.Brush != "" {
		if brush, err = canvas.ParseBrush(c.Brush); err != nil {
			return nil, err
		}
	}

	ink := canvas.DefaultInk
	if c.NightMode {
		ink = canvas.DefaultBackground
	}
	if c.Color != "" {
		if ink, err = canvas.ParseColor(c.Color); err != nil {
			return nil, fmt.Errorf("color: %w", err)
		}
	}

	opts := []canvas.Option{
		canvas.WithSize(c.Width, c.Height),
		canvas.WithBackground(bg),
		canvas.WithHistoryDepth(c.HistoryDepth),
		canvas.WithResizePolicy(policy),
		canvas.WithSprayInterval(c.SprayInterval),
	}
	return func() *canvas.Canvas {
		cv := canvas.New(opts...)
		// brush was validated above
		_ = cv.SetBrush(brush)
		cv.SetColor(ink)
		if c.Size > 0 {
			cv.SetSize(c.Size)
		}
		if c.Opacity > 0 {
			cv.SetOpacity(c.Opacity)
		}
		return cv
	}, nil
}
