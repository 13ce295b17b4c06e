package app

import (
	"context"
	"image/color"
	"strings"
	"testing"
	"time"

	"stylusnotes/internal/canvas"
	"stylusnotes/internal/config"
	"stylusnotes/internal/domain"
	"stylusnotes/internal/service"
	"stylusnotes/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.DataDir = t.TempDir()
	cfg.Canvas.Width = 400
	cfg.Canvas.Height = 300
	cfg.Janitor.Schedule = ""
	return cfg
}

func startApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a := New(cfg)
	if err := a.Startup(context.Background()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	t.Cleanup(func() { a.Shutdown(context.Background()) })
	return a
}

func TestStartup_SQLiteSaveAndList(t *testing.T) {
	a := startApp(t, testConfig(t))
	ctx := context.Background()

	state := a.Stylus().Canvas().ToolState()
	if state.Width != 400 || state.Height != 300 {
		t.Fatalf("canvas size = %dx%d, want 400x300", state.Width, state.Height)
	}

	note, err := a.Stylus().Save(ctx, domain.NoteMetadata{Title: "first", Folder: "inbox"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	notes, err := a.Stylus().ListNotes(ctx, "inbox")
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].ID != note.ID {
		t.Fatalf("ListNotes = %+v, want the saved note", notes)
	}
}

func TestStartup_RejectsBadCanvasConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Canvas.Brush = "crayon"

	err := New(cfg).Startup(context.Background())
	if err == nil {
		t.Fatal("expected error for unknown brush")
	}
	if !strings.Contains(err.Error(), "canvas config") {
		t.Errorf("error = %v, want canvas config context", err)
	}
}

func TestEventsReachAttachedSinks(t *testing.T) {
	a := startApp(t, testConfig(t))
	sink := &service.MockEmitter{}
	a.AttachEvents(sink)

	a.Stylus().NewCanvas(context.Background())

	if len(sink.Named(service.EventCanvasChange)) != 1 {
		t.Fatalf("events = %+v, want one canvas change", sink.Events)
	}
}

func TestStartBackground_BadScheduleFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Janitor.Schedule = "whenever"
	a := startApp(t, cfg)

	if err := a.StartBackground(context.Background()); err == nil {
		t.Fatal("expected error for invalid janitor schedule")
	}
}

// ── Canvas defaults ────────────────────────────────────────

func TestCanvasFactory_AppliesDefaults(t *testing.T) {
	c := config.New().Canvas
	c.Width, c.Height = 500, 400
	c.Brush = "marker"
	c.Color = "#ff0000"
	c.Size = 12
	c.Opacity = 0.5

	newCanvas, err := canvasFactory(c)
	if err != nil {
		t.Fatal(err)
	}
	cv := newCanvas()
	defer cv.Close()

	st := cv.ToolState()
	if st.Brush != "marker" {
		t.Errorf("brush = %q, want marker", st.Brush)
	}
	if st.Color != canvas.FormatColor(mustColor(t, "#ff0000")) {
		t.Errorf("color = %q", st.Color)
	}
	if st.Size != 12 || st.Opacity != 0.5 {
		t.Errorf("size/opacity = %v/%v, want 12/0.5", st.Size, st.Opacity)
	}
	if st.Width != 500 || st.Height != 400 {
		t.Errorf("size = %dx%d, want 500x400", st.Width, st.Height)
	}
}

func TestCanvasFactory_NightMode(t *testing.T) {
	c := config.New().Canvas
	c.NightMode = true

	newCanvas, err := canvasFactory(c)
	if err != nil {
		t.Fatal(err)
	}
	cv := newCanvas()
	defer cv.Close()

	st := cv.ToolState()
	if st.Background != canvas.FormatColor(canvas.NightBackground) {
		t.Errorf("background = %q, want night background", st.Background)
	}
	if st.Color != canvas.FormatColor(canvas.DefaultBackground) {
		t.Errorf("ink = %q, want light ink on night background", st.Color)
	}
}

func TestCanvasFactory_ExplicitBackgroundWins(t *testing.T) {
	c := config.New().Canvas
	c.NightMode = true
	c.Background = "#336699"

	newCanvas, err := canvasFactory(c)
	if err != nil {
		t.Fatal(err)
	}
	cv := newCanvas()
	defer cv.Close()

	if got := cv.ToolState().Background; got != canvas.FormatColor(mustColor(t, "#336699")) {
		t.Errorf("background = %q", got)
	}
}

func TestCanvasFactory_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		edit func(*config.Canvas)
	}{
		{"brush", func(c *config.Canvas) { c.Brush = "crayon" }},
		{"color", func(c *config.Canvas) { c.Color = "not-a-color" }},
		{"background", func(c *config.Canvas) { c.Background = "#12" }},
		{"resize policy", func(c *config.Canvas) { c.ResizePolicy = "stretch" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := config.New().Canvas
			tt.edit(&c)
			if _, err := canvasFactory(c); err == nil {
				t.Fatalf("expected error for invalid %s", tt.name)
			}
		})
	}
}

// ── Notes watcher ──────────────────────────────────────────

func TestNotesWatcher_DetectsExternalChange(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.Open(storage.Options{Driver: storage.DriverSQLite, DSN: dir + "/notes.db"})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	store := storage.NewStylusNoteStore(db)
	emitter := &service.MockEmitter{}
	w := newNotesWatcher(store, emitter, time.Hour)
	ctx := context.Background()

	if w.check(ctx) {
		t.Fatal("first check should only record the baseline")
	}
	if w.check(ctx) {
		t.Fatal("unchanged store reported a change")
	}

	note := &domain.StylusNote{ID: "n1", Title: "t", ImagePath: "stylus/n1.png", Width: 10, Height: 10}
	if err := store.CreateNote(ctx, note); err != nil {
		t.Fatal(err)
	}
	if !w.check(ctx) {
		t.Fatal("new note not detected")
	}
	if len(emitter.Named(service.EventNotesChanged)) != 1 {
		t.Errorf("events = %+v, want one notes-changed", emitter.Events)
	}
}

func TestNotesWatcher_StartStop(t *testing.T) {
	a := startApp(t, testConfig(t))
	w := newNotesWatcher(a.store, a.events, 10*time.Millisecond)
	w.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	w.Stop()
	w.Stop()
}

func mustColor(t *testing.T, s string) color.NRGBA {
	t.Helper()
	c, err := canvas.ParseColor(s)
	if err != nil {
		t.Fatal(err)
	}
	return c
}
