package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Database selects and addresses the note store. The password is not kept
// here; it is resolved through the secret store as "db_password".
type Database struct {
	Driver        string
	DSN           string
	Host          string
	Port          int
	User          string
	Name          string
	SSLMode       string
	MongoURI      string
	MongoDatabase string
}

// Canvas holds the defaults a new canvas starts with.
type Canvas struct {
	Width         int
	Height        int
	Background    string
	NightMode     bool
	HistoryDepth  int
	ResizePolicy  string
	SprayInterval time.Duration
	Brush         string
	Color         string
	Size          float64
	Opacity       float64
}

// Janitor controls the orphaned-image sweep.
type Janitor struct {
	Schedule string
}

// Config holds the application configuration.
type Config struct {
	DataDir  string
	Debug    bool
	Database Database
	Canvas   Canvas
	Janitor  Janitor
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		DataDir: defaultDataDir(),
		Database: Database{
			Driver: "sqlite",
		},
		Canvas: Canvas{
			Width:         800,
			Height:        600,
			ResizePolicy:  "preserve",
			SprayInterval: 50 * time.Millisecond,
			Brush:         "pen",
			Opacity:       1,
		},
		Janitor: Janitor{
			Schedule: "@every 6h",
		},
	}
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "stylusnotes")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "stylusnotes")
	}
	return filepath.Join(home, ".local", "share", "stylusnotes")
}

// DatabasePath is the sqlite file used when no DSN is configured.
func (c *Config) DatabasePath() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return filepath.Join(c.DataDir, "stylusnotes.db")
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "data_dir = %s\n", c.DataDir)
	fmt.Fprintf(&sb, "debug = %v\n", c.Debug)
	sb.WriteString("\n")

	sb.WriteString("[database]\n")
	fmt.Fprintf(&sb, "driver = %s\n", c.Database.Driver)
	writeIf(&sb, "dsn", c.Database.DSN)
	writeIf(&sb, "host", c.Database.Host)
	if c.Database.Port != 0 {
		fmt.Fprintf(&sb, "port = %d\n", c.Database.Port)
	}
	writeIf(&sb, "user", c.Database.User)
	writeIf(&sb, "name", c.Database.Name)
	writeIf(&sb, "sslmode", c.Database.SSLMode)
	writeIf(&sb, "mongo_uri", c.Database.MongoURI)
	writeIf(&sb, "mongo_database", c.Database.MongoDatabase)
	sb.WriteString("\n")

	sb.WriteString("[canvas]\n")
	fmt.Fprintf(&sb, "width = %d\n", c.Canvas.Width)
	fmt.Fprintf(&sb, "height = %d\n", c.Canvas.Height)
	writeIf(&sb, "background", c.Canvas.Background)
	fmt.Fprintf(&sb, "night_mode = %v\n", c.Canvas.NightMode)
	fmt.Fprintf(&sb, "history_depth = %d\n", c.Canvas.HistoryDepth)
	fmt.Fprintf(&sb, "resize_policy = %s\n", c.Canvas.ResizePolicy)
	fmt.Fprintf(&sb, "spray_interval = %s\n", c.Canvas.SprayInterval)
	fmt.Fprintf(&sb, "brush = %s\n", c.Canvas.Brush)
	writeIf(&sb, "color", c.Canvas.Color)
	if c.Canvas.Size != 0 {
		fmt.Fprintf(&sb, "size = %g\n", c.Canvas.Size)
	}
	fmt.Fprintf(&sb, "opacity = %g\n", c.Canvas.Opacity)
	sb.WriteString("\n")

	sb.WriteString("[janitor]\n")
	fmt.Fprintf(&sb, "schedule = %q\n", c.Janitor.Schedule)

	return sb.String()
}

func writeIf(sb *strings.Builder, key, value string) {
	if value != "" {
		fmt.Fprintf(sb, "%s = %s\n", key, value)
	}
}
