package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"stylusnotes/internal/app"
	"stylusnotes/internal/config"
)

// withApp starts the app for a one-shot command and shuts it down afterwards.
func (r *root) withApp(fn func(ctx context.Context, a *app.App) error) error {
	ctx := context.Background()
	a := app.New(r.config)
	if err := a.Startup(ctx); err != nil {
		return err
	}
	defer a.Shutdown(ctx)
	return fn(ctx, a)
}

// ── mcp ────────────────────────────────────────────────────

type mcpCmd struct {
	*root
}

func (c *mcpCmd) Run() error {
	return app.ServeMCP(c.config)
}

// ── list ───────────────────────────────────────────────────

type listCmd struct {
	*root
	fs     *flag.FlagSet
	folder string
}

func parseListCmd(args []string, r *root) (*listCmd, error) {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	cmd := &listCmd{root: r, fs: fs}
	fs.StringVar(&cmd.folder, "folder", "", "only list notes in this folder")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{fs: fs, msg: "unexpected arguments"}
	}
	return cmd, nil
}

func (c *listCmd) Run() error {
	return c.withApp(func(ctx context.Context, a *app.App) error {
		notes, err := a.Stylus().ListNotes(ctx, c.folder)
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			fmt.Fprintln(c.stdout, "no notes")
			return nil
		}
		tw := tabwriter.NewWriter(c.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tFOLDER\tSIZE\tPINNED\tUPDATED")
		for _, n := range notes {
			pin := ""
			if n.Pinned {
				pin = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\t%s\t%s\n",
				n.ID, n.Title, n.Folder, n.Width, n.Height, pin,
				n.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	})
}

// ── export ─────────────────────────────────────────────────

type exportCmd struct {
	*root
	noteID string
	output string
}

func parseExportCmd(args []string, r *root) (*exportCmd, error) {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 2 {
		return nil, &UsageError{fs: fs, msg: "expected <note-id> <output.png>"}
	}
	return &exportCmd{root: r, noteID: fs.Arg(0), output: fs.Arg(1)}, nil
}

func (c *exportCmd) Run() error {
	return c.withApp(func(ctx context.Context, a *app.App) error {
		data, err := a.Stylus().ExportPNG(ctx, c.noteID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(c.output, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", c.output, err)
		}
		fmt.Fprintf(c.stdout, "exported %s to %s\n", c.noteID, c.output)
		return nil
	})
}

// ── sweep ──────────────────────────────────────────────────

type sweepCmd struct {
	*root
}

func (c *sweepCmd) Run() error {
	return c.withApp(func(ctx context.Context, a *app.App) error {
		removed, err := a.Janitor().Sweep(ctx)
		if err != nil {
			return err
		}
		for _, ref := range removed {
			fmt.Fprintln(c.stdout, "removed", ref)
		}
		fmt.Fprintf(c.stdout, "%d orphaned image(s) removed\n", len(removed))
		return nil
	})
}

// ── config ─────────────────────────────────────────────────

type configCmd struct {
	*root
	action string
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	action := "print"
	if fs.NArg() > 0 {
		action = fs.Arg(0)
	}
	switch action {
	case "print", "save", "path":
	default:
		return nil, &UsageError{fs: fs, msg: fmt.Sprintf("unknown config command %q", action)}
	}
	return &configCmd{root: r, action: action}, nil
}

func (c *configCmd) Run() error {
	switch c.action {
	case "path":
		path := config.NewLoader(c.configPath).GetConfigPath()
		if path == "" {
			path = "(none, using defaults)"
		}
		fmt.Fprintln(c.stdout, path)
		return nil
	case "save":
		return c.save()
	}
	fmt.Fprint(c.stdout, c.config.String())
	return nil
}

func (c *configCmd) save() error {
	path := c.configPath
	if path == "" {
		path = config.NewLoader("").GetConfigPath()
	}
	if path == "" {
		dir := os.Getenv("XDG_CONFIG_HOME")
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get user home dir: %w", err)
			}
			dir = filepath.Join(home, ".config")
		}
		path = filepath.Join(dir, "stylusnotes", "config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(c.config.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	fmt.Fprintln(c.stdout, "saved", strings.TrimSpace(path))
	return nil
}
