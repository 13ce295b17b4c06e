package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"stylusnotes/internal/config"
)

type runnable interface{ Run() error }

// root holds the global flags shared by every subcommand.
type root struct {
	fs     *flag.FlagSet
	stdout io.Writer
	config *config.Config

	configPath string
	dataDir    string
	dbDriver   string
	dbDSN      string
	debug      bool
	night      bool
}

// UsageError reports a malformed command line along with its usage text.
type UsageError struct {
	fs  *flag.FlagSet
	msg string
}

func (e *UsageError) Error() string {
	if e.msg != "" {
		return fmt.Sprintf("%s: %s", e.fs.Name(), e.msg)
	}
	return fmt.Sprintf("usage error in %s", e.fs.Name())
}

func newRoot(stdout io.Writer) *root {
	r := &root{
		fs:     flag.NewFlagSet("stylusnotes", flag.ContinueOnError),
		stdout: stdout,
	}
	r.fs.StringVar(&r.configPath, "config", "", "path to the config file")
	r.fs.StringVar(&r.dataDir, "data-dir", "", "directory holding the database and note images")
	r.fs.StringVar(&r.dbDriver, "db-driver", "", "note store: sqlite, postgres, mysql or mongodb")
	r.fs.StringVar(&r.dbDSN, "db-dsn", "", "database DSN or sqlite file path")
	r.fs.BoolVar(&r.debug, "debug", false, "log events and renderer diagnostics")
	r.fs.BoolVar(&r.night, "night", false, "start new canvases in night mode")
	r.fs.Usage = func() {
		fmt.Fprintln(r.fs.Output(), "usage: stylusnotes [flags] <mcp|list|export|sweep|config> [args]")
		r.fs.PrintDefaults()
	}
	return r
}

// loadConfig applies precedence: flags > env > file > defaults.
func (r *root) loadConfig() error {
	cfg, err := config.NewLoader(r.configPath).Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	overrides := []struct {
		set          bool
		section, key string
		value        string
	}{
		{r.dataDir != "", "", "data_dir", r.dataDir},
		{r.dbDriver != "", "database", "driver", r.dbDriver},
		{r.dbDSN != "", "database", "dsn", r.dbDSN},
		{r.debug, "", "debug", "true"},
		{r.night, "canvas", "night_mode", "true"},
	}
	for _, o := range overrides {
		if !o.set {
			continue
		}
		if err := cfg.Set(o.section, o.key, o.value); err != nil {
			return err
		}
	}
	r.config = cfg
	return nil
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if err := r.loadConfig(); err != nil {
		return err
	}

	cmdName := "mcp"
	var subArgs []string
	if r.fs.NArg() > 0 {
		cmdName = r.fs.Arg(0)
		subArgs = r.fs.Args()[1:]
	}

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "mcp":
		cmd = &mcpCmd{root: r}
	case "list":
		cmd, err = parseListCmd(subArgs, r)
	case "export":
		cmd, err = parseExportCmd(subArgs, r)
	case "sweep":
		cmd = &sweepCmd{root: r}
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	default:
		err = &UsageError{fs: r.fs, msg: fmt.Sprintf("unknown command %q", cmdName)}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	// stdout carries the MCP protocol; logs go to stderr
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)

	r := newRoot(os.Stdout)
	if err := r.Run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			uerr.fs.Usage()
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
