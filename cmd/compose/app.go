package main

import (
	"io"
	"strings"

	"github.com/kingrea/promptlayers/internal/config"
	"github.com/kingrea/promptlayers/internal/logging"
	"github.com/kingrea/promptlayers/internal/render"
	"github.com/kingrea/promptlayers/internal/workspace"
)

// app carries the streams and global flags shared by every subcommand.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	root       string
	configPath string
	verbose    bool

	logger *logging.Logger
	ws     *workspace.Workspace
}

// workspace opens the document root once per invocation. Logging is set up
// here because the log file comes from the config.
func (a *app) workspace() (*workspace.Workspace, error) {
	if a.ws != nil {
		return a.ws, nil
	}
	cfg, err := config.Load(a.root, a.configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		Verbose: a.verbose,
		File:    cfg.LogFilePath(),
		Stderr:  a.stderr,
	})
	if err != nil {
		return nil, err
	}
	a.logger = logger
	ws, err := workspace.New(cfg, logger.Logger)
	if err != nil {
		return nil, err
	}
	a.ws = ws
	return ws, nil
}

func (a *app) printer() *render.Printer {
	return render.NewPrinter(a.stderr)
}

func (a *app) close() {
	_ = a.logger.Close()
}

var separatorEscapes = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\t`, "\t", `\r`, "\r")

// unescapeSeparator interprets backslash escapes so a shell argument like
// "\n\n" means two newlines.
func unescapeSeparator(s string) string {
	return separatorEscapes.Replace(s)
}
