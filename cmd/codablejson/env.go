package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/codablejson"
	"github.com/wippyai/codablejson/errors"
)

// environment is what setup derives from the flags.
type environment struct {
	logger  *zap.Logger
	coder   *codablejson.Coder
	colorOn bool
}

func (c *cli) setup() error {
	logger, err := newLogger(c.logLevel, isTerminal(c.stderr))
	if err != nil {
		return err
	}
	c.logger = logger

	coder, err := codablejson.New(codablejson.WithLogger(logger))
	if err != nil {
		return err
	}
	c.coder = coder

	c.colorOn, err = colorEnabled(c.color, c.stdout)
	if err != nil {
		return err
	}
	if c.color == "always" {
		lipgloss.SetColorProfile(termenv.ANSI256)
	}
	return nil
}

// newLogger builds a console logger for terminals and a JSON logger
// otherwise. Level "off" disables logging.
func newLogger(level string, tty bool) (*zap.Logger, error) {
	if level == "off" {
		return zap.NewNop(), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.InvalidInput(errors.PhaseCLI, fmt.Sprintf("log level %q", level))
	}

	cfg := zap.NewProductionConfig()
	if tty {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func colorEnabled(mode string, w io.Writer) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		return isTerminal(w), nil
	default:
		return false, errors.InvalidInput(errors.PhaseCLI, fmt.Sprintf("color mode %q", mode))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// highlightJSON colors JSON text for a 256-color terminal. It falls back
// to the plain text when highlighting fails.
func highlightJSON(text string) string {
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, text, "json", "terminal256", "monokai"); err != nil {
		return text
	}
	return buf.String()
}
