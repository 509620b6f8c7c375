package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"

	"github.com/ethereum/go-ethereum/log"

	opservice "github.com/mantlenetworkio/testnet-faucet/op-service"
)

const (
	LevelFlagName  = "log.level"
	FormatFlagName = "log.format"
	ColorFlagName  = "log.color"
)

// CLIFlags creates the flag definitions for the logging utils.
// Warning: flags are not safe to reuse between different urfave/cli App instances.
func CLIFlags(envPrefix string) []cli.Flag {
	return CLIFlagsWithCategory(envPrefix, "")
}

func CLIFlagsWithCategory(envPrefix string, category string) []cli.Flag {
	return []cli.Flag{
		&cli.GenericFlag{
			Name:     LevelFlagName,
			Usage:    "The lowest log level that will be output",
			Value:    NewLevelFlagValue(log.LevelInfo),
			EnvVars:  opservice.PrefixEnvVar(envPrefix, "LOG_LEVEL"),
			Category: category,
		},
		&cli.GenericFlag{
			Name:     FormatFlagName,
			Usage:    "Format the log output. Supported formats: 'text', 'terminal', 'logfmt', 'json'",
			Value:    NewFormatFlagValue(FormatText),
			EnvVars:  opservice.PrefixEnvVar(envPrefix, "LOG_FORMAT"),
			Category: category,
		},
		&cli.BoolFlag{
			Name:     ColorFlagName,
			Usage:    "Color the log output if in terminal mode",
			EnvVars:  opservice.PrefixEnvVar(envPrefix, "LOG_COLOR"),
			Category: category,
		},
	}
}

// LevelFlagValue is a value type for cli.GenericFlag
type LevelFlagValue slog.Level

var _ cli.Generic = (*LevelFlagValue)(nil)

func NewLevelFlagValue(lvl slog.Level) *LevelFlagValue {
	return (*LevelFlagValue)(&lvl)
}

func (fv *LevelFlagValue) Set(value string) error {
	lvl, err := LevelFromString(value)
	if err != nil {
		return err
	}
	*fv = LevelFlagValue(lvl)
	return nil
}

func (fv LevelFlagValue) String() string {
	return strings.ToLower(log.LevelString(slog.Level(fv)))
}

func (fv LevelFlagValue) Level() slog.Level {
	return slog.Level(fv)
}

func (fv *LevelFlagValue) Clone() any {
	cpy := *fv
	return &cpy
}

// LevelFromString parses a level name, accepting the geth names and the common aliases.
func LevelFromString(lvlString string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(lvlString)) {
	case "trace", "trce":
		return log.LevelTrace, nil
	case "debug", "dbug":
		return log.LevelDebug, nil
	case "info":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error", "eror":
		return log.LevelError, nil
	case "crit", "critical":
		return log.LevelCrit, nil
	default:
		return log.LevelDebug, fmt.Errorf("unknown level: %v", lvlString)
	}
}

// FormatType defines a type of log format.
// Supported formats: 'text', 'terminal', 'logfmt', 'json'
type FormatType string

const (
	FormatText     FormatType = "text"
	FormatTerminal FormatType = "terminal"
	FormatLogFmt   FormatType = "logfmt"
	FormatJSON     FormatType = "json"
)

// FormatHandler returns the correct slog handler factory for the provided format and minimum level.
func FormatHandler(ft FormatType, color bool, level slog.Level) func(io.Writer) slog.Handler {
	termHandler := func(w io.Writer) slog.Handler {
		return log.NewTerminalHandlerWithLevel(w, level, color)
	}
	logfmtHandler := func(w io.Writer) slog.Handler {
		return LogfmtMsHandlerWithLevel(w, level)
	}
	switch ft {
	case FormatJSON:
		return func(w io.Writer) slog.Handler {
			return JSONMsHandlerWithLevel(w, level)
		}
	case FormatText:
		if color {
			return termHandler
		}
		return logfmtHandler
	case FormatTerminal:
		return termHandler
	case FormatLogFmt:
		return logfmtHandler
	default:
		panic(fmt.Errorf("failed to create slog.Handler factory for format-type=%q and color=%v", ft, color))
	}
}

func (ft FormatType) String() string {
	return string(ft)
}

// FormatFlagValue is a value type for cli.GenericFlag
type FormatFlagValue FormatType

var _ cli.Generic = (*FormatFlagValue)(nil)

func NewFormatFlagValue(fmtType FormatType) *FormatFlagValue {
	return (*FormatFlagValue)(&fmtType)
}

func (fv *FormatFlagValue) Set(value string) error {
	switch FormatType(value) {
	case FormatText, FormatTerminal, FormatLogFmt, FormatJSON:
		*fv = FormatFlagValue(value)
		return nil
	default:
		return fmt.Errorf("unrecognized log-format: %q", value)
	}
}

func (fv FormatFlagValue) String() string {
	return FormatType(fv).String()
}

func (fv FormatFlagValue) FormatType() FormatType {
	return FormatType(fv)
}

func (fv *FormatFlagValue) Clone() any {
	cpy := *fv
	return &cpy
}

type CLIConfig struct {
	Level  slog.Level
	Color  bool
	Format FormatType
}

// AppOut returns an io.Writer to write app output to, like logs.
// This falls back to os.Stdout if the ctx, ctx.App or ctx.App.Writer are nil.
func AppOut(ctx *cli.Context) io.Writer {
	if ctx == nil || ctx.App == nil || ctx.App.Writer == nil {
		return os.Stdout
	}
	return ctx.App.Writer
}

// NewLogHandler creates a new configured handler.
func NewLogHandler(wr io.Writer, cfg CLIConfig) slog.Handler {
	return FormatHandler(cfg.Format, cfg.Color, cfg.Level)(wr)
}

// NewLogger creates a new configured logger.
func NewLogger(wr io.Writer, cfg CLIConfig) log.Logger {
	return log.NewLogger(NewLogHandler(wr, cfg))
}

// SetGlobalLogHandler sets the log handles as the handler of the global default logger.
func SetGlobalLogHandler(h slog.Handler) {
	log.SetDefault(log.NewLogger(h))
}

// DefaultCLIConfig creates a default log configuration.
// Color defaults to true if terminal is detected.
func DefaultCLIConfig() CLIConfig {
	return CLIConfig{
		Level:  log.LevelInfo,
		Format: FormatText,
		Color:  isatty.IsTerminal(os.Stdout.Fd()),
	}
}

// ReadCLIConfig reads the logging configuration from the CLI flags.
func ReadCLIConfig(ctx *cli.Context) CLIConfig {
	cfg := DefaultCLIConfig()
	if v, ok := ctx.Generic(LevelFlagName).(*LevelFlagValue); ok {
		cfg.Level = v.Level()
	}
	if v, ok := ctx.Generic(FormatFlagName).(*FormatFlagValue); ok {
		cfg.Format = v.FormatType()
	}
	if ctx.IsSet(ColorFlagName) {
		cfg.Color = ctx.Bool(ColorFlagName)
	}
	return cfg
}

// SetupDefaults installs a sane terminal logger as the global logger,
// so log calls made before the CLI flags are parsed still go somewhere readable.
func SetupDefaults() {
	SetGlobalLogHandler(log.NewTerminalHandlerWithLevel(os.Stdout, log.LevelInfo, isatty.IsTerminal(os.Stdout.Fd())))
}
