package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Process exit codes by error category.
const (
	ExitOK       = 0
	ExitUnknown  = 1
	ExitUsage    = 2
	ExitConfig   = 7
	ExitExternal = 8
	ExitInternal = 10
	ExitBuild    = 11
	ExitRuntime  = 12
)

// CLIErrorAdapter prints a command's error and exits with a code chosen by its category.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
	exit    func(int)
}

// NewCLIErrorAdapter creates an adapter writing to stderr. A nil logger uses slog.Default.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger, out: os.Stderr, exit: os.Exit}
}

// ExitCodeFor maps err to a process exit code.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	ce, ok := AsClassified(err)
	if !ok {
		return ExitUnknown
	}
	switch ce.Category() {
	case CategoryValidation:
		return ExitUsage
	case CategoryConfig, CategoryPlugin:
		return ExitConfig
	case CategoryNetwork:
		return ExitExternal
	case CategoryFileSystem, CategoryParse, CategoryRender, CategoryFeed:
		return ExitBuild
	case CategoryWatch, CategoryHistory:
		return ExitRuntime
	case CategoryInternal:
		return ExitInternal
	default:
		return ExitUnknown
	}
}

// FormatError renders err for the terminal. Internal errors are only
// spelled out in verbose mode.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	ce, ok := AsClassified(err)
	if ok && ce.Category() == CategoryInternal && !a.verbose {
		return "Internal error occurred (use -v for details)"
	}
	return fmt.Sprintf("Error: %v", err)
}

// HandleError logs and prints err, then exits. A nil err is a no-op.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	if ce, ok := AsClassified(err); ok {
		if a.verbose || ce.IsFatal() {
			a.log(ce)
		}
	} else {
		a.logger.Error("command failed", "error", err)
	}
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	a.exit(a.ExitCodeFor(err))
}

func (a *CLIErrorAdapter) log(ce *ClassifiedError) {
	attrs := []slog.Attr{slog.String("category", string(ce.Category()))}
	if p := ce.Path(); p != "" {
		attrs = append(attrs, slog.String(ContextPath, p))
	}
	if p := ce.Phase(); p != "" {
		attrs = append(attrs, slog.String(ContextPhase, p))
	}
	if ce.CanRetry() {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	level := slog.LevelError
	if ce.Severity() == SeverityWarning {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, ce.Message(), attrs...)
}
