package errors

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"validation", ValidationError("bad flag").Build(), ExitUsage},
		{"config", ConfigError("bad config").Build(), ExitConfig},
		{"plugin", NewError(CategoryPlugin, "unknown plugin").Fatal().Build(), ExitConfig},
		{"nats", NewError(CategoryNetwork, "no server").Build(), ExitExternal},
		{"filesystem", NewError(CategoryFileSystem, "write failed").Fatal().Build(), ExitBuild},
		{"layout", fmt.Errorf("build: %w", NewError(CategoryRender, "cycle").Build()), ExitBuild},
		{"watch", NewError(CategoryWatch, "watcher died").Build(), ExitRuntime},
		{"internal", NewError(CategoryInternal, "bug").Build(), ExitInternal},
		{"unclassified", errors.New("unknown"), ExitUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out, logs bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(NewError(CategoryFileSystem, "cannot create directory").
		Fatal().WithPath("_site/a").WithPhase("copy_static").Build())

	require.Equal(t, ExitBuild, code)
	require.Contains(t, out.String(), "cannot create directory")
	require.Contains(t, logs.String(), "phase=copy_static")
	require.Contains(t, logs.String(), "path=_site/a")

	code = -1
	adapter.HandleError(nil)
	require.Equal(t, -1, code)
}

func TestCLIErrorAdapter_QuietWarningsAreNotLogged(t *testing.T) {
	var out, logs bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	adapter.out = &out
	adapter.exit = func(int) {}

	adapter.HandleError(HistoryError("history unavailable").Build())
	require.Empty(t, logs.String())
	require.Contains(t, out.String(), "history unavailable")
}

func TestCLIErrorAdapter_FormatInternal(t *testing.T) {
	bug := NewError(CategoryInternal, "x").Fatal().Build()

	quiet := NewCLIErrorAdapter(false, nil)
	require.Equal(t, "Internal error occurred (use -v for details)", quiet.FormatError(bug))

	verbose := NewCLIErrorAdapter(true, nil)
	require.Contains(t, verbose.FormatError(bug), "[internal:fatal] x")
	require.Equal(t, "Error: plain", verbose.FormatError(errors.New("plain")))
}
