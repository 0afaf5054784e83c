package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	cause := errors.New("too many open files")
	err := WrapError(cause, CategoryFileSystem, "open failed").
		Retryable().
		WithPath("_posts/a.md").
		WithPhase("render_posts").
		WithContext("attempts", 3).
		Build()

	require.Equal(t, CategoryFileSystem, err.Category())
	require.Equal(t, SeverityError, err.Severity())
	require.Equal(t, "open failed", err.Message())
	require.Equal(t, "_posts/a.md", err.Path())
	require.Equal(t, "render_posts", err.Phase())
	require.Equal(t, 3, err.Context()["attempts"])
	require.True(t, err.CanRetry())
	require.False(t, err.IsFatal())
	require.ErrorIs(t, err, cause)
	require.Equal(t, "[filesystem:error] open failed (_posts/a.md): too many open files", err.Error())
}

func TestBuilder_Reuse(t *testing.T) {
	b := NewError(CategoryParse, "bad front matter")
	first := b.WithPath("a.md").Build()
	second := b.WithPath("b.md").Build()
	require.Equal(t, "a.md", first.Path())
	require.Equal(t, "b.md", second.Path())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *ClassifiedError
		category ErrorCategory
		severity ErrorSeverity
	}{
		{"config", ConfigError("x").Build(), CategoryConfig, SeverityFatal},
		{"config warning", ConfigWarning("x").Build(), CategoryConfig, SeverityWarning},
		{"validation", ValidationError("x").Build(), CategoryValidation, SeverityFatal},
		{"history", HistoryError("x").Build(), CategoryHistory, SeverityWarning},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.category, tt.err.Category())
			require.Equal(t, tt.severity, tt.err.Severity())
			require.False(t, tt.err.CanRetry())
		})
	}
}

func TestChainHelpers(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", NewError(CategoryPlugin, "plugin not found").Fatal().Build())
	require.True(t, HasCategory(wrapped, CategoryPlugin))
	require.False(t, HasCategory(wrapped, CategoryConfig))
	require.True(t, IsFatal(wrapped))
	require.Equal(t, SeverityFatal, SeverityOf(wrapped))

	plain := errors.New("boom")
	require.False(t, IsFatal(plain))
	require.False(t, HasCategory(plain, CategoryInternal))
	require.Equal(t, SeverityError, SeverityOf(plain))
}

func TestSentinelMatching(t *testing.T) {
	sentinel := HistoryError("failed to append build event").Build()
	err := WrapError(errors.New("disk full"), CategoryHistory, "failed to append build event").Build()
	require.ErrorIs(t, err, sentinel)
	require.NotErrorIs(t, NewError(CategoryHistory, "other").Build(), sentinel)
}

func TestWithContextDoesNotMutateOriginal(t *testing.T) {
	original := NewError(CategoryParse, "bad front matter").WithPath("a.md").Build()
	derived := original.WithContext(ContextPhase, "render_posts")

	require.Empty(t, original.Phase())
	require.Equal(t, "render_posts", derived.Phase())
	require.Equal(t, "a.md", derived.Path())
	require.ErrorIs(t, derived, original)
}
