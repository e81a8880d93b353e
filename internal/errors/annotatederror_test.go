package errors

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func sourceOf(t *testing.T, group []slog.Attr) string {
	t.Helper()
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	require.NotEqual(t, -1, sourceIdx, "source attribute missing")
	return group[sourceIdx].Value.String()
}

func TestAnnotatedError(t *testing.T) {
	err := New("test error", slog.String("id", "123"))
	require.Equal(t, "test error", err.Error())

	// Assert that wrapping sentinel errors work as expected.
	sentinel := NewSentinel("test error")
	require.NotErrorIs(t, err, NewSentinel("test error"))
	wrapped := err.Wrap(sentinel)
	require.ErrorIs(t, wrapped, sentinel)

	// Ensure log values are coming through.
	group := err.LogValue().Group()
	require.Contains(t, group, slog.String("id", "123"))
	require.Contains(t, sourceOf(t, group), "annotatederror_test.go")
}

func TestWrap(t *testing.T) {
	sentinel := NewSentinel("not found")
	err := Wrap(sentinel, "session not found", slog.Int64("session_id", 7))

	require.ErrorIs(t, err, sentinel)
	require.Equal(t, "session not found: not found", err.Error())

	var annotated AnnotatedError
	require.True(t, As(err, &annotated))
	group := annotated.LogValue().Group()
	require.Contains(t, group, slog.Int64("session_id", 7))
	require.Contains(t, sourceOf(t, group), "annotatederror_test.go")
}

func TestSlogError(t *testing.T) {
	plain := SlogError(NewSentinel("boom"))
	require.Equal(t, "error", plain.Key)
	require.Equal(t, "boom", plain.Value.String())

	annotated := SlogError(Wrap(NewSentinel("boom"), "outer"))
	require.Equal(t, slog.KindGroup, annotated.Value.Kind())
	require.Contains(t, annotated.Value.Group(), slog.String("message", "outer: boom"))
}
