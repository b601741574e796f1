package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := ConfigError("invalid configuration").
			WithContext("file", "futurelink.yaml").
			Build()

		require.Equal(t, CategoryConfig, err.Category())
		require.Equal(t, SeverityFatal, err.Severity())
		require.Equal(t, "invalid configuration", err.Message())
		require.True(t, err.IsFatal())
		require.False(t, err.CanRetry())

		file, ok := err.Context().GetString("file")
		require.True(t, ok)
		require.Equal(t, "futurelink.yaml", file)
	})

	t.Run("Wrapping keeps the cause reachable", func(t *testing.T) {
		cause := stderrors.New("permission denied")
		err := WrapError(cause, CategoryFileSystem, "write output").Retryable().Build()

		require.ErrorIs(t, err, cause)
		require.True(t, err.CanRetry())
		require.Contains(t, err.Error(), "[filesystem:error] write output: permission denied")
	})

	t.Run("Detection through fmt wrapping", func(t *testing.T) {
		inner := RenderError("markdown conversion failed").Build()
		wrapped := fmt.Errorf("publishing post.md: %w", inner)

		c, ok := AsClassified(wrapped)
		require.True(t, ok)
		require.Same(t, inner, c)
		require.True(t, HasCategory(wrapped, CategoryRender))
		require.Equal(t, CategoryRender, GetCategory(wrapped))
		require.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
	})

	t.Run("Is compares category and message", func(t *testing.T) {
		a := NotFoundError("no such page").WithContext("path", "/a").Build()
		b := NotFoundError("no such page").Build()
		require.ErrorIs(t, a, b)
		require.NotErrorIs(t, a, ValidationError("no such page").Build())
	})
}

func TestErrorContextMerge(t *testing.T) {
	var nilCtx ErrorContext
	other := ErrorContext{"a": 1}
	assert.Equal(t, other, nilCtx.Merge(other))

	merged := ErrorContext{"a": 1, "b": 2}.Merge(ErrorContext{"b": 3})
	assert.Equal(t, ErrorContext{"a": 1, "b": 3}, merged)
}

func TestCLIErrorAdapter(t *testing.T) {
	var out bytes.Buffer
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	a.out = &out

	tests := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{stderrors.New("plain"), 1},
		{ValidationError("bad flag").Build(), 2},
		{NotFoundError("missing").Build(), 3},
		{ConfigError("bad config").Build(), 7},
		{InternalError("boom").Build(), 10},
		{FileSystemError("disk").Build(), 11},
		{RenderError("render").Build(), 11},
		{RuntimeError("scheduler").Build(), 12},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, a.ExitCodeFor(tt.err), "%v", tt.err)
	}

	require.Equal(t, 7, a.Handle(ConfigError("bad config").Build()))
	require.Contains(t, out.String(), "bad config")

	require.Equal(t, "Internal error occurred (use -v for details)", a.FormatError(InternalError("boom").Build()))
	a.verbose = true
	require.Contains(t, a.FormatError(InternalError("boom").Build()), "boom")
}

func TestHTTPErrorAdapter(t *testing.T) {
	a := NewHTTPErrorAdapter(slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, http.StatusOK, a.StatusCodeFor(nil))
	assert.Equal(t, http.StatusNotFound, a.StatusCodeFor(NotFoundError("x").Build()))
	assert.Equal(t, http.StatusBadRequest, a.StatusCodeFor(ValidationError("x").Build()))
	assert.Equal(t, http.StatusUnprocessableEntity, a.StatusCodeFor(RenderError("x").Build()))
	assert.Equal(t, http.StatusInternalServerError, a.StatusCodeFor(stderrors.New("x")))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/missing.html", nil)
	a.WriteErrorResponse(rec, req, NotFoundError("page not found").WithContext("path", "missing.html").Build())

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "page not found", body.Error)
	require.Equal(t, "not_found", body.Code)
	require.Equal(t, "missing.html", body.Details["path"])
}
