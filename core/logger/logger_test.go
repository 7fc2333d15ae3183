package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/brokerage/core/logger"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json output with attrs", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithAttr(slog.String("service", "test")),
		)

		log.Info("hello", logger.Component("cookie"))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "hello", rec["msg"])
		assert.Equal(t, "test", rec["service"])
		assert.Equal(t, "cookie", rec["component"])
	})

	t.Run("level filters records", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))

		log.Info("skipped")
		assert.Empty(t, buf.String())

		log.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("development logs debug", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.New(logger.WithDevelopment("svc"), logger.WithOutput(&buf))

		log.Debug("details")
		assert.Contains(t, buf.String(), "details")
		assert.Contains(t, buf.String(), "service=svc")
	})

	t.Run("context values", func(t *testing.T) {
		t.Parallel()
		type ctxKey struct{}
		var buf bytes.Buffer
		log := logger.New(
			logger.WithJSONFormatter(),
			logger.WithOutput(&buf),
			logger.WithContextValue("request_id", ctxKey{}),
		)

		ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
		log.InfoContext(ctx, "with ctx")

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "req-1", rec["request_id"])
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("nonsense"))
}

func TestError(t *testing.T) {
	t.Parallel()
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	assert.True(t, logger.Error(nil).Equal(slog.Attr{}))
}

func TestErrors(t *testing.T) {
	t.Parallel()
	err1 := errors.New("first")
	err2 := errors.New("second")

	attr := logger.Errors(err1, nil, err2)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "0", g[0].Key)
	assert.Equal(t, "2", g[1].Key)

	assert.True(t, logger.Errors(nil, nil).Equal(slog.Attr{}))
}

func TestHeaders(t *testing.T) {
	t.Parallel()

	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer secret-token")
	h.Add("Accept", "text/plain")
	h.Add("Accept", "application/json")

	attr := logger.Headers(h)
	require.Equal(t, "headers", attr.Key)
	g := attr.Value.Group()
	require.Len(t, g, 3)

	got := map[string]string{}
	for _, a := range g {
		got[a.Key] = a.Value.String()
	}
	assert.Equal(t, logger.RedactedValue, got["Authorization"])
	assert.Equal(t, "application/json", got["Content-Type"])
	assert.Equal(t, "text/plain, application/json", got["Accept"])
	assert.Equal(t, "Accept", g[0].Key)

	assert.True(t, logger.Headers(nil).Equal(slog.Attr{}))
}

func TestEmptyHelpers(t *testing.T) {
	t.Parallel()
	assert.True(t, logger.URL("").Equal(slog.Attr{}))
	assert.True(t, logger.StatusCode(0).Equal(slog.Attr{}))
	assert.True(t, logger.Body(nil).Equal(slog.Attr{}))
	assert.True(t, logger.Key("k", nil).Equal(slog.Attr{}))
	assert.Equal(t, int64(404), logger.StatusCode(404).Value.Int64())
}
