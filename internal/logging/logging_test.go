package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "prod", "info").Info("product purged", "product_id", 7)

	assert.Contains(t, buf.String(), `"msg":"product purged"`)
	assert.Contains(t, buf.String(), `"product_id":7`)
}

func TestNewDevWritesText(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "dev", "warn")
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown k=v")
}
