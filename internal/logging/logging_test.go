package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_DefaultsWhenMissing(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}

func TestIntoContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info")

	ctx := IntoContext(context.Background(), l.With("request_id", "r-1"))
	FromContext(ctx).Info("login_success", "status", 200)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "login_success", line["msg"])
	assert.Equal(t, "r-1", line["request_id"])
	assert.EqualValues(t, 200, line["status"])
}

func TestNewWithWriter_Level(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")

	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
