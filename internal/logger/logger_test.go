package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json", Level: slog.LevelInfo})

	log.Info("event added", "id", 7)

	assert.Contains(t, buf.String(), `"msg":"event added"`)
	assert.Contains(t, buf.String(), `"id":7`)
	assert.Contains(t, buf.String(), `"level":"INFO"`)
}

func TestNew_FormatAutoDetection(t *testing.T) {
	tests := []struct {
		environment string
		wantJSON    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Writer: &buf, Environment: tt.environment})
			log.Info("hello")

			if tt.wantJSON {
				assert.Contains(t, buf.String(), `"msg":"hello"`)
			} else {
				assert.Contains(t, buf.String(), "INF")
				assert.NotContains(t, buf.String(), `"msg"`)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), "input %q", input)
	}
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))

	slog.New(h).Info("hidden")
	assert.Empty(t, buf.String())
}

func TestPrettyHandler_AttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewPrettyHandler(&buf, nil)).
		With("component", "store").
		WithGroup("req").
		With("method", "POST")

	log.Info("saved", "path", "/events")

	out := buf.String()
	assert.Contains(t, out, "component=store")
	assert.Contains(t, out, "req.method=POST")
	assert.Contains(t, out, "req.path=/events")
	assert.Contains(t, out, "saved")
}

func TestPrettyHandler_QuotesSpacedStrings(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Info("added", "name", "Live Jazz Night")

	assert.Contains(t, buf.String(), `name="Live Jazz Night"`)
}

func TestFormatLevel(t *testing.T) {
	str, color := formatLevel(slog.LevelError)
	assert.Equal(t, "ERR", str)
	assert.Equal(t, colorRed, color)

	str, _ = formatLevel(slog.LevelDebug)
	assert.Equal(t, "DBG", str)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "1.5s", formatValue(slog.DurationValue(1500*time.Millisecond)))
	assert.Equal(t, "42", formatValue(slog.Int64Value(42)))
	assert.Equal(t, "plain", formatValue(slog.StringValue("plain")))
}

func TestLogger_Helpers(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Writer: &buf, Format: "json"})

	log.WithError(errors.New("disk full")).WithField("key", "events").Warn("write failed")
	log.Component("watcher").Info("started")

	out := buf.String()
	assert.Contains(t, out, `"error":"disk full"`)
	assert.Contains(t, out, `"key":"events"`)
	assert.Contains(t, out, `"component":"watcher"`)
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.NotNil(t, log.Logger)
	log.Info("nothing to see")
}
