package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNewLogger_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("expected default level to be info, got %s", cfg.Level)
	}
	if cfg.Component != "cli" {
		t.Errorf("expected default component to be 'cli', got %s", cfg.Component)
	}
	if cfg.JSONFormat {
		t.Error("expected default JSONFormat to be false")
	}
}

func TestNewLogger_NilConfig(t *testing.T) {
	log := NewLogger(nil)
	if log == nil {
		t.Error("expected non-nil logger with nil config")
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := &Config{
		Level:      LevelDebug,
		Component:  "test",
		JSONFormat: true,
		Output:     buf,
	}

	log := NewLogger(cfg)
	log.Info("test message", F("key", "value"))

	// Parse the JSON output
	var output map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if output["message"] != "test message" {
		t.Errorf("expected message 'test message', got %v", output["message"])
	}
	if output["component"] != "test" {
		t.Errorf("expected component 'test', got %v", output["component"])
	}
	if output["key"] != "value" {
		t.Errorf("expected key 'value', got %v", output["key"])
	}
	if _, ok := output["time"]; !ok {
		t.Error("expected timestamp field 'time' in output")
	}
	if output["level"] != "info" {
		t.Errorf("expected level 'info', got %v", output["level"])
	}
}

func TestLogger_AllLevels(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func(Logger)
		expected string
	}{
		{"debug", func(l Logger) { l.Debug("debug message") }, "debug"},
		{"info", func(l Logger) { l.Info("info message") }, "info"},
		{"warn", func(l Logger) { l.Warn("warn message") }, "warn"},
		{"error", func(l Logger) { l.Error("error message") }, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := NewLogger(&Config{
				Level:      LevelDebug,
				Component:  "test",
				JSONFormat: true,
				Output:     buf,
			})

			tt.logFunc(log)

			var output map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
				t.Fatalf("failed to parse JSON output: %v", err)
			}
			if output["level"] != tt.expected {
				t.Errorf("expected level %q, got %v", tt.expected, output["level"])
			}
		})
	}
}

func TestLogger_ErrField(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{
		Level:      LevelDebug,
		Component:  "test",
		JSONFormat: true,
		Output:     buf,
	})

	log.Error("fetch failed", Err(errors.New("boom")))

	if !strings.Contains(buf.String(), "boom") {
		t.Errorf("expected error message in output, got %s", buf.String())
	}
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{
		Level:      LevelDebug,
		Component:  "test",
		JSONFormat: true,
		Output:     buf,
	})

	child := log.With(F("meeting", "120"))
	child.Info("scoped")

	var output map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if output["meeting"] != "120" {
		t.Errorf("expected meeting '120', got %v", output["meeting"])
	}
}

func TestLogger_WithContext(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{
		Level:      LevelDebug,
		Component:  "test",
		JSONFormat: true,
		Output:     buf,
	})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	ctx = context.WithValue(ctx, MeetingKey, "121")
	log.WithContext(ctx).Info("with context")

	var output map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if output["request_id"] != "req-42" {
		t.Errorf("expected request_id 'req-42', got %v", output["request_id"])
	}
	if output["meeting"] != "121" {
		t.Errorf("expected meeting '121', got %v", output["meeting"])
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()

	// None of these should panic or emit output.
	log.Debug("nope")
	log.Info("nope")
	log.Warn("nope")
	log.Error("nope", Err(errors.New("ignored")))
	log.With(F("k", "v")).Info("still nothing")
	log.WithContext(context.Background()).Info("still nothing")
}
