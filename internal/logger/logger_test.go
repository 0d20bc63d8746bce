package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

// Feature: storefront, Property: production logs are structured JSON
func TestProperty_ProductionLogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every production entry is JSON with level, timestamp, message and service", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer
			logger := NewWithWriter("production", &buf)

			switch level {
			case "warn":
				logger.Warn(message)
			case "error":
				logger.Error(message)
			default:
				logger.Info(message)
			}
			logger.Sync()

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Logf("FAIL: entry is not JSON: %v", err)
				return false
			}

			for _, key := range []string{"level", "timestamp", "message", "service"} {
				if _, ok := entry[key]; !ok {
					t.Logf("FAIL: entry missing %s", key)
					return false
				}
			}

			return entry["message"] == message && entry["service"] == ServiceName
		},
		gen.AlphaString(),
		gen.OneConstOf("info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductionSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", &buf)

	logger.Debug("hidden")
	logger.Sync()

	if buf.Len() != 0 {
		t.Fatalf("expected no output for debug in production, got %q", buf.String())
	}
}

func TestWithSessionAddsField(t *testing.T) {
	var buf bytes.Buffer
	logger := WithSession(NewWithWriter("production", &buf), "sess-1")

	logger.Info("cart loaded", zap.Int("items", 2))
	logger.Sync()

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("entry is not JSON: %v", err)
	}
	if entry["session_id"] != "sess-1" {
		t.Fatalf("expected session_id field, got %v", entry["session_id"])
	}
	if entry["items"] != float64(2) {
		t.Fatalf("expected items field, got %v", entry["items"])
	}
}

func TestNewBuildsBothEnvironments(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := New(env)
		if err != nil {
			t.Fatalf("Failed to create %s logger: %v", env, err)
		}
		if logger == nil {
			t.Fatalf("%s logger should not be nil", env)
		}
	}
}
