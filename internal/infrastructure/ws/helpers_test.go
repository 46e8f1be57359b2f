package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/tmarcken/hushroom/internal/infrastructure/logging"
	"github.com/tmarcken/hushroom/internal/infrastructure/metrics"
)

func newTestRegistry(t *testing.T, opts Options) *Registry {
	t.Helper()

	logger := logging.NewLogger(&logging.LoggerConfig{
		FilePath: t.TempDir(),
		Encoding: "console",
		Level:    "error",
		Logger:   "zap",
	})

	return NewRegistry(logger, metrics.New(), opts)
}

func admit(t *testing.T, reg *Registry, req AdmitRequest) *Client {
	t.Helper()

	client, err := reg.Admit(nil, req)
	if err != nil {
		t.Fatalf("admit to %q: %v", req.RoomName, err)
	}
	return client
}

// drainEvents empties a client's send queue without blocking and decodes
// each queued frame.
func drainEvents(t *testing.T, c *Client) []map[string]any {
	t.Helper()

	var events []map[string]any
	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				return events
			}
			var ev map[string]any
			if err := json.Unmarshal(payload, &ev); err != nil {
				t.Fatalf("decode queued event: %v", err)
			}
			events = append(events, ev)
		default:
			return events
		}
	}
}

func eventTypes(events []map[string]any) []string {
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev["type"].(string))
	}
	return types
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}
