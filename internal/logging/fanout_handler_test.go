package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func jsonSink(level slog.Level) (*bytes.Buffer, slog.Handler) {
	var buf bytes.Buffer
	return &buf, slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})
}

func TestNewFanoutHandlerCollapses(t *testing.T) {
	_, only := jsonSink(slog.LevelInfo)

	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("all-nil fanout should collapse to NoopHandler")
	}
	if got := newFanoutHandler(nil, only, nil); got != only {
		t.Fatalf("single live handler should be returned as-is, got %T", got)
	}
}

func TestFanoutRoutesByLevel(t *testing.T) {
	stdoutBuf, stdout := jsonSink(slog.LevelInfo)
	debugBuf, debug := jsonSink(slog.LevelDebug)
	logger := slog.New(newFanoutHandler(stdout, debug))

	logger.Debug("scan watch_dir", String(FieldEventType, "dispatch_scan"))
	logger.Info("moved", String("category", "documents"))

	cases := []struct {
		name    string
		buf     *bytes.Buffer
		want    []string
		missing []string
	}{
		{"stdout", stdoutBuf, []string{`"msg":"moved"`, `"category":"documents"`}, []string{"dispatch_scan"}},
		{"debug", debugBuf, []string{`"msg":"moved"`, "dispatch_scan"}, nil},
	}
	for _, tc := range cases {
		out := tc.buf.String()
		for _, w := range tc.want {
			if !strings.Contains(out, w) {
				t.Errorf("%s: missing %s in %s", tc.name, w, out)
			}
		}
		for _, m := range tc.missing {
			if strings.Contains(out, m) {
				t.Errorf("%s: unexpected %s in %s", tc.name, m, out)
			}
		}
	}

	ctx := context.Background()
	h := newFanoutHandler(stdout, debug)
	if !h.Enabled(ctx, slog.LevelDebug) {
		t.Error("fanout should be enabled when any handler accepts the level")
	}
	_, warnOnly := jsonSink(slog.LevelWarn)
	_, errOnly := jsonSink(slog.LevelError)
	if newFanoutHandler(warnOnly, errOnly).Enabled(ctx, slog.LevelInfo) {
		t.Error("fanout should be disabled when no handler accepts the level")
	}
}

func TestFanoutDerivedHandlersPropagate(t *testing.T) {
	aBuf, a := jsonSink(slog.LevelInfo)
	bBuf, b := jsonSink(slog.LevelInfo)

	logger := slog.New(newFanoutHandler(a, b)).
		With(String(FieldDispatchID, "d-42")).
		WithGroup("item")
	logger.Info("skipped", String("reason", "symlink"))

	for name, buf := range map[string]*bytes.Buffer{"a": aBuf, "b": bBuf} {
		out := buf.String()
		if !strings.Contains(out, `"dispatch_id":"d-42"`) {
			t.Errorf("%s: dispatch id not carried: %s", name, out)
		}
		if !strings.Contains(out, `"item":{"reason":"symlink"}`) {
			t.Errorf("%s: group not applied: %s", name, out)
		}
	}
}

func TestTeeLogger(t *testing.T) {
	teeBuf, tee := jsonSink(slog.LevelDebug)

	TeeLogger(nil, tee).Info("tee only")
	if !strings.Contains(teeBuf.String(), "tee only") {
		t.Fatalf("nil base should still log to tee: %s", teeBuf.String())
	}

	var consoleBuf, diagBuf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&consoleBuf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	diag := NewSessionHandler(NewJSONHandler(&diagBuf, slog.LevelDebug), "sess-1")

	logger := TeeLogger(base, diag)
	logger.Debug("probe", String(FieldEventType, "probe"))
	logger.Info("visible")

	if strings.Contains(consoleBuf.String(), "probe") {
		t.Error("console should not receive debug records")
	}
	if !strings.Contains(consoleBuf.String(), "visible") {
		t.Error("console should receive info records")
	}
	if got := strings.Count(diagBuf.String(), `"session_id":"sess-1"`); got != 2 {
		t.Errorf("session_id on %d diagnostic records, want 2", got)
	}
}
