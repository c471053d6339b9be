package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

type captureHandler struct {
	level   slog.Level
	records []slog.Record
	err     error
}

func (h *captureHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }
func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return h.err
}
func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func record(level slog.Level) slog.Record {
	return slog.NewRecord(time.Now(), level, "msg", 0)
}

func TestMultiHandlerFansOutByLevel(t *testing.T) {
	info := &captureHandler{level: slog.LevelInfo}
	errOnly := &captureHandler{level: slog.LevelError}
	m := NewMultiHandler(info, errOnly)

	if err := m.Handle(context.Background(), record(slog.LevelInfo)); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if len(info.records) != 1 {
		t.Fatalf("info handler got %d records, want 1", len(info.records))
	}
	if len(errOnly.records) != 0 {
		t.Fatal("error-level handler received an info record")
	}

	if err := m.Handle(context.Background(), record(slog.LevelError)); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if len(errOnly.records) != 1 {
		t.Fatalf("error handler got %d records, want 1", len(errOnly.records))
	}
}

func TestMultiHandlerBrokenSinkDoesNotSilenceOthers(t *testing.T) {
	boom := errors.New("sink down")
	broken := &captureHandler{level: slog.LevelInfo, err: boom}
	healthy := &captureHandler{level: slog.LevelInfo}
	m := NewMultiHandler(broken, healthy)

	err := m.Handle(context.Background(), record(slog.LevelInfo))
	if !errors.Is(err, boom) {
		t.Fatalf("expected the sink error, got %v", err)
	}
	if len(healthy.records) != 1 {
		t.Fatal("healthy handler skipped after a failing one")
	}
}

func TestMultiHandlerEnabled(t *testing.T) {
	m := NewMultiHandler(&captureHandler{level: slog.LevelError})
	if m.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("enabled at info with only an error-level handler")
	}
	if !m.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("not enabled at error")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
