package observability

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type recordingHandler struct {
	enabled     bool
	handleErr   error
	lastRecord  slog.Record
	handled     int
	groupPrefix string
	attrs       []slog.Attr
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return h.enabled }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.handled++
	h.lastRecord = r
	return h.handleErr
}

func (h *recordingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &next
}

func (h *recordingHandler) WithGroup(name string) slog.Handler {
	next := *h
	next.groupPrefix = name
	return &next
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"info":  slog.LevelInfo,
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Fatalf("parseLogLevel(%q)=%v want=%v", in, got, want)
		}
	}
}

func TestMultiHandlerFansOutToAllChildren(t *testing.T) {
	quiet := &recordingHandler{enabled: false}
	verbose := &recordingHandler{enabled: true}
	mh := &multiHandler{handlers: []slog.Handler{quiet, verbose}}

	if !mh.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected enabled when one child is enabled")
	}

	rec := slog.NewRecord(fixedLogTime(), slog.LevelInfo, "fund created", 0)
	if err := mh.Handle(context.Background(), rec); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if quiet.handled != 1 || verbose.handled != 1 {
		t.Fatalf("expected both handlers invoked, got quiet=%d verbose=%d", quiet.handled, verbose.handled)
	}
}

func TestTraceContextHandlerAddsTraceFields(t *testing.T) {
	inner := &recordingHandler{enabled: true}
	h := &traceContextHandler{next: inner}

	rec := slog.NewRecord(fixedLogTime(), slog.LevelInfo, "investment recorded", 0)
	if err := h.Handle(context.Background(), rec); err != nil {
		t.Fatalf("handle no span: %v", err)
	}
	attrs := recordAttrs(inner.lastRecord)
	if attrs["trace_id"] != "" || attrs["span_id"] != "" {
		t.Fatalf("expected empty trace attrs, got trace_id=%q span_id=%q", attrs["trace_id"], attrs["span_id"])
	}

	traceID, _ := trace.TraceIDFromHex("7f000001a1b2c3d4e5f60718293a4b5c")
	spanID, _ := trace.SpanIDFromHex("a1b2c3d4e5f60718")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	rec2 := slog.NewRecord(fixedLogTime(), slog.LevelInfo, "idempotent replay served", 0)
	if err := h.Handle(ctx, rec2); err != nil {
		t.Fatalf("handle with span: %v", err)
	}
	attrs = recordAttrs(inner.lastRecord)
	if attrs["trace_id"] != traceID.String() || attrs["span_id"] != spanID.String() {
		t.Fatalf("expected span identifiers on the record, got trace_id=%q span_id=%q", attrs["trace_id"], attrs["span_id"])
	}
}

func recordAttrs(rec slog.Record) map[string]string {
	out := map[string]string{}
	rec.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.String()
		return true
	})
	return out
}

func fixedLogTime() time.Time {
	return time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
}
