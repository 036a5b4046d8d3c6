package logger

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		"":        Info,
		"WARNING": Warn,
		"error":   Error,
		"bogus":   Info,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestZapLogger_WithMergesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core)).With(map[string]any{"webid": "https://id.example/alice"})

	l.Warn("pod read failed", map[string]any{
		"url":   "https://pod.example/alice/patient/Patient.ttl",
		"error": errors.New("status=503"),
		"":      "ignored",
	})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["webid"] != "https://id.example/alice" {
		t.Fatalf("expected base field, got %v", ctx)
	}
	if ctx["error"] != "status=503" {
		t.Fatalf("expected error field, got %v", ctx["error"])
	}
	if _, ok := ctx[""]; ok {
		t.Fatalf("empty keys must be dropped")
	}
}
