package props

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-props/pkg/resource"
)

func TestSlogLoadLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	table := New(
		WithClasspath(resource.NewClasspath(resource.NewFSRoot("mem", fstest.MapFS{
			"app.properties": {Data: []byte("a=1\n")},
			"bad.properties": {Data: []byte("a=\\u00\n")},
		}))),
		WithLoadLogger(SlogLoadLogger(logger)),
	)

	_ = table.AddPropertyFile("app.properties")
	_ = table.AddPropertyFile("missing.properties")
	_ = table.AddPropertyFile("bad.properties")

	out := buf.String()
	for _, want := range []string{
		`level=INFO msg="property file loaded" path=app.properties format=properties`,
		"entries=1",
		`level=DEBUG msg="property file not found" path=missing.properties`,
		`level=ERROR msg="property file failed to load" path=bad.properties`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in log output:\n%s", want, out)
		}
	}
}

func TestSlogEvaluatorLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	log := SlogEvaluatorLogger(logger)

	log.LogEvaluation(EvaluatorLogEvent{Engine: "expr", Expr: "a == b", Scope: "global"})
	log.LogEvaluation(EvaluatorLogEvent{Engine: "cel", Expr: "x", Scope: "provider", Err: errors.New("undeclared")})

	out := buf.String()
	if !strings.Contains(out, `"msg":"property expression evaluated"`) || !strings.Contains(out, `"engine":"expr"`) {
		t.Fatalf("expected debug record, got %s", out)
	}
	if !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, `"error":"undeclared"`) {
		t.Fatalf("expected warn record with error, got %s", out)
	}
}

func TestNilSlogLoggersUseDefault(t *testing.T) {
	if SlogLoadLogger(nil) == nil || SlogEvaluatorLogger(nil) == nil {
		t.Fatalf("expected adapters even without a logger")
	}
	var fn LoadLoggerFunc
	fn.LogLoad(LoadEvent{})
	var efn EvaluatorLoggerFunc
	efn.LogEvaluation(EvaluatorLogEvent{})
}
