package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	rcontext "github.com/poltergeist/mlfq/pkg/context"
	"github.com/poltergeist/mlfq/pkg/logger"
)

func TestCreateLogger(t *testing.T) {
	log := logger.CreateLogger("", "info")
	if log == nil {
		t.Fatal("expected logger to be created")
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  []string
		skip  []string
	}{
		{"debug", []string{"DEBUG", "INFO", "WARN", "ERROR"}, nil},
		{"info", []string{"INFO", "WARN", "ERROR"}, []string{"DEBUG"}},
		{"warn", []string{"WARN", "ERROR"}, []string{"DEBUG", "INFO"}},
		{"error", []string{"ERROR"}, []string{"DEBUG", "INFO", "WARN"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := logger.CreateLoggerWithOutput("", tt.level, &buf)

			log.Debug("tick")
			log.Info("tick")
			log.Warn("tick")
			log.Error("tick")

			output := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(output, w+":") {
					t.Errorf("expected %s entry at level %s", w, tt.level)
				}
			}
			for _, s := range tt.skip {
				if strings.Contains(output, s+":") {
					t.Errorf("unexpected %s entry at level %s", s, tt.level)
				}
			}
		})
	}
}

func TestLogger_WithComponent(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("", "info", &buf)

	log.WithComponent("kernel").Info("booted")

	if !strings.Contains(buf.String(), "[kernel] booted") {
		t.Errorf("expected component prefix, got %q", buf.String())
	}
}

func TestLogger_Success(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("", "info", &buf)

	log.Success("run completed")

	output := buf.String()
	if !strings.Contains(output, "OK: run completed") {
		t.Errorf("expected success entry, got %q", output)
	}
	if strings.Contains(output, "_success") {
		t.Error("success marker leaked into fields")
	}
}

func TestLogger_FieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	log := logger.CreateLoggerWithOutput("", "info", &buf)

	log.Info("exit",
		logger.WithField("status", 0),
		logger.WithField("pid", 3),
	)

	if !strings.Contains(buf.String(), "{pid=3, status=0}") {
		t.Errorf("expected sorted fields, got %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	log := logger.Discard()
	log.Error("dropped")
	log.WithComponent("x").Info("dropped")
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	base := logger.CreateLoggerWithOutput("", "info", &buf)

	ctx := rcontext.WithRunID(context.Background(), "run_test")
	ctx = rcontext.WithJob(ctx, "cpu-1")
	logger.WithContext(ctx, base).Info("job done")

	output := buf.String()
	if !strings.Contains(output, "run_id=run_test") {
		t.Errorf("expected run id, got %q", output)
	}
	if !strings.Contains(output, "job=cpu-1") {
		t.Errorf("expected job, got %q", output)
	}
}

func TestConsole(t *testing.T) {
	var out, errOut bytes.Buffer
	c := &logger.Console{Out: &out, Err: &errOut}

	c.Info("tick %d", 3)
	c.Error("failed")

	if !strings.Contains(out.String(), "tick 3") {
		t.Errorf("unexpected stdout %q", out.String())
	}
	if !strings.Contains(errOut.String(), "failed") {
		t.Errorf("unexpected stderr %q", errOut.String())
	}
}
