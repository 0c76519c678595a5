package log_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yeisme/uploadvault/pkg/configs"
	"github.com/yeisme/uploadvault/pkg/log"
)

// TestInit_InvalidLevel 测试非法级别退回 info 并返回错误.
func TestInit_InvalidLevel(t *testing.T) {
	if err := log.Init(configs.LogConfig{Level: "loud"}, false); err == nil {
		t.Error("expected error for invalid level")
	}

	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("global level = %v, want info", zerolog.GlobalLevel())
	}

	if err := log.Init(configs.LogConfig{Level: "debug", Format: "json"}, false); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("global level = %v, want debug", zerolog.GlobalLevel())
	}
}

// TestGinWriter 测试 Gin 文本行按级别转发.
func TestGinWriter(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	var buf bytes.Buffer

	l := zerolog.New(&buf)
	w := log.NewGinWriter(&l, zerolog.ErrorLevel)

	n, err := w.Write([]byte("[GIN-debug] boom\n"))
	if err != nil || n != len("[GIN-debug] boom\n") {
		t.Fatalf("Write = (%d, %v)", n, err)
	}

	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, "[GIN-debug] boom") {
		t.Errorf("unexpected output %q", out)
	}

	buf.Reset()

	if _, err := w.Write([]byte("  \n")); err != nil || buf.Len() != 0 {
		t.Errorf("blank line should be dropped, got %q", buf.String())
	}
}
