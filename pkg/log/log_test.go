package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yeisme/clouddrive/pkg/configs"
)

func TestInitRejectsUnknownLevel(t *testing.T) {
	err := Init(configs.LogConfig{Level: "loud"}, false)
	if err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestInitSetsLevel(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	if err := Init(configs.LogConfig{Level: "warn"}, false); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if got := Logger().GetLevel(); got != zerolog.WarnLevel {
		t.Errorf("level = %v, want warn", got)
	}
}

func TestGinWriter(t *testing.T) {
	var buf bytes.Buffer

	l := zerolog.New(&buf)
	w := NewGinWriter(&l, zerolog.ErrorLevel)

	n, err := w.Write([]byte("  route conflict \n"))
	if err != nil || n != len("  route conflict \n") {
		t.Fatalf("Write = %d, %v", n, err)
	}

	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, `"message":"route conflict"`) {
		t.Errorf("unexpected output: %s", out)
	}

	buf.Reset()

	if _, err := w.Write([]byte("\n")); err != nil {
		t.Fatal(err)
	}

	if buf.Len() != 0 {
		t.Errorf("blank lines should be dropped, got %s", buf.String())
	}
}
