package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"eq-wld-decoder/internal/logging"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	if err := logging.SetLevel("warn"); err != nil {
		t.Fatalf("SetLevel:\nhave %v\nwant nil", err)
	}
	logging.Info("hidden %d", 1)
	logging.Warn("shown %d", 2)
	logging.With("wld", "gfay.wld").Error("broken")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line logged at warn level:\n%s", out)
	}
	if !strings.Contains(out, "shown 2") || !strings.Contains(out, "wld=gfay.wld") {
		t.Errorf("output:\nhave %s\nwant the warn line and the wld key", out)
	}

	if err := logging.SetLevel("loud"); err == nil {
		t.Error("SetLevel(loud): want error")
	}
}
