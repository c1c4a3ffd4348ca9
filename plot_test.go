package anydqn

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPlotHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := PlotHTML(&buf, "rewards", RewardHistory{10, 20, 15}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Moving average") {
		t.Error("missing smoothed series in output")
	}
	if err := PlotHTML(&buf, "rewards", nil); err == nil {
		t.Error("expected error for empty history")
	}
}

func TestPlotPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewards.png")
	if err := PlotPNG(path, "rewards", RewardHistory{10, 20, 15}); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("empty plot file")
	}
}
