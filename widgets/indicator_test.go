package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderBarProportion(t *testing.T) {
	out := RenderBar(128, 256, 8, '#', '.', lipgloss.Color("#ffffff"))
	if n := strings.Count(out, "#"); n != 4 {
		t.Errorf("filled=%d in %q, want 4", n, out)
	}
	if n := strings.Count(out, "."); n != 4 {
		t.Errorf("empty=%d in %q, want 4", n, out)
	}
}

func TestRenderBarClamps(t *testing.T) {
	out := RenderBar(999, 10, 5, '#', '.', lipgloss.Color("#ffffff"))
	if strings.Count(out, "#") != 5 || strings.Contains(out, ".") {
		t.Errorf("overfull bar = %q", out)
	}
	if RenderBar(1, 1, 0, '#', '.', lipgloss.Color("#ffffff")) != "" {
		t.Error("zero width should render nothing")
	}
}

func TestRenderLEDContainsSymbol(t *testing.T) {
	if !strings.Contains(RenderLED('●', lipgloss.Color("#ff0000")), "●") {
		t.Error("symbol missing")
	}
}
