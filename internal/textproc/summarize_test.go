package textproc

import (
	"fmt"
	"strings"
	"testing"
)

func buildText(lines int) string {
	parts := make([]string, lines)
	for i := range parts {
		parts[i] = fmt.Sprintf("line %03d with some ordinary filler content", i)
	}
	return strings.Join(parts, "\n")
}

func TestSummarizeStructure(t *testing.T) {
	text := buildText(100)
	out := Summarize(text, 0.5)

	for _, banner := range []string{BannerStart, BannerMiddle, BannerEnd} {
		if !strings.Contains(out, banner) {
			t.Errorf("summary missing banner %q", banner)
		}
	}

	if len(out) > len(text) {
		t.Errorf("summary length %d exceeds original %d", len(out), len(text))
	}

	// target=50: 10 verbatim start lines, 10 verbatim end lines.
	if !strings.Contains(out, "line 000") {
		t.Error("summary missing first line")
	}
	if !strings.Contains(out, "line 009") {
		t.Error("summary missing 10th line")
	}
	if strings.Contains(out, "line 010 ") {
		t.Error("summary should not carry the 11th line verbatim (not interesting)")
	}
	if !strings.Contains(out, "line 090") {
		t.Error("summary missing start of end section")
	}
	if !strings.Contains(out, "line 099") {
		t.Error("summary missing last line")
	}
}

func TestSummarizeDeterministic(t *testing.T) {
	text := buildText(80)
	first := Summarize(text, 0.5)
	second := Summarize(text, 0.5)
	if first != second {
		t.Error("summarizer output differs between runs on identical input")
	}
}

func TestSummarizeMiddleSelection(t *testing.T) {
	lines := make([]string, 100)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %03d", i)
	}
	lines[40] = "```go"
	lines[45] = "# Heading in the middle"
	lines[50] = "IMPORTANT: remember this"
	lines[55] = strings.Repeat("x", 120)
	text := strings.Join(lines, "\n")

	out := Summarize(text, 0.5)

	for _, want := range []string{"```go", "# Heading in the middle", "IMPORTANT: remember this", strings.Repeat("x", 120)} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing interesting middle line %q", want)
		}
	}
	if strings.Contains(out, "line 042") {
		t.Error("summary carries an uninteresting middle line")
	}
}

func TestSummarizeMiddleCap(t *testing.T) {
	lines := make([]string, 100)
	for i := range lines {
		// Every middle line qualifies: all are over 100 characters.
		lines[i] = fmt.Sprintf("line %03d %s", i, strings.Repeat("y", 110))
	}
	text := strings.Join(lines, "\n")

	out := Summarize(text, 0.5)
	sections := strings.Split(out, BannerMiddle)
	if len(sections) != 2 {
		t.Fatalf("expected exactly one middle banner, got %d sections", len(sections))
	}
	middle := strings.Split(sections[1], BannerEnd)[0]

	// target=50: middle section capped at 30 lines.
	count := 0
	for _, line := range strings.Split(middle, "\n") {
		if strings.HasPrefix(line, "line ") {
			count++
		}
	}
	if count != 30 {
		t.Errorf("middle section has %d lines, want 30", count)
	}
}

func TestSummarizeShortInput(t *testing.T) {
	text := "one short line"
	out := Summarize(text, 0.5)
	if len(out) > len(text) {
		t.Errorf("summary of short input grew: %d > %d", len(out), len(text))
	}
}

func TestSummarizeBadRatioFallsBack(t *testing.T) {
	text := buildText(100)
	if Summarize(text, 0) != Summarize(text, DefaultReduction) {
		t.Error("ratio 0 should fall back to the default reduction")
	}
	if Summarize(text, 1.5) != Summarize(text, DefaultReduction) {
		t.Error("ratio > 1 should fall back to the default reduction")
	}
}
