package textproc

import "strings"

// DefaultReduction is the summarizer's default target reduction ratio.
const DefaultReduction = 0.5

// Section banners emitted by the summarizer. Client tooling looks for
// these markers, so they are part of the output contract.
const (
	BannerStart  = "=== DEBUT DE LA CONVERSATION ==="
	BannerMiddle = "=== SECTION PRINCIPALE ==="
	BannerEnd    = "=== FIN DE LA CONVERSATION ==="
)

// emphasisKeywords mark a middle-section line as worth keeping.
var emphasisKeywords = []string{
	"important", "critique", "critical", "attention",
	"warning", "erreur", "error", "solution", "décision", "decision",
}

// Summarize produces a lossy, deterministic reduction of text: the first
// 20% of the target line budget verbatim, "interesting" lines from the
// middle 30%-70% span capped at 60% of the budget, and the last 20%
// verbatim, joined with section banners. ratio is the target size relative
// to the original line count; values outside (0,1) fall back to the default.
//
// The output is guaranteed not to be longer than the input: if the
// assembled summary would exceed the original text, the original is
// returned unchanged.
func Summarize(text string, ratio float64) string {
	if ratio <= 0 || ratio >= 1 {
		ratio = DefaultReduction
	}

	lines := strings.Split(text, "\n")
	total := len(lines)
	target := int(float64(total) * ratio)

	// All budget arithmetic is integer floor division on purpose; the
	// section sizes must be reproducible byte for byte.
	startCount := target * 20 / 100
	middleCap := target * 60 / 100
	endCount := target * 20 / 100

	start := lines[:min(startCount, total)]
	end := lines[max(total-endCount, 0):]

	middleFrom := total * 30 / 100
	middleTo := total * 70 / 100
	var middle []string
	for _, line := range lines[middleFrom:middleTo] {
		if len(middle) >= middleCap {
			break
		}
		if interesting(line) {
			middle = append(middle, line)
		}
	}

	var b strings.Builder
	b.WriteString(BannerStart)
	b.WriteString("\n")
	b.WriteString(strings.Join(start, "\n"))
	b.WriteString("\n\n")
	b.WriteString(BannerMiddle)
	b.WriteString("\n")
	b.WriteString(strings.Join(middle, "\n"))
	b.WriteString("\n\n")
	b.WriteString(BannerEnd)
	b.WriteString("\n")
	b.WriteString(strings.Join(end, "\n"))

	out := b.String()
	if len(out) >= len(text) {
		return text
	}
	return out
}

// interesting reports whether a middle-section line survives summarization:
// code fences, headings, emphasis keywords, or any line over 100 characters.
func interesting(line string) bool {
	if strings.Contains(line, "```") {
		return true
	}
	if strings.HasPrefix(strings.TrimSpace(line), "#") {
		return true
	}
	lowered := strings.ToLower(line)
	for _, kw := range emphasisKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return len(line) > 100
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
