package textproc

import (
	"strings"

	"github.com/HelloDave666/mcp-workspace/internal/models"
)

// phaseRule pairs a phase tag with the keywords that select it.
type phaseRule struct {
	phase    string
	keywords []string
}

// phaseRules is evaluated in order; the first rule whose keyword appears in
// the lowercased text wins. Order matters and must not be changed: the
// categories are mutually exclusive by position, not by keyword disjointness.
var phaseRules = []phaseRule{
	{models.PhaseInitialSetup, []string{"setup", "install", "configur", "init", "scaffold"}},
	{models.PhaseDevelopment, []string{"implement", "develop", "feature", "fonction", "ajout"}},
	{models.PhaseDebugging, []string{"bug", "debug", "fix", "erreur", "error", "crash"}},
	{models.PhaseTesting, []string{"test", "coverage", "assert", "valid"}},
	{models.PhaseOptimization, []string{"optimis", "optimiz", "performance", "refactor"}},
	{models.PhaseFinalization, []string{"final", "release", "deploy", "livraison"}},
}

// DetectPhase guesses the project phase from raw conversation text.
// Unusable input and text with no keyword match both default to development.
func DetectPhase(text string) string {
	if strings.TrimSpace(text) == "" {
		return models.PhaseDevelopment
	}

	lowered := strings.ToLower(text)
	for _, rule := range phaseRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.phase
			}
		}
	}

	return models.PhaseDevelopment
}
