package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"ideaforge-be/internal/constant"
	"ideaforge-be/internal/entity"
)

// moduleSchemas maps each module to its human-readable schema description.
var moduleSchemas = map[string]string{
	constant.ModuleRefinedConcept: constant.SchemaRefinedConceptV1,
	constant.ModuleBrandProfile:   constant.SchemaBrandProfileV1,
	constant.ModuleLandingContent: constant.SchemaLandingContentV1,
	constant.ModuleMarketAnalysis: constant.SchemaMarketAnalysisV1,
	constant.ModulePitchDeck:      constant.SchemaPitchDeckV1,
	constant.ModuleBusinessModel:  constant.SchemaBusinessModelV1,
	constant.ModuleRiskAnalysis:   constant.SchemaRiskAnalysisV1,
	constant.ModuleCodePreview:    constant.SchemaCodePreviewV1,
}

var moduleIntros = map[string]string{
	constant.ModuleRefinedConcept: "Refine this raw startup idea into a sharp product concept.",
	constant.ModuleBrandProfile:   "Create a brand profile for this startup.",
	constant.ModuleLandingContent: "Write landing page content for this startup.",
	constant.ModuleMarketAnalysis: "Produce a market analysis for this startup.",
	constant.ModulePitchDeck:      "Outline an investor pitch deck for this startup.",
	constant.ModuleBusinessModel:  "Describe a business model for this startup.",
	constant.ModuleRiskAnalysis:   "Analyse the key risks of this startup.",
	constant.ModuleCodePreview:    "Sketch a starter codebase layout for this startup's MVP.",
}

// IsKnownModule reports membership in the fixed module set.
func IsKnownModule(module string) bool {
	_, ok := moduleSchemas[module]
	return ok
}

// SchemaFor returns the schema description for a known module.
func SchemaFor(module string) string {
	return moduleSchemas[module]
}

// ModulePrompt composes the generation prompt for one module. The refined
// concept is prepended as context for every module except itself.
func ModulePrompt(module string, session *entity.IdeaSession) string {
	var sb strings.Builder
	sb.WriteString(moduleIntros[module])
	sb.WriteString("\n\nIdea: ")
	sb.WriteString(session.Idea)
	fmt.Fprintf(&sb, "\nDomain: %s\nTone: %s\n", session.DomainHint, session.Tone)

	if module != constant.ModuleRefinedConcept {
		if concept, ok := session.Outputs[constant.ModuleRefinedConcept]; ok {
			if raw, err := json.Marshal(concept); err == nil {
				sb.WriteString("\nRefined concept (context):\n")
				sb.Write(raw)
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}
