package constant

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"
)

// Module names for the generated business artifacts. The set is fixed;
// unknown names are rejected at the regeneration boundary.
const (
	ModuleRefinedConcept  = "refined_concept"
	ModuleBrandProfile    = "brand_profile"
	ModuleLandingContent  = "landing_content"
	ModuleMarketAnalysis  = "market_analysis"
	ModulePitchDeck       = "pitch_deck"
	ModuleBusinessModel   = "business_model"
	ModuleRiskAnalysis    = "risk_analysis"
	ModuleCodePreview     = "code_preview"
)

// PipelineModules is the mandatory generation order: each step feeds the next.
var PipelineModules = []string{
	ModuleRefinedConcept,
	ModuleBrandProfile,
	ModuleMarketAnalysis,
}

// AllModules lists every module a session can hold, pipeline or regenerated.
var AllModules = []string{
	ModuleRefinedConcept,
	ModuleBrandProfile,
	ModuleLandingContent,
	ModuleMarketAnalysis,
	ModulePitchDeck,
	ModuleBusinessModel,
	ModuleRiskAnalysis,
	ModuleCodePreview,
}

// Domain hints and tones accepted on session creation.
var (
	DomainHints = []string{"saas", "marketplace", "fintech", "healthtech", "edtech", "consumer", "deeptech", "other"}
	Tones       = []string{"professional", "playful", "bold", "minimal"}
)
