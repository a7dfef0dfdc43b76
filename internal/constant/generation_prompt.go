package constant

// Human-readable schema descriptions per module. These are embedded in the
// model instructions and documented for API consumers; they are NOT machine
// validators.
const (
	SchemaRefinedConceptV1 = `{"name": string, "one_liner": string, "problem": string, "solution": string, "target_users": [string], "core_features": [string], "differentiators": [string]}`

	SchemaBrandProfileV1 = `{"brand_name": string, "tagline": string, "tone_words": [string], "color_palette": [{"name": string, "hex": string}], "voice_guidelines": string}`

	SchemaLandingContentV1 = `{"headline": string, "subheadline": string, "sections": [{"title": string, "body": string}], "cta": string}`

	SchemaMarketAnalysisV1 = `{"market_size": string, "trends": [string], "competitors": [{"name": string, "strength": string, "weakness": string}], "positioning": string, "risks": [string]}`

	SchemaPitchDeckV1 = `{"slides": [{"title": string, "bullets": [string]}]}`

	SchemaBusinessModelV1 = `{"revenue_streams": [string], "pricing": string, "cost_drivers": [string], "key_metrics": [string]}`

	SchemaRiskAnalysisV1 = `{"risks": [{"category": string, "description": string, "mitigation": string}]}`

	SchemaCodePreviewV1 = `{"stack": [string], "files": [{"path": string, "description": string}], "notes": string}`

	SchemaChatAnswerV1 = `{"answer": string}`
)

const ChatSystemPromptV1 = `You are the IdeaForge startup assistant. You only answer questions about the user's startup idea, branding, market, pricing, pitching and product strategy. If the question is clearly unrelated to building a business, reply that you can only help with the startup project.`

// ChatOutOfScopeReplyV1 is returned without touching the model when the
// scope filter rejects a message.
const ChatOutOfScopeReplyV1 = `I can only help with questions about your startup project: the idea itself, branding, market, pricing and strategy. What would you like to explore about your venture?`
