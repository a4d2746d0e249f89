// Package biz implements the conversational routing and RAG orchestration
// engine: question analysis, persona and voice resolution, evidence
// retrieval, graph enrichment, prompt composition and the streaming answer
// pipeline.
package biz

// AgentProfile is the immutable identity of a period persona, aggregated at
// startup from the timeline seed.
type AgentProfile struct {
	AgentID        string   `json:"agent_id"`
	PersonaName    string   `json:"persona_name"`
	PeriodLabel    string   `json:"period_label"`
	YearRange      string   `json:"year_range,omitempty"`
	Summary        string   `json:"summary"`
	NotableFigures []string `json:"notable_figures"`
	KeyEvents      []string `json:"key_events"`
}

// VoiceSetting governs how a persona speaks: pronoun, audience address, tone
// and the greeting template. Templates use {audience}, {persona}, {period}
// and {pronoun} placeholders.
type VoiceSetting struct {
	Pronoun          string `json:"pronoun"`
	Audience         string `json:"audience"`
	ToneHint         string `json:"tone_hint"`
	GreetingTemplate string `json:"greeting_template"`
}

// RequestAnalysis is the routing classification of one question.
type RequestAnalysis struct {
	AgentID        string
	PeriodCode     string
	PeriodLabel    string
	CharacterEvent string
	RAGPeriods     []string
}

// ContextChunk is one evidence passage shown to the learner.
type ContextChunk struct {
	ChunkID  int64    `json:"chunk_id"`
	Text     string   `json:"text"`
	Source   string   `json:"source"`
	Dynasty  string   `json:"dynasty,omitempty"`
	Entities []string `json:"entities"`
	Score    float64  `json:"score,omitempty"`
}

// GraphLink is one knowledge-trail relation shown to the learner.
type GraphLink struct {
	Relation    string `json:"relation"`
	Description string `json:"description"`
	ChunkID     int64  `json:"chunk_id,omitempty"`
}
