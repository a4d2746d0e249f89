package biz

import (
	"strings"

	"github.com/vietsaga/vietsaga/internal/pkg/textutil"
)

// UnknownPeriodLabel marks a question that resolved to no era.
const UnknownPeriodLabel = "không rõ"

// maxComposedQueryLen bounds the query forwarded to a period agent.
const maxComposedQueryLen = 120

// Analyzer classifies learner questions against the period catalog.
type Analyzer struct {
	catalog *Catalog
}

// NewAnalyzer creates an analyzer over the given catalog.
func NewAnalyzer(catalog *Catalog) *Analyzer {
	return &Analyzer{catalog: catalog}
}

// Analyze resolves a question to an agent. Entity rules take priority over
// period keywords; both scan in fixed order and the first match wins, so the
// same question always routes the same way.
func (a *Analyzer) Analyze(question string) RequestAnalysis {
	norm := textutil.Normalize(question)

	characterEvent, periodCode := a.matchEntity(norm)
	if periodCode == "" {
		periodCode = a.matchPeriod(norm)
	}

	if profile, ok := a.catalog.PeriodProfileByCode(periodCode); ok {
		return RequestAnalysis{
			AgentID:        profile.AgentID,
			PeriodCode:     periodCode,
			PeriodLabel:    profile.Label,
			CharacterEvent: characterEvent,
			RAGPeriods:     profile.RAGPeriods,
		}
	}

	return RequestAnalysis{
		AgentID:        DefaultAgentID,
		CharacterEvent: characterEvent,
	}
}

func (a *Analyzer) matchEntity(normalizedQuestion string) (display, periodCode string) {
	for _, rule := range a.catalog.EntityRules() {
		if strings.Contains(normalizedQuestion, rule.Keyword) {
			return rule.Display, rule.PeriodCode
		}
	}
	return "", ""
}

func (a *Analyzer) matchPeriod(normalizedQuestion string) string {
	for _, profile := range a.catalog.PeriodProfiles() {
		for _, kw := range profile.Keywords {
			if strings.Contains(normalizedQuestion, kw) {
				return profile.Code
			}
		}
	}
	return ""
}

// OverrideForAgent pins the analysis to a caller-selected agent. The entity
// detected in the question is kept; period, label and retrieval tags come
// from the selected agent. Unrecognized agent ids leave the analysis
// untouched.
func (a *Analyzer) OverrideForAgent(analysis RequestAnalysis, agentID string) RequestAnalysis {
	if !a.catalog.IsKnownAgent(agentID) {
		return analysis
	}

	code := a.catalog.AgentPeriod(agentID)
	out := RequestAnalysis{
		AgentID:        agentID,
		PeriodCode:     code,
		PeriodLabel:    UnknownPeriodLabel,
		CharacterEvent: analysis.CharacterEvent,
	}
	if code != "" {
		if profile, ok := a.catalog.PeriodProfileByCode(code); ok {
			out.RAGPeriods = profile.RAGPeriods
		}
		if label := a.catalog.PeriodLabel(code); label != "" {
			out.PeriodLabel = label
		} else {
			out.PeriodLabel = a.catalog.Profile(agentID).PeriodLabel
		}
	}
	return out
}

// ComposeAgentQuery builds the structured query handed to a period agent:
// detected entity, resolved era and the learner's request, pipe-separated
// and capped at 120 characters.
func (a *Analyzer) ComposeAgentQuery(analysis RequestAnalysis, question string) string {
	var segments []string
	if analysis.CharacterEvent != "" {
		segments = append(segments, "[Nhân vật/Sự kiện] "+analysis.CharacterEvent)
	}
	if analysis.PeriodLabel != "" {
		segments = append(segments, "[Thời kỳ/Giai đoạn] "+analysis.PeriodLabel)
	}
	segments = append(segments, "[Yêu cầu] "+question)

	return textutil.Truncate(strings.Join(segments, " | "), maxComposedQueryLen)
}
