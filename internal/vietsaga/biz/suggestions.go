package biz

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/kart-io/logger"

	"github.com/vietsaga/vietsaga/pkg/llm"
	"github.com/vietsaga/vietsaga/pkg/utils/json"
)

const suggestionTemperature = 0.2

// pronounsToRewrite are first-person forms that must never appear in a
// learner-side question.
var pronounsToRewrite = []string{"ta", "trẫm", "thiếp", "ta đây", "tôi", "chúng ta"}

const suggestionSystemPrompt = "Bạn đang đóng vai biên tập viên tạo lời chào mở đầu và 3 câu hỏi gợi ý cho học sinh trò chuyện với nhân vật lịch sử. " +
	"Trả lời DUY NHẤT bằng JSON theo mẫu {\"greeting\":\"...\",\"suggestions\":[\"...\",\"...\",\"...\"]}. " +
	"Greeting phải ở ngôi thứ nhất, mở đầu bằng 'Chào ...', giới thiệu nhân vật và thời đại, gợi mở việc đặt câu hỏi. " +
	"Mỗi suggestion tối đa 90 ký tự, cụ thể, không đánh số, không trùng ý và phù hợp bối cảnh lịch sử."

// SuggestionService produces the opening greeting and starter questions for
// an agent pick.
type SuggestionService struct {
	chat    llm.ChatProvider
	catalog *Catalog
	policy  VoicePolicy
}

// NewSuggestionService creates a suggestion service.
func NewSuggestionService(chat llm.ChatProvider, catalog *Catalog, policy VoicePolicy) *SuggestionService {
	return &SuggestionService{chat: chat, catalog: catalog, policy: policy}
}

// Generate returns a greeting and exactly three learner questions. The model
// is asked first; anything short of a full, valid response switches to the
// deterministic voice-template fallback.
func (s *SuggestionService) Generate(ctx context.Context, agentID, heroName string) (string, []string) {
	profile := s.catalog.Profile(agentID)
	voice := s.policy.Select(profile, heroName)

	personaName := heroName
	if personaName == "" {
		personaName = profile.PersonaName
	}

	if greeting, suggestions, ok := s.remote(ctx, profile, voice, personaName); ok {
		return greeting, suggestions
	}

	greeting := RenderGreeting(voice, personaName, profile.PeriodLabel)
	fallback := []string{
		EnforceLearnerQuestion(personaName+" đã làm gì để tạo nên dấu ấn của "+profile.PeriodLabel+"?", personaName, voice),
		EnforceLearnerQuestion("Sự kiện nào trong "+profile.PeriodLabel+" khiến "+personaName+" khắc ghi nhất?", personaName, voice),
		EnforceLearnerQuestion("Bài học lớn nhất mà "+personaName+" muốn gửi tới học trò hôm nay là gì?", personaName, voice),
	}
	return greeting, fallback
}

func (s *SuggestionService) remote(ctx context.Context, profile AgentProfile, voice VoiceSetting, personaName string) (string, []string, bool) {
	yearRange := profile.YearRange
	if yearRange == "" {
		yearRange = "không rõ"
	}
	figureRefs := strings.Join(firstN(profile.NotableFigures, 4), ", ")
	if figureRefs == "" {
		figureRefs = personaName
	}
	eventRefs := strings.Join(firstN(profile.KeyEvents, 4), "; ")
	if eventRefs == "" {
		eventRefs = "Chưa rõ sự kiện tiêu biểu."
	}
	summaryText := profile.Summary
	if summaryText == "" {
		summaryText = "Không có mô tả."
	}

	userPrompt := "Nhân vật nhập vai: " + personaName + ".\n" +
		"Thời kỳ: " + profile.PeriodLabel + " (" + yearRange + ").\n" +
		"Tóm tắt: " + summaryText + "\n" +
		"Nhân vật/đồng sự liên quan: " + figureRefs + ".\n" +
		"Sự kiện tiêu biểu: " + eventRefs + ".\n" +
		"Đại từ xưng hô: " + voice.Pronoun + ". Cách gọi người học: " + voice.Audience + ". Giọng văn: " + voice.ToneHint + ".\n" +
		"- Viết greeting theo yêu cầu.\n" +
		"- Soạn 3 câu hỏi gợi ý mà người học sẽ đặt cho nhân vật; mỗi câu phải nhắc tới tên nhân vật hoặc xưng 'ngài', không dùng 'ta'.\n" +
		"- Không thêm giải thích nào khác."

	temp := suggestionTemperature
	content, err := s.chat.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: suggestionSystemPrompt},
		{Role: llm.RoleUser, Content: userPrompt},
	}, &llm.ChatOptions{Temperature: &temp})
	if err != nil {
		logger.Warnw("Suggestion call failed", "agent_id", profile.AgentID, "error", err)
		return "", nil, false
	}

	var payload struct {
		Greeting    string   `json:"greeting"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		logger.Warnw("Suggestion call returned malformed JSON", "agent_id", profile.AgentID, "error", err)
		return "", nil, false
	}

	greeting := strings.TrimSpace(payload.Greeting)
	var suggestions []string
	for _, raw := range payload.Suggestions {
		enforced := EnforceLearnerQuestion(strings.TrimSpace(raw), personaName, voice)
		if enforced != "" {
			suggestions = append(suggestions, enforced)
		}
	}
	if greeting == "" || len(suggestions) < 3 {
		return "", nil, false
	}
	return greeting, suggestions[:3], true
}

// EnforceLearnerQuestion rewrites a candidate question into the learner's
// perspective: persona pronouns are replaced by the persona name, the
// persona is addressed as 'Ngài' when absent, and a question mark closes
// the sentence.
func EnforceLearnerQuestion(text, personaName string, voice VoiceSetting) string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return clean
	}

	pronouns := append([]string{}, pronounsToRewrite...)
	if p := strings.ToLower(voice.Pronoun); p != "" {
		found := false
		for _, existing := range pronouns {
			if existing == p {
				found = true
				break
			}
		}
		if !found {
			pronouns = append(pronouns, p)
		}
	}
	// Longest first so "chúng ta" does not degrade to "chúng <persona>".
	sort.Slice(pronouns, func(i, j int) bool { return len(pronouns[i]) > len(pronouns[j]) })

	for _, pronoun := range pronouns {
		quoted := regexp.QuoteMeta(pronoun)
		clean = regexp.MustCompile(`(?i)\b`+quoted+`\b`).ReplaceAllString(clean, personaName)
		clean = regexp.MustCompile(`(?i)\b(của)\s+`+quoted+`\b`).ReplaceAllString(clean, "${1} "+personaName)
	}

	normalized := strings.ToLower(clean)
	if !strings.Contains(normalized, strings.ToLower(personaName)) && !strings.Contains(normalized, "ngài") {
		base := strings.TrimSpace(strings.TrimRight(clean, "?"))
		if base != "" {
			runes := []rune(base)
			runes[0] = unicode.ToLower(runes[0])
			base = string(runes)
		}
		clean = strings.TrimSpace("Ngài " + personaName + " " + base)
	}
	if !strings.HasSuffix(clean, "?") {
		clean = strings.TrimRight(clean, ".") + "?"
	}
	return clean
}
