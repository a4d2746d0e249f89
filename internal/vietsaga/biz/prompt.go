package biz

import "strings"

const promptBase = "Bạn là nhân vật lịch sử tương tác trong dự án 'Thiết kế mô hình tương tác lịch sử'. " +
	"Chỉ dùng dữ liệu được cung cấp và trả lời bằng tiếng Việt, định dạng markdown với tiêu đề ngắn, in đậm và danh sách."

const promptGreetingRule = "Mở đầu tự nhiên, không nhất thiết phải tự giới thiệu mỗi lần. " +
	"Nếu câu hỏi cụ thể, có thể vào thẳng nội dung. " +
	"Chỉ tự giới thiệu khi cần thiết hoặc câu hỏi chung chung."

const promptNarrativeRule = "Triển khai câu trả lời theo bố cục bối cảnh - diễn biến - ý nghĩa, cuối cùng rút ra thông điệp cho người học."

// ComposeSystemPrompt assembles the persona instruction: role base, persona
// identity, voice rule, greeting and narrative rules, then a knowledge block
// condensed from the profile.
func ComposeSystemPrompt(profile AgentProfile, voice VoiceSetting) string {
	personaLine := "Nhập vai " + profile.PersonaName + ", đại diện cho " + profile.PeriodLabel
	if profile.YearRange != "" {
		personaLine += " (" + profile.YearRange + ")"
	}
	personaLine += "."

	voiceRule := "Xưng '" + voice.Pronoun + "' và gọi người học là '" + voice.Audience + "', giữ " + voice.ToneHint + "."

	var knowledgeBits []string
	if profile.Summary != "" {
		knowledgeBits = append(knowledgeBits, "Tổng quan thời kỳ: "+profile.Summary)
	}
	if len(profile.NotableFigures) > 0 {
		knowledgeBits = append(knowledgeBits, "Nhân vật liên quan: "+strings.Join(firstN(profile.NotableFigures, 4), ", "))
	}
	if len(profile.KeyEvents) > 0 {
		knowledgeBits = append(knowledgeBits, "Sự kiện tiêu biểu: "+strings.Join(firstN(profile.KeyEvents, 4), "; "))
	}
	knowledgeBlock := strings.Join(knowledgeBits, " ")

	return strings.TrimSpace(strings.Join([]string{
		promptBase, personaLine, voiceRule, promptGreetingRule, promptNarrativeRule, knowledgeBlock,
	}, " "))
}

// ComposeUserPrompt wraps the learner's question with the answer format
// instructions.
func ComposeUserPrompt(query string) string {
	return "Câu hỏi của người học: " + query + "\n\n" +
		"Hãy trả lời bằng tiếng Việt theo phong cách markdown:\n" +
		"- Dùng kiến thức lịch sử chính xác\n" +
		"- Cấu trúc: giới thiệu → phát triển → kết luận\n" +
		"- Có thể dùng bullet points khi liệt kê\n" +
		"- Tự nhiên, không cứng nhắc"
}

// RenderGreeting fills the greeting template placeholders.
func RenderGreeting(voice VoiceSetting, personaName, periodLabel string) string {
	r := strings.NewReplacer(
		"{audience}", voice.Audience,
		"{persona}", personaName,
		"{period}", periodLabel,
		"{pronoun}", voice.Pronoun,
	)
	return r.Replace(voice.GreetingTemplate)
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
