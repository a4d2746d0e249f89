package biz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposeSystemPrompt(t *testing.T) {
	profile := AgentProfile{
		AgentID:        "agent_ly",
		PersonaName:    "Lý Công Uẩn",
		PeriodLabel:    "Nhà Lý",
		YearRange:      "1009 - 1225",
		Summary:        "Triều đại mở đầu nền văn minh Đại Việt.",
		NotableFigures: []string{"Lý Công Uẩn", "Lý Thường Kiệt", "Ỷ Lan", "Lý Nhân Tông", "Lý Anh Tông"},
		KeyEvents:      []string{"Chiếu dời đô", "Phá Tống"},
	}
	voice := voiceRoyalClassic

	prompt := ComposeSystemPrompt(profile, voice)

	assert.Contains(t, prompt, "Nhập vai Lý Công Uẩn, đại diện cho Nhà Lý (1009 - 1225).")
	assert.Contains(t, prompt, "Xưng 'ta' và gọi người học là 'các con'")
	assert.Contains(t, prompt, "bối cảnh - diễn biến - ý nghĩa")
	assert.Contains(t, prompt, "Tổng quan thời kỳ: Triều đại mở đầu nền văn minh Đại Việt.")
	// Knowledge block keeps only the first four figures.
	assert.Contains(t, prompt, "Nhân vật liên quan: Lý Công Uẩn, Lý Thường Kiệt, Ỷ Lan, Lý Nhân Tông")
	assert.NotContains(t, prompt, "Lý Anh Tông")
	assert.Contains(t, prompt, "Sự kiện tiêu biểu: Chiếu dời đô; Phá Tống")
}

func TestComposeSystemPrompt_NoYearRange(t *testing.T) {
	profile := AgentProfile{PersonaName: "Cố vấn lịch sử", PeriodLabel: "Tiến trình lịch sử Việt Nam"}

	prompt := ComposeSystemPrompt(profile, voiceDefault)

	assert.Contains(t, prompt, "Nhập vai Cố vấn lịch sử, đại diện cho Tiến trình lịch sử Việt Nam.")
	assert.NotContains(t, prompt, "()")
}

func TestComposeUserPrompt(t *testing.T) {
	prompt := ComposeUserPrompt("Vì sao dời đô?")

	assert.True(t, strings.HasPrefix(prompt, "Câu hỏi của người học: Vì sao dời đô?\n\n"))
	assert.Contains(t, prompt, "giới thiệu → phát triển → kết luận")
}

func TestRenderGreeting(t *testing.T) {
	got := RenderGreeting(voiceElder, "Hồ Chí Minh", "Thời hiện đại")
	assert.Equal(t, "Chào các cháu, Bác là Hồ Chí Minh.", got)

	got = RenderGreeting(voiceRoyalClassic, "Gia Long", "Nhà Nguyễn")
	assert.Equal(t, "Chào các con, ta là Gia Long, đang trị vì Nhà Nguyễn.", got)
}
