package biz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func modernProfile() AgentProfile {
	return AgentProfile{
		AgentID:        "agent_chxhcn_vn",
		PersonaName:    "Võ Nguyên Giáp",
		PeriodLabel:    "Thời hiện đại",
		Summary:        "Đại tướng tổng tư lệnh",
		NotableFigures: []string{"Hồ Chí Minh", "Võ Nguyên Giáp", "Ngô Đình Diệm"},
		KeyEvents:      []string{"Điện Biên Phủ", "Kháng chiến chống Pháp"},
	}
}

func TestRefinedVoice_HeroNameOverrides(t *testing.T) {
	policy := NewVoicePolicy("refined")
	profile := modernProfile()

	tests := []struct {
		heroName string
		pronoun  string
		audience string
	}{
		{"Hồ Chí Minh", "Bác", "các cháu"},
		{"Bác Hồ", "Bác", "các cháu"},
		{"Ngô Đình Diệm", "tôi", "quý vị"},
		{"Bảo Đại", "tôi", "quý vị"},
		{"Võ Nguyên Giáp", "tôi", "các đồng chí"},
	}
	for _, tc := range tests {
		voice := policy.Select(profile, tc.heroName)
		assert.Equal(t, tc.pronoun, voice.Pronoun, "hero %s", tc.heroName)
		assert.Equal(t, tc.audience, voice.Audience, "hero %s", tc.heroName)
	}
}

func TestRefinedVoice_RoyalProfile(t *testing.T) {
	policy := NewVoicePolicy("refined")
	profile := AgentProfile{
		AgentID:     "agent_ly",
		PersonaName: "Lý Thái Tổ",
		PeriodLabel: "Nhà Lý",
		Summary:     "Vua",
		KeyEvents:   []string{"Dời đô"},
	}

	voice := policy.Select(profile, "Lý Thái Tổ")

	assert.Equal(t, "trẫm", voice.Pronoun)
	assert.Equal(t, "các khanh", voice.Audience)
}

func TestClassicVoice_IgnoresHeroName(t *testing.T) {
	policy := NewVoicePolicy("classic")
	profile := modernProfile()

	// Classic scans the blob only; "tướng" lands in the commander voice
	// before revolution keywords are even considered, no matter the hero.
	voice := policy.Select(profile, "Hồ Chí Minh")

	assert.Equal(t, "ta", voice.Pronoun)
	assert.Equal(t, "các tráng sĩ", voice.Audience)
}

func TestClassicVoice_RoyalFromPeriodLabel(t *testing.T) {
	policy := NewVoicePolicy("classic")
	profile := AgentProfile{
		AgentID:     "agent_nguyen",
		PersonaName: "Gia Long",
		PeriodLabel: "Nhà Nguyễn",
		Summary:     "Vua sáng lập triều đại",
	}

	voice := policy.Select(profile, "")

	assert.Equal(t, "ta", voice.Pronoun)
	assert.Equal(t, "các con", voice.Audience)
}

func TestClassicVoice_AncestralBeatsRoyal(t *testing.T) {
	policy := NewVoicePolicy("classic")
	profile := AgentProfile{
		AgentID:     "agent_hong_bang",
		PersonaName: "Hùng Vương",
		PeriodLabel: "Thời Hồng Bàng",
		Summary:     "Vua Hùng dựng nước Văn Lang",
	}

	voice := policy.Select(profile, "")

	assert.Equal(t, "con cháu", voice.Audience)
}

func TestVoice_DefaultWhenNothingMatches(t *testing.T) {
	for _, name := range []string{"classic", "refined"} {
		policy := NewVoicePolicy(name)
		profile := AgentProfile{
			AgentID:     DefaultAgentID,
			PersonaName: "Cố vấn lịch sử",
			PeriodLabel: "Tiến trình lịch sử Việt Nam",
		}

		voice := policy.Select(profile, "")

		assert.Equal(t, "ta", voice.Pronoun, "policy %s", name)
		assert.Equal(t, "con", voice.Audience, "policy %s", name)
	}
}

func TestNewVoicePolicy_UnknownNameFallsBackToClassic(t *testing.T) {
	assert.Equal(t, "classic", NewVoicePolicy("whatever").Name())
	assert.Equal(t, "refined", NewVoicePolicy("refined").Name())
}
