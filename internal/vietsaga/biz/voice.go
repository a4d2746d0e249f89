package biz

import (
	"strings"

	"github.com/vietsaga/vietsaga/internal/pkg/textutil"
	chatopts "github.com/vietsaga/vietsaga/pkg/options/chat"
)

// voiceDefault is the fallback voice when no rule matches.
var voiceDefault = VoiceSetting{
	Pronoun:          "ta",
	Audience:         "con",
	ToneHint:         "giọng kể điềm đạm của cố vấn lịch sử, dùng câu văn cổ trang nhưng dễ hiểu",
	GreetingTemplate: "Chào {audience}, ta là {persona}, đồng hành cùng {period}.",
}

var (
	ancestralKeywords = []string{"hồng bàng", "hùng vương", "lạc long quân", "ân dương vương", "văn lang", "âu lạc"}
	royalTokens       = []string{"nhà ", "triều", "hoàng", "đế", "vua", "hoàng đế", "đại vương", "thái tổ", "thái tông"}
	commanderKeywords = []string{"tướng", "khởi nghĩa", "nghĩa quân", "quốc công", "trận", "chiến", "đạo"}
	revolutionKeywords = []string{
		"cách mạng", "kháng chiến", "chủ tịch", "việt minh", "độc lập",
		"xã hội chủ nghĩa", "hiện đại", "kháng pháp", "kháng mỹ",
	}
	scholarKeywords = []string{"sĩ phu", "nhà nho", "khoa bảng", "văn hiến", "học giả", "thi cử", "nho học"}
)

var (
	refinedAncestralKeywords = []string{"hồng bàng", "hùng vương", "lạc long quân", "âu lạc"}
	refinedRoyalTokens       = []string{"hoàng đế", "vua", "đại vương", "thái tổ", "thái tông", "nhân tông", "thánh tông", "minh mạng", "tự đức"}
	refinedCommanderKeywords = []string{"tướng", "khởi nghĩa", "nghĩa quân", "quốc công", "trận", "chiến", "đạo", "tiết chế"}
	refinedRevolutionKeywords = []string{
		"cách mạng", "chủ tịch", "việt minh", "độc lập",
		"xã hội chủ nghĩa", "kháng chiến chống pháp", "kháng chiến chống mỹ",
		"kháng chiến chống thực dân", "kháng chiến chống đế quốc",
		"giải phóng", "đảng cộng sản",
	}
	refinedModernKeywords  = []string{"hiện đại", "thế kỷ 20", "thế kỷ 21", "cộng hòa", "tổng thống", "thủ tướng", "đổi mới"}
	refinedScholarKeywords = []string{"sĩ phu", "nhà nho", "khoa bảng", "văn hiến", "học giả", "thi cử", "nho học", "công thần"}

	elderHeroKeywords         = []string{"hồ chí minh", "bác hồ", "nguyễn ái quốc"}
	controversialHeroKeywords = []string{"ngô đình diệm", "nguyễn văn thiệu", "bảo đại"}
)

var (
	voiceAncestral = VoiceSetting{
		Pronoun:          "ta",
		Audience:         "con cháu",
		ToneHint:         "giọng huyền sử, nhiều hình ảnh núi sông và truyền thuyết nguồn cội",
		GreetingTemplate: "Chào {audience}, ta là {persona}, người giữ hồn {period}.",
	}
	voiceRoyalClassic = VoiceSetting{
		Pronoun:          "ta",
		Audience:         "các con",
		ToneHint:         "giọng đế vương cổ kính, câu văn chậm rãi, dùng điển tích và từ Hán Việt",
		GreetingTemplate: "Chào {audience}, ta là {persona}, đang trị vì {period}.",
	}
	voiceCommander = VoiceSetting{
		Pronoun:          "ta",
		Audience:         "các tráng sĩ",
		ToneHint:         "giọng quân lệnh dứt khoát, khích lệ khí phách chiến trận",
		GreetingTemplate: "Chào {audience}, ta là {persona}, người dẫn dắt nghĩa quân thời {period}.",
	}
	voiceRevolutionClassic = VoiceSetting{
		Pronoun:          "ta",
		Audience:         "các đồng chí",
		ToneHint:         "giọng thời kháng chiến, giản dị mà giàu nhiệt huyết cách mạng",
		GreetingTemplate: "Chào {audience}, ta là {persona}, kể con nghe chuyện {period}.",
	}
	voiceScholarClassic = VoiceSetting{
		Pronoun:          "ta",
		Audience:         "các trò",
		ToneHint:         "giọng nho nhã của sĩ phu, chữ nghĩa chặt chẽ, điềm đạm",
		GreetingTemplate: "Chào {audience}, ta là {persona}, xin giảng chuyện {period}.",
	}
)

var (
	voiceElder = VoiceSetting{
		Pronoun:          "Bác",
		Audience:         "các cháu",
		ToneHint:         "giọng ấm áp, ân cần, gần gũi như người ông kể chuyện",
		GreetingTemplate: "Chào {audience}, {pronoun} là {persona}.",
	}
	voiceControversial = VoiceSetting{
		Pronoun:          "tôi",
		Audience:         "quý vị",
		ToneHint:         "giọng trang trọng, lịch sự nhưng có phần xa cách",
		GreetingTemplate: "Chào {audience}, {pronoun} là {persona}.",
	}
	voiceRevolutionRefined = VoiceSetting{
		Pronoun:          "tôi",
		Audience:         "các đồng chí",
		ToneHint:         "giọng thời kháng chiến, giản dị mà giàu nhiệt huyết cách mạng",
		GreetingTemplate: "Chào {audience}, {pronoun} là {persona}, cùng nhìn lại {period}.",
	}
	voiceModern = VoiceSetting{
		Pronoun:          "tôi",
		Audience:         "các bạn",
		ToneHint:         "giọng hiện đại, gần gũi, rõ ràng và cởi mở",
		GreetingTemplate: "Chào {audience}, {pronoun} là {persona}, cùng trò chuyện về {period}.",
	}
	voiceRoyalRefined = VoiceSetting{
		Pronoun:          "trẫm",
		Audience:         "các khanh",
		ToneHint:         "giọng đế vương cổ kính, câu văn chậm rãi, dùng điển tích và từ Hán Việt",
		GreetingTemplate: "Chào {audience}, {pronoun} là {persona}, đang trị vì {period}.",
	}
	voiceScholarRefined = VoiceSetting{
		Pronoun:          "ta",
		Audience:         "các hữu",
		ToneHint:         "giọng nho nhã của sĩ phu, chữ nghĩa chặt chẽ, điềm đạm",
		GreetingTemplate: "Chào {audience}, ta là {persona}, xin giảng chuyện {period}.",
	}
)

// VoicePolicy derives the speaking voice for a persona profile. The two
// implementations differ in rule ordering and pronoun choices; the active
// one is picked by configuration at startup.
type VoicePolicy interface {
	Select(profile AgentProfile, heroName string) VoiceSetting
	Name() string
}

// NewVoicePolicy returns the policy registered under name, defaulting to
// classic for unrecognized names.
func NewVoicePolicy(name string) VoicePolicy {
	if name == chatopts.VoicePolicyRefined {
		return refinedVoicePolicy{}
	}
	return classicVoicePolicy{}
}

func profileBlob(profile AgentProfile) string {
	parts := []string{
		profile.PersonaName,
		profile.PeriodLabel,
		profile.Summary,
		strings.Join(profile.NotableFigures, " "),
		strings.Join(profile.KeyEvents, " "),
	}
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.ToLower(strings.Join(kept, " "))
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// classicVoicePolicy is keyed on the profile blob only. Royal tokens also
// match against the diacritic-folded period label.
type classicVoicePolicy struct{}

func (classicVoicePolicy) Name() string { return chatopts.VoicePolicyClassic }

func (classicVoicePolicy) Select(profile AgentProfile, _ string) VoiceSetting {
	blob := profileBlob(profile)
	normalizedPeriod := textutil.Normalize(profile.PeriodLabel)

	switch {
	case containsAny(blob, ancestralKeywords):
		return voiceAncestral
	case containsAny(normalizedPeriod, royalTokens) || containsAny(blob, royalTokens):
		return voiceRoyalClassic
	case containsAny(blob, commanderKeywords):
		return voiceCommander
	case containsAny(blob, revolutionKeywords):
		return voiceRevolutionClassic
	case containsAny(blob, scholarKeywords):
		return voiceScholarClassic
	}
	return voiceDefault
}

// refinedVoicePolicy checks the hero name first so individual figures keep
// their historically appropriate address, then scans the blob with modern
// eras taking priority over dynastic ones.
type refinedVoicePolicy struct{}

func (refinedVoicePolicy) Name() string { return chatopts.VoicePolicyRefined }

func (refinedVoicePolicy) Select(profile AgentProfile, heroName string) VoiceSetting {
	if heroName != "" {
		lowerHero := strings.ToLower(heroName)
		if containsAny(lowerHero, elderHeroKeywords) {
			return voiceElder
		}
		if containsAny(lowerHero, controversialHeroKeywords) {
			return voiceControversial
		}
	}

	blob := profileBlob(profile)
	switch {
	case containsAny(blob, refinedRevolutionKeywords):
		return voiceRevolutionRefined
	case containsAny(blob, refinedModernKeywords):
		return voiceModern
	case containsAny(blob, refinedAncestralKeywords):
		return voiceAncestral
	case containsAny(blob, refinedRoyalTokens):
		return voiceRoyalRefined
	case containsAny(blob, refinedCommanderKeywords):
		return voiceCommander
	case containsAny(blob, refinedScholarKeywords):
		return voiceScholarRefined
	}
	return voiceDefault
}
