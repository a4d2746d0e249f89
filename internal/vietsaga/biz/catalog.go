package biz

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/vietsaga/vietsaga/internal/pkg/textutil"
	"github.com/vietsaga/vietsaga/pkg/utils/json"
)

// DefaultAgentID is the sentinel agent used when no period resolves.
const DefaultAgentID = "agent_general_search"

//go:embed data/timeline_seed.json
var timelineSeed []byte

// PeriodProfile is a static catalog entry for one historical era.
type PeriodProfile struct {
	Code       string
	Label      string
	AgentID    string
	Keywords   []string
	RAGPeriods []string
}

// periodProfiles is an ordered priority list: the first profile whose
// keyword set matches wins. Keywords are pre-normalized (no diacritics).
var periodProfiles = []PeriodProfile{
	{
		Code:       "hong_bang",
		Label:      "Thời Hồng Bàng",
		AgentID:    "agent_hong_bang",
		Keywords:   []string{"hong bang", "thoi hong bang", "hung vuong", "lac long quan", "au co"},
		RAGPeriods: []string{"HongBang"},
	},
	{
		Code:       "bac_thuoc",
		Label:      "Thời Bắc thuộc",
		AgentID:    "agent_bac_thuoc",
		Keywords:   []string{"bac thuoc", "trieu da", "an duong vuong", "to dinh", "hai ba trung"},
		RAGPeriods: []string{"BacThuoc"},
	},
	{
		Code:       "ly",
		Label:      "Nhà Lý",
		AgentID:    "agent_ly",
		Keywords:   []string{"nha ly", "trieu ly", "ly cong uan", "ly thai to", "chieu doi do", "ly thuong kiet"},
		RAGPeriods: []string{"Ly"},
	},
	{
		Code:       "tran",
		Label:      "Nhà Trần",
		AgentID:    "agent_tran",
		Keywords:   []string{"nha tran", "trieu tran", "tran hung dao", "tran nhan tong", "nguyen mong", "bach dang"},
		RAGPeriods: []string{"Tran"},
	},
	{
		Code:       "le",
		Label:      "Nhà Hậu Lê",
		AgentID:    "agent_le",
		Keywords:   []string{"nha le", "hau le", "le loi", "nguyen trai", "lam son", "binh ngo"},
		RAGPeriods: []string{"Le", "LeSo", "HauLe"},
	},
	{
		Code:       "tay_son",
		Label:      "Phong trào Tây Sơn",
		AgentID:    "agent_tay_son",
		Keywords:   []string{"tay son", "quang trung", "nguyen hue", "hoang de quang trung"},
		RAGPeriods: []string{"TaySon"},
	},
	{
		Code:       "nguyen",
		Label:      "Nhà Nguyễn",
		AgentID:    "agent_nguyen",
		Keywords:   []string{"nha nguyen", "trieu nguyen", "gia long", "nguyen anh", "tu duc", "dai nam"},
		RAGPeriods: []string{"Nguyen"},
	},
	{
		Code:       "hien_dai",
		Label:      "Thời hiện đại",
		AgentID:    "agent_hien_dai",
		Keywords:   []string{"ho chi minh", "dien bien phu", "1954", "khai quoc", "hien dai", "khang chien"},
		RAGPeriods: []string{"CanDai", "HienDai", "Modern"},
	},
}

// EntityRule associates a normalized keyword with a display label and the
// period it pins. List order is a deliberate priority ordering.
type EntityRule struct {
	Keyword    string
	Display    string
	PeriodCode string
}

var entityRules = []EntityRule{
	{"ly cong uan", "Lý Công Uẩn", "ly"},
	{"ly thai to", "Lý Thái Tổ", "ly"},
	{"ly thuong kiet", "Lý Thường Kiệt", "ly"},
	{"chieu doi do", "Chiếu dời đô", "ly"},
	{"tran hung dao", "Trần Hưng Đạo", "tran"},
	{"tran quoc tuan", "Trần Quốc Tuấn", "tran"},
	{"tran nhan tong", "Trần Nhân Tông", "tran"},
	{"dien hong", "Hội nghị Diên Hồng", "tran"},
	{"bach dang", "Trận Bạch Đằng", "tran"},
	{"le loi", "Lê Lợi", "le"},
	{"binh ngo dai cao", "Bình Ngô đại cáo", "le"},
	{"nguyen trai", "Nguyễn Trãi", "le"},
	{"lam son", "Khởi nghĩa Lam Sơn", "le"},
	{"quang trung", "Quang Trung", "tay_son"},
	{"nguyen hue", "Nguyễn Huệ", "tay_son"},
	{"gia long", "Gia Long", "nguyen"},
	{"nguyen anh", "Nguyễn Ánh", "nguyen"},
	{"tu duc", "Vua Tự Đức", "nguyen"},
	{"ho chi minh", "Hồ Chí Minh", "hien_dai"},
	{"dien bien phu", "Chiến dịch Điện Biên Phủ", "hien_dai"},
}

// agentAliasMap redirects legacy and routing agent ids to timeline agent ids.
var agentAliasMap = map[string]string{
	"agent_bac_thuoc": "agent_bac_thuoc_2",
	"agent_le":        "agent_hau_le_so",
	"agent_le_so":     "agent_hau_le_so",
	"agent_can_dai":   "agent_phap_thuoc",
	"agent_hien_dai":  "agent_chxhcn_vn",
}

// agentPeriodMap resolves a routing agent id to its period code.
var agentPeriodMap = map[string]string{
	"agent_hong_bang":      "hong_bang",
	"agent_bac_thuoc":      "bac_thuoc",
	"agent_ly":             "ly",
	"agent_tran":           "tran",
	"agent_le":             "le",
	"agent_le_so":          "le",
	"agent_tay_son":        "tay_son",
	"agent_nguyen":         "nguyen",
	"agent_can_dai":        "hien_dai",
	"agent_hien_dai":       "hien_dai",
	"agent_general_search": "",
}

var periodLabels = map[string]string{
	"hong_bang": "Thời Hồng Bàng",
	"bac_thuoc": "Thời Bắc thuộc",
	"ly":        "Nhà Lý",
	"tran":      "Nhà Trần",
	"le":        "Nhà Lê",
	"tay_son":   "Phong trào Tây Sơn",
	"nguyen":    "Nhà Nguyễn",
	"hien_dai":  "Thời hiện đại",
}

// docPeriodMapping maps normalized storage period tags to period codes.
var docPeriodMapping = map[string]string{
	"ly":      "ly",
	"tran":    "tran",
	"le":      "le",
	"le so":   "le",
	"hau le":  "le",
	"tay son": "tay_son",
	"nguyen":  "nguyen",
	"can dai": "hien_dai",
	"hiendai": "hien_dai",
	"modern":  "hien_dai",
}

var defaultProfile = AgentProfile{
	AgentID:     DefaultAgentID,
	PersonaName: "Cố vấn lịch sử",
	PeriodLabel: "Tiến trình lịch sử Việt Nam",
	Summary:     "Nhân vật trung gian kết nối dữ liệu RAG, giữ vai trò khách quan hỗ trợ người học.",
}

// Catalog holds the read-only persona and period tables, built once at
// startup and injected into the components that need them.
type Catalog struct {
	profiles map[string]AgentProfile
	choices  map[string]struct{}
}

// timelineItem is one raw record of the embedded timeline seed.
type timelineItem struct {
	AgentID        string   `json:"agent_id"`
	Name           string   `json:"name"`
	YearRange      string   `json:"year_range"`
	StartYear      *int     `json:"start_year"`
	EndYear        *int     `json:"end_year"`
	Summary        string   `json:"summary"`
	NotableFigures []string `json:"notable_figures"`
	KeyEvents      []string `json:"key_events"`
}

// NewCatalog builds the catalog from the embedded timeline seed. Records
// sharing an agent id are aggregated: names, year ranges and summaries
// deduplicated by first occurrence, figures and events unioned preserving
// first-seen order, the year span reduced to min-start/max-end.
func NewCatalog() (*Catalog, error) {
	var items []timelineItem
	if err := json.Unmarshal(timelineSeed, &items); err != nil {
		return nil, fmt.Errorf("failed to parse timeline seed: %w", err)
	}

	type bucket struct {
		names      []string
		yearRanges []string
		summaries  []string
		figures    []string
		events     []string
		startYear  *int
		endYear    *int
	}
	aggregated := map[string]*bucket{}
	var order []string

	appendUnique := func(list []string, v string) []string {
		if v == "" {
			return list
		}
		for _, existing := range list {
			if existing == v {
				return list
			}
		}
		return append(list, v)
	}

	for _, item := range items {
		if item.AgentID == "" {
			continue
		}
		b, ok := aggregated[item.AgentID]
		if !ok {
			b = &bucket{}
			aggregated[item.AgentID] = b
			order = append(order, item.AgentID)
		}
		b.names = appendUnique(b.names, item.Name)
		b.yearRanges = appendUnique(b.yearRanges, item.YearRange)
		b.summaries = appendUnique(b.summaries, item.Summary)
		for _, f := range item.NotableFigures {
			b.figures = appendUnique(b.figures, f)
		}
		for _, e := range item.KeyEvents {
			b.events = appendUnique(b.events, e)
		}
		if item.StartYear != nil && (b.startYear == nil || *item.StartYear < *b.startYear) {
			b.startYear = item.StartYear
		}
		if item.EndYear != nil && (b.endYear == nil || *item.EndYear > *b.endYear) {
			b.endYear = item.EndYear
		}
	}

	profiles := make(map[string]AgentProfile, len(aggregated)+1)
	for _, agentID := range order {
		b := aggregated[agentID]

		periodLabel := "Giai đoạn lịch sử Việt Nam"
		if len(b.names) > 0 {
			periodLabel = b.names[0]
		}

		yearRange := ""
		if len(b.yearRanges) > 0 {
			yearRange = b.yearRanges[0]
		} else {
			yearRange = textutil.FormatYearSpan(b.startYear, b.endYear)
		}

		summary := strings.TrimSpace(strings.Join(b.summaries, " "))
		if summary == "" {
			summary = "Không có mô tả chi tiết."
		}

		personaName := periodLabel
		if len(b.figures) > 0 {
			personaName = b.figures[0]
		}

		profiles[agentID] = AgentProfile{
			AgentID:        agentID,
			PersonaName:    personaName,
			PeriodLabel:    periodLabel,
			YearRange:      yearRange,
			Summary:        summary,
			NotableFigures: b.figures,
			KeyEvents:      b.events,
		}
	}

	if _, ok := profiles[DefaultAgentID]; !ok {
		profiles[DefaultAgentID] = defaultProfile
	}

	choices := map[string]struct{}{DefaultAgentID: {}}
	for _, p := range periodProfiles {
		choices[p.AgentID] = struct{}{}
	}
	for id := range profiles {
		choices[id] = struct{}{}
	}
	for id := range agentAliasMap {
		choices[id] = struct{}{}
	}
	// Legacy ids still accepted from older clients.
	choices["agent_le_so"] = struct{}{}
	choices["agent_can_dai"] = struct{}{}

	return &Catalog{
		profiles: profiles,
		choices:  choices,
	}, nil
}

// Profile resolves an agent id through the alias map to its profile, falling
// back to the universal default profile.
func (c *Catalog) Profile(agentID string) AgentProfile {
	target := agentID
	if alias, ok := agentAliasMap[agentID]; ok {
		target = alias
	}
	if p, ok := c.profiles[target]; ok {
		return p
	}
	return defaultProfile
}

// IsKnownAgent reports whether agentID is a recognized choice.
func (c *Catalog) IsKnownAgent(agentID string) bool {
	_, ok := c.choices[agentID]
	return ok
}

// Choices returns all recognized agent ids, sorted.
func (c *Catalog) Choices() []string {
	out := make([]string, 0, len(c.choices))
	for id := range c.choices {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// PeriodProfiles returns the ordered period priority list.
func (c *Catalog) PeriodProfiles() []PeriodProfile {
	return periodProfiles
}

// PeriodProfileByCode returns the period profile for a code.
func (c *Catalog) PeriodProfileByCode(code string) (PeriodProfile, bool) {
	for _, p := range periodProfiles {
		if p.Code == code {
			return p, true
		}
	}
	return PeriodProfile{}, false
}

// EntityRules returns the ordered entity priority list.
func (c *Catalog) EntityRules() []EntityRule {
	return entityRules
}

// PeriodLabel returns the display label for a period code.
func (c *Catalog) PeriodLabel(code string) string {
	return periodLabels[code]
}

// AgentPeriod returns the period code mapped to a routing agent id.
func (c *Catalog) AgentPeriod(agentID string) string {
	return agentPeriodMap[agentID]
}

// MapDocPeriod maps a normalized storage period tag to a period code,
// returning the tag itself when unmapped.
func (c *Catalog) MapDocPeriod(normalizedTag string) string {
	if mapped, ok := docPeriodMapping[normalizedTag]; ok {
		return mapped
	}
	return normalizedTag
}
