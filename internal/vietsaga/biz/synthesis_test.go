package biz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSources_RemoteShaping(t *testing.T) {
	chat := &fakeChat{reply: `{"sources":[
		{"text":"Năm 1010, Lý Công Uẩn dời đô từ Hoa Lư về Đại La.","topic":"Dời đô"},
		{"text":"Thăng Long trở thành kinh đô lâu dài của Đại Việt.","topic":"Thăng Long"}
	]}`}
	s := NewSynthesizer(chat, mustCatalog(t), "Việt Nam Sử Lược")

	sources := s.ExtractSources(context.Background(), "câu trả lời", "agent_ly")

	require.Len(t, sources, 2)
	assert.Equal(t, int64(100), sources[0].ChunkID)
	assert.Equal(t, int64(200), sources[1].ChunkID)
	assert.Equal(t, "Việt Nam Sử Lược · Dời đô", sources[0].Source)
	assert.Equal(t, "Nhà Lý", sources[0].Dynasty)
	assert.InDelta(t, 0.85, sources[0].Score, 1e-9)
	assert.InDelta(t, 0.82, sources[1].Score, 1e-9)

	require.NotNil(t, chat.lastOpts)
	assert.Equal(t, "gpt-4o-mini", chat.lastOpts.Model)
	require.NotNil(t, chat.lastOpts.Temperature)
	assert.InDelta(t, 0.3, *chat.lastOpts.Temperature, 1e-9)
}

func TestExtractSources_FallbackFromParagraphs(t *testing.T) {
	chat := &fakeChat{chatErr: errors.New("upstream down")}
	s := NewSynthesizer(chat, mustCatalog(t), "Việt Nam Sử Lược")

	answer := strings.Join([]string{
		"# Tiêu đề",
		"- gạch đầu dòng",
		"ngắn",
		"Ta quyết định dời đô về Đại La vì nơi đây là vùng đất rộng mà bằng phẳng, muôn vật hết sức tươi tốt.",
	}, "\n\n")

	sources := s.ExtractSources(context.Background(), answer, "agent_ly")

	require.Len(t, sources, 1)
	// First-person pronouns are rewritten to the persona name.
	assert.NotContains(t, sources[0].Text, "Ta ")
	assert.Contains(t, sources[0].Text, "Lý Công Uẩn")
	assert.True(t, strings.HasPrefix(sources[0].Source, "Việt Nam Sử Lược · Chương "))
}

func TestExtractSources_FallbackSkipsHeadingsAndShortLines(t *testing.T) {
	chat := &fakeChat{reply: "not json"}
	s := NewSynthesizer(chat, mustCatalog(t), "Việt Nam Sử Lược")

	sources := s.ExtractSources(context.Background(), "# chỉ có tiêu đề\n\n- và một gạch đầu dòng", "agent_ly")

	assert.Empty(t, sources)
}

func TestExtractGraphLinks_Remote(t *testing.T) {
	chat := &fakeChat{reply: `{"links":[
		{"relation":"Nhà Lý → Lý Công Uẩn → Chiếu dời đô","description":"Ban hành năm 1010."}
	]}`}
	s := NewSynthesizer(chat, mustCatalog(t), "")

	links := s.ExtractGraphLinks(context.Background(), "câu trả lời", "agent_ly")

	require.Len(t, links, 1)
	assert.Equal(t, "Nhà Lý → Lý Công Uẩn → Chiếu dời đô", links[0].Relation)
	assert.Equal(t, int64(100), links[0].ChunkID)
}

func TestExtractGraphLinks_FallbackAlwaysTwoLinks(t *testing.T) {
	chat := &fakeChat{chatErr: errors.New("boom")}
	s := NewSynthesizer(chat, mustCatalog(t), "")

	links := s.ExtractGraphLinks(context.Background(), "bất kỳ", "agent_ly")

	require.Len(t, links, 2)
	assert.Equal(t, "Nhà Lý → Lý Công Uẩn", links[0].Relation)
	assert.Equal(t, int64(100), links[0].ChunkID)
	assert.Equal(t, "Lý Công Uẩn → Sự kiện lịch sử", links[1].Relation)
	assert.Equal(t, int64(200), links[1].ChunkID)
}

func TestExtractGraphLinks_CapsAtFour(t *testing.T) {
	chat := &fakeChat{reply: `{"links":[{"relation":"a"},{"relation":"b"},{"relation":"c"},{"relation":"d"},{"relation":"e"}]}`}
	s := NewSynthesizer(chat, mustCatalog(t), "")

	links := s.ExtractGraphLinks(context.Background(), "x", "agent_ly")

	assert.Len(t, links, 4)
}
