package biz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietsaga/vietsaga/internal/vietsaga/store"
)

func TestLinks_GraphResultsPassThrough(t *testing.T) {
	graph := &fakeGraph{recs: []store.GraphLinkRec{
		{Relation: "Nhà Lý · Lý Công Uẩn", Description: "Dời đô về Thăng Long", ChunkID: 1},
	}}
	e := NewEnricher(graph)

	links := e.Links(context.Background(), lyDocs())

	require.Len(t, links, 1)
	assert.Equal(t, "Nhà Lý · Lý Công Uẩn", links[0].Relation)
}

func TestLinks_GraphFailureDegradesToNone(t *testing.T) {
	e := NewEnricher(&fakeGraph{err: errors.New("bolt handshake failed")})

	assert.Empty(t, e.Links(context.Background(), lyDocs()))
}

func TestLinks_NoDocsNoLookup(t *testing.T) {
	e := NewEnricher(&fakeGraph{err: errors.New("must not be called")})

	assert.Empty(t, e.Links(context.Background(), nil))
}

func TestEnsureLinks_FallbackFromChunks(t *testing.T) {
	docs := []store.ChunkDoc{
		{ChunkID: 1, Text: "Một", Dynasty: "Ly"},
		{ChunkID: 2, Text: "Hai"},
		{ChunkID: 3, Text: "Ba", Dynasty: "Tran"},
		{ChunkID: 4, Text: "Bốn", Dynasty: "Le"},
	}

	links := EnsureLinks(docs, nil)

	require.Len(t, links, 3)
	assert.Equal(t, "Ly", links[0].Relation)
	assert.Equal(t, "Tư liệu", links[1].Relation)
	assert.Equal(t, int64(3), links[2].ChunkID)
}

func TestEnsureLinks_KeepsExisting(t *testing.T) {
	existing := []GraphLink{{Relation: "đã có"}}

	assert.Equal(t, existing, EnsureLinks(lyDocs(), existing))
}

func TestEnsureLinks_SummarizesLongText(t *testing.T) {
	long := strings.Repeat("lịch sử ", 60)
	links := EnsureLinks([]store.ChunkDoc{{ChunkID: 1, Text: long}}, nil)

	require.Len(t, links, 1)
	assert.LessOrEqual(t, len([]rune(links[0].Description)), 221)
	assert.True(t, strings.HasSuffix(links[0].Description, "…"))
}
