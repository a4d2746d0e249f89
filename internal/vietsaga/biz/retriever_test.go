package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietsaga/vietsaga/internal/vietsaga/store"
)

func lyDocs() []store.ChunkDoc {
	return []store.ChunkDoc{
		{ChunkID: 1, Text: "Lý Công Uẩn ban Chiếu dời đô năm 1010.", Dynasty: "Ly", Score: 0.9},
		{ChunkID: 2, Text: "Nhà Lý tổ chức khoa cử đầu tiên.", Dynasty: "Ly", Score: 0.8},
		{ChunkID: 3, Text: "Lý Thường Kiệt phá Tống trên sông Như Nguyệt.", Dynasty: "Ly", Score: 0.7},
	}
}

func TestRetrieve_ScopesSearchToRAGPeriods(t *testing.T) {
	vector := &fakeVector{docs: lyDocs()}
	r := NewRetriever(vector, &fakeEmbedder{}, mustCatalog(t), 5)

	analysis := NewAnalyzer(mustCatalog(t)).Analyze("Chiếu dời đô nói gì?")
	docs, err := r.Retrieve(context.Background(), "Chiếu dời đô nói gì?", analysis)

	require.NoError(t, err)
	assert.Equal(t, []string{"Ly"}, vector.lastPeriods)
	assert.Equal(t, 5, vector.lastTopK)
	// Entity filter keeps only the chunk mentioning the detected entity.
	require.Len(t, docs, 1)
	assert.Equal(t, int64(1), docs[0].ChunkID)
}

func TestRetrieve_EntityFilterFailsOpen(t *testing.T) {
	docs := []store.ChunkDoc{
		{ChunkID: 10, Text: "Nhà Trần ba lần thắng Nguyên Mông."},
		{ChunkID: 11, Text: "Hội nghị Diên Hồng hỏi ý dân."},
	}
	vector := &fakeVector{docs: docs}
	r := NewRetriever(vector, &fakeEmbedder{}, mustCatalog(t), 5)

	// The detected entity appears in none of the chunks; the unfiltered
	// set must survive rather than returning nothing.
	analysis := RequestAnalysis{AgentID: "agent_ly", PeriodCode: "ly", CharacterEvent: "Lý Công Uẩn"}
	got, err := r.Retrieve(context.Background(), "q", analysis)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestRetrieve_IndexNotReadyDegradesToEmpty(t *testing.T) {
	vector := &fakeVector{err: store.ErrIndexNotReady}
	r := NewRetriever(vector, &fakeEmbedder{}, mustCatalog(t), 5)

	docs, err := r.Retrieve(context.Background(), "q", RequestAnalysis{})

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestRetrieve_OtherSearchErrorsPropagate(t *testing.T) {
	vector := &fakeVector{err: errors.New("connection refused")}
	r := NewRetriever(vector, &fakeEmbedder{}, mustCatalog(t), 5)

	_, err := r.Retrieve(context.Background(), "q", RequestAnalysis{})

	assert.Error(t, err)
}

func TestRetrieve_CapsResultCount(t *testing.T) {
	var docs []store.ChunkDoc
	for i := int64(1); i <= 8; i++ {
		docs = append(docs, store.ChunkDoc{ChunkID: i, Text: "đoạn tư liệu"})
	}
	vector := &fakeVector{docs: docs}
	r := NewRetriever(vector, &fakeEmbedder{}, mustCatalog(t), 5)

	got, err := r.Retrieve(context.Background(), "q", RequestAnalysis{})

	require.NoError(t, err)
	assert.Len(t, got, 5)
}

func TestPeriodMismatch(t *testing.T) {
	r := NewRetriever(&fakeVector{}, &fakeEmbedder{}, mustCatalog(t), 5)

	tests := []struct {
		name       string
		periodCode string
		docs       []store.ChunkDoc
		want       bool
	}{
		{
			name:       "matching period",
			periodCode: "ly",
			docs:       []store.ChunkDoc{{Dynasty: "Ly"}},
			want:       false,
		},
		{
			name:       "foreign period",
			periodCode: "ly",
			docs:       []store.ChunkDoc{{Dynasty: "Nguyen"}},
			want:       true,
		},
		{
			name:       "storage tag variants map home",
			periodCode: "le",
			docs:       []store.ChunkDoc{{Dynasty: "Hau Le"}, {Dynasty: "Le So"}},
			want:       false,
		},
		{
			name:       "mixed evidence flags",
			periodCode: "tran",
			docs:       []store.ChunkDoc{{Dynasty: "Tran"}, {Dynasty: "Modern"}},
			want:       true,
		},
		{
			name:       "no period resolved",
			periodCode: "",
			docs:       []store.ChunkDoc{{Dynasty: "Nguyen"}},
			want:       false,
		},
		{
			name:       "untagged docs",
			periodCode: "ly",
			docs:       []store.ChunkDoc{{Dynasty: ""}},
			want:       false,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.PeriodMismatch(tc.periodCode, tc.docs))
		})
	}
}

func TestFormatChunks(t *testing.T) {
	docs := []store.ChunkDoc{
		{ChunkID: 7, Text: "Nội dung tư liệu.", Source: "viet_nam_su_luoc.pdf", Dynasty: "Ly", Score: 0.91},
		{ChunkID: 8, Text: "Không rõ nguồn."},
	}

	chunks := FormatChunks(docs)

	require.Len(t, chunks, 2)
	assert.Equal(t, "viet_nam_su_luoc.pdf · đoạn 7", chunks[0].Source)
	assert.Equal(t, "rag/viet_nam_su_luoc.pdf · đoạn 8", chunks[1].Source)
	assert.NotNil(t, chunks[1].Entities)
}
