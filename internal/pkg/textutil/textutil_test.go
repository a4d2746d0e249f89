package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"diacritics stripped", "Lý Công Uẩn", "ly cong uan"},
		{"already ascii", "ly cong uan", "ly cong uan"},
		{"upper case", "LÝ CÔNG UẨN", "ly cong uan"},
		{"dj letter folded", "Chiếu dời đô", "chieu doi do"},
		{"punctuation to space", "Trần Hưng Đạo, là ai?", "tran hung dao la ai"},
		{"whitespace collapsed", "  nhà   Lý  ", "nha ly"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Lý Công Uẩn dời đô khi nào?",
		"Hội nghị Diên Hồng",
		"nhà Trần!!!",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestSummarize(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "ngắn gọn", Summarize("  ngắn gọn ", 220))
	})

	t.Run("cuts at word boundary with ellipsis", func(t *testing.T) {
		long := strings.Repeat("lịch sử Việt Nam ", 30)
		got := Summarize(long, 220)
		assert.True(t, strings.HasSuffix(got, "…"))
		assert.LessOrEqual(t, len([]rune(got)), 221)
		assert.False(t, strings.HasSuffix(strings.TrimSuffix(got, "…"), " "))
	})

	t.Run("single long word hard cut", func(t *testing.T) {
		got := Summarize(strings.Repeat("a", 300), 220)
		assert.Equal(t, strings.Repeat("a", 220)+"…", got)
	})
}

func TestFormatYearSpan(t *testing.T) {
	y := func(v int) *int { return &v }

	assert.Equal(t, "1010 - 1225", FormatYearSpan(y(1010), y(1225)))
	assert.Equal(t, "2879 TCN - 258 TCN", FormatYearSpan(y(-2879), y(-258)))
	assert.Equal(t, "1010", FormatYearSpan(y(1010), nil))
	assert.Equal(t, "1225", FormatYearSpan(nil, y(1225)))
	assert.Equal(t, "", FormatYearSpan(nil, nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 120))
	assert.Equal(t, "ab", Truncate("abcd", 2))
	assert.Equal(t, "Lý", Truncate("Lý Công Uẩn", 2))
}
