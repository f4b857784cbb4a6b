package slug

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		opts  Options
		want  string
	}{
		{"ascii", "Sample Title", Options{}, "sample-title"},
		{"vietnamese diacritics", "Đấu Phá Thương Khung", Options{}, "dau-pha-thuong-khung"},
		{"punctuation collapses", "  Hello,   World!! -- 2 ", Options{}, "hello-world-2"},
		{"cjk transliterates", "斗破苍穹", Options{}, "dou-po-cang-qiong"},
		{"only punctuation", "!!! -- ??", Options{}, ""},
		{"cjk kept with unicode", "斗破苍穹", Options{AllowUnicode: true}, "斗破苍穹"},
		{"unicode keeps accents", "Đấu Phá", Options{AllowUnicode: true}, "đấu-phá"},
		{"word boundary cap", "the quick brown fox jumps", Options{MaxLength: 15}, "the-quick-brown"},
		{"cap not hit", "short", Options{MaxLength: 32}, "short"},
		{"long first word is cut", "supercalifragilistic", Options{MaxLength: 5}, "super"},
		{"exact cap", "abc-def", Options{MaxLength: 7}, "abc-def"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Make(tt.in, tt.opts))
		})
	}
}

func TestMakeDefaultLength(t *testing.T) {
	got := Make("Một tiểu thuyết có cái tên rất rất dài không thể tin được", Options{MaxLength: DefaultMaxLength})
	require.LessOrEqual(t, len(got), DefaultMaxLength)
	require.Equal(t, "mot-tieu-thuyet-co-cai-ten-rat", got)
}

func TestMakeKeepsCJKTitlesApart(t *testing.T) {
	opts := Options{MaxLength: DefaultMaxLength}
	a := Make("斗破苍穹", opts)
	b := Make("凡人修仙传", opts)
	require.NotEmpty(t, a)
	require.NotEmpty(t, b)
	require.NotEqual(t, a, b)
	require.Regexp(t, `^[a-z0-9]+(-[a-z0-9]+)*$`, b)
}
