package config

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseURLs(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected []string
	}{
		{name: "empty", raw: "", expected: nil},
		{name: "whitespace_only", raw: "  \n\t ", expected: nil},
		{name: "single_url", raw: "  https://a.test  ", expected: []string{"https://a.test"}},
		{name: "comma_separated", raw: "https://a.test, https://b.test ,https://c.test", expected: []string{"https://a.test", "https://b.test", "https://c.test"}},
		{name: "newline_separated", raw: "https://a.test\n\nhttps://b.test\n", expected: []string{"https://a.test", "https://b.test"}},
		// 改行があればカンマより優先される
		{name: "newline_wins_over_comma", raw: "https://a.test/?x=1,2\nhttps://b.test", expected: []string{"https://a.test/?x=1,2", "https://b.test"}},
		{name: "json_array", raw: `[" https://a.test ", "", "https://b.test"]`, expected: []string{"https://a.test", "https://b.test"}},
		{name: "json_array_non_strings_dropped", raw: `["https://a.test", 1, null, "https://b.test"]`, expected: []string{"https://a.test", "https://b.test"}},
		{name: "json_empty_array", raw: `[]`, expected: []string{}},
		{name: "only_separators", raw: " , , ", expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := ParseURLs(tc.raw, zerolog.Nop())
			if len(tc.expected) == 0 {
				assert.Empty(t, actual)
				return
			}
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestParseURLs_MalformedJSONFallsBack(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	actual := ParseURLs(`[https://a.test, https://b.test]`, logger)

	// JSONとして解析できない場合はカンマ区切りとして扱われる
	assert.Equal(t, []string{"[https://a.test", "https://b.test]"}, actual)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
