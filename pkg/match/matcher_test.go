package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-web-monitor/pkg/match"
)

func TestNewMatcher(t *testing.T) {
	t.Run("success_without_selector", func(t *testing.T) {
		m, err := match.NewMatcher("SOLD OUT", "")
		assert.NoError(t, err)
		assert.NotNil(t, m)
	})

	t.Run("error_with_invalid_selector", func(t *testing.T) {
		m, err := match.NewMatcher("SOLD OUT", "div[")
		assert.Error(t, err)
		assert.Nil(t, m)
	})
}

func TestMatch(t *testing.T) {
	testCases := []struct {
		name       string
		html       string
		searchText string
		selector   string
		expected   bool
	}{
		{
			name:       "case_insensitive_whole_page",
			html:       `<html><body><h1>Widget</h1><p>Status: Sold Out Today</p></body></html>`,
			searchText: "SOLD OUT",
			expected:   true,
		},
		{
			name:       "not_found",
			html:       `<html><body><p>In stock, ships tomorrow</p></body></html>`,
			searchText: "SOLD OUT",
			expected:   false,
		},
		{
			name:       "text_across_elements_is_space_joined",
			html:       `<p><span>Sold</span><span>Out</span></p>`,
			searchText: "sold out",
			expected:   true,
		},
		{
			name:       "script_and_style_are_not_visible",
			html:       `<html><head><style>.x:after{content:"SOLD OUT"}</style><script>var s = "SOLD OUT";</script></head><body><p>Available</p></body></html>`,
			searchText: "SOLD OUT",
			expected:   false,
		},
		{
			name:       "comments_are_not_visible",
			html:       `<body><!-- SOLD OUT --><p>Available</p></body>`,
			searchText: "SOLD OUT",
			expected:   false,
		},
		{
			name:       "selector_scopes_the_search",
			html:       `<body><div class="banner">Sold out elsewhere</div><div class="status">Available</div></body>`,
			searchText: "SOLD OUT",
			selector:   ".status",
			expected:   false,
		},
		{
			name:       "selector_match",
			html:       `<body><div class="status">SOLD OUT</div></body>`,
			searchText: "sold out",
			selector:   ".status",
			expected:   true,
		},
		{
			// セレクタが何にも一致しない場合、ページ全体にはフォールバックしない
			name:       "selector_without_match_never_falls_back",
			html:       `<body><p>SOLD OUT</p></body>`,
			searchText: "SOLD OUT",
			selector:   "#missing",
			expected:   false,
		},
		{
			name:       "selector_group_joins_elements",
			html:       `<body><span class="a">Sold</span><p>noise</p><span class="b">Out</span></body>`,
			searchText: "sold out",
			selector:   ".a, .b",
			expected:   true,
		},
		{
			name:       "malformed_html_is_parsed_permissively",
			html:       `<div><p>Sold <b>Out</p></div`,
			searchText: "sold out",
			expected:   true,
		},
		{
			name:       "empty_search_text_always_matches",
			html:       `<body></body>`,
			searchText: "",
			expected:   true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := match.NewMatcher(tc.searchText, tc.selector)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, m.Match(tc.html))
		})
	}
}

func TestSearchableText(t *testing.T) {
	html := `<html><head><title>Shop</title></head><body>
		<ul><li class="item">  First </li><li class="item">Second</li></ul>
		<p>Footer</p></body></html>`

	t.Run("whole_page", func(t *testing.T) {
		m, err := match.NewMatcher("x", "")
		require.NoError(t, err)
		assert.Equal(t, "Shop First Second Footer", m.SearchableText(html))
	})

	t.Run("selected_elements", func(t *testing.T) {
		m, err := match.NewMatcher("x", "li.item")
		require.NoError(t, err)
		assert.Equal(t, "First Second", m.SearchableText(html))
	})
}

func TestPageContainsText(t *testing.T) {
	found, err := match.PageContainsText(`<p>Back In Stock</p>`, "back in stock", "")
	assert.NoError(t, err)
	assert.True(t, found)

	_, err = match.PageContainsText(`<p>x</p>`, "x", ":::")
	assert.Error(t, err)
}
