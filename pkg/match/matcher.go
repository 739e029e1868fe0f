package match

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// hiddenElements は、表示テキストに含めない要素です。
var hiddenElements = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
}

// Matcher は、HTMLの表示テキストに検索テキストが含まれるかを判定します。
// 比較は大文字小文字を区別しない部分一致です。
type Matcher struct {
	searchText string // 小文字化済み
	selector   string
	compiled   cascadia.Selector // nil の場合はページ全体が対象
}

// NewMatcher は、新しいMatcherのインスタンスを生成します。
// selector が空でなければここでコンパイルし、構文エラーを返します。
func NewMatcher(searchText, selector string) (*Matcher, error) {
	m := &Matcher{
		searchText: strings.ToLower(searchText),
		selector:   selector,
	}
	if selector != "" {
		compiled, err := cascadia.Compile(selector)
		if err != nil {
			return nil, fmt.Errorf("CSSセレクタの解析に失敗しました (%q): %w", selector, err)
		}
		m.compiled = compiled
	}
	return m, nil
}

// Match は、htmlの検索対象テキストに検索テキストが含まれていれば true を返します。
func (m *Matcher) Match(htmlText string) bool {
	return strings.Contains(strings.ToLower(m.SearchableText(htmlText)), m.searchText)
}

// SearchableText は、判定に使うテキストを返します。
//
// セレクタが指定されている場合は、一致した各要素の表示テキストをスペースで連結したものです。
// 一致する要素がなければ空文字列になり、ページ全体にはフォールバックしません。
// セレクタがない場合はドキュメント全体の表示テキストです。
func (m *Matcher) SearchableText(htmlText string) string {
	// goquery (x/net/html) は不正なHTMLでもエラーにせず解析する
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return ""
	}

	if m.compiled == nil {
		return visibleText(doc.Nodes...)
	}

	var parts []string
	doc.FindMatcher(m.compiled).Each(func(i int, s *goquery.Selection) {
		if text := visibleText(s.Nodes...); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

// visibleText は、ノード配下のテキストノードをトリムしてスペース区切りで連結します。
// script, style, template の中身とコメントは含めません。
func visibleText(nodes ...*html.Node) string {
	var parts []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			if hiddenElements[n.DataAtom] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	for _, n := range nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

// PageContainsText は、Matcher を都度生成して判定するヘルパーです。
func PageContainsText(htmlText, searchText, selector string) (bool, error) {
	m, err := NewMatcher(searchText, selector)
	if err != nil {
		return false, err
	}
	return m.Match(htmlText), nil
}
