package config

import (
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
)

// URLリストの区切り文字。この順序で最初に含まれているものを採用します。
var urlSeparators = []string{"\n", ","}

// ParseURLs は、TARGET_URLS の生文字列を監視対象URLのリストに変換します。
//
// 受け付ける形式は次の3つで、この順に試します。
//  1. '[' で始まる場合は JSON の文字列配列 (失敗時は警告を出して 2. へ)
//  2. 改行を含めば改行区切り、含まずカンマを含めばカンマ区切り
//  3. 区切り文字を含まない場合は全体を1つのURLとして扱う
//
// どの形式でも各要素はトリムされ、空の要素は破棄されます。
func ParseURLs(raw string, logger zerolog.Logger) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	// 1. JSON配列
	if strings.HasPrefix(raw, "[") {
		var items []any
		err := json.Unmarshal([]byte(raw), &items)
		if err == nil {
			urls := make([]string, 0, len(items))
			for _, item := range items {
				if s, ok := item.(string); ok {
					urls = appendTrimmed(urls, s)
				}
			}
			return urls
		}
		logger.Warn().Err(err).Msg("TARGET_URLS を JSON として解析できませんでした。区切り文字での分割を試みます")
	}

	// 2. 区切り文字による分割
	for _, sep := range urlSeparators {
		if !strings.Contains(raw, sep) {
			continue
		}
		var urls []string
		for _, part := range strings.Split(raw, sep) {
			urls = appendTrimmed(urls, part)
		}
		return urls
	}

	// 3. 単一URL
	return []string{raw}
}

// appendTrimmed は、トリム後に空でなければ dst に追加します。
func appendTrimmed(dst []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		dst = append(dst, s)
	}
	return dst
}
