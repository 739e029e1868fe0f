package monitor

import "github.com/shouni/go-web-monitor/pkg/types"

// Report は、1回のチェックの集計結果です。
// Hits と Misses はURLリストの順序を保ち、各URLはどちらか一方にだけ含まれます。
type Report struct {
	Hits   []types.MatchOutcome
	Misses []types.MatchOutcome // 未検出と取得失敗
	Total  int                  // 対象URLの総数
}

func (r *Report) add(o types.MatchOutcome) {
	if o.Status == types.StatusHit {
		r.Hits = append(r.Hits, o)
		return
	}
	r.Misses = append(r.Misses, o)
}

// HasHits は、1件以上検出されたかどうかを返します。
func (r Report) HasHits() bool {
	return len(r.Hits) > 0
}

// HitURLs は、検出されたURLを返します。
func (r Report) HitURLs() []string {
	return displayTexts(r.Hits)
}

// MissDisplayTexts は、未検出のURLを表示用の文字列で返します。
// 取得失敗のURLには " [fetch error]" が付きます。
func (r Report) MissDisplayTexts() []string {
	return displayTexts(r.Misses)
}

func displayTexts(outcomes []types.MatchOutcome) []string {
	texts := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		texts = append(texts, o.DisplayText())
	}
	return texts
}
