package types

// Status は、1つのURLに対するチェック結果の分類です。
type Status int

const (
	// StatusHit は、取得したページに検索テキストが含まれていたことを示します。
	StatusHit Status = iota
	// StatusMiss は、取得には成功したが検索テキストが見つからなかったことを示します。
	StatusMiss
	// StatusFetchError は、HTMLを取得できなかったことを示します。
	StatusFetchError
)

// fetchErrorSuffix は、取得失敗URLを表示用に区別するための接尾辞です。
const fetchErrorSuffix = " [fetch error]"

func (s Status) String() string {
	switch s {
	case StatusHit:
		return "hit"
	case StatusMiss:
		return "miss"
	case StatusFetchError:
		return "fetch-error"
	default:
		return "unknown"
	}
}

// MatchOutcome は、特定のURLのチェック結果、またはその処理中に発生したエラーを保持します。
// これは、Checkerの出力、Notifierへの入力として利用されます。
type MatchOutcome struct {
	URL    string // 処理対象のURL
	Status Status // 分類結果
	Err    error  // 取得失敗時の原因 (StatusFetchError の場合のみ)
}

// DisplayText は、通知本文に載せる表示用の文字列を返します。
// 取得失敗のURLには " [fetch error]" が付与されます。
func (o MatchOutcome) DisplayText() string {
	if o.Status == StatusFetchError {
		return o.URL + fetchErrorSuffix
	}
	return o.URL
}
